// Package pipeline runs the full per-catalog processing pass: parse every
// course's requisite text into an AST, build the reverse dependency graph
// over the whole collection, and merge the reverse edges back onto each
// record. Per-course parsing is independent and runs on a bounded worker
// pool; the graph build waits for the barrier and then folds once over all
// trees.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/depgraph"
	"github.com/aucplan/coursegraph/internal/requisite"
)

// Stats summarizes one processing run.
type Stats struct {
	Total            int `json:"total"`
	WithPrereqs      int `json:"with_prerequisites"`
	WithCoreqs       int `json:"with_corequisites"`
	Empty            int `json:"empty"`
	Errors           int `json:"errors"`
	PrereqFor        int `json:"are_prerequisites"`
	CoreqFor         int `json:"are_corequisites"`
	Leaves           int `json:"leaf_courses"`
	MissingJoinKey   int `json:"missing_join_key"`
	AnnotatedCourses int `json:"annotated"`
}

// Pipeline processes catalogs. Workers bounds the parse pool; zero means
// one worker per CPU.
type Pipeline struct {
	Parser  *requisite.Parser
	Workers int
}

// New returns a Pipeline using the default parser and a per-CPU pool.
func New() *Pipeline {
	return &Pipeline{Parser: requisite.New()}
}

// Process parses and annotates every course, builds the reverse graph, and
// attaches the edge lists. The input slice is not mutated; failures stay
// local to one course and are reported in Stats.Errors, with the offending
// record carrying an error marker and preserved raw text.
func (p *Pipeline) Process(courses []catalog.Course) ([]catalog.Course, Stats) {
	out := make([]catalog.Course, len(courses))
	copy(out, courses)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(out) {
		workers = len(out)
	}

	// Parse phase: each worker owns disjoint indexes, no locking needed.
	var wg sync.WaitGroup
	indexes := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				p.processCourse(&out[i])
			}
		}()
	}
	for i := range out {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	// Barrier reached: every AST exists. Fold the graph and merge the
	// reverse edges back onto the records.
	sources := make([]depgraph.Source, len(out))
	for i, c := range out {
		sources[i] = depgraph.Source{Code: c.Code(), AST: c.PrerequisiteAST}
	}
	graph := depgraph.Build(sources)

	for i := range out {
		code := out[i].Code()
		out[i].IsPrerequisiteFor = graph.PrerequisiteFor(code)
		out[i].IsCorequisiteFor = graph.CorequisiteFor(code)
	}

	return out, Tally(out)
}

// processCourse parses one record, catching panics at the course boundary
// so a malformed record never aborts the batch.
func (p *Pipeline) processCourse(c *catalog.Course) {
	defer func() {
		if r := recover(); r != nil {
			c.PrerequisiteAST = &requisite.AST{
				RawText: requisite.Normalize(c.Prerequisites),
				Err:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	c.AnnotateMetadata()
	ast := p.Parser.Parse(c.Prerequisites, c.Concurrent)
	c.PrerequisiteAST = &ast
}

// Tally recomputes run statistics from an already-processed collection.
func Tally(courses []catalog.Course) Stats {
	stats := Stats{Total: len(courses)}
	for _, c := range courses {
		ast := c.PrerequisiteAST
		if ast != nil {
			if ast.Prerequisites != nil {
				stats.WithPrereqs++
			}
			if ast.Corequisites != nil {
				stats.WithCoreqs++
			}
			if ast.Prerequisites == nil && ast.Corequisites == nil && ast.Err == "" {
				stats.Empty++
			}
			if ast.Err != "" {
				stats.Errors++
			}
		}
		if len(c.IsPrerequisiteFor) > 0 {
			stats.PrereqFor++
		}
		if len(c.IsCorequisiteFor) > 0 {
			stats.CoreqFor++
		}
		if len(c.IsPrerequisiteFor) == 0 && len(c.IsCorequisiteFor) == 0 {
			stats.Leaves++
		}
		if c.Code() == "" {
			stats.MissingJoinKey++
		}
		if c.CourseCode != "" {
			stats.AnnotatedCourses++
		}
	}
	return stats
}
