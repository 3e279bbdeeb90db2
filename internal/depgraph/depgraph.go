// Package depgraph builds the catalog-wide reverse dependency graph from
// parsed requisite trees. For any course it answers "which courses require
// this one as a prerequisite" and, separately, "as a corequisite". The
// graph is built fresh in one pass over the full collection and then
// frozen; there is no incremental update path.
package depgraph

import (
	"sort"

	"github.com/aucplan/coursegraph/internal/requisite"
)

// Source is one course's contribution to the graph: its join key and its
// parsed requisite trees. A course whose title yields no code has an empty
// Code and is excluded from keying, but callers still receive (empty) edge
// lists for it.
type Source struct {
	Code string
	AST  *requisite.AST
}

// Graph holds the two frozen reverse adjacency maps.
type Graph struct {
	// prereqOf maps course code → set of courses listing it as a
	// prerequisite.
	prereqOf map[string]map[string]bool
	// coreqOf maps course code → set of courses listing it as a
	// corequisite.
	coreqOf map[string]map[string]bool
}

// Build runs the two-pass inversion: collect the forward course references
// of every source, then record each as a reverse edge. Map insertion is set
// union, so duplicate references collapse.
func Build(sources []Source) *Graph {
	g := &Graph{
		prereqOf: make(map[string]map[string]bool),
		coreqOf:  make(map[string]map[string]bool),
	}

	for _, src := range sources {
		if src.Code == "" || src.AST == nil {
			continue
		}

		// Prerequisite direction: do not descend into Concurrent
		// wrappers, a concurrent requirement is not a true prerequisite.
		for code := range CollectCourses(src.AST.Prerequisites, false) {
			if code == "" {
				continue
			}
			addEdge(g.prereqOf, code, src.Code)
		}

		// Corequisite direction: the whole tree exists for concurrency,
		// so Concurrent wrappers are descended into.
		for code := range CollectCourses(src.AST.Corequisites, true) {
			if code == "" {
				continue
			}
			addEdge(g.coreqOf, code, src.Code)
		}
	}

	return g
}

func addEdge(m map[string]map[string]bool, target, dependent string) {
	if m[target] == nil {
		m[target] = make(map[string]bool)
	}
	m[target][dependent] = true
}

// CollectCourses recursively gathers the course codes referenced by a tree,
// descending into And/Or children and Group expressions. Concurrent
// wrappers are descended into only when includeConcurrent is set.
func CollectCourses(node requisite.Node, includeConcurrent bool) map[string]bool {
	codes := make(map[string]bool)
	collect(node, includeConcurrent, codes)
	return codes
}

func collect(node requisite.Node, includeConcurrent bool, codes map[string]bool) {
	switch v := node.(type) {
	case nil:
	case requisite.Course:
		codes[v.Code] = true
	case requisite.And:
		for _, child := range v.Children {
			collect(child, includeConcurrent, codes)
		}
	case requisite.Or:
		for _, child := range v.Children {
			collect(child, includeConcurrent, codes)
		}
	case requisite.Group:
		collect(v.Expression, includeConcurrent, codes)
	case requisite.Concurrent:
		if includeConcurrent {
			collect(v.Course, includeConcurrent, codes)
		}
	case requisite.TextCondition:
		// No course references.
	}
}

// PrerequisiteFor returns the sorted, deduplicated codes of courses that
// list code as a prerequisite. The slice is empty, never nil-ordered, for a
// leaf course.
func (g *Graph) PrerequisiteFor(code string) []string {
	return sortedKeys(g.prereqOf[code])
}

// CorequisiteFor returns the sorted, deduplicated codes of courses that
// list code as a corequisite.
func (g *Graph) CorequisiteFor(code string) []string {
	return sortedKeys(g.coreqOf[code])
}

// PrerequisiteTargets returns the sorted codes that appear as a
// prerequisite of at least one course.
func (g *Graph) PrerequisiteTargets() []string {
	return sortedKeys(setOfKeys(g.prereqOf))
}

// CorequisiteTargets returns the sorted codes that appear as a corequisite
// of at least one course.
func (g *Graph) CorequisiteTargets() []string {
	return sortedKeys(setOfKeys(g.coreqOf))
}

func setOfKeys(m map[string]map[string]bool) map[string]bool {
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
