package depgraph

import (
	"math"
	"sort"
)

// RankOptions configures the iterative foundational-course scoring pass.
type RankOptions struct {
	Damping       float64 // damping factor; typically 0.85
	Epsilon       float64 // convergence threshold
	MaxIterations int     // upper bound on iterations
}

// DefaultRankOptions returns damping 0.85, epsilon 1e-6, max 100 iterations.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		Damping:       0.85,
		Epsilon:       1e-6,
		MaxIterations: 100,
	}
}

// CourseRank is one course's position in the foundational ordering.
type CourseRank struct {
	Code       string  `json:"course_code"`
	Score      float64 `json:"score"`
	Dependents int     `json:"dependents"`
}

// Rank scores every course that appears in the prerequisite graph with
// iterative PageRank and returns them most-foundational first. Importance
// flows from dependents to their prerequisites: a course required by many
// high-importance courses scores higher than its raw dependent count alone
// would suggest.
//
// Courses with no prerequisites of their own redistribute their rank
// uniformly, following the standard dangling-node treatment. Ties break on
// course code, so the ordering is deterministic.
func (g *Graph) Rank(opts RankOptions) []CourseRank {
	// requires[u] is the forward edge set: the prerequisites of u. The
	// graph stores only the reverse direction, so invert it here.
	requires := make(map[string]map[string]bool)
	nodes := make(map[string]bool)
	for target, dependents := range g.prereqOf {
		nodes[target] = true
		for dep := range dependents {
			nodes[dep] = true
			if requires[dep] == nil {
				requires[dep] = make(map[string]bool)
			}
			requires[dep][target] = true
		}
	}

	n := len(nodes)
	if n == 0 {
		return nil
	}

	nf := float64(n)
	base := (1.0 - opts.Damping) / nf

	rank := make(map[string]float64, n)
	for code := range nodes {
		rank[code] = 1.0 / nf
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		var danglingSum float64
		for code := range nodes {
			if len(requires[code]) == 0 {
				danglingSum += rank[code]
			}
		}
		danglingShare := opts.Damping * danglingSum / nf

		next := make(map[string]float64, n)
		for v := range nodes {
			var sum float64
			for u := range g.prereqOf[v] {
				if outDeg := len(requires[u]); outDeg > 0 {
					sum += rank[u] / float64(outDeg)
				}
			}
			next[v] = base + opts.Damping*sum + danglingShare
		}

		maxDelta := 0.0
		for code := range nodes {
			if delta := math.Abs(next[code] - rank[code]); delta > maxDelta {
				maxDelta = delta
			}
		}

		rank = next
		if maxDelta < opts.Epsilon {
			break
		}
	}

	out := make([]CourseRank, 0, n)
	for code := range nodes {
		out = append(out, CourseRank{
			Code:       code,
			Score:      rank[code],
			Dependents: len(g.prereqOf[code]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Code < out[j].Code
	})
	return out
}
