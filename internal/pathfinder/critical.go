package pathfinder

import (
	"sort"

	"github.com/mvp-joe/drift/internal/extraction"
)

// ScoredPath is a path annotated with its criticality score.
type ScoredPath struct {
	Path  Path `json:"path"`
	Score int  `json:"score"`
}

// CriticalResult ranks the paths from a code location to data access by
// criticality, highest first.
type CriticalResult struct {
	Origin string `json:"origin"`

	// Critical is the highest-scoring path, nil when no path to data
	// exists.
	Critical *ScoredPath `json:"critical,omitempty"`

	// Ranked holds every candidate path in descending score order; ties
	// keep shortest-first order.
	Ranked []ScoredPath `json:"ranked"`
}

// FindCriticalPath enumerates up to MaxPaths paths from the function
// containing file:line to data-accessing functions and ranks them by score.
// Short, high-confidence paths ending in a mutation score highest: those are
// the paths a reviewer should read first. Returns nil when no function
// contains the location.
func (f *Finder) FindCriticalPath(file string, line int, opts Options) *CriticalResult {
	fn := f.graph.FunctionAt(file, line)
	if fn == nil {
		return nil
	}

	paths := f.findPathsToTargets(fn.ID, f.graph.DataAccessors, opts)
	result := &CriticalResult{
		Origin: fn.ID,
		Ranked: make([]ScoredPath, 0, len(paths.Paths)),
	}

	for _, p := range paths.Paths {
		result.Ranked = append(result.Ranked, ScoredPath{
			Path:  p,
			Score: f.scorePath(p),
		})
	}
	sort.SliceStable(result.Ranked, func(i, j int) bool {
		return result.Ranked[i].Score > result.Ranked[j].Score
	})
	if len(result.Ranked) > 0 {
		result.Critical = &result.Ranked[0]
	}
	return result
}

// scorePath computes the additive criticality score of one path.
//
//	base                       100
//	depth <= 2                 +20  (direct access, easy to audit)
//	depth > 5                  -10  (long chains dilute responsibility)
//	min confidence >= 0.9      +10
//	min confidence < 0.5       -20
//	any unresolved edge        -15
//	terminal write or delete   +15
//
// The result is clamped at zero.
func (f *Finder) scorePath(p Path) int {
	score := 100

	if p.Depth <= 2 {
		score += 20
	}
	if p.Depth > 5 {
		score -= 10
	}
	if p.MinConfidence >= 0.9 {
		score += 10
	}
	if p.MinConfidence < 0.5 {
		score -= 20
	}
	if p.HasUnresolved {
		score -= 15
	}
	if f.terminalMutates(p) {
		score += 15
	}

	if score < 0 {
		score = 0
	}
	return score
}

// terminalMutates reports whether the path's terminal function performs a
// write or delete on any of its data-access points.
func (f *Finder) terminalMutates(p Path) bool {
	if len(p.Functions) == 0 {
		return false
	}
	terminal := f.graph.Function(p.Functions[len(p.Functions)-1])
	if terminal == nil {
		return false
	}
	for _, point := range terminal.DataAccess {
		if point.Operation == extraction.OpWrite || point.Operation == extraction.OpDelete {
			return true
		}
	}
	return false
}
