// Package pathfinder enumerates concrete call paths between functions in a
// built call graph: shortest paths, bounded all-paths searches, and paths
// connecting entry points to data access.
package pathfinder

import (
	"sort"

	"github.com/mvp-joe/drift/internal/callgraph"
)

const (
	// DefaultMaxDepth caps path length (in edges) when the caller does not
	// set one. Paths deeper than this are rarely actionable.
	DefaultMaxDepth = 20

	// DefaultMaxPaths caps how many paths a single search may return.
	DefaultMaxPaths = 100
)

// Finder runs path queries against a built call graph. Like the reachability
// engine it holds a non-owning reference and never mutates the graph.
type Finder struct {
	graph *callgraph.CallGraph
}

// New creates a path finder for a built graph. Passing nil is programmer
// misuse and returns ErrNoGraph.
func New(graph *callgraph.CallGraph) (*Finder, error) {
	if graph == nil {
		return nil, callgraph.ErrNoGraph
	}
	return &Finder{graph: graph}, nil
}

// Options bounds and filters a path search.
type Options struct {
	// MaxDepth limits path length in edges. 0 matches only zero-length
	// paths (from == to); negative falls back to DefaultMaxDepth.
	MaxDepth int

	// MaxPaths caps the number of paths returned; <= 0 falls back to
	// DefaultMaxPaths.
	MaxPaths int

	// MinConfidence drops call edges below this resolution confidence.
	MinConfidence float64

	// IncludeUnresolved also follows edges whose call site was unresolved.
	IncludeUnresolved bool
}

// DefaultOptions returns the search defaults.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, MaxPaths: DefaultMaxPaths}
}

func (o Options) normalized() Options {
	if o.MaxDepth < 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = DefaultMaxPaths
	}
	return o
}

func (o Options) traverse() callgraph.TraverseOptions {
	return callgraph.TraverseOptions{
		MaxDepth:          o.MaxDepth,
		MinConfidence:     o.MinConfidence,
		IncludeUnresolved: o.IncludeUnresolved,
	}
}

// Path is one concrete call chain through the graph.
type Path struct {
	// Functions holds function ids from source to target inclusive.
	Functions []string `json:"functions"`

	// Depth is the number of call edges, len(Functions)-1.
	Depth int `json:"depth"`

	// MinConfidence is the weakest edge on the path; 1.0 for a
	// zero-length path.
	MinConfidence float64 `json:"min_confidence"`

	// HasUnresolved reports whether any edge on the path came from an
	// unresolved call site.
	HasUnresolved bool `json:"has_unresolved"`
}

// Result is the outcome of an all-paths search.
type Result struct {
	Paths []Path `json:"paths"`

	// Exhaustive is false when the MaxPaths cap, rather than the search
	// frontier, stopped the enumeration.
	Exhaustive bool `json:"exhaustive"`
}

// FindShortestPath returns one shortest path from from to to, or nil when no
// path exists within the depth bound. When from == to the result is the
// zero-length path containing just that function.
func (f *Finder) FindShortestPath(from, to string, opts Options) *Path {
	opts = opts.normalized()
	if f.graph.Function(from) == nil || f.graph.Function(to) == nil {
		return nil
	}

	var found *Path
	f.graph.Traverse(from, callgraph.Forward, callgraph.TraverseOptions{
		MaxDepth:          opts.MaxDepth,
		MinConfidence:     opts.MinConfidence,
		IncludeUnresolved: opts.IncludeUnresolved,
		RetainPaths:       true,
	}, func(v callgraph.Visit) bool {
		if v.Node.ID != to {
			return true
		}
		found = f.annotate(v.Path)
		return false
	})
	return found
}

// FindAllPaths enumerates acyclic paths from from to to in breadth-first
// order, shortest first, up to MaxPaths paths of at most MaxDepth edges.
// Unlike Traverse this revisits functions, since distinct paths may share
// intermediate nodes; cycles are avoided by never extending a path with a
// function it already contains.
func (f *Finder) FindAllPaths(from, to string, opts Options) *Result {
	opts = opts.normalized()
	result := &Result{Paths: []Path{}, Exhaustive: true}
	if f.graph.Function(from) == nil || f.graph.Function(to) == nil {
		return result
	}

	budget := opts.MaxPaths
	f.enumerate(from, to, opts, &budget, result)
	return result
}

// enumerate runs one acyclic path-queue BFS from from to to, appending found
// paths to result and decrementing budget. Sets result.Exhaustive to false
// when the budget runs out with the frontier still live.
func (f *Finder) enumerate(from, to string, opts Options, budget *int, result *Result) {
	queue := [][]string{{from}}
	tOpts := opts.traverse()

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		last := path[len(path)-1]
		if last == to {
			if *budget <= 0 {
				result.Exhaustive = false
				return
			}
			*budget--
			result.Paths = append(result.Paths, *f.annotate(path))
			continue
		}
		if len(path)-1 >= opts.MaxDepth {
			continue
		}

		for _, next := range f.graph.Neighbors(last, callgraph.Forward, tOpts) {
			if containsID(path, next.ID) {
				continue
			}
			extended := make([]string, len(path), len(path)+1)
			copy(extended, path)
			queue = append(queue, append(extended, next.ID))
		}
	}
}

// FindPathsToData locates the innermost function containing file:line and
// enumerates paths from it to every function with direct data access. Paths
// are returned shortest first; MaxPaths bounds the combined total. Returns
// nil when no function contains the location.
func (f *Finder) FindPathsToData(file string, line int, opts Options) *Result {
	fn := f.graph.FunctionAt(file, line)
	if fn == nil {
		return nil
	}
	return f.findPathsToTargets(fn.ID, f.graph.DataAccessors, opts)
}

// FindPathsFromEntryPoints enumerates paths from every entry point to the
// given function, shortest first, bounded by MaxPaths in total.
func (f *Finder) FindPathsFromEntryPoints(to string, opts Options) *Result {
	opts = opts.normalized()
	result := &Result{Paths: []Path{}, Exhaustive: true}
	if f.graph.Function(to) == nil {
		return result
	}

	budget := opts.MaxPaths
	for _, entry := range f.graph.EntryPoints {
		if !result.Exhaustive {
			break
		}
		f.enumerate(entry, to, opts, &budget, result)
	}
	sortByDepth(result.Paths)
	return result
}

// findPathsToTargets runs one all-paths search per target, sharing a single
// MaxPaths budget, and merges the results shortest first.
func (f *Finder) findPathsToTargets(from string, targets []string, opts Options) *Result {
	opts = opts.normalized()
	result := &Result{Paths: []Path{}, Exhaustive: true}

	budget := opts.MaxPaths
	for _, target := range targets {
		if !result.Exhaustive {
			break
		}
		f.enumerate(from, target, opts, &budget, result)
	}
	sortByDepth(result.Paths)
	return result
}

// GetReachableFunctions returns the ids of all functions reachable from the
// given function over forward edges, in breadth-first discovery order,
// excluding the origin itself.
func (f *Finder) GetReachableFunctions(from string, opts Options) []string {
	return f.collect(from, callgraph.Forward, opts)
}

// GetCallers returns the ids of all functions that can reach the given
// function over backward edges, in breadth-first discovery order, excluding
// the function itself.
func (f *Finder) GetCallers(to string, opts Options) []string {
	return f.collect(to, callgraph.Backward, opts)
}

func (f *Finder) collect(origin string, dir callgraph.Direction, opts Options) []string {
	opts = opts.normalized()
	var out []string
	f.graph.Traverse(origin, dir, opts.traverse(), func(v callgraph.Visit) bool {
		if v.Node.ID != origin {
			out = append(out, v.Node.ID)
		}
		return true
	})
	return out
}

// IsConnected reports whether any path of at most maxDepth edges connects
// from to to.
func (f *Finder) IsConnected(from, to string, maxDepth int) bool {
	return f.FindShortestPath(from, to, Options{MaxDepth: maxDepth}) != nil
}

// annotate turns a raw id sequence into a Path with edge statistics.
func (f *Finder) annotate(ids []string) *Path {
	p := &Path{
		Functions:     ids,
		Depth:         len(ids) - 1,
		MinConfidence: 1.0,
	}
	for i := 0; i+1 < len(ids); i++ {
		site := f.graph.EdgeBetween(ids[i], ids[i+1])
		if site == nil {
			continue
		}
		if site.Confidence < p.MinConfidence {
			p.MinConfidence = site.Confidence
		}
		if !site.Resolved {
			p.HasUnresolved = true
		}
	}
	return p
}

func sortByDepth(paths []Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Depth < paths[j].Depth
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
