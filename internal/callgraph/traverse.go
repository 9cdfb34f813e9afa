package callgraph

// Direction selects which call edges a traversal follows.
type Direction int

const (
	// Forward follows Calls edges (caller to callee).
	Forward Direction = iota
	// Backward follows CalledBy edges (callee to caller).
	Backward
)

// TraverseOptions bounds and filters a breadth-first traversal.
type TraverseOptions struct {
	// MaxDepth limits the traversal depth. 0 visits only the origin;
	// negative means unbounded.
	MaxDepth int

	// MinConfidence filters out call edges below this resolution confidence.
	MinConfidence float64

	// IncludeUnresolved also follows edges whose call site was not resolved
	// by any strategy (such edges carry no candidates, so this mainly
	// affects edge accounting by callers of Traverse).
	IncludeUnresolved bool

	// RetainPaths records, for every visited function, the first (shortest)
	// path that reached it. Costs O(depth) per visited node.
	RetainPaths bool
}

// Visit describes one function reached during a traversal.
type Visit struct {
	Node  *FunctionNode
	Depth int
	// Path holds function ids from the origin to this node inclusive.
	// Nil unless TraverseOptions.RetainPaths is set.
	Path []string
}

// Traverse runs a breadth-first walk from the given function, invoking visit
// for every reachable function exactly once, origin first at depth 0. Each
// function's visit carries the first (shortest) path that reached it. The
// walk stops early when visit returns false. A missing origin id results in
// no visits: lookups that miss are empty results, not errors.
//
// Both query engines share this primitive so reachable-set and
// path-provenance walks cannot diverge.
func (g *CallGraph) Traverse(fromID string, dir Direction, opts TraverseOptions, visit func(Visit) bool) {
	origin := g.Functions[fromID]
	if origin == nil {
		return
	}

	type queueItem struct {
		node  *FunctionNode
		depth int
		path  []string
	}

	visited := map[string]bool{fromID: true}
	var originPath []string
	if opts.RetainPaths {
		originPath = []string{fromID}
	}

	queue := []queueItem{{node: origin, depth: 0, path: originPath}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if !visit(Visit{Node: item.node, Depth: item.depth, Path: item.path}) {
			return
		}

		if opts.MaxDepth >= 0 && item.depth >= opts.MaxDepth {
			continue
		}

		for _, next := range g.neighbors(item.node, dir, opts) {
			if visited[next.ID] {
				continue
			}
			visited[next.ID] = true

			var path []string
			if opts.RetainPaths {
				path = make([]string, len(item.path), len(item.path)+1)
				copy(path, item.path)
				path = append(path, next.ID)
			}
			queue = append(queue, queueItem{node: next, depth: item.depth + 1, path: path})
		}
	}
}

// Neighbors returns the nodes one hop from the given function in the given
// direction, honoring the edge filters. Returns nil for unknown ids.
func (g *CallGraph) Neighbors(id string, dir Direction, opts TraverseOptions) []*FunctionNode {
	fn := g.Functions[id]
	if fn == nil {
		return nil
	}
	return g.neighbors(fn, dir, opts)
}

// neighbors returns the nodes one hop from fn in the given direction,
// honoring the edge filters. Candidate order follows the builder's
// registration order, keeping traversals deterministic for a given graph.
func (g *CallGraph) neighbors(fn *FunctionNode, dir Direction, opts TraverseOptions) []*FunctionNode {
	var out []*FunctionNode
	seen := make(map[string]bool)

	appendCandidate := func(id string) {
		if seen[id] {
			return
		}
		if node := g.Functions[id]; node != nil {
			seen[id] = true
			out = append(out, node)
		}
	}

	switch dir {
	case Forward:
		for _, site := range fn.Calls {
			if !edgeAllowed(site, opts) {
				continue
			}
			for _, id := range site.Candidates {
				appendCandidate(id)
			}
		}
	case Backward:
		for _, site := range fn.CalledBy {
			if !edgeAllowed(site, opts) {
				continue
			}
			appendCandidate(site.CallerID)
		}
	}
	return out
}

// edgeAllowed applies the resolved/confidence filters to one call site.
func edgeAllowed(site *CallSite, opts TraverseOptions) bool {
	if !site.Resolved && !opts.IncludeUnresolved {
		return false
	}
	return site.Confidence >= opts.MinConfidence
}

// EdgeBetween returns the call site connecting from to to (from's side), or
// nil when no qualifying edge exists. Used to recover per-edge confidence
// when scoring paths.
func (g *CallGraph) EdgeBetween(fromID, toID string) *CallSite {
	from := g.Functions[fromID]
	if from == nil {
		return nil
	}
	for _, site := range from.Calls {
		for _, id := range site.Candidates {
			if id == toID {
				return site
			}
		}
	}
	return nil
}
