package reachability

import (
	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/extraction"
)

// InverseOptions bounds an inverse (data -> entry points) query.
type InverseOptions struct {
	// Field, when non-empty, restricts accessors to points touching it.
	Field string

	// MaxDepth limits the backward traversal; Unbounded removes the limit.
	// The zero value inspects only the accessors themselves, so most callers
	// want DefaultInverseOptions as a base.
	MaxDepth int
}

// DefaultInverseOptions returns the inverse-query defaults: every field,
// unbounded backward depth.
func DefaultInverseOptions() InverseOptions {
	return InverseOptions{MaxDepth: Unbounded}
}

// AccessPath is one (entry point, path, access point) triple: an entry point
// that can reach a function directly accessing the requested data, with the
// forward-oriented path entry -> ... -> accessor.
type AccessPath struct {
	EntryPoint string                     `json:"entry_point"`
	Accessor   string                     `json:"accessor"`
	Path       []string                   `json:"path"`
	Access     extraction.DataAccessPoint `json:"access"`
}

// InverseResult answers "what code can reach this data?".
type InverseResult struct {
	Table          string       `json:"table"`
	Field          string       `json:"field,omitempty"`
	TotalAccessors int          `json:"total_accessors"`
	EntryPoints    []string     `json:"entry_points"`
	Paths          []AccessPath `json:"paths"`
}

// CodePathsToData finds every function directly accessing the requested
// table (and field), then walks backward over calledBy edges from each
// accessor to enumerate every entry point that can reach it. The union of
// all triples across accessors is returned.
//
// Note: backward BFS keeps one parent path per visited node, so genuinely
// distinct equal-length paths from a single caller may be undercounted.
func (e *Engine) CodePathsToData(table string, opts InverseOptions) *InverseResult {
	result := &InverseResult{
		Table:       table,
		Field:       opts.Field,
		EntryPoints: []string{},
		Paths:       []AccessPath{},
	}

	type accessor struct {
		id     string
		points []extraction.DataAccessPoint
	}

	var accessors []accessor
	for _, id := range e.graph.DataAccessors {
		fn := e.graph.Function(id)
		if fn == nil {
			continue
		}
		var matched []extraction.DataAccessPoint
		for _, point := range fn.DataAccess {
			if point.Table != table {
				continue
			}
			if opts.Field != "" && !containsField(point.Fields, opts.Field) {
				continue
			}
			matched = append(matched, point)
		}
		if len(matched) > 0 {
			accessors = append(accessors, accessor{id: id, points: matched})
		}
	}
	result.TotalAccessors = len(accessors)

	entrySeen := make(map[string]bool)
	for _, acc := range accessors {
		e.graph.Traverse(acc.id, callgraph.Backward, callgraph.TraverseOptions{
			MaxDepth:    opts.MaxDepth,
			RetainPaths: true,
		}, func(v callgraph.Visit) bool {
			if !e.graph.IsEntryPoint(v.Node.ID) {
				return true
			}
			if !entrySeen[v.Node.ID] {
				entrySeen[v.Node.ID] = true
				result.EntryPoints = append(result.EntryPoints, v.Node.ID)
			}
			// The backward path runs accessor -> ... -> entry point;
			// reverse it so callers read entry -> ... -> accessor.
			forward := make([]string, len(v.Path))
			for i, id := range v.Path {
				forward[len(v.Path)-1-i] = id
			}
			for _, point := range acc.points {
				result.Paths = append(result.Paths, AccessPath{
					EntryPoint: v.Node.ID,
					Accessor:   acc.id,
					Path:       forward,
					Access:     point,
				})
			}
			return true
		})
	}

	return result
}
