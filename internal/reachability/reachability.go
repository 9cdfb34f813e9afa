// Package reachability answers "what data can this code reach?" and its
// inverse over a built, immutable call graph.
package reachability

import (
	"sort"

	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/extraction"
)

// Unbounded disables the depth limit on a traversal.
const Unbounded = -1

// Engine runs reachability queries against a built call graph. It holds a
// non-owning reference and never mutates the graph, so any number of engines
// and queries may run concurrently.
type Engine struct {
	graph *callgraph.CallGraph
}

// NewEngine creates a reachability engine for a built graph. Passing nil is
// programmer misuse and returns ErrNoGraph.
func NewEngine(graph *callgraph.CallGraph) (*Engine, error) {
	if graph == nil {
		return nil, callgraph.ErrNoGraph
	}
	return &Engine{graph: graph}, nil
}

// Options bounds and filters a forward reachability query.
type Options struct {
	// MaxDepth limits traversal depth; 0 inspects only the origin function,
	// Unbounded (negative) removes the limit.
	MaxDepth int

	// MinConfidence drops call edges below this resolution confidence.
	MinConfidence float64

	// IncludeUnresolved also follows edges whose call site was unresolved.
	IncludeUnresolved bool

	// Tables, when non-empty, restricts results to these tables.
	Tables []string

	// SensitiveOnly keeps only access points touching at least one field
	// classified sensitive by the fixed keyword classifier.
	SensitiveOnly bool
}

// DefaultOptions returns the query defaults: unbounded depth, no filters.
func DefaultOptions() Options {
	return Options{MaxDepth: Unbounded}
}

// Access is one data-access point reached by the query, with the first
// (shortest) path that reached its function.
type Access struct {
	Function string                     `json:"function"`
	Point    extraction.DataAccessPoint `json:"point"`
	Path     []string                   `json:"path"`
	Depth    int                        `json:"depth"`
}

// SensitiveHit is a grouped sensitive-field result: one (category, table,
// field) with the path that first reached it and how many accesses touch it.
type SensitiveHit struct {
	Category    string   `json:"category"`
	Table       string   `json:"table"`
	Field       string   `json:"field"`
	Path        []string `json:"path"`
	AccessCount int      `json:"access_count"`
}

// Result is the outcome of a forward reachability query.
type Result struct {
	Origin             string         `json:"origin"`
	Tables             []string       `json:"tables"`
	Accesses           []Access       `json:"accesses"`
	Sensitive          []SensitiveHit `json:"sensitive"`
	FunctionsTraversed int            `json:"functions_traversed"`
	MaxDepth           int            `json:"max_depth"`
}

// ReachableData locates the innermost function containing file:line and
// enumerates all data reachable from it. Returns nil when no function
// contains the location.
func (e *Engine) ReachableData(file string, line int, opts Options) *Result {
	fn := e.graph.FunctionAt(file, line)
	if fn == nil {
		return nil
	}
	return e.ReachableDataFromFunction(fn.ID, opts)
}

// ReachableDataFromFunction runs a forward BFS from the given function,
// following resolved call edges that pass the confidence filter. A global
// visited set guarantees each function is visited at most once per query, so
// each function's data access is attributed to the first (shortest) path
// that reaches it. Returns nil when the id is unknown.
func (e *Engine) ReachableDataFromFunction(id string, opts Options) *Result {
	if e.graph.Function(id) == nil {
		return nil
	}

	var accesses []Access
	e.graph.Traverse(id, callgraph.Forward, callgraph.TraverseOptions{
		MaxDepth:          opts.MaxDepth,
		MinConfidence:     opts.MinConfidence,
		IncludeUnresolved: opts.IncludeUnresolved,
		RetainPaths:       true,
	}, func(v callgraph.Visit) bool {
		for _, point := range v.Node.DataAccess {
			if !tableAllowed(point.Table, opts.Tables) {
				continue
			}
			if opts.SensitiveOnly && len(sensitiveFieldsOf(point.Fields)) == 0 {
				continue
			}
			accesses = append(accesses, Access{
				Function: v.Node.ID,
				Point:    point,
				Path:     v.Path,
				Depth:    v.Depth,
			})
		}
		return true
	})

	return summarize(id, accesses)
}

// CallPaths filters the reachable-data accesses down to those touching the
// given table (and field, when non-empty).
func (e *Engine) CallPaths(fromID, table, field string, opts Options) []Access {
	result := e.ReachableDataFromFunction(fromID, opts)
	if result == nil {
		return nil
	}

	var out []Access
	for _, access := range result.Accesses {
		if access.Point.Table != table {
			continue
		}
		if field != "" && !containsField(access.Point.Fields, field) {
			continue
		}
		out = append(out, access)
	}
	return out
}

// summarize folds surviving accesses into the query result: distinct tables,
// grouped sensitive hits, functions traversed across surviving paths, and
// the maximum depth observed.
func summarize(origin string, accesses []Access) *Result {
	result := &Result{
		Origin:   origin,
		Tables:   []string{},
		Accesses: accesses,
	}

	tableSet := make(map[string]bool)
	pathFunctions := make(map[string]bool)
	sensitiveIndex := make(map[string]int) // category|table|field -> index

	for _, access := range accesses {
		tableSet[access.Point.Table] = true
		for _, fnID := range access.Path {
			pathFunctions[fnID] = true
		}
		if access.Depth > result.MaxDepth {
			result.MaxDepth = access.Depth
		}

		for _, cf := range sensitiveFieldsOf(access.Point.Fields) {
			key := cf.Category + "|" + access.Point.Table + "|" + cf.Field
			if idx, ok := sensitiveIndex[key]; ok {
				result.Sensitive[idx].AccessCount++
				continue
			}
			sensitiveIndex[key] = len(result.Sensitive)
			result.Sensitive = append(result.Sensitive, SensitiveHit{
				Category:    cf.Category,
				Table:       access.Point.Table,
				Field:       cf.Field,
				Path:        access.Path,
				AccessCount: 1,
			})
		}
	}

	for table := range tableSet {
		result.Tables = append(result.Tables, table)
	}
	sort.Strings(result.Tables)
	result.FunctionsTraversed = len(pathFunctions)

	return result
}

func tableAllowed(table string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, t := range allow {
		if t == table {
			return true
		}
	}
	return false
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
