// Package callgraph builds and represents the whole-program call graph:
// functions, resolved call edges, entry points, and data accessors.
//
// A graph is produced exactly once by Builder.Build and is immutable
// afterwards; it can be read concurrently without locks.
package callgraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/mvp-joe/drift/internal/extraction"
)

// GraphVersion is the current version of the persisted graph format.
const GraphVersion = "1.0"

var (
	// ErrNoGraph indicates a query engine was created without a built graph.
	ErrNoGraph = errors.New("call graph has not been built")
)

// ResolutionReason tags which strategy resolved a call site.
type ResolutionReason string

const (
	ReasonLocalFunction    ResolutionReason = "local-function"
	ReasonMethodByReceiver ResolutionReason = "method-by-receiver"
	ReasonDependencyInject ResolutionReason = "dependency-injection"
	ReasonImportedFunction ResolutionReason = "imported-function"
	ReasonFuzzyName        ResolutionReason = "fuzzy-name"
	ReasonUnresolved       ResolutionReason = "unresolved"
)

// CallSite is one call expression plus its resolution outcome.
//
// CalleeID is empty until resolved. Candidates keeps every plausible callee
// when resolution is ambiguous; CalleeID is always Candidates[0] when
// Resolved is true.
type CallSite struct {
	CallerID   string           `json:"caller_id"`
	CalleeID   string           `json:"callee_id,omitempty"`
	CalleeName string           `json:"callee_name"`
	Receiver   string           `json:"receiver,omitempty"`
	File       string           `json:"file"`
	Line       int              `json:"line"`
	Column     int              `json:"column,omitempty"`
	Resolved   bool             `json:"resolved"`
	Candidates []string         `json:"resolved_candidates"`
	Confidence float64          `json:"confidence"`
	Reason     ResolutionReason `json:"resolution_reason"`
	ArgCount   int              `json:"arg_count"`
}

// FunctionNode is a single extracted function or method with its calls,
// callers, and data access. Calls, CalledBy and DataAccess are populated
// during Build only; the node is logically frozen once Build returns.
type FunctionNode struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	QualifiedName string                       `json:"qualified_name"`
	File          string                       `json:"file"`
	StartLine     int                          `json:"start_line"`
	EndLine       int                          `json:"end_line"`
	Language      string                       `json:"language"`
	ClassName     string                       `json:"class_name,omitempty"`
	ModuleName    string                       `json:"module_name,omitempty"`
	IsExported    bool                         `json:"is_exported"`
	IsConstructor bool                         `json:"is_constructor"`
	IsAsync       bool                         `json:"is_async"`
	Decorators    []string                     `json:"decorators,omitempty"`
	Parameters    []string                     `json:"parameters,omitempty"`
	ReturnType    string                       `json:"return_type,omitempty"`
	Calls         []*CallSite                  `json:"calls"`
	CalledBy      []*CallSite                  `json:"called_by"`
	DataAccess    []extraction.DataAccessPoint `json:"data_access,omitempty"`
}

// FunctionID builds the deterministic identity of a function: the composite
// of file, qualified name and start line is unique within a graph.
func FunctionID(file, qualifiedName string, startLine int) string {
	return fmt.Sprintf("%s:%s:%d", file, qualifiedName, startLine)
}

// Stats summarizes a built graph.
type Stats struct {
	TotalFunctions  int            `json:"total_functions"`
	TotalCalls      int            `json:"total_calls"`
	ResolvedCalls   int            `json:"resolved_calls"`
	UnresolvedCalls int            `json:"unresolved_calls"`
	DataAccessors   int            `json:"data_accessors"`
	ResolutionRate  float64        `json:"resolution_rate"`
	ByLanguage      map[string]int `json:"by_language"`
}

// CallGraph is the immutable whole-program call graph for a project
// snapshot. Built exactly once per Builder.Build invocation; safe for
// concurrent reads afterwards as long as no caller mutates it.
type CallGraph struct {
	Version       string                   `json:"version"`
	SnapshotID    string                   `json:"snapshot_id"`
	GeneratedAt   time.Time                `json:"generated_at"`
	ProjectRoot   string                   `json:"project_root"`
	Stats         Stats                    `json:"stats"`
	EntryPoints   []string                 `json:"entry_points"`
	DataAccessors []string                 `json:"data_accessors"`
	Functions     map[string]*FunctionNode `json:"functions"`
}

// Function returns the node with the given id, or nil.
func (g *CallGraph) Function(id string) *FunctionNode {
	return g.Functions[id]
}

// FunctionAt returns the innermost function containing the given file/line:
// the node with the smallest [StartLine, EndLine] range that covers line.
// Equal-size ranges are broken by map iteration order, which is not
// guaranteed stable across runs. Returns nil when no function contains the
// location.
func (g *CallGraph) FunctionAt(file string, line int) *FunctionNode {
	var best *FunctionNode
	bestSize := -1
	for _, fn := range g.Functions {
		if fn.File != file || line < fn.StartLine || line > fn.EndLine {
			continue
		}
		size := fn.EndLine - fn.StartLine
		if best == nil || size < bestSize {
			best = fn
			bestSize = size
		}
	}
	return best
}

// IsEntryPoint reports whether id was classified as an entry point.
func (g *CallGraph) IsEntryPoint(id string) bool {
	for _, ep := range g.EntryPoints {
		if ep == id {
			return true
		}
	}
	return false
}
