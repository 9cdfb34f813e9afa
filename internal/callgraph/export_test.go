package callgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/drift/internal/extraction"
)

// Test Plan for DOT export:
// - Every function appears as a vertex with its qualified name label
// - Resolved call edges appear with confidence and reason attributes
// - Unresolved call sites produce no edges

func TestCallGraph_WriteDOT(t *testing.T) {
	t.Parallel()

	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "app.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("a", 1, 5),
			simpleFunc("b", 7, 10),
		},
		Calls: []extraction.Call{
			{Callee: "b", Line: 2},
			{Callee: "missing", Line: 3},
		},
	})
	graph, err := b.Build()
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, graph.WriteDOT(&sb))
	dot := sb.String()

	// Test: Every function appears as a vertex with its qualified name label
	assert.Contains(t, dot, FunctionID("app.py", "a", 1))
	assert.Contains(t, dot, FunctionID("app.py", "b", 7))
	assert.Contains(t, dot, `"a"`)
	assert.Contains(t, dot, `"b"`)

	// Test: Resolved call edges appear with confidence and reason attributes
	assert.Contains(t, dot, "0.95")
	assert.Contains(t, dot, "local-function")

	// Test: Unresolved call sites produce no edges
	assert.NotContains(t, dot, "unresolved")
}
