package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/config"
)

// Test Plan for root helpers:
// - Configured analysis bounds fill query flags the user left unset
// - Explicit command-line flags win over configured bounds
// - Bounds a command does not expose are left alone
// - The verbose summary names the snapshot and the graph sizes
// - file:line arguments parse and reject malformed input

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "q", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().Int("max-depth", 20, "")
	cmd.Flags().Int("max-paths", 100, "")
	cmd.Flags().Float64("min-confidence", 0, "")
	return cmd
}

func TestApplyAnalysisDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Analysis.MaxDepth = 7
	cfg.Analysis.MaxPaths = 3
	cfg.Analysis.MinConfidence = 0.5

	// Test: Configured analysis bounds fill query flags the user left unset
	cmd := queryCmd()
	maxDepth, maxPaths, minConfidence := 20, 100, 0.0
	applyAnalysisDefaults(cmd, cfg, &maxDepth, &maxPaths, &minConfidence)
	assert.Equal(t, 7, maxDepth)
	assert.Equal(t, 3, maxPaths)
	assert.Equal(t, 0.5, minConfidence)

	// Test: Explicit command-line flags win over configured bounds
	cmd = queryCmd()
	require.NoError(t, cmd.Flags().Set("max-depth", "2"))
	maxDepth, maxPaths = 2, 100
	applyAnalysisDefaults(cmd, cfg, &maxDepth, &maxPaths, nil)
	assert.Equal(t, 2, maxDepth)
	assert.Equal(t, 3, maxPaths)

	// Test: Bounds a command does not expose are left alone
	cmd = queryCmd()
	maxDepth, minConfidence = 20, 0
	applyAnalysisDefaults(cmd, cfg, nil, nil, &minConfidence)
	assert.Equal(t, 20, maxDepth)
	assert.Equal(t, 0.5, minConfidence)
}

func TestGraphSummary(t *testing.T) {
	t.Parallel()

	// Test: The verbose summary names the snapshot and the graph sizes
	graph := &callgraph.CallGraph{
		SnapshotID:  "snap-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Functions: map[string]*callgraph.FunctionNode{
			"a.py:handler:1": {},
			"a.py:query:9":   {},
		},
		EntryPoints:   []string{"a.py:handler:1"},
		DataAccessors: []string{"a.py:query:9"},
	}

	summary := graphSummary(graph)
	assert.Contains(t, summary, "snap-1")
	assert.Contains(t, summary, "2 functions")
	assert.Contains(t, summary, "1 entry points")
	assert.Contains(t, summary, "1 data accessors")
	assert.Contains(t, summary, "2026-03-01T12:00:00Z")
}

func TestParseLocation(t *testing.T) {
	t.Parallel()

	// Test: file:line arguments parse and reject malformed input
	file, line, err := parseLocation("src/api/users.py:42")
	require.NoError(t, err)
	assert.Equal(t, "src/api/users.py", file)
	assert.Equal(t, 42, line)

	for _, bad := range []string{"users.py", "users.py:", ":42", "users.py:zero", "users.py:0"} {
		_, _, err := parseLocation(bad)
		assert.Error(t, err, bad)
	}
}
