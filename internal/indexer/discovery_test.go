package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileDiscovery:
// - Code patterns match both root-level and nested files
// - Ignore patterns exclude whole directories
// - The .drift directory is always ignored
// - Invalid patterns fail construction

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	}
}

func TestFileDiscovery_DiscoverFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"main.py",
		"src/app.py",
		"src/web/handler.ts",
		"node_modules/lib/index.ts",
		"docs/readme.md",
		".drift/callgraph/graph.json",
	)

	fd, err := NewFileDiscovery(root,
		[]string{"**/*.py", "**/*.ts"},
		[]string{"node_modules/**"},
	)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)

	// Test: Code patterns match both root-level and nested files
	assert.Contains(t, files, "main.py")
	assert.Contains(t, files, "src/app.py")
	assert.Contains(t, files, "src/web/handler.ts")

	// Test: Ignore patterns exclude whole directories
	assert.NotContains(t, files, "node_modules/lib/index.ts")

	// Test: non-code files never match
	assert.NotContains(t, files, "docs/readme.md")

	// Test: The .drift directory is always ignored
	assert.NotContains(t, files, ".drift/callgraph/graph.json")
}

func TestNewFileDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	// Test: Invalid patterns fail construction
	_, err := NewFileDiscovery(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
