package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/drift/internal/callgraph"
)

// Test Plan for Indexer:
// - Run parses a small project end to end and builds the graph
// - Data access detected in sources lands on the containing function
// - The graph is persisted when storage is provided
// - RunFromExtractions builds a graph from pre-extracted JSON
// - A cancelled context aborts the run

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	app := `def handler():
    return load_users()

def load_users():
    return db.execute("SELECT id, email FROM users")
`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.py"), []byte(app), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# notes"), 0644))
	return root
}

func TestIndexer_Run(t *testing.T) {
	t.Parallel()

	root := writeProject(t)
	ix := New(Options{
		RootDir:      root,
		CodePatterns: []string{"**/*.py"},
	}, nil)

	result, err := ix.Run(context.Background())
	require.NoError(t, err)

	// Test: Run parses a small project end to end and builds the graph
	assert.Equal(t, 1, result.FilesParsed)
	assert.Equal(t, 0, result.FilesSkipped)
	require.NotNil(t, result.Graph)
	assert.Equal(t, 2, result.Graph.Stats.TotalFunctions)
	assert.Equal(t, 1, result.Graph.Stats.ResolvedCalls)

	// Test: Data access detected in sources lands on the containing function
	loader := result.Graph.Function(callgraph.FunctionID("src/app.py", "load_users", 4))
	require.NotNil(t, loader)
	require.Len(t, loader.DataAccess, 1)
	assert.Equal(t, "users", loader.DataAccess[0].Table)
	assert.Equal(t, []string{callgraph.FunctionID("src/app.py", "load_users", 4)}, result.Graph.DataAccessors)
}

func TestIndexer_Run_Persists(t *testing.T) {
	t.Parallel()

	// Test: The graph is persisted when storage is provided
	root := writeProject(t)
	store, err := callgraph.NewStorage(filepath.Join(root, ".drift", "callgraph"))
	require.NoError(t, err)

	ix := New(Options{RootDir: root, CodePatterns: []string{"**/*.py"}}, store)
	_, err = ix.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, store.Exists())
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.Stats.TotalFunctions)
}

func TestIndexer_RunFromExtractions(t *testing.T) {
	t.Parallel()

	// Test: RunFromExtractions builds a graph from pre-extracted JSON
	dir := t.TempDir()
	doc := `{
		"file_path": "svc.py",
		"language": "python",
		"functions": [
			{"name": "run", "qualified_name": "run", "start_line": 1, "end_line": 10}
		],
		"data_access": [
			{"table": "orders", "operation": "write", "file": "svc.py", "line": 5}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.json"), []byte(doc), 0644))

	ix := New(Options{RootDir: "/proj"}, nil)
	result, err := ix.RunFromExtractions(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesParsed)
	require.NotNil(t, result.Graph)
	assert.Equal(t, 1, result.Graph.Stats.TotalFunctions)
	assert.Equal(t, 1, result.Graph.Stats.DataAccessors)
}

func TestIndexer_Run_Cancelled(t *testing.T) {
	t.Parallel()

	// Test: A cancelled context aborts the run
	root := writeProject(t)
	ix := New(Options{RootDir: root, CodePatterns: []string{"**/*.py"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
