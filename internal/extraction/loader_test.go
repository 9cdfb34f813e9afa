package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the extraction loader:
// - LoadFile parses a full extraction document
// - LoadDir loads every JSON document in a directory
// - Malformed and non-JSON entries are skipped, not fatal
// - A missing directory is an error

func TestLoadFile(t *testing.T) {
	t.Parallel()

	// Test: LoadFile parses a full extraction document
	dir := t.TempDir()
	doc := `{
		"file_path": "src/users.py",
		"language": "python",
		"functions": [
			{"name": "find_user", "qualified_name": "UserService.find_user", "class_name": "UserService", "start_line": 10, "end_line": 20, "is_exported": true}
		],
		"classes": [{"name": "UserService", "start_line": 1, "end_line": 40}],
		"imports": [{"source": "db", "named": ["connect"], "line": 1}],
		"calls": [{"callee": "connect", "line": 12, "arg_count": 1}],
		"data_access": [{"table": "users", "fields": ["email"], "operation": "read", "file": "src/users.py", "line": 14}]
	}`
	path := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	ef, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "src/users.py", ef.FilePath)
	assert.Equal(t, LangPython, ef.Language)
	require.Len(t, ef.Functions, 1)
	assert.Equal(t, "UserService.find_user", ef.Functions[0].QualifiedName)
	require.Len(t, ef.DataAccess, 1)
	assert.Equal(t, OpRead, ef.DataAccess[0].Operation)
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := `{"file_path": "a.py", "language": "python"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(valid), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))

	// Test: Malformed and non-JSON entries are skipped, not fatal
	results, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.py", results[0].FilePath)

	// Test: A missing directory is an error
	_, err = LoadDir(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}

func TestLanguageFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Language
	}{
		{"src/app.py", LangPython},
		{"src/App.TSX", LangTypeScript},
		{"lib/index.mjs", LangJavaScript},
		{"Main.java", LangJava},
		{"web/index.php", LangPHP},
		{"app/models/user.rb", LangRuby},
		{"src/main.rs", LangRust},
		{"kernel/sched.c", LangC},
		{"include/sched.h", LangC},
		{"README.md", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageFromPath(tt.path), "path %q", tt.path)
	}
}
