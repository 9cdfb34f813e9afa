package snippets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - A snippet carries the requested lines plus context and a range header
// - Context is clamped at file boundaries
// - An out-of-range request is an error
// - A missing file is an error

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.py"), []byte(content), 0644))

	e, err := NewExtractor(root)
	require.NoError(t, err)
	defer e.Close()

	// Test: A snippet carries the requested lines plus context and a range header
	snippet, err := e.Extract("src/a.py", 4, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, "// Lines 3-6\nl3\nl4\nl5\nl6", snippet)

	// Test: Context is clamped at file boundaries
	snippet, err = e.Extract("src/a.py", 1, 2, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(snippet, "// Lines 1-7\n"))
	assert.Contains(t, snippet, "l1")

	// Test: An out-of-range request is an error
	_, err = e.Extract("src/a.py", 50, 60, 0)
	assert.Error(t, err)

	// Test: A missing file is an error
	_, err = e.Extract("src/missing.py", 1, 2, 0)
	assert.Error(t, err)
}
