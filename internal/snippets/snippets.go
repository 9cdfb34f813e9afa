// Package snippets extracts source snippets for graph query results, backed
// by a bounded LRU cache of file contents so repeated queries against the
// same files avoid rereading them.
package snippets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"
)

// DefaultContextLines is the padding added around a snippet when the caller
// does not ask for a specific amount.
const DefaultContextLines = 3

// maxCachedFiles bounds the file-lines cache. Evictions follow otter's
// LRU-like policy.
const maxCachedFiles = 500

// Extractor reads snippets from files under a project root.
type Extractor struct {
	rootDir string
	cache   otter.Cache[string, []string]
}

// NewExtractor creates an extractor rooted at rootDir.
func NewExtractor(rootDir string) (*Extractor, error) {
	cache, err := otter.MustBuilder[string, []string](maxCachedFiles).Build()
	if err != nil {
		return nil, fmt.Errorf("building file cache: %w", err)
	}
	return &Extractor{rootDir: rootDir, cache: cache}, nil
}

// Extract returns the source lines startLine..endLine (1-based, inclusive)
// of the given project-relative file, padded by contextLines on each side
// and prefixed with a line-range comment.
func (e *Extractor) Extract(file string, startLine, endLine, contextLines int) (string, error) {
	lines, err := e.fileLines(file)
	if err != nil {
		return "", err
	}

	from := max(0, startLine-contextLines-1)
	to := min(len(lines), endLine+contextLines)
	if from >= to {
		return "", fmt.Errorf("lines %d-%d out of range for %s", startLine, endLine, file)
	}

	snippet := strings.Join(lines[from:to], "\n")
	prefix := fmt.Sprintf("// Lines %d-%d\n", from+1, to)
	return prefix + snippet, nil
}

// fileLines reads a file through the cache.
func (e *Extractor) fileLines(relPath string) ([]string, error) {
	if lines, ok := e.cache.Get(relPath); ok {
		return lines, nil
	}

	content, err := os.ReadFile(filepath.Join(e.rootDir, relPath))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	e.cache.Set(relPath, lines)
	return lines, nil
}

// Close releases the cache.
func (e *Extractor) Close() {
	e.cache.Close()
}
