package callgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// GraphFileName is the name of the persisted graph artifact.
const GraphFileName = "graph.json"

// Storage handles reading and writing the call graph artifact on disk. The
// JSON document is the on-disk contract consumed by downstream tooling.
type Storage interface {
	// Load loads the graph from disk. Returns nil if no artifact exists.
	Load() (*CallGraph, error)

	// Save saves the graph to disk using an atomic write pattern.
	Save(graph *CallGraph) error

	// Exists checks if the graph artifact exists.
	Exists() bool
}

// storage implements Storage with atomic write support.
type storage struct {
	graphDir string // directory containing graph.json (.drift/callgraph/)
}

// NewStorage creates a graph storage rooted at graphDir.
func NewStorage(graphDir string) (Storage, error) {
	if err := os.MkdirAll(graphDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}

	tempDir := filepath.Join(graphDir, ".tmp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &storage{graphDir: graphDir}, nil
}

// Load loads the graph artifact from disk.
func (s *storage) Load() (*CallGraph, error) {
	filePath := s.graphFilePath()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil // not an error, just no graph yet
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var graph CallGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}

	return &graph, nil
}

// Save writes the graph artifact via temp file + atomic rename.
func (s *storage) Save(graph *CallGraph) error {
	if graph.Version == "" {
		graph.Version = GraphVersion
	}
	if graph.SnapshotID == "" {
		graph.SnapshotID = uuid.NewString()
	}

	jsonData, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	tempPath := filepath.Join(s.graphDir, ".tmp", GraphFileName)
	if err := os.WriteFile(tempPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp graph file: %w", err)
	}

	// Atomic rename (POSIX guarantees atomicity).
	if err := os.Rename(tempPath, s.graphFilePath()); err != nil {
		return fmt.Errorf("failed to rename temp graph file: %w", err)
	}

	return nil
}

// Exists checks if the graph artifact exists.
func (s *storage) Exists() bool {
	_, err := os.Stat(s.graphFilePath())
	return err == nil
}

func (s *storage) graphFilePath() string {
	return filepath.Join(s.graphDir, GraphFileName)
}
