package extraction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractionFile is the on-disk shape produced by external extraction
// tooling: one file's extraction plus any data-access points found in it.
type ExtractionFile struct {
	FileExtraction
	DataAccess []DataAccessPoint `json:"data_access,omitempty"`
}

// LoadFile reads a single extraction JSON document.
func LoadFile(path string) (*ExtractionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction file: %w", err)
	}

	var ef ExtractionFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON %s: %w", path, err)
	}
	return &ef, nil
}

// LoadDir reads every *.json extraction document under dir (non-recursive).
// Unreadable or malformed documents are skipped; extraction quality degrades
// instead of failing the load.
func LoadDir(dir string) ([]*ExtractionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction directory: %w", err)
	}

	var results []*ExtractionFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ef, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		results = append(results, ef)
	}
	return results, nil
}
