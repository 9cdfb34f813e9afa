package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyCodePatterns indicates no code patterns are configured
	ErrEmptyCodePatterns = errors.New("empty code patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyGraphDir indicates a missing graph directory
	ErrEmptyGraphDir = errors.New("empty graph directory")

	// ErrInvalidConfidence indicates a confidence outside [0, 1]
	ErrInvalidConfidence = errors.New("invalid confidence")

	// ErrInvalidMaxDepth indicates a max depth below -1
	ErrInvalidMaxDepth = errors.New("invalid max depth")

	// ErrInvalidMaxPaths indicates a non-positive path cap
	ErrInvalidMaxPaths = errors.New("invalid max paths")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateGraph(&cfg.Graph); err != nil {
		errs = append(errs, err)
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Code) == 0 {
		errs = append(errs, ErrEmptyCodePatterns)
	}

	for _, pattern := range append(append([]string{}, cfg.Code...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateGraph(cfg *GraphConfig) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return ErrEmptyGraphDir
	}
	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("%w: must be in [0, 1], got %v", ErrInvalidConfidence, cfg.MinConfidence))
	}
	if cfg.MaxDepth < -1 {
		errs = append(errs, fmt.Errorf("%w: must be >= -1, got %d", ErrInvalidMaxDepth, cfg.MaxDepth))
	}
	if cfg.MaxPaths <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxPaths, cfg.MaxPaths))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple validation errors into one.
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
