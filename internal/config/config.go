// Package config loads drift configuration from .drift/config.yml with
// environment variable overrides.
package config

// Config represents the complete drift configuration.
// It can be loaded from .drift/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Graph    GraphConfig    `yaml:"graph" mapstructure:"graph"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for code files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// GraphConfig defines where the built call graph is stored.
type GraphConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // directory holding graph.json
}

// AnalysisConfig carries the default bounds for graph queries.
type AnalysisConfig struct {
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"` // drop call edges below this confidence
	MaxDepth      int     `yaml:"max_depth" mapstructure:"max_depth"`           // traversal depth limit, -1 for unbounded
	MaxPaths      int     `yaml:"max_paths" mapstructure:"max_paths"`           // cap on paths per search
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Code: []string{
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.java",
				"**/*.php",
				"**/*.rb",
				"**/*.rs",
				"**/*.c",
				"**/*.h",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"*.min.js",
				"*.pyc",
			},
		},
		Graph: GraphConfig{
			Dir: ".drift/callgraph",
		},
		Analysis: AnalysisConfig{
			MinConfidence: 0,
			MaxDepth:      -1,
			MaxPaths:      100,
		},
	}
}
