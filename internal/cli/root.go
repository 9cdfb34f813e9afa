// Package cli implements the drift command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/config"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drift",
	Short: "Drift - call graph construction and reachability analysis",
	Long: `Drift builds a whole-project call graph from source code and answers
reachability questions over it: what data can this function touch, what
code can reach this table, and which call paths connect them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// projectRoot resolves the project root from the --root flag or the working
// directory.
func projectRoot() (string, error) {
	if rootDirFlag != "" {
		return filepath.Abs(rootDirFlag)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// loadGraph loads the project config and the persisted call graph. Returns a
// helpful error when no graph has been built yet.
func loadGraph() (*config.Config, *callgraph.CallGraph, error) {
	rootDir, err := projectRoot()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := callgraph.NewStorage(filepath.Join(rootDir, cfg.Graph.Dir))
	if err != nil {
		return nil, nil, err
	}
	graph, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load call graph: %w", err)
	}
	if graph == nil {
		return nil, nil, errors.New("no call graph found; run 'drift index' first")
	}
	if verbose {
		fmt.Fprintln(os.Stderr, graphSummary(graph))
	}
	return cfg, graph, nil
}

// graphSummary is the one-line description verbose mode prints after loading
// a persisted graph.
func graphSummary(graph *callgraph.CallGraph) string {
	return fmt.Sprintf("Loaded graph %s: %d functions, %d entry points, %d data accessors (generated %s)",
		graph.SnapshotID, len(graph.Functions), len(graph.EntryPoints), len(graph.DataAccessors),
		graph.GeneratedAt.Format(time.RFC3339))
}

// applyAnalysisDefaults overlays the configured analysis bounds onto the
// query flags the user left unset. Explicit command-line flags always win.
// Commands pass nil for bounds they do not expose.
func applyAnalysisDefaults(cmd *cobra.Command, cfg *config.Config, maxDepth, maxPaths *int, minConfidence *float64) {
	flags := cmd.Flags()
	if maxDepth != nil && !flags.Changed("max-depth") {
		*maxDepth = cfg.Analysis.MaxDepth
	}
	if maxPaths != nil && !flags.Changed("max-paths") {
		*maxPaths = cfg.Analysis.MaxPaths
	}
	if minConfidence != nil && !flags.Changed("min-confidence") {
		*minConfidence = cfg.Analysis.MinConfidence
	}
}

// parseLocation splits a "file:line" argument. The file part may itself
// contain colons only on Windows drive letters, which drift does not split.
func parseLocation(arg string) (string, int, error) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 0 || idx == len(arg)-1 {
		return "", 0, fmt.Errorf("expected file:line, got %q", arg)
	}
	line, err := strconv.Atoi(arg[idx+1:])
	if err != nil || line < 1 {
		return "", 0, fmt.Errorf("invalid line number in %q", arg)
	}
	return arg[:idx], line, nil
}
