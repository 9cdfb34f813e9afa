package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/config"
	"github.com/mvp-joe/drift/internal/indexer"
)

var (
	quietFlag       bool
	extractionsFlag string
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the call graph for the project",
	Long: `Index parses the project sources, resolves calls between functions,
detects data access, and stores the resulting call graph under
.drift/callgraph/graph.json.

Examples:
  # Index the current directory
  drift index

  # Index without progress output
  drift index --quiet

  # Build the graph from pre-extracted JSON instead of parsing sources
  drift index --from-extractions ./extractions
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().StringVar(&extractionsFlag, "from-extractions", "", "Directory of per-file extraction JSON documents")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := callgraph.NewStorage(filepath.Join(rootDir, cfg.Graph.Dir))
	if err != nil {
		return fmt.Errorf("failed to create graph storage: %w", err)
	}

	ix := indexer.New(indexer.Options{
		RootDir:        rootDir,
		CodePatterns:   cfg.Paths.Code,
		IgnorePatterns: cfg.Paths.Ignore,
		Progress:       NewCLIProgressReporter(quietFlag),
	}, store)

	var result *indexer.Result
	if extractionsFlag != "" {
		result, err = ix.RunFromExtractions(ctx, extractionsFlag)
	} else {
		result, err = ix.Run(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	// OnComplete already printed the summary unless quiet.
	if quietFlag {
		fmt.Printf("Indexed %d files (%d skipped) in %.2fs\n",
			result.FilesParsed, result.FilesSkipped, result.Duration.Seconds())
	}

	return nil
}
