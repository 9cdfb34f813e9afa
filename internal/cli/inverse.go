package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/drift/internal/reachability"
)

var (
	inverseFieldFlag string
	inverseMaxDepth  int
	inverseJSONFlag  bool
)

// inverseCmd represents the inverse command
var inverseCmd = &cobra.Command{
	Use:   "inverse <table>",
	Short: "Show what code can reach a table",
	Long: `Inverse finds every function that directly accesses the given table and
walks the call graph backward from each one, reporting the entry points that
can reach the data and the paths connecting them.

Examples:
  # Who can touch the users table?
  drift inverse users

  # Narrow to a single column
  drift inverse users --field password_hash
`,
	Args: cobra.ExactArgs(1),
	RunE: runInverse,
}

func init() {
	rootCmd.AddCommand(inverseCmd)
	inverseCmd.Flags().StringVar(&inverseFieldFlag, "field", "", "Restrict to accesses touching this field")
	inverseCmd.Flags().IntVar(&inverseMaxDepth, "max-depth", reachability.Unbounded, "Maximum backward traversal depth (-1 for unbounded)")
	inverseCmd.Flags().BoolVar(&inverseJSONFlag, "json", false, "Emit JSON")
}

func runInverse(cmd *cobra.Command, args []string) error {
	cfg, graph, err := loadGraph()
	if err != nil {
		return err
	}
	applyAnalysisDefaults(cmd, cfg, &inverseMaxDepth, nil, nil)
	engine, err := reachability.NewEngine(graph)
	if err != nil {
		return err
	}

	result := engine.CodePathsToData(args[0], reachability.InverseOptions{
		Field:    inverseFieldFlag,
		MaxDepth: inverseMaxDepth,
	})

	if inverseJSONFlag {
		return printJSON(result)
	}

	target := result.Table
	if result.Field != "" {
		target += "." + result.Field
	}
	fmt.Printf("Data: %s\n", target)
	fmt.Printf("Direct accessors: %d, entry points: %d\n", result.TotalAccessors, len(result.EntryPoints))
	if len(result.Paths) == 0 {
		fmt.Println("No entry point reaches this data.")
		return nil
	}
	fmt.Println()
	for _, path := range result.Paths {
		fmt.Printf("  %s %s at %s:%d\n", path.Access.Operation, target, path.Access.File, path.Access.Line)
		fmt.Printf("    %s\n", strings.Join(path.Path, " -> "))
	}
	return nil
}
