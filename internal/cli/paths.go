package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/drift/internal/pathfinder"
)

var (
	pathsAllFlag       bool
	pathsMaxDepth      int
	pathsMaxPaths      int
	pathsMinConfidence float64
	pathsUnresolved    bool
	pathsJSONFlag      bool
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths <from-id> <to-id>",
	Short: "Find call paths between two functions",
	Long: `Paths searches the call graph for concrete call chains from one function
to another. By default only one shortest path is reported; --all enumerates
acyclic paths shortest first, up to the path cap.

Function ids have the form file:qualified_name:start_line, as printed by
other drift commands.

Examples:
  drift paths "src/api.py:handler:10" "src/db.py:query:5"
  drift paths "src/api.py:handler:10" "src/db.py:query:5" --all --max-paths 20
`,
	Args: cobra.ExactArgs(2),
	RunE: runPaths,
}

func init() {
	rootCmd.AddCommand(pathsCmd)
	pathsCmd.Flags().BoolVar(&pathsAllFlag, "all", false, "Enumerate all acyclic paths instead of one shortest")
	pathsCmd.Flags().IntVar(&pathsMaxDepth, "max-depth", pathfinder.DefaultMaxDepth, "Maximum path length in edges")
	pathsCmd.Flags().IntVar(&pathsMaxPaths, "max-paths", pathfinder.DefaultMaxPaths, "Maximum number of paths to return")
	pathsCmd.Flags().Float64Var(&pathsMinConfidence, "min-confidence", 0, "Drop call edges below this confidence")
	pathsCmd.Flags().BoolVar(&pathsUnresolved, "include-unresolved", false, "Also follow unresolved call edges")
	pathsCmd.Flags().BoolVar(&pathsJSONFlag, "json", false, "Emit JSON")
}

func runPaths(cmd *cobra.Command, args []string) error {
	cfg, graph, err := loadGraph()
	if err != nil {
		return err
	}
	applyAnalysisDefaults(cmd, cfg, &pathsMaxDepth, &pathsMaxPaths, &pathsMinConfidence)
	finder, err := pathfinder.New(graph)
	if err != nil {
		return err
	}

	opts := pathfinder.Options{
		MaxDepth:          pathsMaxDepth,
		MaxPaths:          pathsMaxPaths,
		MinConfidence:     pathsMinConfidence,
		IncludeUnresolved: pathsUnresolved,
	}
	from, to := args[0], args[1]

	if !pathsAllFlag {
		path := finder.FindShortestPath(from, to, opts)
		if path == nil {
			return fmt.Errorf("no path from %s to %s", from, to)
		}
		if pathsJSONFlag {
			return printJSON(path)
		}
		printPath(*path)
		return nil
	}

	result := finder.FindAllPaths(from, to, opts)
	if pathsJSONFlag {
		return printJSON(result)
	}
	if len(result.Paths) == 0 {
		return fmt.Errorf("no path from %s to %s", from, to)
	}
	for _, path := range result.Paths {
		printPath(path)
	}
	if !result.Exhaustive {
		fmt.Printf("(truncated at %d paths)\n", pathsMaxPaths)
	}
	return nil
}

func printPath(path pathfinder.Path) {
	flags := ""
	if path.HasUnresolved {
		flags = " [unresolved edges]"
	}
	fmt.Printf("depth %d, min confidence %.2f%s\n", path.Depth, path.MinConfidence, flags)
	fmt.Printf("  %s\n", strings.Join(path.Functions, " -> "))
}
