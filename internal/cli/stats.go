package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSONFlag bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call graph statistics",
	Long: `Stats prints summary statistics of the persisted call graph: function and
call counts, resolution rate, entry points, data accessors, and the
per-language breakdown.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSONFlag, "json", false, "Emit JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	_, graph, err := loadGraph()
	if err != nil {
		return err
	}

	if statsJSONFlag {
		return printJSON(graph.Stats)
	}

	stats := graph.Stats
	fmt.Printf("Snapshot: %s (generated %s)\n", graph.SnapshotID, graph.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Functions:      %d\n", stats.TotalFunctions)
	fmt.Printf("Calls:          %d (%d resolved, %d unresolved, %.1f%% resolution rate)\n",
		stats.TotalCalls, stats.ResolvedCalls, stats.UnresolvedCalls, stats.ResolutionRate*100)
	fmt.Printf("Entry points:   %d\n", len(graph.EntryPoints))
	fmt.Printf("Data accessors: %d\n", stats.DataAccessors)

	if len(stats.ByLanguage) > 0 {
		fmt.Println("\nFunctions by language:")
		languages := make([]string, 0, len(stats.ByLanguage))
		for lang := range stats.ByLanguage {
			languages = append(languages, lang)
		}
		sort.Strings(languages)
		for _, lang := range languages {
			fmt.Printf("  %-12s %d\n", lang, stats.ByLanguage[lang])
		}
	}
	return nil
}
