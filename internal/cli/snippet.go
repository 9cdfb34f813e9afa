package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/drift/internal/snippets"
)

var snippetContextFlag int

// snippetCmd represents the snippet command
var snippetCmd = &cobra.Command{
	Use:   "snippet <function-id>",
	Short: "Print the source of a function from the graph",
	Long: `Snippet resolves a function id against the call graph and prints its
source with surrounding context lines.

Examples:
  drift snippet "src/api/users.py:UserService.find:42"
  drift snippet "src/api/users.py:UserService.find:42" --context 5
`,
	Args: cobra.ExactArgs(1),
	RunE: runSnippet,
}

func init() {
	rootCmd.AddCommand(snippetCmd)
	snippetCmd.Flags().IntVarP(&snippetContextFlag, "context", "C", snippets.DefaultContextLines, "Context lines around the function")
}

func runSnippet(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	_, graph, err := loadGraph()
	if err != nil {
		return err
	}

	fn := graph.Function(args[0])
	if fn == nil {
		return fmt.Errorf("unknown function id %q", args[0])
	}

	extractor, err := snippets.NewExtractor(rootDir)
	if err != nil {
		return err
	}
	defer extractor.Close()

	snippet, err := extractor.Extract(fn.File, fn.StartLine, fn.EndLine, snippetContextFlag)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n%s\n", fn.QualifiedName, fn.File, snippet)
	return nil
}
