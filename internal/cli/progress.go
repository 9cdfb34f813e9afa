package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/drift/internal/indexer"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(codeFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d code files\n", codeFiles)
}

func (c *CLIProgressReporter) OnParsingStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Parsing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnGraphBuildingStart(totalFunctions int) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	log.Printf("Resolving calls across %d functions...\n", totalFunctions)
}

func (c *CLIProgressReporter) OnComplete(result *indexer.Result, duration time.Duration) {
	if c.quiet {
		return
	}
	stats := result.Graph.Stats
	fmt.Printf("✓ Graph built: %d functions, %d calls (%.1f%% resolved) in %.1fs\n",
		stats.TotalFunctions, stats.TotalCalls, stats.ResolutionRate*100, duration.Seconds())
	fmt.Printf("  Entry points:   %d\n", len(result.Graph.EntryPoints))
	fmt.Printf("  Data accessors: %d\n", len(result.Graph.DataAccessors))
}
