package indexer

import "time"

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(codeFiles int)

	// OnParsingStart is called before parsing files.
	OnParsingStart(totalFiles int)

	// OnFileParsed is called after each file is parsed.
	OnFileParsed(fileName string)

	// OnGraphBuildingStart is called before call resolution begins.
	OnGraphBuildingStart(totalFunctions int)

	// OnComplete is called when indexing completes successfully.
	OnComplete(result *Result, duration time.Duration)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                          {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(codeFiles int)          {}
func (n *NoOpProgressReporter) OnParsingStart(totalFiles int)              {}
func (n *NoOpProgressReporter) OnFileParsed(fileName string)               {}
func (n *NoOpProgressReporter) OnGraphBuildingStart(totalFunctions int)    {}
func (n *NoOpProgressReporter) OnComplete(result *Result, d time.Duration) {}
