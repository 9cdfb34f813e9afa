// Package indexer orchestrates call graph construction: discover source
// files, parse them (or load pre-extracted JSON), detect data access, resolve
// calls, and persist the resulting graph.
package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/drift/internal/callgraph"
	"github.com/mvp-joe/drift/internal/extraction"
	"github.com/mvp-joe/drift/internal/indexer/parsers"
)

// Options configures an indexing run.
type Options struct {
	// RootDir is the project root all paths are relative to.
	RootDir string

	// CodePatterns selects the files to parse (glob, '/' separated).
	CodePatterns []string

	// IgnorePatterns excludes files and directories.
	IgnorePatterns []string

	// Progress receives callbacks during the run; nil means silent.
	Progress ProgressReporter
}

// Result summarizes one indexing run.
type Result struct {
	Graph        *callgraph.CallGraph
	FilesParsed  int
	FilesSkipped int
	Duration     time.Duration
}

// Indexer builds call graphs from source trees or extraction dumps.
type Indexer struct {
	opts     Options
	storage  callgraph.Storage
	detector *DataAccessDetector
	progress ProgressReporter
}

// New creates an indexer that persists built graphs through storage.
func New(opts Options, storage callgraph.Storage) *Indexer {
	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Indexer{
		opts:     opts,
		storage:  storage,
		detector: NewDataAccessDetector(),
		progress: progress,
	}
}

// Run discovers, parses, and indexes the project, then saves the graph.
// Files that fail to read or parse are skipped with a warning; a bad file
// degrades the graph rather than failing the run.
func (ix *Indexer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	ix.progress.OnDiscoveryStart()
	discovery, err := NewFileDiscovery(ix.opts.RootDir, ix.opts.CodePatterns, ix.opts.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("compiling file patterns: %w", err)
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	ix.progress.OnDiscoveryComplete(len(files))

	builder := callgraph.NewBuilder(ix.opts.RootDir)
	result := &Result{}

	ix.progress.OnParsingStart(len(files))
	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if ok := ix.indexFile(ctx, builder, relPath); ok {
			result.FilesParsed++
		} else {
			result.FilesSkipped++
		}
		ix.progress.OnFileParsed(relPath)
	}

	return ix.finish(builder, result, start)
}

// RunFromExtractions builds a graph from a directory of pre-extracted JSON
// documents instead of parsing sources, then saves it.
func (ix *Indexer) RunFromExtractions(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	extractions, err := extraction.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading extractions: %w", err)
	}

	builder := callgraph.NewBuilder(ix.opts.RootDir)
	result := &Result{}

	ix.progress.OnParsingStart(len(extractions))
	for _, ext := range extractions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		builder.AddFile(ext.FileExtraction)
		builder.AddDataAccess(ext.FileExtraction.FilePath, ext.DataAccess)
		result.FilesParsed++
		ix.progress.OnFileParsed(ext.FileExtraction.FilePath)
	}

	return ix.finish(builder, result, start)
}

// indexFile parses one source file and feeds it to the builder. Returns
// false when the file was skipped.
func (ix *Indexer) indexFile(ctx context.Context, builder *callgraph.Builder, relPath string) bool {
	lang := extraction.LanguageFromPath(relPath)
	if lang == "" {
		return false
	}
	parser, ok := parsers.For(lang)
	if !ok {
		return false
	}

	source, err := os.ReadFile(filepath.Join(ix.opts.RootDir, relPath))
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", relPath, err)
		return false
	}

	ext, err := parser.Parse(ctx, relPath, source)
	if err != nil {
		log.Printf("Warning: failed to parse %s: %v", relPath, err)
		return false
	}

	builder.AddFile(*ext)
	builder.AddDataAccess(relPath, ix.detector.DetectFile(relPath, source))
	return true
}

// finish resolves calls, persists the graph, and fills the result.
func (ix *Indexer) finish(builder *callgraph.Builder, result *Result, start time.Time) (*Result, error) {
	ix.progress.OnGraphBuildingStart(builder.FunctionCount())

	graph, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building call graph: %w", err)
	}

	if ix.storage != nil {
		if err := ix.storage.Save(graph); err != nil {
			return nil, fmt.Errorf("saving call graph: %w", err)
		}
	}

	result.Graph = graph
	result.Duration = time.Since(start)
	ix.progress.OnComplete(result, result.Duration)
	return result, nil
}
