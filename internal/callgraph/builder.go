package callgraph

import (
	"errors"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/drift/internal/extraction"
)

// ErrAlreadyBuilt is returned when Build is called twice on one Builder.
var ErrAlreadyBuilt = errors.New("builder has already produced a graph")

// Builder accumulates per-file extraction results and produces an immutable
// CallGraph. It owns all intermediate state (functions, classes, imports,
// pending calls) during construction and is NOT safe for concurrent use.
type Builder struct {
	projectRoot string

	functions map[string]*FunctionNode
	// order keeps function ids in registration order so that candidate
	// lists and classifications are deterministic across runs.
	order  []string
	byFile map[string][]*FunctionNode
	byName map[string][]*FunctionNode

	classes map[string]*classRecord
	// classOrder keeps class names in registration order so that method
	// adoption is deterministic when declarations overlap.
	classOrder []string
	imports    map[string]map[string]bool

	pending    []pendingCall
	dataAccess map[string][]extraction.DataAccessPoint

	built bool
}

// classRecord tracks a registered class and its methods by name. Same-named
// classes across files share one record; decls keeps each declaration apart.
type classRecord struct {
	name    string
	file    string
	methods map[string][]*FunctionNode
	decls   []classDecl
}

// classDecl is one textual declaration of a class: its file, its body range,
// and the method names the extraction listed on it.
type classDecl struct {
	file      string
	startLine int
	endLine   int
	declared  map[string]bool
}

// pendingCall is a raw call site tagged with its containing function,
// waiting for the global resolution pass.
type pendingCall struct {
	caller *FunctionNode
	file   string
	call   extraction.Call
}

// NewBuilder creates an empty Builder for the given project root.
func NewBuilder(projectRoot string) *Builder {
	return &Builder{
		projectRoot: projectRoot,
		functions:   make(map[string]*FunctionNode),
		byFile:      make(map[string][]*FunctionNode),
		byName:      make(map[string][]*FunctionNode),
		classes:     make(map[string]*classRecord),
		imports:     make(map[string]map[string]bool),
		dataAccess:  make(map[string][]extraction.DataAccessPoint),
	}
}

// AddFile registers one file's extraction result: its classes and functions
// (allocating function ids), its imports, and its call sites as pending.
// Each pending call is tagged with the innermost registered function whose
// line range contains the call; calls outside any function are dropped.
func (b *Builder) AddFile(fx extraction.FileExtraction) {
	for _, cls := range fx.Classes {
		b.registerClass(fx.FilePath, cls)
	}

	for i := range fx.Functions {
		b.registerFunction(fx.FilePath, string(fx.Language), fx.Functions[i])
	}

	if len(fx.Imports) > 0 {
		set := b.imports[fx.FilePath]
		if set == nil {
			set = make(map[string]bool)
			b.imports[fx.FilePath] = set
		}
		for _, imp := range fx.Imports {
			for _, name := range imp.Named {
				set[name] = true
			}
			if imp.Default != "" {
				set[imp.Default] = true
			}
			if imp.Namespace != "" {
				set[imp.Namespace] = true
			}
		}
	}

	for _, call := range fx.Calls {
		caller := b.containingFunction(fx.FilePath, call.Line)
		if caller == nil {
			// Malformed extraction: a call with no discoverable containing
			// function degrades resolution quality instead of failing.
			continue
		}
		b.pending = append(b.pending, pendingCall{caller: caller, file: fx.FilePath, call: call})
	}
}

// FunctionCount returns the number of functions registered so far.
func (b *Builder) FunctionCount() int {
	return len(b.order)
}

// AddDataAccess stores raw data-access points for association during Build.
func (b *Builder) AddDataAccess(file string, points []extraction.DataAccessPoint) {
	if len(points) == 0 {
		return
	}
	b.dataAccess[file] = append(b.dataAccess[file], points...)
}

// Build resolves all pending calls, associates data-access points, classifies
// entry points and data accessors, computes stats, and returns the immutable
// CallGraph. Malformed input never aborts the build; it only degrades
// resolution quality.
func (b *Builder) Build() (*CallGraph, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	for _, p := range b.pending {
		b.resolveCall(p)
	}

	b.associateDataAccess()

	graph := &CallGraph{
		Version:       GraphVersion,
		SnapshotID:    uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		ProjectRoot:   b.projectRoot,
		EntryPoints:   b.classifyEntryPoints(),
		DataAccessors: b.classifyDataAccessors(),
		Functions:     b.functions,
	}
	graph.Stats = b.computeStats()

	return graph, nil
}

// registerClass records a class for receiver-based method resolution.
// Same-named classes across files share one record: resolution is type-free
// and name-based. The declared method names let later function registration
// adopt methods that arrive without a class name of their own.
func (b *Builder) registerClass(file string, cls extraction.ClassInfo) {
	rec := b.classes[cls.Name]
	if rec == nil {
		rec = &classRecord{name: cls.Name, file: file, methods: make(map[string][]*FunctionNode)}
		b.classes[cls.Name] = rec
		b.classOrder = append(b.classOrder, cls.Name)
	}

	declared := make(map[string]bool, len(cls.Methods))
	for _, name := range cls.Methods {
		declared[name] = true
	}
	rec.decls = append(rec.decls, classDecl{
		file:      file,
		startLine: cls.StartLine,
		endLine:   cls.EndLine,
		declared:  declared,
	})
}

// declaringClass finds a class declared in the same file whose body contains
// the function and whose extraction listed the function's name as a method.
// Some extraction dumps emit methods without a ClassName; this recovers the
// association from the class declaration instead.
func (b *Builder) declaringClass(file string, fi extraction.FunctionInfo) *classRecord {
	for _, name := range b.classOrder {
		rec := b.classes[name]
		for _, decl := range rec.decls {
			if decl.file != file || !decl.declared[fi.Name] {
				continue
			}
			if fi.StartLine >= decl.startLine && fi.EndLine <= decl.endLine {
				return rec
			}
		}
	}
	return nil
}

// registerFunction allocates a FunctionNode for one extracted function.
// Duplicate ids are skipped so that every id stays unique within the graph.
func (b *Builder) registerFunction(file, language string, fi extraction.FunctionInfo) {
	className := fi.ClassName
	if className == "" {
		if rec := b.declaringClass(file, fi); rec != nil {
			className = rec.name
		}
	}

	qname := fi.QualifiedName
	if qname == "" {
		qname = fi.Name
		if className != "" {
			qname = className + "." + fi.Name
		}
	}

	id := FunctionID(file, qname, fi.StartLine)
	if existing, ok := b.functions[id]; ok {
		log.Printf("Warning: duplicate function id %q (already registered in %s), skipping", id, existing.File)
		return
	}

	params := make([]string, 0, len(fi.Parameters))
	for _, p := range fi.Parameters {
		params = append(params, p.Name)
	}

	node := &FunctionNode{
		ID:            id,
		Name:          fi.Name,
		QualifiedName: qname,
		File:          file,
		StartLine:     fi.StartLine,
		EndLine:       fi.EndLine,
		Language:      language,
		ClassName:     className,
		ModuleName:    moduleName(file),
		IsExported:    fi.IsExported,
		IsConstructor: fi.IsConstructor,
		IsAsync:       fi.IsAsync,
		Decorators:    fi.Decorators,
		Parameters:    params,
		ReturnType:    fi.ReturnType,
		Calls:         []*CallSite{},
		CalledBy:      []*CallSite{},
	}

	b.functions[id] = node
	b.order = append(b.order, id)
	b.byFile[file] = append(b.byFile[file], node)
	b.byName[fi.Name] = append(b.byName[fi.Name], node)

	if className != "" {
		rec := b.classes[className]
		if rec == nil {
			rec = &classRecord{name: className, file: file, methods: make(map[string][]*FunctionNode)}
			b.classes[className] = rec
			b.classOrder = append(b.classOrder, className)
		}
		rec.methods[fi.Name] = append(rec.methods[fi.Name], node)
	}
}

// containingFunction finds the innermost registered function in file whose
// [StartLine, EndLine] range contains line. Ties on equal range size are
// broken first-registered-wins; see the determinism note in FunctionAt.
func (b *Builder) containingFunction(file string, line int) *FunctionNode {
	var best *FunctionNode
	bestSize := -1
	for _, fn := range b.byFile[file] {
		if line < fn.StartLine || line > fn.EndLine {
			continue
		}
		size := fn.EndLine - fn.StartLine
		if best == nil || size < bestSize {
			best = fn
			bestSize = size
		}
	}
	return best
}

// associateDataAccess attaches each raw data-access point to the innermost
// function containing it. Points outside any function are dropped.
func (b *Builder) associateDataAccess() {
	files := make([]string, 0, len(b.dataAccess))
	for file := range b.dataAccess {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		for _, point := range b.dataAccess[file] {
			fn := b.containingFunction(file, point.Line)
			if fn == nil {
				continue
			}
			fn.DataAccess = append(fn.DataAccess, point)
		}
	}
}

// classifyDataAccessors returns, in registration order, every function with
// at least one associated data-access point.
func (b *Builder) classifyDataAccessors() []string {
	accessors := []string{}
	for _, id := range b.order {
		if len(b.functions[id].DataAccess) > 0 {
			accessors = append(accessors, id)
		}
	}
	return accessors
}

func (b *Builder) computeStats() Stats {
	stats := Stats{
		TotalFunctions: len(b.functions),
		ByLanguage:     make(map[string]int),
	}

	for _, id := range b.order {
		fn := b.functions[id]
		stats.ByLanguage[fn.Language]++
		if len(fn.DataAccess) > 0 {
			stats.DataAccessors++
		}
		for _, site := range fn.Calls {
			stats.TotalCalls++
			if site.Resolved {
				stats.ResolvedCalls++
			} else {
				stats.UnresolvedCalls++
			}
		}
	}

	if stats.TotalCalls > 0 {
		stats.ResolutionRate = float64(stats.ResolvedCalls) / float64(stats.TotalCalls)
	}
	return stats
}

// moduleName derives a display module name from a file path: the base name
// without its extension.
func moduleName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
