// Package extraction defines the per-file extraction results consumed by the
// call graph builder. Extraction is produced either by the bundled tree-sitter
// parsers or loaded from pre-extracted JSON.
package extraction

import (
	"path/filepath"
	"strings"
)

// Language identifies the source language of an extracted file.
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
	LangRust       Language = "rust"
	LangC          Language = "c"
)

// LanguageFromPath maps a file path to a Language by extension.
// Returns empty string for unsupported extensions.
func LanguageFromPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return LangPython
	case ".ts", ".tsx", ".mts", ".cts":
		return LangTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".java":
		return LangJava
	case ".php":
		return LangPHP
	case ".rb":
		return LangRuby
	case ".rs":
		return LangRust
	case ".c", ".h":
		return LangC
	default:
		return ""
	}
}

// ParameterInfo describes a single function parameter.
type ParameterInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// FunctionInfo is a function or method extracted from a source file.
type FunctionInfo struct {
	Name          string          `json:"name"`
	QualifiedName string          `json:"qualified_name"` // e.g. "UserService.find" or "outer.inner"
	Parameters    []ParameterInfo `json:"parameters,omitempty"`
	ReturnType    string          `json:"return_type,omitempty"`
	ClassName     string          `json:"class_name,omitempty"`
	IsExported    bool            `json:"is_exported"`
	IsAsync       bool            `json:"is_async"`
	IsConstructor bool            `json:"is_constructor"`
	Decorators    []string        `json:"decorators,omitempty"`
	StartLine     int             `json:"start_line"` // 1-indexed
	EndLine       int             `json:"end_line"`
}

// ClassInfo is a class (or equivalent type container) extracted from a file.
type ClassInfo struct {
	Name       string   `json:"name"`
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	IsExported bool     `json:"is_exported"`
	Decorators []string `json:"decorators,omitempty"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	// Methods carries method names for receiver-based call resolution.
	// Full method records appear in FileExtraction.Functions with ClassName set.
	Methods []string `json:"methods,omitempty"`
}

// ImportInfo is one import statement.
type ImportInfo struct {
	Source    string   `json:"source"`              // module/package being imported from
	Named     []string `json:"named,omitempty"`     // named symbols (e.g. { foo, bar })
	Default   string   `json:"default,omitempty"`   // default import name
	Namespace string   `json:"namespace,omitempty"` // namespace import (e.g. * as ns)
	Line      int      `json:"line"`
}

// Call is one raw call expression found in a file, before resolution.
type Call struct {
	Callee   string   `json:"callee"`
	Receiver string   `json:"receiver,omitempty"` // e.g. "self", "this", "db"
	Args     []string `json:"args,omitempty"`     // identifier-like argument texts
	ArgCount int      `json:"arg_count"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
}

// FileExtraction is the full extraction result for one file.
type FileExtraction struct {
	FilePath  string         `json:"file_path"`
	Language  Language       `json:"language"`
	Functions []FunctionInfo `json:"functions"`
	Classes   []ClassInfo    `json:"classes"`
	Imports   []ImportInfo   `json:"imports"`
	Calls     []Call         `json:"calls"`
}

// Operation is the kind of data access performed at a DataAccessPoint.
type Operation string

const (
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
)

// DataAccessPoint marks a location where code touches stored data.
type DataAccessPoint struct {
	Table     string    `json:"table"`
	Fields    []string  `json:"fields,omitempty"`
	Operation Operation `json:"operation"`
	File      string    `json:"file"`
	Line      int       `json:"line"`
}
