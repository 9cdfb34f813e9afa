// Package parsers extracts functions, classes, imports, and call sites from
// source files using tree-sitter grammars. One parser exists per supported
// language; all of them produce the same language-neutral extraction shape.
package parsers

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/drift/internal/extraction"
)

// Parser extracts the call-graph-relevant structure of one source file.
type Parser interface {
	// Language returns the language this parser handles.
	Language() extraction.Language

	// Parse extracts functions, classes, imports, and calls from source.
	// filePath is recorded in the result but never read from disk.
	Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error)
}

// For returns the parser for a language, or false when the language has no
// grammar wired in.
func For(lang extraction.Language) (Parser, bool) {
	switch lang {
	case extraction.LangPython:
		return NewPythonParser(), true
	case extraction.LangTypeScript, extraction.LangJavaScript:
		return NewTypeScriptParser(lang), true
	case extraction.LangJava:
		return NewJavaParser(), true
	case extraction.LangPHP:
		return NewPHPParser(), true
	case extraction.LangRuby:
		return NewRubyParser(), true
	case extraction.LangRust:
		return NewRustParser(), true
	case extraction.LangC:
		return NewCParser(), true
	default:
		return nil, false
	}
}

// treeSitterParser carries the grammar shared by all language parsers.
type treeSitterParser struct {
	language *sitter.Language
	lang     extraction.Language
}

func newTreeSitterParser(language *sitter.Language, lang extraction.Language) *treeSitterParser {
	return &treeSitterParser{language: language, lang: lang}
}

// Language returns the language this parser handles.
func (p *treeSitterParser) Language() extraction.Language {
	return p.lang
}

// parseTree parses source into a tree-sitter tree. The caller owns the tree
// and must Close it.
func (p *treeSitterParser) parseTree(ctx context.Context, filePath string, source []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", p.lang, filePath)
	}
	return tree, nil
}

// newFileExtraction returns an empty extraction with slices initialized, so
// the JSON form always carries arrays rather than nulls.
func newFileExtraction(filePath string, lang extraction.Language) *extraction.FileExtraction {
	return &extraction.FileExtraction{
		FilePath:  filePath,
		Language:  lang,
		Functions: []extraction.FunctionInfo{},
		Classes:   []extraction.ClassInfo{},
		Imports:   []extraction.ImportInfo{},
		Calls:     []extraction.Call{},
	}
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for
// each node. Returning false stops descent into that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// hasChildOfType reports whether node has a direct child of the given type,
// including anonymous tokens such as "async" or visibility keywords.
func hasChildOfType(node *sitter.Node, nodeType string) bool {
	return findChildByType(node, nodeType) != nil
}

// lineOf returns the 1-based start line of a node.
func lineOf(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// endLineOf returns the 1-based end line of a node.
func endLineOf(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// columnOf returns the 1-based start column of a node.
func columnOf(node *sitter.Node) int {
	return int(node.StartPosition().Column) + 1
}

// argumentsOf extracts the textual arguments of a call's argument list.
// Nil-safe: a call with no argument list yields no arguments.
func argumentsOf(argList *sitter.Node, source []byte) []string {
	if argList == nil {
		return nil
	}

	var args []string
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		args = append(args, extractNodeText(argList.NamedChild(uint(i)), source))
	}
	return args
}

// enclosingOfKind walks up the tree and returns the nearest ancestor of one
// of the given kinds, or nil.
func enclosingOfKind(node *sitter.Node, kinds ...string) *sitter.Node {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		for _, kind := range kinds {
			if parent.Kind() == kind {
				return parent
			}
		}
	}
	return nil
}
