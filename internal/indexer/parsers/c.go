package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// cParser parses C files. C has no classes, so only free functions, includes,
// and direct calls are extracted.
type cParser struct {
	*treeSitterParser
}

// NewCParser creates a new C parser.
func NewCParser() *cParser {
	lang := sitter.NewLanguage(c.Language())
	return &cParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangC),
	}
}

// Parse extracts functions, includes, and calls from C source.
func (p *cParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "preproc_include":
			p.extractInclude(n, source, out)
		case "function_definition":
			p.extractFunction(n, source, out)
		case "call_expression":
			p.extractCall(n, source, out)
		}
		return true
	})
	return out, nil
}

func (p *cParser) extractInclude(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	path := node.ChildByFieldName("path")
	if path == nil {
		return
	}
	out.Imports = append(out.Imports, extraction.ImportInfo{
		Source: strings.Trim(extractNodeText(path, source), `"<>`),
		Line:   lineOf(node),
	})
}

func (p *cParser) extractFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	declarator := p.functionDeclarator(node)
	if declarator == nil {
		return
	}
	nameNode := declarator.ChildByFieldName("declarator")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return
	}
	name := extractNodeText(nameNode, source)

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: name,
		// static functions have internal linkage; everything else is
		// visible across translation units.
		IsExported: !p.isStatic(node, source),
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if ret := node.ChildByFieldName("type"); ret != nil {
		info.ReturnType = extractNodeText(ret, source)
	}
	if params := declarator.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(uint(i))
			if param.Kind() != "parameter_declaration" {
				continue
			}
			pi := extraction.ParameterInfo{
				Type: extractNodeText(param.ChildByFieldName("type"), source),
			}
			if decl := param.ChildByFieldName("declarator"); decl != nil {
				pi.Name = strings.TrimLeft(extractNodeText(decl, source), "*")
			}
			if pi.Name != "" || pi.Type != "" {
				info.Parameters = append(info.Parameters, pi)
			}
		}
	}

	out.Functions = append(out.Functions, info)
}

func (p *cParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   extractNodeText(fn, source),
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// functionDeclarator unwraps pointer declarators down to the
// function_declarator node.
func (p *cParser) functionDeclarator(node *sitter.Node) *sitter.Node {
	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Kind() {
		case "function_declarator":
			return decl
		case "pointer_declarator":
			decl = decl.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

func (p *cParser) isStatic(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == "storage_class_specifier" && extractNodeText(child, source) == "static" {
			return true
		}
	}
	return false
}
