package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// rubyParser parses Ruby files.
type rubyParser struct {
	*treeSitterParser
}

// NewRubyParser creates a new Ruby parser.
func NewRubyParser() *rubyParser {
	lang := sitter.NewLanguage(ruby.Language())
	return &rubyParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangRuby),
	}
}

// Parse extracts methods, classes, requires, and calls from Ruby source.
func (p *rubyParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class", "module":
			p.extractClass(n, source, out)
		case "method", "singleton_method":
			p.extractMethod(n, source, out)
		case "call":
			p.extractCall(n, source, out)
		}
		return true
	})
	return out, nil
}

func (p *rubyParser) extractClass(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	info := extraction.ClassInfo{
		Name:       extractNodeText(nameNode, source),
		IsExported: true,
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if super := node.ChildByFieldName("superclass"); super != nil {
		info.Extends = strings.TrimSpace(strings.TrimPrefix(extractNodeText(super, source), "<"))
	}

	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() == "method" || n.Kind() == "singleton_method" {
			if name := n.ChildByFieldName("name"); name != nil {
				info.Methods = append(info.Methods, extractNodeText(name, source))
			}
			return false
		}
		return true
	})

	out.Classes = append(out.Classes, info)
}

func (p *rubyParser) extractMethod(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	className := p.enclosingClassName(node, source)

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: qualify(className, name),
		ClassName:     className,
		// Visibility in Ruby is positional (private/protected markers);
		// tracking it needs statement-order analysis, so methods default
		// to public here.
		IsExported:    true,
		IsConstructor: name == "initialize",
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(uint(i))
			pi := extraction.ParameterInfo{}
			switch param.Kind() {
			case "identifier":
				pi.Name = extractNodeText(param, source)
			case "optional_parameter", "keyword_parameter":
				pi.Name = extractNodeText(param.ChildByFieldName("name"), source)
				pi.DefaultValue = extractNodeText(param.ChildByFieldName("value"), source)
			default:
				pi.Name = extractNodeText(param, source)
			}
			if pi.Name != "" {
				info.Parameters = append(info.Parameters, pi)
			}
		}
	}

	out.Functions = append(out.Functions, info)
}

// extractCall handles method calls. Requires are recorded as imports rather
// than calls.
func (p *rubyParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	methodNode := node.ChildByFieldName("method")
	if methodNode == nil {
		return
	}
	callee := extractNodeText(methodNode, source)
	args := argumentsOf(node.ChildByFieldName("arguments"), source)

	if callee == "require" || callee == "require_relative" {
		if len(args) > 0 {
			out.Imports = append(out.Imports, extraction.ImportInfo{
				Source: strings.Trim(args[0], `'"`),
				Line:   lineOf(node),
			})
		}
		return
	}

	call := extraction.Call{
		Callee:   callee,
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	}
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		receiver := extractNodeText(recv, source)
		if receiver == "self" {
			call.Receiver = "self"
		} else {
			call.Receiver = strings.TrimPrefix(receiver, "@")
		}
	}

	out.Calls = append(out.Calls, call)
}

func (p *rubyParser) enclosingClassName(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "class", "module")
	if enclosing == nil {
		return ""
	}
	return extractNodeText(enclosing.ChildByFieldName("name"), source)
}
