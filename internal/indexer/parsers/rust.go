package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// rustParser parses Rust files. Impl blocks map onto classes so methods get
// receiver-based resolution like the object languages.
type rustParser struct {
	*treeSitterParser
}

// NewRustParser creates a new Rust parser.
func NewRustParser() *rustParser {
	lang := sitter.NewLanguage(rust.Language())
	return &rustParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangRust),
	}
}

// Parse extracts functions, impl blocks, uses, and calls from Rust source.
func (p *rustParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "use_declaration":
			p.extractUse(n, source, out)
		case "impl_item":
			p.extractImpl(n, source, out)
		case "function_item":
			p.extractFunction(n, source, out)
		case "call_expression":
			p.extractCall(n, source, out)
		}
		return true
	})
	return out, nil
}

// extractUse handles "use a::b::c;". Grouped and glob imports keep the path
// prefix as the source.
func (p *rustParser) extractUse(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return
	}

	full := extractNodeText(arg, source)
	imp := extraction.ImportInfo{Source: full, Line: lineOf(node)}

	switch {
	case strings.HasSuffix(full, "::*"):
		imp.Source = strings.TrimSuffix(full, "::*")
		imp.Namespace = "*"
	case strings.Contains(full, "{"):
		idx := strings.Index(full, "{")
		imp.Source = strings.TrimSuffix(full[:idx], "::")
		inner := strings.Trim(full[idx:], "{}")
		for _, name := range strings.Split(inner, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if asIdx := strings.Index(name, " as "); asIdx >= 0 {
				name = strings.TrimSpace(name[asIdx+4:])
			}
			imp.Named = append(imp.Named, name)
		}
	default:
		if idx := strings.LastIndex(full, "::"); idx >= 0 {
			imp.Source = full[:idx]
			imp.Named = []string{full[idx+2:]}
		}
	}

	out.Imports = append(out.Imports, imp)
}

// extractImpl records an impl block as a class carrying its method names.
// The struct definition itself contributes no callable surface.
func (p *rustParser) extractImpl(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}

	info := extraction.ClassInfo{
		Name:       extractNodeText(typeNode, source),
		IsExported: true,
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if trait := node.ChildByFieldName("trait"); trait != nil {
		info.Implements = []string{extractNodeText(trait, source)}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(uint(i))
			if child.Kind() == "function_item" {
				if name := child.ChildByFieldName("name"); name != nil {
					info.Methods = append(info.Methods, extractNodeText(name, source))
				}
			}
		}
	}

	out.Classes = append(out.Classes, info)
}

func (p *rustParser) extractFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	className := p.enclosingImplType(node, source)

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: qualify(className, name),
		ClassName:     className,
		IsExported:    hasChildOfType(node, "visibility_modifier"),
		IsAsync:       p.hasModifierKeyword(node, source, "async"),
		IsConstructor: className != "" && name == "new",
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(uint(i))
			if param.Kind() != "parameter" {
				continue // self_parameter and attributes are skipped
			}
			info.Parameters = append(info.Parameters, extraction.ParameterInfo{
				Name: extractNodeText(param.ChildByFieldName("pattern"), source),
				Type: extractNodeText(param.ChildByFieldName("type"), source),
			})
		}
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		info.ReturnType = extractNodeText(ret, source)
	}

	out.Functions = append(out.Functions, info)
}

func (p *rustParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	call := extraction.Call{
		Line:   lineOf(node),
		Column: columnOf(node),
	}

	switch fn.Kind() {
	case "identifier":
		call.Callee = extractNodeText(fn, source)
	case "field_expression":
		// value.method(...)
		receiver := extractNodeText(fn.ChildByFieldName("value"), source)
		if receiver == "self" {
			call.Receiver = "self"
		} else {
			call.Receiver = receiver
		}
		call.Callee = extractNodeText(fn.ChildByFieldName("field"), source)
	case "scoped_identifier":
		// Type::function(...)
		call.Receiver = extractNodeText(fn.ChildByFieldName("path"), source)
		call.Callee = extractNodeText(fn.ChildByFieldName("name"), source)
	default:
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	call.Args = args
	call.ArgCount = len(args)
	out.Calls = append(out.Calls, call)
}

// hasModifierKeyword reports whether a function carries the given keyword
// in its function_modifiers.
func (p *rustParser) hasModifierKeyword(node *sitter.Node, source []byte, keyword string) bool {
	mods := findChildByType(node, "function_modifiers")
	if mods == nil {
		return hasChildOfType(node, keyword)
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if extractNodeText(mods.Child(uint(i)), source) == keyword {
			return true
		}
	}
	return false
}

func (p *rustParser) enclosingImplType(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "impl_item", "trait_item")
	if enclosing == nil {
		return ""
	}
	if enclosing.Kind() == "trait_item" {
		return extractNodeText(enclosing.ChildByFieldName("name"), source)
	}
	return extractNodeText(enclosing.ChildByFieldName("type"), source)
}
