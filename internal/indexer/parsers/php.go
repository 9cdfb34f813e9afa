package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// phpParser parses PHP files.
type phpParser struct {
	*treeSitterParser
}

// NewPHPParser creates a new PHP parser.
func NewPHPParser() *phpParser {
	lang := sitter.NewLanguage(php.LanguagePHP())
	return &phpParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangPHP),
	}
}

// Parse extracts functions, classes, imports, and calls from PHP source.
func (p *phpParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "namespace_use_declaration":
			p.extractUse(n, source, out)
		case "class_declaration", "interface_declaration", "trait_declaration":
			p.extractClass(n, source, out)
		case "function_definition":
			p.extractFunction(n, source, out, "", false)
		case "method_declaration":
			className := p.enclosingClassName(n, source)
			p.extractFunction(n, source, out, className, true)
		case "function_call_expression":
			p.extractFunctionCall(n, source, out)
		case "member_call_expression":
			p.extractMemberCall(n, source, out)
		case "scoped_call_expression":
			p.extractScopedCall(n, source, out)
		case "object_creation_expression":
			p.extractNew(n, source, out)
		}
		return true
	})
	return out, nil
}

// extractUse handles "use A\B\C;" and "use A\B\{C, D};".
func (p *phpParser) extractUse(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() != "namespace_use_clause" {
			continue
		}

		full := extractNodeText(child.NamedChild(0), source)
		imp := extraction.ImportInfo{Source: full, Line: lineOf(node)}
		if idx := strings.LastIndex(full, `\`); idx >= 0 {
			imp.Source = full[:idx]
			imp.Named = []string{full[idx+1:]}
		} else {
			imp.Named = []string{full}
		}
		out.Imports = append(out.Imports, imp)
	}
}

func (p *phpParser) extractClass(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	info := extraction.ClassInfo{
		Name:       extractNodeText(nameNode, source),
		IsExported: true,
		Decorators: p.attributesOf(node, source),
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if base := findChildByType(node, "base_clause"); base != nil {
		info.Extends = extractNodeText(base.NamedChild(0), source)
	}
	if impl := findChildByType(node, "class_interface_clause"); impl != nil {
		for i := 0; i < int(impl.NamedChildCount()); i++ {
			info.Implements = append(info.Implements, extractNodeText(impl.NamedChild(uint(i)), source))
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(uint(i))
			if child.Kind() == "method_declaration" {
				if name := child.ChildByFieldName("name"); name != nil {
					info.Methods = append(info.Methods, extractNodeText(name, source))
				}
			}
		}
	}

	out.Classes = append(out.Classes, info)
}

func (p *phpParser) extractFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction, className string, isMethod bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)

	exported := true
	if isMethod {
		exported = p.isPublicMethod(node, source)
	}

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: qualify(className, name),
		ClassName:     className,
		IsExported:    exported,
		IsConstructor: name == "__construct",
		Decorators:    p.attributesOf(node, source),
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(uint(i))
			if param.Kind() != "simple_parameter" && param.Kind() != "property_promotion_parameter" {
				continue
			}
			info.Parameters = append(info.Parameters, extraction.ParameterInfo{
				Name:         strings.TrimPrefix(extractNodeText(param.ChildByFieldName("name"), source), "$"),
				Type:         extractNodeText(param.ChildByFieldName("type"), source),
				DefaultValue: extractNodeText(param.ChildByFieldName("default_value"), source),
			})
		}
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		info.ReturnType = extractNodeText(ret, source)
	}

	out.Functions = append(out.Functions, info)
}

func (p *phpParser) extractFunctionCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "name" && fn.Kind() != "qualified_name" {
		return
	}

	callee := extractNodeText(fn, source)
	if idx := strings.LastIndex(callee, `\`); idx >= 0 {
		callee = callee[idx+1:]
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   callee,
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// extractMemberCall handles $obj->method(...).
func (p *phpParser) extractMemberCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	receiver := extractNodeText(node.ChildByFieldName("object"), source)
	receiver = strings.TrimPrefix(receiver, "$")
	if receiver == "this" {
		receiver = "self"
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   extractNodeText(nameNode, source),
		Receiver: receiver,
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// extractScopedCall handles Foo::bar(...) static calls.
func (p *phpParser) extractScopedCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	receiver := extractNodeText(node.ChildByFieldName("scope"), source)
	if receiver == "static" || receiver == "self" || receiver == "parent" {
		receiver = "self"
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   extractNodeText(nameNode, source),
		Receiver: receiver,
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// extractNew records "new Foo(...)" as a call to Foo for constructor
// resolution.
func (p *phpParser) extractNew(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	var typeName string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() == "name" || child.Kind() == "qualified_name" {
			typeName = extractNodeText(child, source)
			break
		}
	}
	if typeName == "" {
		return
	}
	if idx := strings.LastIndex(typeName, `\`); idx >= 0 {
		typeName = typeName[idx+1:]
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   typeName,
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// isPublicMethod reports whether a method has public (or default) visibility.
func (p *phpParser) isPublicMethod(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == "visibility_modifier" {
			return extractNodeText(child, source) == "public"
		}
	}
	return true
}

// attributesOf collects PHP 8 attributes (#[Route(...)]) as decorators.
func (p *phpParser) attributesOf(node *sitter.Node, source []byte) []string {
	var attrs []string
	for prev := node.PrevNamedSibling(); prev != nil && prev.Kind() == "attribute_list"; prev = prev.PrevNamedSibling() {
		for i := 0; i < int(prev.NamedChildCount()); i++ {
			group := prev.NamedChild(uint(i))
			if group.Kind() != "attribute_group" {
				continue
			}
			for j := 0; j < int(group.NamedChildCount()); j++ {
				attrs = append(attrs, extractNodeText(group.NamedChild(uint(j)), source))
			}
		}
	}
	return attrs
}

func (p *phpParser) enclosingClassName(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "class_declaration", "interface_declaration", "trait_declaration")
	if enclosing == nil {
		return ""
	}
	return extractNodeText(enclosing.ChildByFieldName("name"), source)
}
