package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// typeScriptParser parses TypeScript and JavaScript files. The TSX grammar is
// used for all of them: it is a superset that also accepts plain TS/JS, so
// one grammar covers .ts, .tsx, .js, and .jsx.
type typeScriptParser struct {
	*treeSitterParser
}

// NewTypeScriptParser creates a parser for TypeScript or JavaScript sources.
func NewTypeScriptParser(lang extraction.Language) *typeScriptParser {
	grammar := sitter.NewLanguage(typescript.LanguageTSX())
	return &typeScriptParser{
		treeSitterParser: newTreeSitterParser(grammar, lang),
	}
}

// Parse extracts functions, classes, imports, and calls from TS/JS source.
func (p *typeScriptParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			p.extractImport(n, source, out)
		case "class_declaration":
			p.extractClass(n, source, out)
		case "function_declaration", "generator_function_declaration":
			p.extractFunction(n, source, out, "")
		case "method_definition":
			p.extractFunction(n, source, out, p.enclosingClassName(n, source))
		case "variable_declarator":
			p.extractArrowFunction(n, source, out)
		case "call_expression":
			p.extractCall(n, source, out)
		case "new_expression":
			p.extractNew(n, source, out)
		}
		return true
	})
	return out, nil
}

// extractImport handles import statements: default, named, and namespace
// clauses all land on one ImportInfo.
func (p *typeScriptParser) extractImport(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	imp := extraction.ImportInfo{Line: lineOf(node)}

	if src := node.ChildByFieldName("source"); src != nil {
		imp.Source = strings.Trim(extractNodeText(src, source), `'"`)
	}

	if clause := findChildByType(node, "import_clause"); clause != nil {
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			child := clause.NamedChild(uint(i))
			switch child.Kind() {
			case "identifier":
				imp.Default = extractNodeText(child, source)
			case "namespace_import":
				// * as ns
				if name := findChildByType(child, "identifier"); name != nil {
					imp.Namespace = extractNodeText(name, source)
				}
			case "named_imports":
				for j := 0; j < int(child.NamedChildCount()); j++ {
					spec := child.NamedChild(uint(j))
					if spec.Kind() != "import_specifier" {
						continue
					}
					// "a as b" binds b locally.
					name := spec.ChildByFieldName("alias")
					if name == nil {
						name = spec.ChildByFieldName("name")
					}
					imp.Named = append(imp.Named, extractNodeText(name, source))
				}
			}
		}
	}

	out.Imports = append(out.Imports, imp)
}

func (p *typeScriptParser) extractClass(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	info := extraction.ClassInfo{
		Name:       extractNodeText(nameNode, source),
		IsExported: p.isExported(node),
		Decorators: p.decoratorsOf(node, source),
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if heritage := findChildByType(node, "class_heritage"); heritage != nil {
		if ext := findChildByType(heritage, "extends_clause"); ext != nil {
			info.Extends = extractNodeText(ext.NamedChild(0), source)
		}
		if impl := findChildByType(heritage, "implements_clause"); impl != nil {
			for i := 0; i < int(impl.NamedChildCount()); i++ {
				info.Implements = append(info.Implements, extractNodeText(impl.NamedChild(uint(i)), source))
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(uint(i))
			if child.Kind() == "method_definition" {
				if name := child.ChildByFieldName("name"); name != nil {
					info.Methods = append(info.Methods, extractNodeText(name, source))
				}
			}
		}
	}

	out.Classes = append(out.Classes, info)
}

// extractFunction handles function declarations and class methods.
func (p *typeScriptParser) extractFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction, className string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)

	exported := p.isExported(node)
	if className != "" {
		// Methods are public unless marked otherwise or conventionally
		// private.
		exported = !p.isPrivateMember(node, source, name)
	}

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: qualify(className, name),
		ClassName:     className,
		IsExported:    exported,
		IsAsync:       hasChildOfType(node, "async"),
		IsConstructor: className != "" && name == "constructor",
		Decorators:    p.decoratorsOf(node, source),
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		info.Parameters = p.extractParameters(params, source)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		info.ReturnType = strings.TrimPrefix(extractNodeText(ret, source), ": ")
	}

	out.Functions = append(out.Functions, info)
}

// extractArrowFunction handles const f = (...) => {...} and function
// expressions bound to a variable.
func (p *typeScriptParser) extractArrowFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	value := node.ChildByFieldName("value")
	if value == nil {
		return
	}
	if kind := value.Kind(); kind != "arrow_function" && kind != "function_expression" {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return
	}
	name := extractNodeText(nameNode, source)

	info := extraction.FunctionInfo{
		Name:          name,
		QualifiedName: name,
		IsExported:    p.isExported(node),
		IsAsync:       hasChildOfType(value, "async"),
		StartLine:     lineOf(node),
		EndLine:       endLineOf(value),
	}
	if params := value.ChildByFieldName("parameters"); params != nil {
		info.Parameters = p.extractParameters(params, source)
	}
	if ret := value.ChildByFieldName("return_type"); ret != nil {
		info.ReturnType = strings.TrimPrefix(extractNodeText(ret, source), ": ")
	}

	out.Functions = append(out.Functions, info)
}

func (p *typeScriptParser) extractParameters(params *sitter.Node, source []byte) []extraction.ParameterInfo {
	var out []extraction.ParameterInfo
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(uint(i))
		param := extraction.ParameterInfo{}
		switch child.Kind() {
		case "required_parameter", "optional_parameter":
			param.Name = extractNodeText(child.ChildByFieldName("pattern"), source)
			if t := child.ChildByFieldName("type"); t != nil {
				param.Type = strings.TrimPrefix(extractNodeText(t, source), ": ")
			}
			param.DefaultValue = extractNodeText(child.ChildByFieldName("value"), source)
		case "identifier":
			param.Name = extractNodeText(child, source)
		default:
			param.Name = extractNodeText(child, source)
		}
		if param.Name != "" {
			out = append(out, param)
		}
	}
	return out
}

func (p *typeScriptParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
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
	case "member_expression":
		call.Receiver = extractNodeText(fn.ChildByFieldName("object"), source)
		call.Callee = extractNodeText(fn.ChildByFieldName("property"), source)
	default:
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	call.Args = args
	call.ArgCount = len(args)
	out.Calls = append(out.Calls, call)
}

// extractNew records "new Foo(...)" as a call to Foo, which resolution maps
// onto Foo's constructor.
func (p *typeScriptParser) extractNew(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	ctor := node.ChildByFieldName("constructor")
	if ctor == nil || ctor.Kind() != "identifier" {
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   extractNodeText(ctor, source),
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// isExported reports whether a declaration sits under an export statement.
func (p *typeScriptParser) isExported(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "export_statement" {
		return true
	}
	// const f = () => {} wraps the declarator in a lexical_declaration.
	if parent.Kind() == "variable_declaration" || parent.Kind() == "lexical_declaration" {
		grand := parent.Parent()
		return grand != nil && grand.Kind() == "export_statement"
	}
	return false
}

// isPrivateMember reports whether a class member is private by modifier or
// by the #name / _name conventions.
func (p *typeScriptParser) isPrivateMember(node *sitter.Node, source []byte, name string) bool {
	if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_") {
		return true
	}
	if mod := findChildByType(node, "accessibility_modifier"); mod != nil {
		switch extractNodeText(mod, source) {
		case "private", "protected":
			return true
		}
	}
	return false
}

// decoratorsOf collects decorators attached to a class or method, without
// the leading "@".
func (p *typeScriptParser) decoratorsOf(node *sitter.Node, source []byte) []string {
	var decorators []string

	collect := func(parent *sitter.Node) {
		for i := 0; i < int(parent.NamedChildCount()); i++ {
			child := parent.NamedChild(uint(i))
			if child.Kind() == "decorator" {
				decorators = append(decorators, strings.TrimPrefix(extractNodeText(child, source), "@"))
			}
		}
	}

	// Method decorators are siblings inside the class body; class decorators
	// are direct children of the declaration or its export wrapper.
	collect(node)
	if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
		collect(parent)
	}
	return decorators
}

func (p *typeScriptParser) enclosingClassName(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "class_declaration", "class")
	if enclosing == nil {
		return ""
	}
	return extractNodeText(enclosing.ChildByFieldName("name"), source)
}
