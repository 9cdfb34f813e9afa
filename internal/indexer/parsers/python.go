package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// pythonParser parses Python files.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *pythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &pythonParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangPython),
	}
}

// Parse extracts functions, classes, imports, and calls from Python source.
func (p *pythonParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			p.extractImport(n, source, out)
		case "class_definition":
			p.extractClass(n, source, out)
		case "function_definition":
			p.extractFunction(n, source, out)
		case "call":
			p.extractCall(n, source, out)
		}
		return true
	})
	return out, nil
}

// extractImport handles both "import x" and "from x import a, b" forms.
func (p *pythonParser) extractImport(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	imp := extraction.ImportInfo{Line: lineOf(node)}

	if node.Kind() == "import_statement" {
		// import a.b.c [as alias]; one ImportInfo per module.
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(uint(i))
			switch child.Kind() {
			case "dotted_name":
				out.Imports = append(out.Imports, extraction.ImportInfo{
					Source: extractNodeText(child, source),
					Line:   lineOf(node),
				})
			case "aliased_import":
				mod := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				out.Imports = append(out.Imports, extraction.ImportInfo{
					Source:    extractNodeText(mod, source),
					Namespace: extractNodeText(alias, source),
					Line:      lineOf(node),
				})
			}
		}
		return
	}

	// from x import a, b as c
	if mod := node.ChildByFieldName("module_name"); mod != nil {
		imp.Source = extractNodeText(mod, source)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		switch child.Kind() {
		case "dotted_name":
			name := extractNodeText(child, source)
			if name != imp.Source {
				imp.Named = append(imp.Named, name)
			}
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				imp.Named = append(imp.Named, extractNodeText(alias, source))
			}
		case "wildcard_import":
			imp.Namespace = "*"
		}
	}
	out.Imports = append(out.Imports, imp)
}

func (p *pythonParser) extractClass(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)

	info := extraction.ClassInfo{
		Name:       name,
		IsExported: !strings.HasPrefix(name, "_"),
		Decorators: p.decoratorsOf(node, source),
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			base := extractNodeText(supers.NamedChild(uint(i)), source)
			if info.Extends == "" {
				info.Extends = base
			} else {
				info.Implements = append(info.Implements, base)
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(uint(i))
			if child.Kind() == "decorated_definition" {
				child = child.ChildByFieldName("definition")
			}
			if child != nil && child.Kind() == "function_definition" {
				if methodName := child.ChildByFieldName("name"); methodName != nil {
					info.Methods = append(info.Methods, extractNodeText(methodName, source))
				}
			}
		}
	}

	out.Classes = append(out.Classes, info)
}

func (p *pythonParser) extractFunction(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
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
		IsExported:    !strings.HasPrefix(name, "_") || name == "__init__",
		IsAsync:       hasChildOfType(node, "async"),
		IsConstructor: name == "__init__",
		Decorators:    p.decoratorsOf(node, source),
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		info.Parameters = p.extractParameters(params, source)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		info.ReturnType = extractNodeText(ret, source)
	}

	out.Functions = append(out.Functions, info)
}

func (p *pythonParser) extractParameters(params *sitter.Node, source []byte) []extraction.ParameterInfo {
	var out []extraction.ParameterInfo
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(uint(i))
		param := extraction.ParameterInfo{}
		switch child.Kind() {
		case "identifier":
			param.Name = extractNodeText(child, source)
		case "typed_parameter":
			param.Name = extractNodeText(child.NamedChild(0), source)
			param.Type = extractNodeText(child.ChildByFieldName("type"), source)
		case "default_parameter", "typed_default_parameter":
			param.Name = extractNodeText(child.ChildByFieldName("name"), source)
			param.Type = extractNodeText(child.ChildByFieldName("type"), source)
			param.DefaultValue = extractNodeText(child.ChildByFieldName("value"), source)
		default:
			// *args, **kwargs, positional/keyword separators
			param.Name = extractNodeText(child, source)
		}
		if param.Name == "self" || param.Name == "cls" {
			continue
		}
		if param.Name != "" {
			out = append(out, param)
		}
	}
	return out
}

func (p *pythonParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
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
	case "attribute":
		call.Receiver = extractNodeText(fn.ChildByFieldName("object"), source)
		call.Callee = extractNodeText(fn.ChildByFieldName("attribute"), source)
	default:
		// Calls on arbitrary expressions (subscripts, call chains) carry no
		// resolvable name.
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	call.Args = args
	call.ArgCount = len(args)
	out.Calls = append(out.Calls, call)
}

// decoratorsOf collects the decorators of a definition wrapped in a
// decorated_definition node, without the leading "@".
func (p *pythonParser) decoratorsOf(node *sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}

	var decorators []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(uint(i))
		if child.Kind() == "decorator" {
			decorators = append(decorators, strings.TrimPrefix(extractNodeText(child, source), "@"))
		}
	}
	return decorators
}

// enclosingClassName returns the name of the nearest enclosing class, or "".
// A method of a nested function is not attributed to the outer class.
func (p *pythonParser) enclosingClassName(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "class_definition", "function_definition")
	if enclosing == nil || enclosing.Kind() != "class_definition" {
		return ""
	}
	return extractNodeText(enclosing.ChildByFieldName("name"), source)
}

// qualify joins a class name and member name into a qualified name.
func qualify(className, name string) string {
	if className == "" {
		return name
	}
	return className + "." + name
}
