package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/mvp-joe/drift/internal/extraction"
)

// javaParser parses Java files.
type javaParser struct {
	*treeSitterParser
}

// NewJavaParser creates a new Java parser.
func NewJavaParser() *javaParser {
	lang := sitter.NewLanguage(java.Language())
	return &javaParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LangJava),
	}
}

// Parse extracts methods, classes, imports, and calls from Java source.
func (p *javaParser) Parse(ctx context.Context, filePath string, source []byte) (*extraction.FileExtraction, error) {
	tree, err := p.parseTree(ctx, filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := newFileExtraction(filePath, p.lang)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_declaration":
			p.extractImport(n, source, out)
		case "class_declaration", "interface_declaration":
			p.extractClass(n, source, out)
		case "method_declaration":
			p.extractMethod(n, source, out, false)
		case "constructor_declaration":
			p.extractMethod(n, source, out, true)
		case "method_invocation":
			p.extractCall(n, source, out)
		case "object_creation_expression":
			p.extractNew(n, source, out)
		}
		return true
	})
	return out, nil
}

func (p *javaParser) extractImport(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	scoped := findChildByType(node, "scoped_identifier")
	if scoped == nil {
		return
	}

	full := extractNodeText(scoped, source)
	imp := extraction.ImportInfo{Source: full, Line: lineOf(node)}

	// import a.b.C binds C; import a.b.* binds the package.
	if hasChildOfType(node, "asterisk") {
		imp.Namespace = "*"
	} else if idx := strings.LastIndex(full, "."); idx >= 0 {
		imp.Source = full[:idx]
		imp.Named = []string{full[idx+1:]}
	}

	out.Imports = append(out.Imports, imp)
}

func (p *javaParser) extractClass(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	info := extraction.ClassInfo{
		Name:       extractNodeText(nameNode, source),
		IsExported: p.hasModifier(node, source, "public"),
		Decorators: p.annotationsOf(node, source),
		StartLine:  lineOf(node),
		EndLine:    endLineOf(node),
	}

	if super := node.ChildByFieldName("superclass"); super != nil {
		info.Extends = strings.TrimSpace(strings.TrimPrefix(extractNodeText(super, source), "extends"))
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		if list := findChildByType(ifaces, "type_list"); list != nil {
			for i := 0; i < int(list.NamedChildCount()); i++ {
				info.Implements = append(info.Implements, extractNodeText(list.NamedChild(uint(i)), source))
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(uint(i))
			kind := child.Kind()
			if kind == "method_declaration" || kind == "constructor_declaration" {
				if name := child.ChildByFieldName("name"); name != nil {
					info.Methods = append(info.Methods, extractNodeText(name, source))
				}
			}
		}
	}

	out.Classes = append(out.Classes, info)
}

func (p *javaParser) extractMethod(node *sitter.Node, source []byte, out *extraction.FileExtraction, isConstructor bool) {
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
		IsExported:    p.hasModifier(node, source, "public"),
		IsConstructor: isConstructor,
		Decorators:    p.annotationsOf(node, source),
		StartLine:     lineOf(node),
		EndLine:       endLineOf(node),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(uint(i))
			if param.Kind() != "formal_parameter" && param.Kind() != "spread_parameter" {
				continue
			}
			info.Parameters = append(info.Parameters, extraction.ParameterInfo{
				Name: extractNodeText(param.ChildByFieldName("name"), source),
				Type: extractNodeText(param.ChildByFieldName("type"), source),
			})
		}
	}
	if ret := node.ChildByFieldName("type"); ret != nil {
		info.ReturnType = extractNodeText(ret, source)
	}

	out.Functions = append(out.Functions, info)
}

func (p *javaParser) extractCall(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	call := extraction.Call{
		Callee: extractNodeText(nameNode, source),
		Line:   lineOf(node),
		Column: columnOf(node),
	}
	if obj := node.ChildByFieldName("object"); obj != nil {
		call.Receiver = extractNodeText(obj, source)
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	call.Args = args
	call.ArgCount = len(args)
	out.Calls = append(out.Calls, call)
}

// extractNew records "new Foo(...)" as a call to Foo for constructor
// resolution.
func (p *javaParser) extractNew(node *sitter.Node, source []byte, out *extraction.FileExtraction) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}

	args := argumentsOf(node.ChildByFieldName("arguments"), source)
	out.Calls = append(out.Calls, extraction.Call{
		Callee:   extractNodeText(typeNode, source),
		Args:     args,
		ArgCount: len(args),
		Line:     lineOf(node),
		Column:   columnOf(node),
	})
}

// hasModifier reports whether a declaration carries the given modifier
// keyword.
func (p *javaParser) hasModifier(node *sitter.Node, source []byte, modifier string) bool {
	mods := findChildByType(node, "modifiers")
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if extractNodeText(mods.Child(uint(i)), source) == modifier {
			return true
		}
	}
	return false
}

// annotationsOf collects annotations from a declaration's modifiers, without
// the leading "@".
func (p *javaParser) annotationsOf(node *sitter.Node, source []byte) []string {
	mods := findChildByType(node, "modifiers")
	if mods == nil {
		return nil
	}

	var annotations []string
	for i := 0; i < int(mods.ChildCount()); i++ {
		child := mods.Child(uint(i))
		kind := child.Kind()
		if kind == "marker_annotation" || kind == "annotation" {
			annotations = append(annotations, strings.TrimPrefix(extractNodeText(child, source), "@"))
		}
	}
	return annotations
}

func (p *javaParser) enclosingClassName(node *sitter.Node, source []byte) string {
	enclosing := enclosingOfKind(node, "class_declaration", "interface_declaration", "enum_declaration")
	if enclosing == nil {
		return ""
	}
	return extractNodeText(enclosing.ChildByFieldName("name"), source)
}
