package repomap

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor extracts function, method, struct, interface and type-alias
// skeletons from Go source.
type GoExtractor struct{ lang *sitter.Language }

func NewGoExtractor() *GoExtractor { return &GoExtractor{lang: golang.GetLanguage()} }

func (e *GoExtractor) LanguageName() string { return "go" }

func (e *GoExtractor) ExtractSymbols(source []byte) ([]Symbol, error) {
	tree, err := parseSource(source, e.lang)
	if err != nil {
		return nil, err
	}
	var symbols []Symbol
	e.walk(tree.RootNode(), source, &symbols)
	return symbols, nil
}

func (e *GoExtractor) walk(node *sitter.Node, source []byte, symbols *[]Symbol) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration", "method_declaration":
		if sym, ok := e.extractFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "type_declaration":
		if sym, ok := e.extractTypeDeclaration(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, symbols)
	}
}

func (e *GoExtractor) extractFunction(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	return Symbol{
		Kind:      SymbolFunction,
		Name:      name,
		Signature: e.buildFunctionSignature(node, source, name),
		LineStart: lineStart(node),
		LineEnd:   lineEnd(node),
	}, true
}

// buildFunctionSignature assembles "func (recv) Name(params) result;",
// omitting the receiver parameter list for plain functions.
func (e *GoExtractor) buildFunctionSignature(node *sitter.Node, source []byte, name string) string {
	var parts []string
	parts = append(parts, "func")

	var paramLists []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && child.Type() == "parameter_list" {
			paramLists = append(paramLists, child)
		}
	}
	if len(paramLists) >= 2 {
		parts = append(parts, nodeText(paramLists[0], source))
	}

	parts = append(parts, name)
	if len(paramLists) > 0 {
		parts = append(parts, nodeText(paramLists[len(paramLists)-1], source))
	}

	if result := e.findResultType(node, source); result != "" {
		parts = append(parts, result)
	}

	return strings.Join(parts, " ") + ";"
}

func (e *GoExtractor) findResultType(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "type_identifier", "pointer_type", "slice_type", "array_type", "qualified_type":
			return nodeText(child, source)
		}
	}
	return ""
}

func (e *GoExtractor) extractTypeDeclaration(node *sitter.Node, source []byte) (Symbol, bool) {
	typeSpec := node
	if node.Type() != "type_spec" {
		if ts := findTypeSpec(node); ts != nil {
			typeSpec = ts
		} else {
			return Symbol{}, false
		}
	}
	nameNode := findChildByKind(typeSpec, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	switch {
	case hasChildOfKind(typeSpec, "struct_type"):
		return Symbol{Kind: SymbolStruct, Name: name, Signature: "type " + name + " struct { ... }",
			LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
	case hasChildOfKind(typeSpec, "interface_type"):
		return Symbol{Kind: SymbolTrait, Name: name, Signature: "type " + name + " interface { ... }",
			LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
	default:
		return Symbol{Kind: SymbolType, Name: name, Signature: "type " + name + " = ...",
			LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
	}
}

func findTypeSpec(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && (child.Type() == "type_spec" || child.Type() == "type_alias") {
			return child
		}
	}
	return nil
}
