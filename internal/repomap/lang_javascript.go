package repomap

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptExtractor extracts function declarations, arrow functions bound
// to a variable (including React function components), classes and methods.
type JavaScriptExtractor struct{ lang *sitter.Language }

func NewJavaScriptExtractor() *JavaScriptExtractor {
	return &JavaScriptExtractor{lang: javascript.GetLanguage()}
}

func (e *JavaScriptExtractor) LanguageName() string { return "javascript" }

func (e *JavaScriptExtractor) ExtractSymbols(source []byte) ([]Symbol, error) {
	tree, err := parseSource(source, e.lang)
	if err != nil {
		return nil, err
	}
	var symbols []Symbol
	e.walk(tree.RootNode(), source, &symbols)
	return symbols, nil
}

func (e *JavaScriptExtractor) walk(node *sitter.Node, source []byte, symbols *[]Symbol) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration":
		if sym, ok := e.extractFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "arrow_function":
		if sym, ok := e.extractArrowFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "class_declaration":
		if sym, ok := e.extractClass(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "method_definition":
		if sym, ok := e.extractMethod(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, symbols)
	}
}

func (e *JavaScriptExtractor) extractFunction(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "identifier")
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

func (e *JavaScriptExtractor) buildFunctionSignature(node *sitter.Node, source []byte, name string) string {
	var parts []string
	if e.hasExportModifier(node) {
		parts = append(parts, "export")
	}
	if hasChildText(node, "async", source) {
		parts = append(parts, "async")
	}
	parts = append(parts, "function", name)
	if params := findChildByKind(node, "formal_parameters"); params != nil {
		parts = append(parts, nodeText(params, source))
	}
	return strings.Join(parts, " ") + " { ... }"
}

func (e *JavaScriptExtractor) extractArrowFunction(node *sitter.Node, source []byte) (Symbol, bool) {
	declarator := node.Parent()
	if declarator == nil {
		return Symbol{}, false
	}
	nameNode := findChildByKind(declarator, "identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var parts []string
	if decl := declarator.Parent(); decl != nil &&
		(decl.Type() == "lexical_declaration" || decl.Type() == "variable_declaration") {
		for i := 0; i < int(decl.ChildCount()); i++ {
			text := nodeText(decl.Child(i), source)
			if text == "const" || text == "let" || text == "var" {
				parts = append(parts, text)
				break
			}
		}
	}

	parts = append(parts, name, "=")
	if hasChildText(node, "async", source) {
		parts = append(parts, "async")
	}
	if params := findChildByKind(node, "formal_parameters"); params != nil {
		parts = append(parts, nodeText(params, source))
	}
	parts = append(parts, "=>", "{ ... }")

	return Symbol{
		Kind:      SymbolFunction,
		Name:      name,
		Signature: strings.Join(parts, " ") + ";",
		LineStart: lineStart(node),
		LineEnd:   lineEnd(node),
	}, true
}

func (e *JavaScriptExtractor) extractClass(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var sig strings.Builder
	if e.hasExportModifier(node) {
		sig.WriteString("export ")
	}
	sig.WriteString("class ")
	sig.WriteString(name)
	if heritage := findChildByKind(node, "class_heritage"); heritage != nil {
		sig.WriteString(" ")
		sig.WriteString(strings.TrimSpace(nodeText(heritage, source)))
	}
	sig.WriteString(" { ... }")

	return Symbol{Kind: SymbolStruct, Name: name, Signature: sig.String(), LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *JavaScriptExtractor) extractMethod(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "property_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var parts []string
	if hasChildText(node, "static", source) {
		parts = append(parts, "static")
	}
	if hasChildText(node, "async", source) {
		parts = append(parts, "async")
	}
	parts = append(parts, name)
	if params := findChildByKind(node, "formal_parameters"); params != nil {
		parts = append(parts, nodeText(params, source))
	}

	return Symbol{
		Kind:      SymbolFunction,
		Name:      name,
		Signature: strings.Join(parts, " ") + " { ... }",
		LineStart: lineStart(node),
		LineEnd:   lineEnd(node),
	}, true
}

func (e *JavaScriptExtractor) hasExportModifier(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Type() == "export_statement"
}
