package repomap

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// RustExtractor extracts functions, structs, enums, traits and impl blocks
// from Rust source.
type RustExtractor struct{ lang *sitter.Language }

func NewRustExtractor() *RustExtractor { return &RustExtractor{lang: rust.GetLanguage()} }

func (e *RustExtractor) LanguageName() string { return "rust" }

func (e *RustExtractor) ExtractSymbols(source []byte) ([]Symbol, error) {
	tree, err := parseSource(source, e.lang)
	if err != nil {
		return nil, err
	}
	var symbols []Symbol
	e.walk(tree.RootNode(), source, &symbols)
	return symbols, nil
}

func (e *RustExtractor) walk(node *sitter.Node, source []byte, symbols *[]Symbol) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_item":
		if sym, ok := e.extractFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "struct_item":
		if sym, ok := e.extractStruct(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "enum_item":
		if sym, ok := e.extractEnum(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "trait_item":
		if sym, ok := e.extractTrait(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "impl_item":
		if sym, ok := e.extractImpl(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, symbols)
	}
}

func (e *RustExtractor) visibility(node *sitter.Node, source []byte) string {
	if vis := findChildByKind(node, "visibility_modifier"); vis != nil {
		return nodeText(vis, source)
	}
	return ""
}

func (e *RustExtractor) extractFunction(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	return Symbol{
		Kind:      SymbolFunction,
		Name:      name,
		Signature: e.buildFunctionSignature(node, source),
		LineStart: lineStart(node),
		LineEnd:   lineEnd(node),
	}, true
}

func (e *RustExtractor) buildFunctionSignature(node *sitter.Node, source []byte) string {
	var parts []string
	if vis := e.visibility(node, source); vis != "" {
		parts = append(parts, vis)
	}
	for _, modifier := range []string{"async", "const", "unsafe"} {
		if hasChildText(node, modifier, source) {
			parts = append(parts, modifier)
		}
	}
	if nameNode := findChildByKind(node, "identifier"); nameNode != nil {
		parts = append(parts, "fn "+nodeText(nameNode, source))
	}
	if generics := findChildByKind(node, "type_parameters"); generics != nil {
		parts = append(parts, nodeText(generics, source))
	}
	if params := findChildByKind(node, "parameters"); params != nil {
		parts = append(parts, nodeText(params, source))
	}
	if ret := findChildByKind(node, "return_type"); ret != nil {
		parts = append(parts, nodeText(ret, source))
	}
	if where := findChildByKind(node, "where_clause"); where != nil {
		parts = append(parts, nodeText(where, source))
	}
	return strings.Join(parts, " ") + ";"
}

func (e *RustExtractor) extractStruct(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var sig strings.Builder
	if vis := e.visibility(node, source); vis != "" {
		sig.WriteString(vis)
		sig.WriteString(" ")
	}
	sig.WriteString("struct ")
	sig.WriteString(name)
	if generics := findChildByKind(node, "type_parameters"); generics != nil {
		sig.WriteString(nodeText(generics, source))
	}
	if where := findChildByKind(node, "where_clause"); where != nil {
		sig.WriteString(" ")
		sig.WriteString(nodeText(where, source))
	}

	switch {
	case hasChildOfKind(node, "field_declaration_list"):
		sig.WriteString(" { ... }")
	case hasChildOfKind(node, "ordered_field_declaration_list"):
		sig.WriteString(" ( ... )")
	default:
		sig.WriteString(";")
	}

	return Symbol{Kind: SymbolStruct, Name: name, Signature: sig.String(), LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *RustExtractor) extractEnum(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var sig strings.Builder
	if vis := e.visibility(node, source); vis != "" {
		sig.WriteString(vis)
		sig.WriteString(" ")
	}
	sig.WriteString("enum ")
	sig.WriteString(name)
	if generics := findChildByKind(node, "type_parameters"); generics != nil {
		sig.WriteString(nodeText(generics, source))
	}
	sig.WriteString(" { ... }")

	return Symbol{Kind: SymbolEnum, Name: name, Signature: sig.String(), LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *RustExtractor) extractTrait(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var sig strings.Builder
	if vis := e.visibility(node, source); vis != "" {
		sig.WriteString(vis)
		sig.WriteString(" ")
	}
	if hasChildText(node, "unsafe", source) {
		sig.WriteString("unsafe ")
	}
	sig.WriteString("trait ")
	sig.WriteString(name)
	if generics := findChildByKind(node, "type_parameters"); generics != nil {
		sig.WriteString(nodeText(generics, source))
	}
	sig.WriteString(" { ... }")

	return Symbol{Kind: SymbolTrait, Name: name, Signature: sig.String(), LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *RustExtractor) extractImpl(node *sitter.Node, source []byte) (Symbol, bool) {
	typeNode := findChildByKind(node, "type_identifier")
	if typeNode == nil {
		typeNode = findChildByKind(node, "generic_type")
	}
	if typeNode == nil {
		return Symbol{}, false
	}
	typeName := nodeText(typeNode, source)

	var sig strings.Builder
	if hasChildText(node, "unsafe", source) {
		sig.WriteString("unsafe ")
	}
	sig.WriteString("impl")
	if generics := findChildByKind(node, "type_parameters"); generics != nil {
		sig.WriteString(" ")
		sig.WriteString(nodeText(generics, source))
	}
	sig.WriteString(" ")
	if traitNode := findChildByKind(node, "trait"); traitNode != nil {
		sig.WriteString(nodeText(traitNode, source))
		sig.WriteString(" for ")
	}
	sig.WriteString(typeName)
	sig.WriteString(" { ... }")

	return Symbol{Kind: SymbolImpl, Name: typeName, Signature: sig.String(), LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}
