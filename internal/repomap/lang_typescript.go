package repomap

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptExtractor extracts the same declarations as JavaScriptExtractor
// plus TypeScript's own interface, type-alias and enum declarations. It
// parses .ts and .tsx alike using the plain TypeScript grammar, which is
// lenient enough for the JSX subset repo maps need (skeleton extraction, not
// a full JSX-aware AST consumer).
type TypeScriptExtractor struct {
	lang *sitter.Language
	js   *JavaScriptExtractor
}

func NewTypeScriptExtractor() *TypeScriptExtractor {
	return &TypeScriptExtractor{lang: typescript.GetLanguage(), js: &JavaScriptExtractor{}}
}

func (e *TypeScriptExtractor) LanguageName() string { return "typescript" }

func (e *TypeScriptExtractor) ExtractSymbols(source []byte) ([]Symbol, error) {
	tree, err := parseSource(source, e.lang)
	if err != nil {
		return nil, err
	}
	var symbols []Symbol
	e.walk(tree.RootNode(), source, &symbols)
	return symbols, nil
}

func (e *TypeScriptExtractor) walk(node *sitter.Node, source []byte, symbols *[]Symbol) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration":
		if sym, ok := e.js.extractFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "arrow_function":
		if sym, ok := e.js.extractArrowFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "class_declaration":
		if sym, ok := e.js.extractClass(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "method_definition":
		if sym, ok := e.js.extractMethod(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "interface_declaration":
		if sym, ok := e.extractInterface(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "type_alias_declaration":
		if sym, ok := e.extractTypeAlias(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "enum_declaration":
		if sym, ok := e.extractEnum(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, symbols)
	}
}

func (e *TypeScriptExtractor) extractInterface(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	sig := "interface " + name
	if e.js.hasExportModifier(node) {
		sig = "export " + sig
	}
	sig += " { ... }"
	return Symbol{Kind: SymbolTrait, Name: name, Signature: sig, LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *TypeScriptExtractor) extractTypeAlias(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	sig := "type " + name + " = ..."
	if e.js.hasExportModifier(node) {
		sig = "export " + sig
	}
	return Symbol{Kind: SymbolType, Name: name, Signature: sig, LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}

func (e *TypeScriptExtractor) extractEnum(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)
	sig := "enum " + name + " { ... }"
	if e.js.hasExportModifier(node) {
		sig = "export " + sig
	}
	return Symbol{Kind: SymbolEnum, Name: name, Signature: sig, LineStart: lineStart(node), LineEnd: lineEnd(node)}, true
}
