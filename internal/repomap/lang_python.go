package repomap

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor extracts function/method and class skeletons, including
// decorators and async markers, from Python source.
type PythonExtractor struct{ lang *sitter.Language }

func NewPythonExtractor() *PythonExtractor { return &PythonExtractor{lang: python.GetLanguage()} }

func (e *PythonExtractor) LanguageName() string { return "python" }

func (e *PythonExtractor) ExtractSymbols(source []byte) ([]Symbol, error) {
	tree, err := parseSource(source, e.lang)
	if err != nil {
		return nil, err
	}
	var symbols []Symbol
	e.walk(tree.RootNode(), source, &symbols)
	return symbols, nil
}

func (e *PythonExtractor) walk(node *sitter.Node, source []byte, symbols *[]Symbol) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_definition":
		if sym, ok := e.extractFunction(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	case "class_definition":
		if sym, ok := e.extractClass(node, source); ok {
			*symbols = append(*symbols, sym)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, symbols)
	}
}

func (e *PythonExtractor) extractFunction(node *sitter.Node, source []byte) (Symbol, bool) {
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

func (e *PythonExtractor) buildFunctionSignature(node *sitter.Node, source []byte, name string) string {
	var parts []string
	for _, d := range e.decorators(node, source) {
		parts = append(parts, "@"+d)
	}
	if hasChildOfKind(node, "async") || hasChildText(node, "async", source) {
		parts = append(parts, "async")
	}

	def := "def " + name
	if params := findChildByKind(node, "parameters"); params != nil {
		def += nodeText(params, source)
	}
	if ret := findChildByKind(node, "type"); ret != nil {
		def += " -> " + strings.TrimSpace(nodeText(ret, source))
	}
	def += ":"
	parts = append(parts, def)

	return strings.Join(parts, "\n")
}

func (e *PythonExtractor) extractClass(node *sitter.Node, source []byte) (Symbol, bool) {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return Symbol{}, false
	}
	name := nodeText(nameNode, source)

	var sig strings.Builder
	for _, d := range e.decorators(node, source) {
		sig.WriteString("@" + d + "\n")
	}
	sig.WriteString("class ")
	sig.WriteString(name)
	if args := findChildByKind(node, "argument_list"); args != nil {
		sig.WriteString(nodeText(args, source))
	}
	sig.WriteString(":")

	return Symbol{
		Kind:      SymbolStruct,
		Name:      name,
		Signature: sig.String(),
		LineStart: lineStart(node),
		LineEnd:   lineEnd(node),
	}, true
}

// decorators collects the decorator siblings immediately preceding node
// inside its parent (decorated_definition), stripping the leading '@'.
func (e *PythonExtractor) decorators(node *sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == node.Type() && child.StartByte() == node.StartByte() {
			break
		}
		if child.Type() == "decorator" {
			text := strings.TrimSpace(nodeText(child, source))
			text = strings.TrimPrefix(text, "@")
			out = append(out, strings.TrimSpace(text))
		}
	}
	return out
}
