package repomap

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// parseSource runs a tree-sitter parse of source under lang and returns its
// root node together with the tree, which the caller must keep alive for as
// long as it dereferences nodes from it.
func parseSource(source []byte, lang *sitter.Language) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return parser.ParseCtx(context.Background(), nil, source)
}

// nodeText returns the verbatim source text spanned by node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(source)
}

// findChildByKind returns the first direct child of node whose type equals
// kind, walking every child (named and anonymous) the way the Rust
// original's node.children() cursor does.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == kind {
			return child
		}
	}
	return nil
}

// hasChildOfKind reports whether node has any direct child of type kind.
func hasChildOfKind(node *sitter.Node, kind string) bool {
	return findChildByKind(node, kind) != nil
}

// hasChildText reports whether node has a direct child whose verbatim text
// equals text, used to detect bare keyword tokens like "async" or "static"
// that tree-sitter represents as anonymous leaf nodes.
func hasChildText(node *sitter.Node, text string, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && nodeText(child, source) == text {
			return true
		}
	}
	return false
}

func lineStart(node *sitter.Node) int { return int(node.StartPoint().Row) + 1 }
func lineEnd(node *sitter.Node) int   { return int(node.EndPoint().Row) + 1 }
