package parser

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/rjt/pkg/diagnostic"
)

// syntaxError reports the first ERROR or MISSING node below root.
func syntaxError(path string, source []byte, root *ts.Node) error {
	n := firstErrorNode(root)
	if n == nil {
		return diagnostic.NewInvalidSyntaxError(path, source, rangeOf(root, source), "Unexpected token")
	}

	msg := "Unexpected token"
	if n.IsMissing() {
		msg = fmt.Sprintf("Missing %s", n.Kind())
	}
	return diagnostic.NewInvalidSyntaxError(path, source, rangeOf(n, source), msg)
}

func firstErrorNode(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
