// Package validator enforces the structural rules of a template file.
package validator

import (
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/diagnostic"
)

// Validate checks, in order, that the last top-level statement is a bare
// JSX element or fragment and that the file exports nothing.
//
// Violations are reported as *diagnostic.InvalidSyntaxError located at the
// offending statement.
func Validate(tree *ast.AST) error {
	if len(tree.Stmts) == 0 {
		return diagnostic.NewInvalidSyntaxError(tree.Path, tree.Source, ast.Range{}, "")
	}

	last := tree.Stmts[len(tree.Stmts)-1]
	if !IsMarkupStatement(last) {
		return diagnostic.NewInvalidSyntaxError(tree.Path, tree.Source, last.Range, "")
	}

	for _, s := range tree.Stmts {
		if ast.IsExport(s) {
			return diagnostic.NewInvalidSyntaxError(tree.Path, tree.Source, s.Range, "")
		}
	}
	return nil
}

// IsMarkupStatement reports whether s is an expression statement holding a
// single JSX element or fragment.
func IsMarkupStatement(s ast.Stmt) bool {
	expr, ok := s.Data.(*ast.SExpr)
	if !ok {
		return false
	}
	_, ok = ast.Unparen(expr.Value).Data.(*ast.EJSXElement)
	return ok
}
