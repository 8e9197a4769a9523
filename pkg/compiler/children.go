package compiler

import (
	"regexp"
	"strings"

	"github.com/gnana997/rjt/pkg/ast"
)

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// buildChildren returns the child expressions of an element. Text is
// collapsed, empty containers are dropped and containers are unwrapped.
func buildChildren(children []ast.Expr) []ast.Expr {
	var out []ast.Expr
	for _, child := range children {
		switch d := child.Data.(type) {
		case *ast.EJSXText:
			if text := collapseText(d.Text); text != "" {
				out = append(out, ast.Expr{Data: &ast.EString{Value: text}})
			}
		case *ast.EJSXContainer:
			if !d.Value.IsMissing() {
				out = append(out, d.Value)
			}
		default:
			out = append(out, child)
		}
	}
	return out
}

// collapseText applies the JSX whitespace rule to a text child: lines are
// trimmed where they meet a line break, whitespace-only lines are dropped and
// the remaining lines are joined with one space.
func collapseText(text string) string {
	lines := lineBreak.Split(text, -1)

	lastNonEmpty := 0
	for i, line := range lines {
		if strings.Trim(line, " \t") != "" {
			lastNonEmpty = i
		}
	}

	var b strings.Builder
	for i, line := range lines {
		trimmed := strings.ReplaceAll(line, "\t", " ")
		if i > 0 {
			trimmed = strings.TrimLeft(trimmed, " ")
		}
		if i < len(lines)-1 {
			trimmed = strings.TrimRight(trimmed, " ")
		}
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		if i != lastNonEmpty {
			b.WriteString(" ")
		}
	}
	return b.String()
}
