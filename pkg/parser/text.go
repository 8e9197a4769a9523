package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/rjt/pkg/ast"
)

func rangeOf(n *ts.Node, src []byte) ast.Range {
	return ast.Range{
		Start: locOf(n.StartPosition(), n.StartByte(), src),
		End:   locOf(n.EndPosition(), n.EndByte(), src),
	}
}

// locOf converts a tree-sitter point, whose column counts bytes, into a loc
// whose column counts characters.
func locOf(p ts.Point, offset uint, src []byte) ast.Loc {
	column := int(p.Column)
	if lineStart := int(offset) - column; lineStart >= 0 && int(offset) <= len(src) {
		column = utf8.RuneCount(src[lineStart:offset])
	}
	return ast.Loc{Line: int(p.Row) + 1, Column: column + 1}
}

func isComment(n *ts.Node) bool {
	k := n.Kind()
	return k == "comment" || k == "html_comment"
}

// namedChildren returns the named children of n without comments.
func namedChildren(n *ts.Node) []*ts.Node {
	var out []*ts.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || isComment(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// hasToken reports whether an anonymous child token of n has the given text.
func hasToken(n *ts.Node, token string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}

// patternNames returns the identifiers a binding pattern declares.
func patternNames(n *ts.Node, src []byte) []string {
	var names []string
	var visit func(p *ts.Node)
	visit = func(p *ts.Node) {
		if p == nil {
			return
		}
		switch p.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			names = append(names, p.Utf8Text(src))
		case "pair_pattern":
			visit(p.ChildByFieldName("value"))
		case "assignment_pattern", "object_assignment_pattern":
			visit(p.ChildByFieldName("left"))
		case "required_parameter", "optional_parameter":
			visit(p.ChildByFieldName("pattern"))
		case "object_pattern", "array_pattern", "rest_pattern", "formal_parameters":
			for _, c := range namedChildren(p) {
				visit(c)
			}
		}
	}
	visit(n)
	return names
}

// identifiers returns the text of every identifier node below n.
func identifiers(n *ts.Node, src []byte) []string {
	var out []string
	var visit func(p *ts.Node)
	visit = func(p *ts.Node) {
		if p.Kind() == "identifier" {
			out = append(out, p.Utf8Text(src))
			return
		}
		for i := uint(0); i < p.ChildCount(); i++ {
			visit(p.Child(i))
		}
	}
	visit(n)
	return out
}

// typeText strips the leading colon of a type annotation.
func typeText(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(n.Utf8Text(src), ":"))
}

// unquote decodes a JavaScript string literal including its quotes.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation
		case 'x':
			if r, ok := hexRune(body, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
			} else {
				b.WriteByte('x')
			}
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end > 0 {
					if r, ok := hexRune(body, i+2, end-2); ok {
						b.WriteRune(r)
						i += end
						continue
					}
				}
				b.WriteByte('u')
			} else if r, ok := hexRune(body, i+1, 4); ok {
				b.WriteRune(r)
				i += 4
			} else {
				b.WriteByte('u')
			}
		default:
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	return b.String()
}

func hexRune(s string, at, n int) (rune, bool) {
	if n <= 0 || at+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[at:at+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
