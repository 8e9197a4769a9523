package parser

import (
	"html"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/rjt/pkg/ast"
)

// jsx lowers elements, self-closing elements and fragments.
//
// Text children are taken from the source gaps between non-text children,
// not from jsx_text tokens: the grammar strips surrounding whitespace from
// those, and whitespace matters for the JSX text collapsing rule.
func (l *lowerer) jsx(n *ts.Node) ast.Expr {
	el := &ast.EJSXElement{}
	r := rangeOf(n, l.src)

	switch n.Kind() {
	case "jsx_self_closing_element":
		l.jsxOpening(n, el)

	case "jsx_element":
		open := n.ChildByFieldName("open_tag")
		closing := n.ChildByFieldName("close_tag")
		for _, c := range namedChildren(n) {
			switch c.Kind() {
			case "jsx_opening_element":
				if open == nil {
					open = c
				}
			case "jsx_closing_element":
				if closing == nil {
					closing = c
				}
			}
		}
		if open == nil {
			break
		}
		l.jsxOpening(open, el)
		end := n.EndByte()
		if closing != nil {
			end = closing.StartByte()
		}
		el.Children = l.jsxChildren(n, open.EndByte(), end)

	case "jsx_fragment":
		start, end := n.StartByte(), n.EndByte()
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			if c := n.Child(i); !c.IsNamed() && c.Kind() == ">" {
				start = c.EndByte()
				break
			}
		}
		for i := count; i > 0; i-- {
			c := n.Child(i - 1)
			if !c.IsNamed() && (c.Kind() == "<" || c.Kind() == "</") {
				end = c.StartByte()
				break
			}
		}
		el.Children = l.jsxChildren(n, start, end)
	}

	return ast.Expr{Range: r, Data: el}
}

// jsxOpening fills the tag and attributes. A missing name means a fragment.
func (l *lowerer) jsxOpening(n *ts.Node, el *ast.EJSXElement) {
	if name := n.ChildByFieldName("name"); name != nil {
		el.Tag = l.jsxTag(name)
		el.TagRange = rangeOf(name, l.src)
	}

	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "jsx_attribute":
			el.Attrs = append(el.Attrs, l.jsxAttribute(c))
		case "jsx_expression":
			inner := namedChildren(c)
			if len(inner) == 1 && inner[0].Kind() == "spread_element" {
				attr := ast.JSXAttr{Range: rangeOf(c, l.src), Spread: true}
				if arg := namedChildren(inner[0]); len(arg) == 1 {
					attr.Value = l.expr(arg[0])
				}
				el.Attrs = append(el.Attrs, attr)
			}
		}
	}
}

func (l *lowerer) jsxTag(n *ts.Node) ast.Expr {
	r := rangeOf(n, l.src)
	switch n.Kind() {
	case "identifier", "jsx_identifier":
		return ast.Expr{Range: r, Data: &ast.EIdentifier{Name: l.text(n)}}

	case "member_expression", "nested_identifier":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if parts := namedChildren(n); (obj == nil || prop == nil) && len(parts) >= 2 {
			obj, prop = parts[0], parts[len(parts)-1]
		}
		if obj != nil && prop != nil {
			return ast.Expr{Range: r, Data: &ast.EDot{Target: l.jsxTag(obj), Name: l.text(prop)}}
		}
	}

	return ast.Expr{Range: r, Data: &ast.ERaw{Parts: []ast.RawPart{{Text: l.text(n)}}}}
}

func (l *lowerer) jsxAttribute(n *ts.Node) ast.JSXAttr {
	attr := ast.JSXAttr{Range: rangeOf(n, l.src)}
	parts := namedChildren(n)
	if len(parts) == 0 {
		return attr
	}
	attr.Name = l.text(parts[0])
	if len(parts) < 2 {
		return attr
	}

	value := parts[1]
	switch value.Kind() {
	case "string", "jsx_string":
		raw := l.text(value)
		attr.Value = ast.Expr{
			Range: rangeOf(value, l.src),
			Data:  &ast.EString{Value: html.UnescapeString(raw[1 : len(raw)-1])},
		}
	case "jsx_expression":
		attr.Container = true
		if inner := namedChildren(value); len(inner) > 0 {
			attr.Value = l.expr(inner[0])
		}
	default:
		attr.Value = l.expr(value)
	}
	return attr
}

// jsxChildren lowers the children of n found inside [start, end).
func (l *lowerer) jsxChildren(n *ts.Node, start, end uint) []ast.Expr {
	var children []ast.Expr
	pos := start

	emitText := func(to uint) {
		if to <= pos {
			return
		}
		children = append(children, ast.Expr{Data: &ast.EJSXText{
			Text: html.UnescapeString(string(l.src[pos:to])),
		}})
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if !c.IsNamed() || c.StartByte() < start || c.EndByte() > end {
			continue
		}
		switch c.Kind() {
		case "jsx_text", "html_character_reference", "comment":
			continue
		}

		emitText(c.StartByte())
		pos = c.EndByte()

		if c.Kind() != "jsx_expression" {
			children = append(children, l.expr(c))
			continue
		}

		r := rangeOf(c, l.src)
		inner := namedChildren(c)
		switch {
		case len(inner) == 0:
			children = append(children, ast.Expr{Range: r, Data: &ast.EJSXContainer{}})
		case inner[0].Kind() == "spread_element":
			children = append(children, l.expr(inner[0]))
		default:
			children = append(children, ast.Expr{Range: r, Data: &ast.EJSXContainer{Value: l.expr(inner[0])}})
		}
	}
	emitText(end)

	return children
}
