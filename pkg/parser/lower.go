package parser

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/rjt/pkg/ast"
)

// exprHoleKinds are the expression kinds lowered into typed nodes. Inside raw
// text they become holes.
var exprHoleKinds = map[string]bool{
	"identifier":                      true,
	"call_expression":                 true,
	"member_expression":               true,
	"subscript_expression":            true,
	"arrow_function":                  true,
	"function_expression":             true,
	"function":                        true,
	"generator_function":              true,
	"object":                          true,
	"array":                           true,
	"ternary_expression":              true,
	"binary_expression":               true,
	"unary_expression":                true,
	"update_expression":               true,
	"assignment_expression":           true,
	"augmented_assignment_expression": true,
	"await_expression":                true,
	"parenthesized_expression":        true,
	"spread_element":                  true,
	"jsx_element":                     true,
	"jsx_self_closing_element":        true,
	"jsx_fragment":                    true,
}

// stmtHoleKinds are the statement kinds lowered into typed nodes.
var stmtHoleKinds = map[string]bool{
	"statement_block":                true,
	"lexical_declaration":            true,
	"variable_declaration":           true,
	"expression_statement":           true,
	"if_statement":                   true,
	"return_statement":               true,
	"function_declaration":           true,
	"generator_function_declaration": true,
}

// scopedKinds open their own block scope when kept raw.
var scopedKinds = map[string]bool{
	"for_statement":              true,
	"for_in_statement":           true,
	"while_statement":            true,
	"do_statement":               true,
	"try_statement":              true,
	"switch_statement":           true,
	"labeled_statement":          true,
	"with_statement":             true,
	"class_declaration":          true,
	"abstract_class_declaration": true,
}

// lowerer turns a tree-sitter concrete syntax tree into an ast tree.
type lowerer struct {
	src []byte
}

func (l *lowerer) text(n *ts.Node) string {
	return string(l.src[n.StartByte():n.EndByte()])
}

func (l *lowerer) stmtList(n *ts.Node) []ast.Stmt {
	var out []ast.Stmt
	for _, c := range namedChildren(n) {
		if c.Kind() == "hash_bang_line" {
			continue
		}
		out = append(out, l.stmt(c))
	}
	return out
}

func (l *lowerer) stmt(n *ts.Node) ast.Stmt {
	r := rangeOf(n, l.src)

	switch n.Kind() {
	case "import_statement":
		return ast.Stmt{Range: r, Data: l.importStmt(n)}

	case "export_statement":
		return l.exportStmt(n)

	case "lexical_declaration", "variable_declaration":
		return ast.Stmt{Range: r, Data: l.local(n)}

	case "function_declaration", "generator_function_declaration":
		return ast.Stmt{Range: r, Data: &ast.SFunction{Fn: l.fn(n)}}

	case "expression_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return ast.Stmt{Range: r, Data: &ast.SEmpty{}}
		}
		return ast.Stmt{Range: r, Data: &ast.SExpr{Value: l.expr(children[0])}}

	case "if_statement":
		s := &ast.SIf{
			Test: l.condition(n.ChildByFieldName("condition")),
			Yes:  l.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if body := namedChildren(alt); len(body) > 0 {
				no := l.stmt(body[0])
				s.No = &no
			}
		}
		return ast.Stmt{Range: r, Data: s}

	case "statement_block":
		return ast.Stmt{Range: r, Data: &ast.SBlock{Stmts: l.stmtList(n)}}

	case "return_statement":
		s := &ast.SReturn{}
		if children := namedChildren(n); len(children) > 0 {
			s.Value = l.expr(children[0])
		}
		return ast.Stmt{Range: r, Data: s}

	case "empty_statement":
		return ast.Stmt{Range: r, Data: &ast.SEmpty{}}

	case "type_alias_declaration", "interface_declaration":
		s := &ast.STypeDecl{
			Interface: n.Kind() == "interface_declaration",
			Code:      l.text(n),
		}
		if name := n.ChildByFieldName("name"); name != nil {
			s.Name = l.text(name)
		}
		return ast.Stmt{Range: r, Data: s}
	}

	return ast.Stmt{Range: r, Data: l.rawStmt(n)}
}

// condition unwraps the parentheses around an if condition.
func (l *lowerer) condition(n *ts.Node) ast.Expr {
	if n == nil {
		return ast.Expr{}
	}
	if n.Kind() == "parenthesized_expression" {
		if inner := namedChildren(n); len(inner) == 1 {
			return l.expr(inner[0])
		}
	}
	return l.expr(n)
}

func (l *lowerer) rawStmt(n *ts.Node) *ast.SRaw {
	s := &ast.SRaw{Parts: l.raw(n), Scoped: scopedKinds[n.Kind()]}

	switch n.Kind() {
	case "class_declaration", "abstract_class_declaration", "enum_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			s.Declares = append(s.Declares, l.text(name))
		}

	case "for_in_statement":
		left := n.ChildByFieldName("left")
		if left == nil {
			break
		}
		names := patternNames(left, l.src)
		if n.ChildByFieldName("kind") != nil {
			s.Locals = append(s.Locals, names...)
		} else {
			s.Writes = append(s.Writes, names...)
		}

	case "try_statement":
		if handler := n.ChildByFieldName("handler"); handler != nil {
			if param := handler.ChildByFieldName("parameter"); param != nil {
				s.Locals = append(s.Locals, patternNames(param, l.src)...)
			}
		}
	}

	return s
}

// raw keeps n as source text, splicing every modeled descendant in as a hole.
func (l *lowerer) raw(n *ts.Node) []ast.RawPart {
	var parts []ast.RawPart
	pos := n.StartByte()

	var visit func(p *ts.Node)
	visit = func(p *ts.Node) {
		for i := uint(0); i < p.ChildCount(); i++ {
			c := p.Child(i)
			hole := l.hole(c)
			if hole == nil {
				visit(c)
				continue
			}
			if c.StartByte() > pos {
				parts = append(parts, ast.RawPart{Text: string(l.src[pos:c.StartByte()])})
			}
			parts = append(parts, ast.RawPart{Hole: hole})
			pos = c.EndByte()
		}
	}
	visit(n)

	if n.EndByte() > pos {
		parts = append(parts, ast.RawPart{Text: string(l.src[pos:n.EndByte()])})
	}
	return parts
}

func (l *lowerer) hole(c *ts.Node) *ast.Node {
	switch {
	case exprHoleKinds[c.Kind()]:
		e := l.expr(c)
		return &ast.Node{Expr: &e}
	case stmtHoleKinds[c.Kind()]:
		s := l.stmt(c)
		return &ast.Node{Stmt: &s}
	}
	return nil
}

func (l *lowerer) importStmt(n *ts.Node) *ast.SImport {
	s := &ast.SImport{Raw: l.text(n), TypeOnly: hasToken(n, "type")}
	if src := n.ChildByFieldName("source"); src != nil {
		s.Source = unquote(l.text(src))
	}

	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "import_clause":
			l.importClause(c, s)
		case "import_require_clause":
			for _, part := range namedChildren(c) {
				switch part.Kind() {
				case "identifier":
					s.Namespace = l.text(part)
				case "string":
					s.Source = unquote(l.text(part))
				}
			}
		}
	}
	return s
}

func (l *lowerer) importClause(n *ts.Node, s *ast.SImport) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			s.Default = l.text(c)
		case "namespace_import":
			for _, id := range namedChildren(c) {
				if id.Kind() == "identifier" {
					s.Namespace = l.text(id)
				}
			}
		case "named_imports":
			for _, spec := range namedChildren(c) {
				if spec.Kind() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				item := ast.ImportName{Imported: l.moduleExportName(name)}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					item.Local = l.text(alias)
				} else {
					item.Local = item.Imported
				}
				s.Names = append(s.Names, item)
			}
		}
	}
}

func (l *lowerer) moduleExportName(n *ts.Node) string {
	if n.Kind() == "string" {
		return unquote(l.text(n))
	}
	return l.text(n)
}

func (l *lowerer) exportStmt(n *ts.Node) ast.Stmt {
	r := rangeOf(n, l.src)
	decl := n.ChildByFieldName("declaration")
	raw := l.text(n)

	if hasToken(n, "default") {
		if decl != nil {
			d := l.stmt(decl)
			return ast.Stmt{Range: r, Data: &ast.SExportDefault{Decl: &d}}
		}
		s := &ast.SExportDefault{}
		if value := n.ChildByFieldName("value"); value != nil {
			s.Value = l.expr(value)
		}
		return ast.Stmt{Range: r, Data: s}
	}

	if decl != nil {
		d := l.stmt(decl)
		switch data := d.Data.(type) {
		case *ast.SLocal:
			data.IsExport = true
		case *ast.SFunction:
			data.IsExport = true
		case *ast.STypeDecl:
			data.IsExport = true
		case *ast.SRaw:
			data.IsExport = true
			data.Parts = append([]ast.RawPart{{Text: "export "}}, data.Parts...)
		default:
			return ast.Stmt{Range: r, Data: &ast.SRaw{Parts: l.raw(n), IsExport: true}}
		}
		d.Range = r
		return d
	}

	var source string
	if src := n.ChildByFieldName("source"); src != nil {
		source = unquote(l.text(src))
	}

	if hasToken(n, "*") {
		return ast.Stmt{Range: r, Data: &ast.SExportStar{Source: source, Raw: raw}}
	}

	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "namespace_export":
			s := &ast.SExportStar{Source: source, Raw: raw}
			if names := namedChildren(c); len(names) > 0 {
				s.Alias = l.moduleExportName(names[len(names)-1])
			}
			return ast.Stmt{Range: r, Data: s}

		case "export_clause":
			var items []ast.ClauseItem
			if !hasToken(n, "type") {
				items = l.exportClause(c)
			}
			if source != "" {
				return ast.Stmt{Range: r, Data: &ast.SExportFrom{Items: items, Source: source, Raw: raw}}
			}
			return ast.Stmt{Range: r, Data: &ast.SExportClause{Items: items, Raw: raw}}
		}
	}

	// export = x, export as namespace X
	return ast.Stmt{Range: r, Data: &ast.SRaw{Parts: l.raw(n), IsExport: true}}
}

func (l *lowerer) exportClause(n *ts.Node) []ast.ClauseItem {
	var items []ast.ClauseItem
	for _, spec := range namedChildren(n) {
		if spec.Kind() != "export_specifier" || hasToken(spec, "type") {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		item := ast.ClauseItem{Local: l.moduleExportName(name)}
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			item.Exported = l.moduleExportName(alias)
		} else {
			item.Exported = item.Local
		}
		items = append(items, item)
	}
	return items
}

func (l *lowerer) local(n *ts.Node) *ast.SLocal {
	s := &ast.SLocal{Kind: "var"}
	if n.Kind() == "lexical_declaration" {
		if kind := n.ChildByFieldName("kind"); kind != nil {
			s.Kind = l.text(kind)
		} else if first := n.Child(0); first != nil {
			s.Kind = l.text(first)
		}
	}

	for _, c := range namedChildren(n) {
		if c.Kind() != "variable_declarator" {
			continue
		}
		d := ast.Decl{Range: rangeOf(c, l.src), Type: typeText(c.ChildByFieldName("type"), l.src)}
		if name := c.ChildByFieldName("name"); name != nil {
			if name.Kind() == "identifier" {
				d.Name = l.text(name)
			} else {
				d.Pattern = &ast.Text{
					Code:  l.text(name),
					Names: patternNames(name, l.src),
					Refs:  identifiers(name, l.src),
				}
			}
		}
		if value := c.ChildByFieldName("value"); value != nil {
			d.Value = l.expr(value)
		}
		s.Decls = append(s.Decls, d)
	}
	return s
}

// fn lowers the shared parts of functions, generators and arrows.
func (l *lowerer) fn(n *ts.Node) ast.Fn {
	f := ast.Fn{
		Async:      hasToken(n, "async"),
		Generator:  hasToken(n, "*"),
		ReturnType: typeText(n.ChildByFieldName("return_type"), l.src),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		f.Name = l.text(name)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		f.TypeParams = l.text(tp)
	}

	if param := n.ChildByFieldName("parameter"); param != nil {
		name := l.text(param)
		f.Params = ast.Text{Code: name, Names: []string{name}}
	} else if params := n.ChildByFieldName("parameters"); params != nil {
		code := l.text(params)
		code = strings.TrimSuffix(strings.TrimPrefix(code, "("), ")")
		f.Params = ast.Text{
			Code:  code,
			Names: patternNames(params, l.src),
			Refs:  identifiers(params, l.src),
		}
	}

	if body := n.ChildByFieldName("body"); body != nil && body.Kind() == "statement_block" {
		f.Body = l.stmtList(body)
	}
	return f
}

func (l *lowerer) expr(n *ts.Node) ast.Expr {
	r := rangeOf(n, l.src)
	wrap := func(e ast.E) ast.Expr { return ast.Expr{Range: r, Data: e} }

	switch n.Kind() {
	case "identifier", "undefined":
		return wrap(&ast.EIdentifier{Name: l.text(n)})

	case "string":
		raw := l.text(n)
		return wrap(&ast.EString{Value: unquote(raw), Raw: raw})

	case "number":
		return wrap(&ast.ENumber{Raw: l.text(n)})

	case "true", "false":
		return wrap(&ast.EBoolean{Value: n.Kind() == "true"})

	case "null":
		return wrap(&ast.ENull{})

	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return wrap(&ast.EParen{Value: l.expr(inner[0])})
		}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.Kind() != "arguments" || fn.Kind() == "import" {
			break
		}
		call := &ast.ECall{
			Target:   l.expr(fn),
			Optional: n.ChildByFieldName("optional_chain") != nil,
		}
		if ta := n.ChildByFieldName("type_arguments"); ta != nil {
			call.TypeArgs = l.text(ta)
		}
		for _, a := range namedChildren(args) {
			call.Args = append(call.Args, l.expr(a))
		}
		return wrap(call)

	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil || obj.Kind() == "import" {
			break
		}
		return wrap(&ast.EDot{
			Target:   l.expr(obj),
			Name:     l.text(prop),
			Optional: n.ChildByFieldName("optional_chain") != nil,
		})

	case "subscript_expression":
		obj := n.ChildByFieldName("object")
		index := n.ChildByFieldName("index")
		if obj == nil || index == nil {
			break
		}
		return wrap(&ast.EIndex{
			Target:   l.expr(obj),
			Index:    l.expr(index),
			Optional: n.ChildByFieldName("optional_chain") != nil,
		})

	case "arrow_function":
		arrow := &ast.EArrow{Fn: l.fn(n)}
		if body := n.ChildByFieldName("body"); body != nil && body.Kind() != "statement_block" {
			arrow.Value = l.expr(body)
		}
		return wrap(arrow)

	case "function_expression", "function", "generator_function":
		return wrap(&ast.EFunction{Fn: l.fn(n)})

	case "object":
		return wrap(l.object(n))

	case "array":
		arr := &ast.EArray{}
		for _, c := range namedChildren(n) {
			arr.Items = append(arr.Items, l.expr(c))
		}
		return wrap(arr)

	case "spread_element":
		if inner := namedChildren(n); len(inner) == 1 {
			return wrap(&ast.ESpread{Value: l.expr(inner[0])})
		}

	case "ternary_expression":
		return wrap(&ast.EIf{
			Test: l.expr(n.ChildByFieldName("condition")),
			Yes:  l.expr(n.ChildByFieldName("consequence")),
			No:   l.expr(n.ChildByFieldName("alternative")),
		})

	case "binary_expression", "augmented_assignment_expression":
		op := n.ChildByFieldName("operator")
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if op == nil || left == nil || right == nil {
			break
		}
		return wrap(&ast.EBinary{Op: l.text(op), Left: l.target(left), Right: l.expr(right)})

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil {
			break
		}
		return wrap(&ast.EBinary{Op: "=", Left: l.target(left), Right: l.expr(right)})

	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op == nil || arg == nil {
			break
		}
		return wrap(&ast.EUnary{Op: l.text(op), Value: l.expr(arg)})

	case "update_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op == nil || arg == nil {
			break
		}
		return wrap(&ast.EUnary{
			Op:      l.text(op),
			Value:   l.expr(arg),
			Postfix: arg.StartByte() < op.StartByte(),
		})

	case "await_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return wrap(&ast.EUnary{Op: "await", Value: l.expr(inner[0])})
		}

	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return l.jsx(n)
	}

	return wrap(&ast.ERaw{Parts: l.raw(n)})
}

// target lowers an assignment target. Destructuring targets stay raw and
// record the names they write.
func (l *lowerer) target(n *ts.Node) ast.Expr {
	switch n.Kind() {
	case "object_pattern", "array_pattern":
		return ast.Expr{Range: rangeOf(n, l.src), Data: &ast.ERaw{
			Parts:  l.raw(n),
			Writes: patternNames(n, l.src),
		}}
	}
	return l.expr(n)
}

func (l *lowerer) object(n *ts.Node) *ast.EObject {
	obj := &ast.EObject{}
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "pair":
			key := c.ChildByFieldName("key")
			value := c.ChildByFieldName("value")
			if key == nil || value == nil {
				break
			}
			p := ast.Property{Kind: ast.PropertyNormal, Value: l.expr(value)}
			if key.Kind() == "computed_property_name" {
				if inner := namedChildren(key); len(inner) == 1 {
					p.KeyExpr = l.expr(inner[0])
				} else {
					p.Key = l.text(key)
				}
			} else {
				p.Key = l.text(key)
			}
			obj.Properties = append(obj.Properties, p)
			continue

		case "shorthand_property_identifier":
			name := l.text(c)
			obj.Properties = append(obj.Properties, ast.Property{
				Kind:  ast.PropertyShorthand,
				Key:   name,
				Value: ast.Expr{Range: rangeOf(c, l.src), Data: &ast.EIdentifier{Name: name}},
			})
			continue

		case "spread_element":
			if inner := namedChildren(c); len(inner) == 1 {
				obj.Properties = append(obj.Properties, ast.Property{
					Kind:  ast.PropertySpread,
					Value: l.expr(inner[0]),
				})
				continue
			}
		}

		obj.Properties = append(obj.Properties, ast.Property{
			Kind:  ast.PropertyRaw,
			Value: ast.Expr{Range: rangeOf(c, l.src), Data: &ast.ERaw{Parts: l.raw(c)}},
		})
	}
	return obj
}
