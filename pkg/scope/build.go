package scope

import "github.com/gnana997/rjt/pkg/ast"

// Build runs the scope pass over a module's top-level statements.
func Build(stmts []ast.Stmt) *Table {
	t := &Table{
		symbols: make(map[symbolKey]*Binding),
		scopes:  make(map[ast.E]*Scope),
		unbound: make(map[string]int),
	}
	t.Program = &Scope{Kind: ScopeProgram}

	b := &builder{table: t}
	b.stmts(stmts, t.Program, t.Program)
	return t
}

type builder struct {
	table *Table
	// cond is the number of enclosing if statements and ternaries.
	cond int
}

func (b *builder) ref(s *Scope, name string) {
	if binding := b.table.Lookup(s, name); binding != nil {
		binding.References++
		return
	}
	b.table.unbound[name]++
}

// refsIn counts the reads inside unmodeled text, skipping one occurrence of
// every name the text itself declares.
func (b *builder) refsIn(s *Scope, text ast.Text) {
	skip := make(map[string]int, len(text.Names))
	for _, n := range text.Names {
		skip[n]++
	}
	for _, r := range text.Refs {
		if skip[r] > 0 {
			skip[r]--
			continue
		}
		b.ref(s, r)
	}
}

func (b *builder) event(s *Scope, name string, ev Event) {
	ev.Conditional = b.cond > 0
	if ev.Scope == nil {
		ev.Scope = s
	}
	if binding := b.table.Lookup(s, name); binding != nil {
		binding.Events = append(binding.Events, ev)
	}
}

// hoist declares the bindings a statement list introduces before any of it is
// visited, so references resolve regardless of declaration order.
func (b *builder) hoist(stmts []ast.Stmt, s, fn *Scope) {
	for i := range stmts {
		b.hoistStmt(&stmts[i], s, fn)
	}
}

func (b *builder) hoistStmt(stmt *ast.Stmt, s, fn *Scope) {
	t := b.table
	switch d := stmt.Data.(type) {
	case *ast.SImport:
		if d.Default != "" {
			t.declare(s, d.Default, KindImport).Import = &Import{Source: d.Source, Imported: "default", TypeOnly: d.TypeOnly}
		}
		if d.Namespace != "" {
			t.declare(s, d.Namespace, KindNamespaceImport).Import = &Import{Source: d.Source, Imported: "*", TypeOnly: d.TypeOnly}
		}
		for _, n := range d.Names {
			t.declare(s, n.Local, KindImport).Import = &Import{Source: d.Source, Imported: n.Imported, TypeOnly: d.TypeOnly}
		}

	case *ast.SLocal:
		target := s
		if d.Kind == "var" {
			target = fn
		}
		for i := range d.Decls {
			decl := &d.Decls[i]
			if decl.Pattern != nil {
				for _, n := range decl.Pattern.Names {
					t.declare(target, n, KindPattern)
				}
				continue
			}
			binding := t.declare(target, decl.Name, KindVariable)
			if binding.Decl == nil {
				binding.Decl = decl
				binding.DeclKind = d.Kind
			}
		}

	case *ast.SFunction:
		if d.Fn.Name != "" {
			binding := t.declare(s, d.Fn.Name, KindFunction)
			if binding.Fn == nil {
				binding.Fn = &d.Fn
			}
		}

	case *ast.SExportDefault:
		if d.Decl != nil {
			b.hoistStmt(d.Decl, s, fn)
		}

	case *ast.SRaw:
		for _, n := range d.Declares {
			t.declare(s, n, KindClass)
		}
	}
}

func (b *builder) stmts(stmts []ast.Stmt, s, fn *Scope) {
	b.hoist(stmts, s, fn)
	for i := range stmts {
		b.stmt(&stmts[i], s, fn)
	}
}

func (b *builder) stmt(stmt *ast.Stmt, s, fn *Scope) {
	switch d := stmt.Data.(type) {
	case *ast.SLocal:
		for i := range d.Decls {
			decl := &d.Decls[i]
			if decl.Pattern != nil {
				b.refsIn(s, *decl.Pattern)
				b.expr(&decl.Value, s, fn)
				for _, n := range decl.Pattern.Names {
					b.event(s, n, Event{Kind: EventWrite})
				}
				continue
			}
			b.expr(&decl.Value, s, fn)
			b.event(s, decl.Name, Event{Kind: EventInit, Value: decl.Value})
		}

	case *ast.SFunction:
		b.fn(&d.Fn, s, false)

	case *ast.SExpr:
		b.expr(&d.Value, s, fn)

	case *ast.SIf:
		b.cond++
		b.expr(&d.Test, s, fn)
		b.nested(&d.Yes, s, fn)
		if d.No != nil {
			b.nested(d.No, s, fn)
		}
		b.cond--

	case *ast.SBlock:
		b.stmts(d.Stmts, b.table.newScope(ScopeBlock, s), fn)

	case *ast.SReturn:
		b.expr(&d.Value, s, fn)

	case *ast.SExportDefault:
		if d.Decl != nil {
			b.stmt(d.Decl, s, fn)
		} else {
			b.expr(&d.Value, s, fn)
		}

	case *ast.SExportClause:
		for _, item := range d.Items {
			b.ref(s, item.Local)
		}

	case *ast.SRaw:
		inner := s
		if d.Scoped {
			inner = b.table.newScope(ScopeBlock, s)
		}
		for _, n := range d.Locals {
			b.table.declare(inner, n, KindOther)
		}
		for _, n := range d.Writes {
			b.event(inner, n, Event{Kind: EventWrite})
		}
		b.parts(d.Parts, inner, fn)
	}
}

// nested visits the branch of an if statement. A non-block branch holding a
// declaration still gets its own scope.
func (b *builder) nested(stmt *ast.Stmt, s, fn *Scope) {
	if _, ok := stmt.Data.(*ast.SBlock); ok {
		b.stmt(stmt, s, fn)
		return
	}
	inner := b.table.newScope(ScopeBlock, s)
	b.hoistStmt(stmt, inner, fn)
	b.stmt(stmt, inner, fn)
}

func (b *builder) parts(parts []ast.RawPart, s, fn *Scope) {
	for _, part := range parts {
		if part.Hole != nil && part.Hole.Stmt != nil {
			b.hoistStmt(part.Hole.Stmt, s, fn)
		}
	}
	for _, part := range parts {
		switch {
		case part.Hole == nil:
		case part.Hole.Expr != nil:
			b.expr(part.Hole.Expr, s, fn)
		case part.Hole.Stmt != nil:
			b.stmt(part.Hole.Stmt, s, fn)
		}
	}
}

// fn opens a function scope for params and body. Named function
// expressions bind their own name inside that scope.
func (b *builder) fn(f *ast.Fn, s *Scope, expression bool) *Scope {
	inner := b.table.newScope(ScopeFunction, s)
	if expression && f.Name != "" {
		b.table.declare(inner, f.Name, KindFunction)
	}
	for _, n := range f.Params.Names {
		b.table.declare(inner, n, KindParam)
	}
	b.refsIn(inner, f.Params)
	b.stmts(f.Body, inner, inner)
	return inner
}

func (b *builder) expr(e *ast.Expr, s, fn *Scope) {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		b.table.scopes[d] = s
		b.ref(s, d.Name)

	case *ast.ECall:
		b.expr(&d.Target, s, fn)
		for i := range d.Args {
			b.expr(&d.Args[i], s, fn)
		}

	case *ast.EDot:
		b.expr(&d.Target, s, fn)

	case *ast.EIndex:
		b.expr(&d.Target, s, fn)
		b.expr(&d.Index, s, fn)

	case *ast.EFunction:
		b.fn(&d.Fn, s, true)

	case *ast.EArrow:
		inner := b.fn(&d.Fn, s, false)
		b.expr(&d.Value, inner, inner)

	case *ast.EObject:
		for i := range d.Properties {
			p := &d.Properties[i]
			b.expr(&p.KeyExpr, s, fn)
			b.expr(&p.Value, s, fn)
		}

	case *ast.EArray:
		for i := range d.Items {
			b.expr(&d.Items[i], s, fn)
		}

	case *ast.ESpread:
		b.expr(&d.Value, s, fn)

	case *ast.EIf:
		b.cond++
		b.expr(&d.Test, s, fn)
		b.expr(&d.Yes, s, fn)
		b.expr(&d.No, s, fn)
		b.cond--

	case *ast.EBinary:
		if !d.IsAssign() {
			b.expr(&d.Left, s, fn)
			b.expr(&d.Right, s, fn)
			return
		}
		b.assign(d, s, fn)

	case *ast.EUnary:
		if id, ok := ast.Unparen(d.Value).Data.(*ast.EIdentifier); ok && d.IsUpdate() {
			b.table.scopes[id] = s
			b.ref(s, id.Name)
			b.event(s, id.Name, Event{Kind: EventUpdate})
			return
		}
		b.expr(&d.Value, s, fn)

	case *ast.EParen:
		b.expr(&d.Value, s, fn)

	case *ast.EJSXElement:
		b.table.scopes[d] = s
		b.expr(&d.Tag, s, fn)
		for i := range d.Attrs {
			b.expr(&d.Attrs[i].Value, s, fn)
		}
		for i := range d.Children {
			b.expr(&d.Children[i], s, fn)
		}

	case *ast.EJSXContainer:
		b.expr(&d.Value, s, fn)

	case *ast.ERaw:
		for _, n := range d.Writes {
			b.event(s, n, Event{Kind: EventWrite})
		}
		b.parts(d.Parts, s, fn)
	}
}

// assign records the event for an assignment. The target of a plain or
// compound assignment is a write, not a read.
func (b *builder) assign(d *ast.EBinary, s, fn *Scope) {
	b.expr(&d.Right, s, fn)

	switch left := ast.Unparen(d.Left).Data.(type) {
	case *ast.EIdentifier:
		b.table.scopes[left] = s
		if d.Op == "=" {
			b.event(s, left.Name, Event{Kind: EventAssign, Value: d.Right})
		} else {
			b.event(s, left.Name, Event{Kind: EventCompound})
		}
	default:
		b.expr(&d.Left, s, fn)
	}
}
