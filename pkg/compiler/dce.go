package compiler

import (
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/scope"
)

// eliminateDeadLocals drops the declarations of the component body that the
// rewritten module never reads: declarators bound to a plain name whose only
// event is a side-effect-free initializer, and function declarations. It runs
// once; a declaration only read by a removed one is kept.
func eliminateDeadLocals(stmts []ast.Stmt) []ast.Stmt {
	component := componentFn(stmts)
	if component == nil {
		return stmts
	}

	table := scope.Build(stmts)
	decls := make(map[*ast.Decl]*scope.Binding)
	fns := make(map[*ast.Fn]*scope.Binding)
	for _, b := range table.Bindings() {
		switch {
		case b.Decl != nil:
			decls[b.Decl] = b
		case b.Fn != nil:
			fns[b.Fn] = b
		}
	}

	body := component.Body[:0]
	for _, stmt := range component.Body {
		switch d := stmt.Data.(type) {
		case *ast.SLocal:
			kept := d.Decls[:0]
			for i := range d.Decls {
				if !isDead(decls[&d.Decls[i]], &d.Decls[i]) {
					kept = append(kept, d.Decls[i])
				}
			}
			if len(kept) == 0 {
				continue
			}
			d.Decls = kept

		case *ast.SFunction:
			if b := fns[&d.Fn]; b != nil && b.References == 0 {
				continue
			}
		}
		body = append(body, stmt)
	}
	component.Body = body
	return stmts
}

func componentFn(stmts []ast.Stmt) *ast.Fn {
	if len(stmts) == 0 {
		return nil
	}
	def, ok := stmts[len(stmts)-1].Data.(*ast.SExportDefault)
	if !ok || def.Decl == nil {
		return nil
	}
	fn, ok := def.Decl.Data.(*ast.SFunction)
	if !ok {
		return nil
	}
	return &fn.Fn
}

func isDead(b *scope.Binding, decl *ast.Decl) bool {
	return b != nil &&
		b.Decl == decl &&
		b.Kind == scope.KindVariable &&
		b.References == 0 &&
		len(b.Events) == 1 &&
		isPure(decl.Value)
}

// isPure reports whether evaluating e can have no side effect.
func isPure(e ast.Expr) bool {
	switch d := e.Data.(type) {
	case nil, *ast.EIdentifier, *ast.EString, *ast.ENumber, *ast.EBoolean, *ast.ENull,
		*ast.EFunction, *ast.EArrow:
		return true
	case *ast.EParen:
		return isPure(d.Value)
	case *ast.EUnary:
		switch d.Op {
		case "-", "+", "!", "~", "void":
			return isPure(d.Value)
		}
	case *ast.EArray:
		for _, item := range d.Items {
			if !isPure(item) {
				return false
			}
		}
		return true
	case *ast.EObject:
		for _, p := range d.Properties {
			switch p.Kind {
			case ast.PropertySpread:
				return false
			case ast.PropertyRaw:
				continue
			}
			if !p.KeyExpr.IsMissing() && !isPure(p.KeyExpr) {
				return false
			}
			if p.Kind == ast.PropertyNormal && !isPure(p.Value) {
				return false
			}
		}
		return true
	}
	return false
}
