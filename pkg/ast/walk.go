package ast

// Visitor is called with a pointer to every expression slot of a tree,
// children before parents, so it may replace e.Data in place.
type Visitor func(e *Expr)

// WalkStmts visits every expression reachable from stmts.
func WalkStmts(stmts []Stmt, v Visitor) {
	for i := range stmts {
		WalkStmt(&stmts[i], v)
	}
}

// WalkStmt visits every expression reachable from s.
func WalkStmt(s *Stmt, v Visitor) {
	switch d := s.Data.(type) {
	case *SLocal:
		for i := range d.Decls {
			WalkExpr(&d.Decls[i].Value, v)
		}
	case *SFunction:
		WalkStmts(d.Fn.Body, v)
	case *SExpr:
		WalkExpr(&d.Value, v)
	case *SIf:
		WalkExpr(&d.Test, v)
		WalkStmt(&d.Yes, v)
		if d.No != nil {
			WalkStmt(d.No, v)
		}
	case *SBlock:
		WalkStmts(d.Stmts, v)
	case *SReturn:
		WalkExpr(&d.Value, v)
	case *SExportDefault:
		if d.Decl != nil {
			WalkStmt(d.Decl, v)
		} else {
			WalkExpr(&d.Value, v)
		}
	case *SRaw:
		walkParts(d.Parts, v)
	}
}

// WalkExpr visits e and everything below it.
func WalkExpr(e *Expr, v Visitor) {
	if e.Data == nil {
		return
	}

	switch d := e.Data.(type) {
	case *ECall:
		WalkExpr(&d.Target, v)
		for i := range d.Args {
			WalkExpr(&d.Args[i], v)
		}
	case *EDot:
		WalkExpr(&d.Target, v)
	case *EIndex:
		WalkExpr(&d.Target, v)
		WalkExpr(&d.Index, v)
	case *EFunction:
		WalkStmts(d.Fn.Body, v)
	case *EArrow:
		WalkStmts(d.Fn.Body, v)
		WalkExpr(&d.Value, v)
	case *EObject:
		for i := range d.Properties {
			WalkExpr(&d.Properties[i].KeyExpr, v)
			WalkExpr(&d.Properties[i].Value, v)
		}
	case *EArray:
		for i := range d.Items {
			WalkExpr(&d.Items[i], v)
		}
	case *ESpread:
		WalkExpr(&d.Value, v)
	case *EIf:
		WalkExpr(&d.Test, v)
		WalkExpr(&d.Yes, v)
		WalkExpr(&d.No, v)
	case *EBinary:
		WalkExpr(&d.Left, v)
		WalkExpr(&d.Right, v)
	case *EUnary:
		WalkExpr(&d.Value, v)
	case *EParen:
		WalkExpr(&d.Value, v)
	case *EJSXElement:
		WalkExpr(&d.Tag, v)
		for i := range d.Attrs {
			WalkExpr(&d.Attrs[i].Value, v)
		}
		for i := range d.Children {
			WalkExpr(&d.Children[i], v)
		}
	case *EJSXContainer:
		WalkExpr(&d.Value, v)
	case *ERaw:
		walkParts(d.Parts, v)
	}

	v(e)
}

func walkParts(parts []RawPart, v Visitor) {
	for _, part := range parts {
		if part.Hole == nil {
			continue
		}
		if part.Hole.Expr != nil {
			WalkExpr(part.Hole.Expr, v)
		}
		if part.Hole.Stmt != nil {
			WalkStmt(part.Hole.Stmt, v)
		}
	}
}
