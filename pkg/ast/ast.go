// Package ast defines the syntax tree the rjt pipeline works on.
//
// The tree follows a two-level layout: Expr and Stmt are small value types
// carrying a source Range plus a Data payload, and every syntactic form is a
// distinct payload type (E* for expressions, S* for statements). Rewrites
// replace the Data field in place.
//
// Constructs the pipeline never needs to inspect are kept as raw source text
// (ERaw / SRaw) with the modeled sub-nodes spliced in as holes, so scope
// analysis still sees every reference and JSX nested anywhere is still
// reachable for rewriting.
package ast

import "unicode"

// Loc is a 1-based line and column position. The zero value means "unknown".
type Loc struct {
	Line   int
	Column int
}

// IsValid reports whether the location points into a source file.
func (l Loc) IsValid() bool {
	return l.Line > 0
}

// Range is a half-open source span.
type Range struct {
	Start Loc
	End   Loc
}

// IsValid reports whether the range carries a start location.
func (r Range) IsValid() bool {
	return r.Start.IsValid()
}

// AST is one parsed source module.
type AST struct {
	Path   string
	Source []byte
	Stmts  []Stmt
}

// Expr is an expression node. A zero Expr (nil Data) means "absent".
type Expr struct {
	Range Range
	Data  E
}

// IsMissing reports whether the expression slot is empty.
func (e Expr) IsMissing() bool {
	return e.Data == nil
}

// Stmt is a statement node.
type Stmt struct {
	Range Range
	Data  S
}

// E is implemented by every expression payload.
type E interface{ isExpr() }

// S is implemented by every statement payload.
type S interface{ isStmt() }

// Node is a hole inside raw source text: exactly one of Expr or Stmt is set.
type Node struct {
	Expr *Expr
	Stmt *Stmt
}

// RawPart is either a verbatim text chunk or a modeled hole.
type RawPart struct {
	Text string
	Hole *Node
}

// Text is source text the pipeline does not model (parameter lists,
// destructuring patterns, type annotations). Refs lists identifiers read
// inside it; Names lists identifiers it declares.
type Text struct {
	Code  string
	Refs  []string
	Names []string
}

// Expressions

type EIdentifier struct {
	Name string
}

type EString struct {
	Value string
	// Raw is the original source including quotes; empty for synthesized strings.
	Raw string
}

type ENumber struct {
	Raw string
}

type EBoolean struct {
	Value bool
}

type ENull struct{}

type ECall struct {
	Target   Expr
	Args     []Expr
	TypeArgs string
	Optional bool
}

type EDot struct {
	Target   Expr
	Name     string
	Optional bool
}

type EIndex struct {
	Target   Expr
	Index    Expr
	Optional bool
}

// Fn is the shared shape of function declarations, function expressions and
// arrow functions.
type Fn struct {
	Name       string
	Async      bool
	Generator  bool
	TypeParams string
	Params     Text
	ReturnType string
	Body       []Stmt
}

type EFunction struct {
	Fn Fn
}

type EArrow struct {
	Fn Fn
	// Value is set for concise bodies (`x => x + 1`); Fn.Body is empty then.
	Value Expr
}

type PropertyKind int

const (
	PropertyNormal PropertyKind = iota
	PropertyShorthand
	PropertySpread
	// PropertyRaw holds methods, getters and setters verbatim in Value.
	PropertyRaw
)

type Property struct {
	Kind PropertyKind
	// Key is printed as written (identifier, quoted string or number).
	Key string
	// KeyExpr is set for computed keys (`[expr]: value`).
	KeyExpr Expr
	Value   Expr
}

type EObject struct {
	Properties []Property
}

type EArray struct {
	Items []Expr
}

type ESpread struct {
	Value Expr
}

// EIf is the ternary conditional `test ? yes : no`.
type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

// EBinary covers arithmetic, comparison, logical and assignment operators.
type EBinary struct {
	Op    string
	Left  Expr
	Right Expr
}

// IsAssign reports whether the operator writes to its left operand.
func (e *EBinary) IsAssign() bool {
	return IsAssignOp(e.Op)
}

// IsAssignOp reports whether op is `=` or a compound assignment.
func IsAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=",
		"&=", "|=", "^=", "&&=", "||=", "??=":
		return true
	}
	return false
}

// EUnary covers prefix operators (including typeof/void/delete/await) and
// postfix updates.
type EUnary struct {
	Op      string
	Value   Expr
	Postfix bool
}

// IsUpdate reports whether the operator is ++ or --.
func (e *EUnary) IsUpdate() bool {
	return e.Op == "++" || e.Op == "--"
}

type EParen struct {
	Value Expr
}

// JSXAttr is one attribute of an opening element.
type JSXAttr struct {
	Range  Range
	Name   string
	Spread bool
	// Value is missing for valueless attributes (`disabled`) and for empty
	// containers (`a={}`); Container distinguishes the two.
	Value     Expr
	Container bool
}

// EJSXElement is an element or, when Tag is missing, a fragment.
type EJSXElement struct {
	Tag      Expr
	TagRange Range
	Attrs    []JSXAttr
	Children []Expr
}

// IsFragment reports whether the element is `<>...</>`.
func (e *EJSXElement) IsFragment() bool {
	return e.Tag.IsMissing()
}

// EJSXText is the verbatim text between two non-text children.
type EJSXText struct {
	Text string
}

// EJSXContainer is a `{...}` child. Value is missing for `{}` and comment-only
// containers.
type EJSXContainer struct {
	Value Expr
}

// ERaw is an expression kept as source text with modeled holes.
type ERaw struct {
	Parts []RawPart
	// Writes lists identifiers assigned through unmodeled targets
	// (destructuring assignment).
	Writes []string
}

func (*EIdentifier) isExpr()   {}
func (*EString) isExpr()       {}
func (*ENumber) isExpr()       {}
func (*EBoolean) isExpr()      {}
func (*ENull) isExpr()         {}
func (*ECall) isExpr()         {}
func (*EDot) isExpr()          {}
func (*EIndex) isExpr()        {}
func (*EFunction) isExpr()     {}
func (*EArrow) isExpr()        {}
func (*EObject) isExpr()       {}
func (*EArray) isExpr()        {}
func (*ESpread) isExpr()       {}
func (*EIf) isExpr()           {}
func (*EBinary) isExpr()       {}
func (*EUnary) isExpr()        {}
func (*EParen) isExpr()        {}
func (*EJSXElement) isExpr()   {}
func (*EJSXText) isExpr()      {}
func (*EJSXContainer) isExpr() {}
func (*ERaw) isExpr()          {}

// Statements

// ImportName is one `{ imported as local }` specifier.
type ImportName struct {
	Imported string
	Local    string
}

type SImport struct {
	// Raw is the statement as written, used for printing. An empty Raw is
	// printed from the other fields.
	Raw       string
	Source    string
	Default   string
	Namespace string
	Names     []ImportName
	TypeOnly  bool
}

// HasBindings reports whether the import declares any local name.
func (s *SImport) HasBindings() bool {
	return s.Default != "" || s.Namespace != "" || len(s.Names) > 0
}

// Decl is one declarator of a variable declaration.
type Decl struct {
	Range Range
	// Name is set for `const x = ...`; Pattern for destructuring.
	Name    string
	Pattern *Text
	Type    string
	Value   Expr
}

type SLocal struct {
	Kind     string // "const", "let" or "var"
	Decls    []Decl
	IsExport bool
}

type SFunction struct {
	Fn       Fn
	IsExport bool
}

type SExpr struct {
	Value Expr
}

type SIf struct {
	Test Expr
	Yes  Stmt
	// No is nil when there is no else branch.
	No *Stmt
}

type SBlock struct {
	Stmts []Stmt
}

type SReturn struct {
	// Value is missing for a bare `return`.
	Value Expr
}

// STypeDecl is a type alias or interface declaration, kept as written.
type STypeDecl struct {
	Name      string
	Interface bool
	Code      string
	IsExport  bool
}

// ClauseItem is one `local as exported` entry of an export clause.
type ClauseItem struct {
	Local    string
	Exported string
}

// SExportClause is `export { a, b as c }`.
type SExportClause struct {
	Items []ClauseItem
	Raw   string
}

// SExportFrom is `export { a } from "mod"`.
type SExportFrom struct {
	Items  []ClauseItem
	Source string
	Raw    string
}

// SExportStar is `export * from "mod"` and `export * as ns from "mod"`.
type SExportStar struct {
	Alias  string
	Source string
	Raw    string
}

// SExportDefault holds either an expression or a declaration (function or
// class); exactly one is set.
type SExportDefault struct {
	Value Expr
	Decl  *Stmt
}

type SEmpty struct{}

// SRaw is a statement kept as source text with modeled holes. Declares lists
// names it binds in the enclosing scope (class and enum declarations), Locals
// the names bound in its own scope (loop variables, catch parameters).
type SRaw struct {
	Parts    []RawPart
	Declares []string
	Locals   []string
	Writes   []string
	IsExport bool
	// Scoped reports whether the statement opens its own block scope
	// (loops, try/catch, switch).
	Scoped bool
}

func (*SImport) isStmt()        {}
func (*SLocal) isStmt()         {}
func (*SFunction) isStmt()      {}
func (*SExpr) isStmt()          {}
func (*SIf) isStmt()            {}
func (*SBlock) isStmt()         {}
func (*SReturn) isStmt()        {}
func (*STypeDecl) isStmt()      {}
func (*SExportClause) isStmt()  {}
func (*SExportFrom) isStmt()    {}
func (*SExportStar) isStmt()    {}
func (*SExportDefault) isStmt() {}
func (*SEmpty) isStmt()         {}
func (*SRaw) isStmt()           {}

// IsExport reports whether a statement exports anything from its module.
func IsExport(s Stmt) bool {
	switch d := s.Data.(type) {
	case *SExportClause, *SExportFrom, *SExportStar, *SExportDefault:
		return true
	case *SLocal:
		return d.IsExport
	case *SFunction:
		return d.IsExport
	case *STypeDecl:
		return d.IsExport
	case *SRaw:
		return d.IsExport
	}
	return false
}

// Unparen strips any number of wrapping parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.Data.(*EParen)
		if !ok {
			return e
		}
		e = p.Value
	}
}

// IsIdentifierName reports whether s can be written as a bare property key.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
