// Package scope builds the symbol table of a module.
//
// A single pre-pass over the tree records every binding keyed by
// (scope, name), the ordered history of value-producing events for each
// binding (initializer, reassignments, updates, destructuring writes) with a
// flag telling whether the event sits inside an if statement or a ternary,
// and how many times each binding is read.
package scope

import "github.com/gnana997/rjt/pkg/ast"

// Kind classifies what introduced a binding.
type Kind int

const (
	// KindVariable is a const/let/var declarator bound to a plain identifier.
	KindVariable Kind = iota
	// KindPattern is a name bound by a destructuring declarator.
	KindPattern
	// KindImport is a default or named import.
	KindImport
	// KindNamespaceImport is `import * as ns`.
	KindNamespaceImport
	KindFunction
	// KindClass covers class and enum declarations.
	KindClass
	KindParam
	// KindOther covers loop heads and catch parameters kept as raw text.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindPattern:
		return "pattern"
	case KindImport:
		return "import"
	case KindNamespaceImport:
		return "namespace-import"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindParam:
		return "param"
	default:
		return "other"
	}
}

// ScopeKind is the construct that opened a scope.
type ScopeKind int

const (
	ScopeProgram ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

// Scope is one lexical scope. Bindings live in the owning Table.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope
}

// EventKind is the kind of a value-producing event.
type EventKind int

const (
	// EventInit is the declarator initializer (possibly absent).
	EventInit EventKind = iota
	// EventAssign is a plain `=` assignment.
	EventAssign
	// EventCompound is `+=`, `??=` and the other compound assignments.
	EventCompound
	// EventUpdate is `++` or `--`.
	EventUpdate
	// EventWrite is a destructuring assignment target or a loop head.
	EventWrite
)

// Event is one entry of a binding's value history.
type Event struct {
	Kind EventKind
	// Value is the initializer or assigned right-hand side. It is only set
	// for EventInit and EventAssign, and is missing for `let x;`.
	Value ast.Expr
	// Scope is where Value is evaluated.
	Scope *Scope
	// Conditional reports whether an if statement or a ternary encloses the
	// event at any depth.
	Conditional bool
}

// Import describes where an imported binding comes from.
type Import struct {
	Source string
	// Imported is the exported name in the source module, "default" for a
	// default import and "*" for a namespace import.
	Imported string
	TypeOnly bool
}

// Binding is one declared name.
type Binding struct {
	Name  string
	Kind  Kind
	Scope *Scope

	// Decl and DeclKind are set for KindVariable.
	Decl     *ast.Decl
	DeclKind string

	// Import is set for KindImport and KindNamespaceImport.
	Import *Import

	// Fn is set for function declarations.
	Fn *ast.Fn

	// Events holds the value history in source order.
	Events []Event

	// References counts reads of the binding.
	References int
}

type symbolKey struct {
	scope *Scope
	name  string
}

// Table is the symbol table of one module.
type Table struct {
	Program *Scope

	symbols map[symbolKey]*Binding
	order   []*Binding
	scopes  map[ast.E]*Scope
	unbound map[string]int
}

// Lookup returns the binding name resolves to from s, walking outwards.
func (t *Table) Lookup(s *Scope, name string) *Binding {
	for ; s != nil; s = s.Parent {
		if b, ok := t.symbols[symbolKey{s, name}]; ok {
			return b
		}
	}
	return nil
}

// Own returns the binding declared directly in s.
func (t *Table) Own(s *Scope, name string) *Binding {
	return t.symbols[symbolKey{s, name}]
}

// ScopeOf returns the scope an identifier or JSX element was found in, or
// nil when the node was not part of the tree the table was built from.
func (t *Table) ScopeOf(e ast.E) *Scope {
	return t.scopes[e]
}

// Bindings returns every binding in declaration order.
func (t *Table) Bindings() []*Binding {
	return t.order
}

// Unbound returns how many times a name was read without any binding
// (globals such as `console` or intrinsic tags such as `div`).
func (t *Table) Unbound(name string) int {
	return t.unbound[name]
}

func (t *Table) newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent}
}

func (t *Table) declare(s *Scope, name string, kind Kind) *Binding {
	if b, ok := t.symbols[symbolKey{s, name}]; ok {
		// var redeclarations and function overloads share one binding.
		return b
	}
	b := &Binding{Name: name, Kind: kind, Scope: s}
	t.symbols[symbolKey{s, name}] = b
	t.order = append(t.order, b)
	return b
}
