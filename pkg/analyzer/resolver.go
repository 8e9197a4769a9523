package analyzer

import (
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/scope"
)

// Resolver is the type/binding resolver: it classifies expressions and
// bindings of one module from their value history in the module's symbol
// table.
type Resolver struct {
	table         *scope.Table
	runtimeModule string
	// visiting guards against self-referential initializers.
	visiting map[*scope.Binding]bool
}

// NewResolver returns a Resolver over table. Serializable markers are only
// recognized when imported from runtimeModule.
func NewResolver(table *scope.Table, runtimeModule string) *Resolver {
	if runtimeModule == "" {
		runtimeModule = DefaultRuntimeModule
	}
	return &Resolver{
		table:         table,
		runtimeModule: runtimeModule,
		visiting:      make(map[*scope.Binding]bool),
	}
}

// Classify returns the classification of e evaluated in scope s.
//
// Only two shapes are classified: a call `Serializable("name", ...)` of the
// marker imported from the runtime module, and an identifier whose binding
// resolves. Parentheses are ignored.
func (r *Resolver) Classify(e ast.Expr, s *scope.Scope) (ComponentType, bool) {
	switch d := ast.Unparen(e).Data.(type) {
	case *ast.ECall:
		return r.classifyCall(d, s)
	case *ast.EIdentifier:
		return r.ClassifyBinding(r.lookup(d, s))
	}
	return ComponentType{}, false
}

func (r *Resolver) lookup(id *ast.EIdentifier, s *scope.Scope) *scope.Binding {
	if recorded := r.table.ScopeOf(id); recorded != nil {
		s = recorded
	}
	if s == nil {
		s = r.table.Program
	}
	return r.table.Lookup(s, id.Name)
}

func (r *Resolver) classifyCall(call *ast.ECall, s *scope.Scope) (ComponentType, bool) {
	callee, ok := ast.Unparen(call.Target).Data.(*ast.EIdentifier)
	if !ok || !r.IsMarker(r.lookup(callee, s)) || len(call.Args) == 0 {
		return ComponentType{}, false
	}
	name, ok := ast.Unparen(call.Args[0]).Data.(*ast.EString)
	if !ok {
		return ComponentType{}, false
	}
	return Serializable(name.Value), true
}

// IsMarker reports whether b is the Serializable marker imported by name from
// the runtime module.
func (r *Resolver) IsMarker(b *scope.Binding) bool {
	return b != nil &&
		b.Kind == scope.KindImport &&
		!b.Import.TypeOnly &&
		b.Import.Imported == SerializableMarker &&
		b.Import.Source == r.runtimeModule
}

type possibleType struct {
	component ComponentType
	ok        bool
}

// ClassifyBinding classifies a local variable from its value history.
//
// The history is walked backwards from the most recent event. Every event is
// classified and collected, and the walk stops after the first event that is
// not nested in an if statement or a ternary. The binding is classified only
// when the collected set holds exactly one resolvable classification.
func (r *Resolver) ClassifyBinding(b *scope.Binding) (ComponentType, bool) {
	types := r.possibleTypes(b)
	if len(types) != 1 || !types[0].ok {
		return ComponentType{}, false
	}
	return types[0].component, true
}

// possibleTypes returns the distinct classifications the backward history
// walk collects for b. Unresolvable events contribute one shared entry.
func (r *Resolver) possibleTypes(b *scope.Binding) []possibleType {
	if b == nil || b.Kind != scope.KindVariable || r.visiting[b] {
		return nil
	}
	r.visiting[b] = true
	defer delete(r.visiting, b)

	var types []possibleType
	for i := len(b.Events) - 1; i >= 0; i-- {
		ev := b.Events[i]

		var t possibleType
		switch ev.Kind {
		case scope.EventInit, scope.EventAssign:
			t.component, t.ok = r.Classify(ev.Value, ev.Scope)
		}
		if !containsType(types, t) {
			types = append(types, t)
		}

		if !ev.Conditional {
			break
		}
	}
	return types
}

func containsType(types []possibleType, t possibleType) bool {
	for _, existing := range types {
		if existing.ok == t.ok && (!t.ok || existing.component == t.component) {
			return true
		}
	}
	return false
}
