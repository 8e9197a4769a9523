package compiler

import (
	"errors"
	"fmt"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/diagnostic"
	"github.com/gnana997/rjt/pkg/printer"
)

// normalizeAttributes turns attribute values written as bare markup
// (`icon=<Icon />`) into expression containers.
func normalizeAttributes(stmts []ast.Stmt) {
	ast.WalkStmts(stmts, func(e *ast.Expr) {
		el, ok := e.Data.(*ast.EJSXElement)
		if !ok {
			return
		}
		for i := range el.Attrs {
			attr := &el.Attrs[i]
			if _, ok := attr.Value.Data.(*ast.EJSXElement); ok && !attr.Container {
				attr.Container = true
			}
		}
	})
}

// rewriter replaces every markup node of a template, innermost first.
type rewriter struct {
	tree *ast.AST
	tags *tagResolver
	err  error
}

func (rw *rewriter) run() error {
	ast.WalkStmts(rw.tree.Stmts, func(e *ast.Expr) {
		if rw.err != nil {
			return
		}
		el, ok := e.Data.(*ast.EJSXElement)
		if !ok {
			return
		}
		if el.IsFragment() {
			e.Data = fragmentNode(el)
			return
		}
		data, err := rw.element(e.Range, el)
		if err != nil {
			rw.err = err
			return
		}
		e.Data = data
	})
	return rw.err
}

func (rw *rewriter) element(r ast.Range, el *ast.EJSXElement) (ast.E, error) {
	var name string
	switch tag := el.Tag.Data.(type) {
	case *ast.EIdentifier:
		name = tag.Name
	case *ast.EDot:
		return nil, rw.semantic(el.TagRange, "JSXMemberExpression tags are not supported.")
	default:
		return nil, rw.semantic(el.TagRange, "JSXNamespacedName tags are not supported.")
	}

	c, ok, err := rw.tags.classify(name, rw.tags.table.ScopeOf(el))
	switch {
	case errors.Is(err, errInlineSerializable):
		return nil, rw.semantic(r, fmt.Sprintf("Serializable %s must be imported, it cannot be declared inside a template", name))
	case err != nil:
		return nil, err
	case !ok:
		return nil, rw.semantic(r, fmt.Sprintf("%s is neither a Template nor a Serializable", name))
	}

	props := buildProps(el)
	if c.Kind == analyzer.KindTemplate {
		return &ast.ECall{
			Target: ast.Expr{Data: &ast.EIdentifier{Name: name}},
			Args:   []ast.Expr{props},
		}, nil
	}
	return &ast.EObject{Properties: []ast.Property{
		stringProperty("type", ComponentTag),
		stringProperty("name", c.Name),
		{Key: "props", Value: props},
	}}, nil
}

func (rw *rewriter) semantic(r ast.Range, msg string) error {
	return diagnostic.NewSemanticError(rw.tree.Path, rw.tree.Source, r, msg)
}

// buildProps turns the attributes and children of an element into the props
// object passed to its component.
func buildProps(el *ast.EJSXElement) ast.Expr {
	props := &ast.EObject{}
	for _, attr := range el.Attrs {
		if attr.Spread {
			props.Properties = append(props.Properties, ast.Property{Kind: ast.PropertySpread, Value: attr.Value})
			continue
		}

		value := attr.Value
		switch {
		case value.IsMissing() && attr.Container:
			value = ast.Expr{Data: &ast.ENull{}}
		case value.IsMissing():
			value = ast.Expr{Data: &ast.EBoolean{Value: true}}
		}
		props.Properties = append(props.Properties, property(attr.Name, value))
	}

	if children := buildChildren(el.Children); len(children) > 0 {
		props.Properties = append(props.Properties, ast.Property{
			Key:   "children",
			Value: ast.Expr{Data: &ast.EArray{Items: children}},
		})
	}
	return ast.Expr{Data: props}
}

func fragmentNode(el *ast.EJSXElement) *ast.EObject {
	return &ast.EObject{Properties: []ast.Property{
		stringProperty("type", FragmentTag),
		{Key: "children", Value: ast.Expr{Data: &ast.EArray{Items: buildChildren(el.Children)}}},
	}}
}

func property(name string, value ast.Expr) ast.Property {
	if id, ok := value.Data.(*ast.EIdentifier); ok && id.Name == name {
		return ast.Property{Kind: ast.PropertyShorthand, Key: name, Value: value}
	}
	return ast.Property{Key: printer.Key(name), Value: value}
}

func stringProperty(key, value string) ast.Property {
	return ast.Property{Key: key, Value: ast.Expr{Data: &ast.EString{Value: value}}}
}
