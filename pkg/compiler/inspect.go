package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/scope"
	"github.com/gnana997/rjt/pkg/validator"
)

// TagUsage describes one element of a template's markup.
type TagUsage struct {
	Tag      string   `json:"tag"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Props    []string `json:"props,omitempty"`
	Spreads  int      `json:"spreads,omitempty"`
	Children int      `json:"children"`
	// Component is the classification of the tag, nil when it has none.
	Component *analyzer.ComponentType `json:"component,omitempty"`
	// Error is the reason the tag would fail to compile.
	Error string `json:"error,omitempty"`
}

// Inspection summarizes the markup of a template without compiling it.
type Inspection struct {
	File       string     `json:"file"`
	Imports    []string   `json:"imports"`
	PropsTyped bool       `json:"propsTyped"`
	Fragments  int        `json:"fragments"`
	Tags       []TagUsage `json:"tags"`
}

// Failed reports whether any tag would fail to compile.
func (in *Inspection) Failed() bool {
	for _, tag := range in.Tags {
		if tag.Error != "" {
			return true
		}
	}
	return false
}

// Inspect reads a template and reports every element it uses together with
// the classification compiling it would apply. Unlike Compile it does not stop
// at the first tag that cannot be classified.
func (c *Compiler) Inspect(filePath string, syntax parser.Syntax, cache analyzer.Cache) (*Inspection, error) {
	source, err := c.analyzer.Reader().ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return c.InspectSource(filePath, source, syntax, cache)
}

// InspectSource is Inspect for content that has already been read.
func (c *Compiler) InspectSource(filePath string, source []byte, syntax parser.Syntax, cache analyzer.Cache) (*Inspection, error) {
	if cache == nil {
		cache = analyzer.NewMapCache()
	}

	tree, err := c.analyzer.Parser().ParseModule(source, filePath, syntax)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(tree); err != nil {
		return nil, err
	}

	in := &Inspection{File: filePath, Imports: []string{}, Tags: []TagUsage{}}
	for _, stmt := range tree.Stmts {
		switch d := stmt.Data.(type) {
		case *ast.SImport:
			in.Imports = append(in.Imports, d.Source)
		case *ast.STypeDecl:
			if d.Name == propsTypeName {
				in.PropsTyped = true
			}
		}
	}

	table := scope.Build(tree.Stmts)
	tags := c.tagResolver(tree, table, syntax, cache)

	ast.WalkStmts(tree.Stmts, func(e *ast.Expr) {
		el, ok := e.Data.(*ast.EJSXElement)
		if !ok {
			return
		}
		if el.IsFragment() {
			in.Fragments++
			return
		}
		in.Tags = append(in.Tags, inspectElement(tags, e.Range, el))
	})

	sort.SliceStable(in.Tags, func(i, j int) bool {
		a, b := in.Tags[i], in.Tags[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return in, nil
}

func inspectElement(tags *tagResolver, r ast.Range, el *ast.EJSXElement) TagUsage {
	usage := TagUsage{
		Line:     r.Start.Line,
		Column:   r.Start.Column,
		Children: len(buildChildren(el.Children)),
	}
	for _, attr := range el.Attrs {
		if attr.Spread {
			usage.Spreads++
			continue
		}
		usage.Props = append(usage.Props, attr.Name)
	}

	switch tag := el.Tag.Data.(type) {
	case *ast.EIdentifier:
		usage.Tag = tag.Name
	case *ast.EDot:
		usage.Tag = tagText(el.Tag)
		usage.Error = "JSXMemberExpression tags are not supported."
		return usage
	default:
		usage.Tag = tagText(el.Tag)
		usage.Error = "JSXNamespacedName tags are not supported."
		return usage
	}

	c, ok, err := tags.classify(usage.Tag, tags.table.ScopeOf(el))
	switch {
	case errors.Is(err, errInlineSerializable):
		usage.Error = fmt.Sprintf("Serializable %s must be imported, it cannot be declared inside a template", usage.Tag)
	case err != nil:
		usage.Error = firstLine(err.Error())
	case !ok:
		usage.Error = fmt.Sprintf("%s is neither a Template nor a Serializable", usage.Tag)
	default:
		usage.Component = &c
	}
	return usage
}

func tagText(e ast.Expr) string {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		return d.Name
	case *ast.EDot:
		return tagText(d.Target) + "." + d.Name
	case *ast.ERaw:
		var b strings.Builder
		for _, part := range d.Parts {
			b.WriteString(part.Text)
		}
		return b.String()
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
