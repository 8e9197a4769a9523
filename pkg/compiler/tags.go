package compiler

import (
	"errors"
	"fmt"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/scope"
)

// errInlineSerializable marks a tag bound to a Serializable declared in the
// template itself.
var errInlineSerializable = errors.New("inline serializable")

// tagResolver classifies the tags of one template.
type tagResolver struct {
	dir      string
	table    *scope.Table
	bindings *analyzer.Resolver
	modules  ModuleResolver
	analyzer *analyzer.Analyzer
	syntax   parser.Syntax
	cache    analyzer.Cache
}

// classify returns the classification of the tag name as seen from s.
// ok is false when the tag cannot be classified.
func (r *tagResolver) classify(name string, s *scope.Scope) (c analyzer.ComponentType, ok bool, err error) {
	if s == nil {
		s = r.table.Program
	}
	b := r.table.Lookup(s, name)
	if b == nil {
		return c, false, nil
	}

	switch b.Kind {
	case scope.KindVariable:
		if local, ok := r.bindings.ClassifyBinding(b); ok && local.Kind == analyzer.KindSerializable {
			return c, false, errInlineSerializable
		}
		return c, false, nil

	case scope.KindImport:
		if b.Import.TypeOnly {
			return c, false, nil
		}
		return r.imported(b.Import)
	}
	return c, false, nil
}

// imported classifies a default or named import by analyzing the module it
// comes from.
func (r *tagResolver) imported(imp *scope.Import) (c analyzer.ComponentType, ok bool, err error) {
	if r.modules == nil {
		return c, false, fmt.Errorf("no module resolver configured to resolve %q", imp.Source)
	}
	path, err := r.modules.Resolve(r.dir, imp.Source)
	if err != nil {
		return c, false, err
	}
	if analyzer.IsTemplatePath(path) {
		return analyzer.Template(), true, nil
	}

	result, err := r.analyzer.Analyze(path, r.syntax, r.cache)
	if err != nil {
		return c, false, fmt.Errorf("failed to analyze %s: %w", path, err)
	}
	c, ok = result.Export(imp.Imported)
	return c, ok, nil
}
