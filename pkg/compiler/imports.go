package compiler

import (
	"strings"
	"unicode"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/scope"
)

// CompiledSpecifier returns the specifier a compiled module imports another
// compiled template by: the template infix and extension are dropped, so
// "./Header.rjt" and "./Header.rjt.tsx" both become "./Header", which names
// the file OutputName writes.
func CompiledSpecifier(specifier string) string {
	for _, suffix := range analyzer.TemplateSuffixes {
		if strings.HasSuffix(specifier, suffix) {
			return strings.TrimSuffix(specifier, suffix)
		}
	}
	return strings.TrimSuffix(specifier, ".rjt")
}

// rewriteTemplateImports points every import of another template at its
// compiled module. Imports that do not resolve are left as written.
func (c *Compiler) rewriteTemplateImports(stmts []ast.Stmt, dir string) {
	if c.resolver == nil {
		return
	}
	for _, stmt := range stmts {
		imp, ok := stmt.Data.(*ast.SImport)
		if !ok || imp.Source == "" {
			continue
		}
		path, err := c.resolver.Resolve(dir, imp.Source)
		if err != nil || !analyzer.IsTemplatePath(path) {
			continue
		}
		if spec := CompiledSpecifier(imp.Source); spec != imp.Source {
			c.logger.Debug("rewrote template import", "from", imp.Source, "to", spec)
			imp.Source = spec
			imp.Raw = ""
		}
	}
}

// eliminateDeadImports drops the import specifiers the compiled module no
// longer reads, typically Serializable components whose tags were rewritten
// into data. Imports without bindings and type-only imports are kept, and
// names that appear in type annotations count as read.
func eliminateDeadImports(stmts []ast.Stmt) []ast.Stmt {
	table := scope.Build(stmts)
	types := typeWords(stmts)
	used := func(name string) bool {
		if types[name] {
			return true
		}
		b := table.Own(table.Program, name)
		return b == nil || b.References > 0
	}

	out := stmts[:0]
	for _, stmt := range stmts {
		imp, ok := stmt.Data.(*ast.SImport)
		if !ok || imp.TypeOnly || !imp.HasBindings() {
			out = append(out, stmt)
			continue
		}

		pruned := *imp
		pruned.Names = nil
		if !used(imp.Default) {
			pruned.Default = ""
		}
		if !used(imp.Namespace) {
			pruned.Namespace = ""
		}
		for _, n := range imp.Names {
			if used(n.Local) {
				pruned.Names = append(pruned.Names, n)
			}
		}

		switch {
		case !pruned.HasBindings():
			continue
		case pruned.Default != imp.Default || pruned.Namespace != imp.Namespace || len(pruned.Names) != len(imp.Names):
			pruned.Raw = ""
			stmt.Data = &pruned
		}
		out = append(out, stmt)
	}
	return out
}

// typeWords collects the identifiers of the unmodeled text of stmts: type
// declarations and annotations, type arguments and raw source.
func typeWords(stmts []ast.Stmt) map[string]bool {
	words := make(map[string]bool)
	add := func(text string) {
		for _, w := range strings.FieldsFunc(text, func(r rune) bool {
			return r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words[w] = true
		}
	}
	addParts := func(parts []ast.RawPart) {
		for _, part := range parts {
			add(part.Text)
		}
	}
	addFn := func(fn *ast.Fn) {
		add(fn.TypeParams)
		add(fn.Params.Code)
		add(fn.ReturnType)
	}

	var visit func(stmts []ast.Stmt)
	visit = func(stmts []ast.Stmt) {
		for i := range stmts {
			switch d := stmts[i].Data.(type) {
			case *ast.STypeDecl:
				add(d.Code)
			case *ast.SLocal:
				for _, decl := range d.Decls {
					add(decl.Type)
				}
			case *ast.SFunction:
				addFn(&d.Fn)
				visit(d.Fn.Body)
			case *ast.SIf:
				visit([]ast.Stmt{d.Yes})
				if d.No != nil {
					visit([]ast.Stmt{*d.No})
				}
			case *ast.SBlock:
				visit(d.Stmts)
			case *ast.SExportDefault:
				if d.Decl != nil {
					visit([]ast.Stmt{*d.Decl})
				}
			case *ast.SRaw:
				addParts(d.Parts)
				for _, part := range d.Parts {
					if part.Hole != nil && part.Hole.Stmt != nil {
						visit([]ast.Stmt{*part.Hole.Stmt})
					}
				}
			}
		}
	}
	visit(stmts)

	ast.WalkStmts(stmts, func(e *ast.Expr) {
		switch d := e.Data.(type) {
		case *ast.ECall:
			add(d.TypeArgs)
		case *ast.EArrow:
			addFn(&d.Fn)
			visit(d.Fn.Body)
		case *ast.EFunction:
			addFn(&d.Fn)
			visit(d.Fn.Body)
		case *ast.ERaw:
			addParts(d.Parts)
		}
	})
	return words
}
