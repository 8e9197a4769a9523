// Package printer turns an ast tree back into TypeScript/JSX source text.
//
// Synthesized nodes are printed in a fixed layout (two-space indentation,
// semicolons, double-quoted strings, one object property per line). Nodes
// that came from source keep their original literal text, and raw nodes are
// printed verbatim with their holes spliced back in.
package printer

import (
	"fmt"
	"html"
	"strings"

	"github.com/gnana997/rjt/pkg/ast"
)

// NoCheckDirective is the first line of every compiled module.
const NoCheckDirective = "// @ts-nocheck"

const indentUnit = "  "

// Print renders a statement list as a module. The result ends with a newline.
func Print(stmts []ast.Stmt) string {
	p := &printer{}
	for i, s := range stmts {
		if i > 0 {
			p.line()
		}
		p.stmt(s)
	}
	if len(stmts) > 0 {
		p.b.WriteByte('\n')
	}
	return p.b.String()
}

// PrintExpr renders a single expression at indentation level zero.
func PrintExpr(e ast.Expr) string {
	p := &printer{}
	p.expr(e)
	return p.b.String()
}

// Quote returns s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Key returns name as an object property key, quoted when it is not a valid
// identifier.
func Key(name string) string {
	if ast.IsIdentifierName(name) {
		return name
	}
	return Quote(name)
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) print(s string) {
	p.b.WriteString(s)
}

// line starts a new line at the current indentation.
func (p *printer) line() {
	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat(indentUnit, p.indent))
}

func (p *printer) block(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.indent++
	for _, s := range stmts {
		p.line()
		p.stmt(s)
	}
	p.indent--
	p.line()
	p.print("}")
}

func (p *printer) stmt(s ast.Stmt) {
	switch d := s.Data.(type) {
	case *ast.SImport:
		if d.Raw != "" {
			p.terminated(d.Raw)
		} else {
			p.importStmt(d)
		}

	case *ast.SLocal:
		if d.IsExport {
			p.print("export ")
		}
		p.local(d)
		p.print(";")

	case *ast.SFunction:
		if d.IsExport {
			p.print("export ")
		}
		p.function(d.Fn)

	case *ast.SExpr:
		if startsAmbiguous(d.Value) {
			p.print("(")
			p.expr(d.Value)
			p.print(")")
		} else {
			p.expr(d.Value)
		}
		p.print(";")

	case *ast.SIf:
		p.print("if (")
		p.expr(d.Test)
		p.print(") ")
		p.stmt(d.Yes)
		if d.No != nil {
			p.print(" else ")
			p.stmt(*d.No)
		}

	case *ast.SBlock:
		p.block(d.Stmts)

	case *ast.SReturn:
		if d.Value.IsMissing() {
			p.print("return;")
			return
		}
		p.print("return ")
		p.expr(d.Value)
		p.print(";")

	case *ast.STypeDecl:
		if d.IsExport {
			p.print("export ")
		}
		p.print(d.Code)

	case *ast.SExportClause:
		p.terminated(d.Raw)
	case *ast.SExportFrom:
		p.terminated(d.Raw)
	case *ast.SExportStar:
		p.terminated(d.Raw)

	case *ast.SExportDefault:
		p.print("export default ")
		if d.Decl != nil {
			p.stmt(*d.Decl)
			return
		}
		p.expr(d.Value)
		p.print(";")

	case *ast.SEmpty:
		p.print(";")

	case *ast.SRaw:
		p.raw(d.Parts)

	case nil:

	default:
		panic(fmt.Sprintf("printer: unexpected statement %T", d))
	}
}

// terminated prints a verbatim statement, adding the semicolon if needed.
func (p *printer) terminated(raw string) {
	raw = strings.TrimRightFunc(raw, isSpace)
	p.print(raw)
	if !strings.HasSuffix(raw, ";") {
		p.print(";")
	}
}

// importStmt prints an import from its fields.
func (p *printer) importStmt(d *ast.SImport) {
	p.print("import ")
	if d.TypeOnly {
		p.print("type ")
	}
	var clause []string
	if d.Default != "" {
		clause = append(clause, d.Default)
	}
	if d.Namespace != "" {
		clause = append(clause, "* as "+d.Namespace)
	}
	if len(d.Names) > 0 {
		names := make([]string, len(d.Names))
		for i, n := range d.Names {
			imported := n.Imported
			if !ast.IsIdentifierName(imported) {
				imported = Quote(imported)
			}
			if imported == n.Local {
				names[i] = n.Local
			} else {
				names[i] = imported + " as " + n.Local
			}
		}
		clause = append(clause, "{ "+strings.Join(names, ", ")+" }")
	}
	if len(clause) > 0 {
		p.print(strings.Join(clause, ", "))
		p.print(" from ")
	}
	p.print(Quote(d.Source))
	p.print(";")
}

func (p *printer) local(d *ast.SLocal) {
	p.print(d.Kind)
	p.print(" ")
	for i, decl := range d.Decls {
		if i > 0 {
			p.print(", ")
		}
		if decl.Pattern != nil {
			p.print(decl.Pattern.Code)
		} else {
			p.print(decl.Name)
		}
		if decl.Type != "" {
			p.print(": ")
			p.print(decl.Type)
		}
		if !decl.Value.IsMissing() {
			p.print(" = ")
			p.expr(decl.Value)
		}
	}
}

func (p *printer) fnHead(f ast.Fn) {
	if f.Async {
		p.print("async ")
	}
}

func (p *printer) signature(f ast.Fn) {
	p.print(f.TypeParams)
	p.print("(")
	p.print(f.Params.Code)
	p.print(")")
	if f.ReturnType != "" {
		p.print(": ")
		p.print(f.ReturnType)
	}
}

func (p *printer) function(f ast.Fn) {
	p.fnHead(f)
	p.print("function")
	if f.Generator {
		p.print("*")
	}
	if f.Name != "" {
		p.print(" ")
		p.print(f.Name)
	} else {
		p.print(" ")
	}
	p.signature(f)
	p.print(" ")
	p.block(f.Body)
}

func (p *printer) expr(e ast.Expr) {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		p.print(d.Name)

	case *ast.EString:
		if d.Raw != "" {
			p.print(d.Raw)
		} else {
			p.print(Quote(d.Value))
		}

	case *ast.ENumber:
		p.print(d.Raw)

	case *ast.EBoolean:
		if d.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *ast.ENull:
		p.print("null")

	case *ast.ECall:
		p.target(d.Target)
		if d.Optional {
			p.print("?.")
		}
		p.print(d.TypeArgs)
		p.print("(")
		for i, a := range d.Args {
			if i > 0 {
				p.print(", ")
			}
			p.expr(a)
		}
		p.print(")")

	case *ast.EDot:
		p.target(d.Target)
		if d.Optional {
			p.print("?.")
		} else {
			p.print(".")
		}
		p.print(d.Name)

	case *ast.EIndex:
		p.target(d.Target)
		if d.Optional {
			p.print("?.")
		}
		p.print("[")
		p.expr(d.Index)
		p.print("]")

	case *ast.EFunction:
		p.function(d.Fn)

	case *ast.EArrow:
		p.fnHead(d.Fn)
		p.signature(d.Fn)
		p.print(" => ")
		if d.Value.IsMissing() {
			p.block(d.Fn.Body)
			return
		}
		if _, ok := d.Value.Data.(*ast.EObject); ok {
			p.print("(")
			p.expr(d.Value)
			p.print(")")
			return
		}
		p.expr(d.Value)

	case *ast.EObject:
		p.object(d)

	case *ast.EArray:
		p.print("[")
		for i, item := range d.Items {
			if i > 0 {
				p.print(", ")
			}
			p.expr(item)
		}
		p.print("]")

	case *ast.ESpread:
		p.print("...")
		p.expr(d.Value)

	case *ast.EIf:
		p.expr(d.Test)
		p.print(" ? ")
		p.expr(d.Yes)
		p.print(" : ")
		p.expr(d.No)

	case *ast.EBinary:
		p.expr(d.Left)
		p.print(" ")
		p.print(d.Op)
		p.print(" ")
		p.expr(d.Right)

	case *ast.EUnary:
		p.unary(d)

	case *ast.EParen:
		p.print("(")
		p.expr(d.Value)
		p.print(")")

	case *ast.EJSXElement:
		p.jsx(d)

	case *ast.EJSXText:
		p.print(d.Text)

	case *ast.EJSXContainer:
		p.print("{")
		p.expr(d.Value)
		p.print("}")

	case *ast.ERaw:
		p.raw(d.Parts)

	case nil:

	default:
		panic(fmt.Sprintf("printer: unexpected expression %T", d))
	}
}

// target prints the callee or object of a call or member access,
// parenthesizing synthesized low-precedence operands.
func (p *printer) target(e ast.Expr) {
	wrap := false
	switch d := e.Data.(type) {
	case *ast.EArrow, *ast.EFunction, *ast.EIf, *ast.EBinary, *ast.EObject:
		wrap = true
	case *ast.EUnary:
		wrap = !d.Postfix
	}
	if !wrap {
		p.expr(e)
		return
	}
	p.print("(")
	p.expr(e)
	p.print(")")
}

func (p *printer) unary(d *ast.EUnary) {
	if d.Postfix {
		p.expr(d.Value)
		p.print(d.Op)
		return
	}
	p.print(d.Op)
	switch d.Op {
	case "typeof", "void", "delete", "await":
		p.print(" ")
	case "+", "-":
		if inner, ok := d.Value.Data.(*ast.EUnary); ok && !inner.Postfix && strings.HasPrefix(inner.Op, d.Op) {
			p.print(" ")
		}
	}
	p.expr(d.Value)
}

func (p *printer) object(d *ast.EObject) {
	if len(d.Properties) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.indent++
	for i, prop := range d.Properties {
		p.line()
		switch prop.Kind {
		case ast.PropertyShorthand:
			p.print(prop.Key)
		case ast.PropertySpread:
			p.print("...")
			p.expr(prop.Value)
		case ast.PropertyRaw:
			p.expr(prop.Value)
		default:
			if !prop.KeyExpr.IsMissing() {
				p.print("[")
				p.expr(prop.KeyExpr)
				p.print("]")
			} else {
				p.print(prop.Key)
			}
			p.print(": ")
			p.expr(prop.Value)
		}
		if i < len(d.Properties)-1 {
			p.print(",")
		}
	}
	p.indent--
	p.line()
	p.print("}")
}

func (p *printer) jsx(d *ast.EJSXElement) {
	p.print("<")
	if !d.IsFragment() {
		p.expr(d.Tag)
	}
	for _, a := range d.Attrs {
		p.print(" ")
		if a.Spread {
			p.print("{...")
			p.expr(a.Value)
			p.print("}")
			continue
		}
		p.print(a.Name)
		switch {
		case a.Container:
			p.print("={")
			p.expr(a.Value)
			p.print("}")
		case !a.Value.IsMissing():
			if s, ok := a.Value.Data.(*ast.EString); ok {
				p.print(`="` + html.EscapeString(s.Value) + `"`)
			} else {
				p.print("={")
				p.expr(a.Value)
				p.print("}")
			}
		}
	}
	if len(d.Children) == 0 && !d.IsFragment() {
		p.print(" />")
		return
	}
	p.print(">")
	for _, c := range d.Children {
		switch cd := c.Data.(type) {
		case *ast.EJSXText:
			p.print(escapeJSXText(cd.Text))
		case *ast.ESpread:
			p.print("{")
			p.expr(c)
			p.print("}")
		default:
			p.expr(c)
		}
	}
	p.print("</")
	if !d.IsFragment() {
		p.expr(d.Tag)
	}
	p.print(">")
}

// raw prints text parts verbatim and holes at the current indentation.
func (p *printer) raw(parts []ast.RawPart) {
	for _, part := range parts {
		switch {
		case part.Hole == nil:
			p.print(part.Text)
		case part.Hole.Expr != nil:
			p.expr(*part.Hole.Expr)
		case part.Hole.Stmt != nil:
			p.stmt(*part.Hole.Stmt)
		}
	}
}

// startsAmbiguous reports whether an expression statement would otherwise be
// read as a block or a function declaration.
func startsAmbiguous(e ast.Expr) bool {
	switch d := e.Data.(type) {
	case *ast.EObject, *ast.EFunction:
		return true
	case *ast.ECall:
		return startsAmbiguous(d.Target)
	case *ast.EDot:
		return startsAmbiguous(d.Target)
	case *ast.EIndex:
		return startsAmbiguous(d.Target)
	case *ast.EBinary:
		return startsAmbiguous(d.Left)
	case *ast.EIf:
		return startsAmbiguous(d.Test)
	case *ast.EUnary:
		return d.Postfix && startsAmbiguous(d.Value)
	}
	return false
}

func escapeJSXText(s string) string {
	r := strings.NewReplacer("{", "&#123;", "}", "&#125;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
