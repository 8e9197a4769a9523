package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/rjt/pkg/ast"
)

func ident(name string) ast.Expr {
	return ast.Expr{Data: &ast.EIdentifier{Name: name}}
}

func str(value string) ast.Expr {
	return ast.Expr{Data: &ast.EString{Value: value}}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a\nb\tc", `"a\nb\tc"`},
		{`back\slash`, `"back\\slash"`},
		{"\x01", `"\x01"`},
		{"line\u2028sep", `"line\u2028sep"`},
		{"para\u2029sep", `"para\u2029sep"`},
		{"héllo", `"héllo"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "name", Key("name"))
	assert.Equal(t, "$x_1", Key("$x_1"))
	assert.Equal(t, `"data-id"`, Key("data-id"))
	assert.Equal(t, `"1a"`, Key("1a"))
}

func TestPrintObjectLayout(t *testing.T) {
	obj := ast.Expr{Data: &ast.EObject{Properties: []ast.Property{
		{Key: "type", Value: str("__RJT_COMPONENT__")},
		{Key: "props", Value: ast.Expr{Data: &ast.EObject{Properties: []ast.Property{
			{Kind: ast.PropertyShorthand, Key: "x", Value: ident("x")},
			{Kind: ast.PropertySpread, Value: ident("rest")},
		}}}},
	}}}

	got := Print([]ast.Stmt{{Data: &ast.SReturn{Value: obj}}})
	want := `return {
  type: "__RJT_COMPONENT__",
  props: {
    x,
    ...rest
  }
};
`
	assert.Equal(t, want, got)
}

func TestPrintArrowParenthesizesObjectBody(t *testing.T) {
	arrow := ast.Expr{Data: &ast.EArrow{
		Fn:    ast.Fn{Params: ast.Text{Code: "x"}},
		Value: ast.Expr{Data: &ast.EObject{}},
	}}
	assert.Equal(t, "(x) => ({})", PrintExpr(arrow))
}

func TestPrintExpressionStatementStartingWithObject(t *testing.T) {
	stmt := ast.Stmt{Data: &ast.SExpr{Value: ast.Expr{Data: &ast.EDot{
		Target: ast.Expr{Data: &ast.EObject{}},
		Name:   "x",
	}}}}
	assert.Equal(t, "(({}).x);\n", Print([]ast.Stmt{stmt}))
}

func TestPrintFunctionDeclaration(t *testing.T) {
	fn := ast.Stmt{Data: &ast.SExportDefault{Decl: &ast.Stmt{Data: &ast.SFunction{Fn: ast.Fn{
		Params: ast.Text{Code: "props: Props"},
		Body: []ast.Stmt{
			{Data: &ast.SLocal{Kind: "const", Decls: []ast.Decl{{Name: "a", Value: ast.Expr{Data: &ast.ENumber{Raw: "1"}}}}}},
			{Data: &ast.SReturn{Value: ast.Expr{Data: &ast.ECall{Target: ident("T"), Args: []ast.Expr{ident("a")}}}}},
		},
	}}}}}

	want := `export default function (props: Props) {
  const a = 1;
  return T(a);
}
`
	assert.Equal(t, want, Print([]ast.Stmt{fn}))
}

func TestPrintVerbatimStatements(t *testing.T) {
	stmts := []ast.Stmt{
		{Data: &ast.SImport{Raw: `import { A } from "./a"`}},
		{Data: &ast.STypeDecl{Code: "type Props = { a: string };"}},
		{Data: &ast.SRaw{Parts: []ast.RawPart{
			{Text: "for (const i of "},
			{Hole: &ast.Node{Expr: &ast.Expr{Data: &ast.EIdentifier{Name: "xs"}}}},
			{Text: ") {}"},
		}}},
	}

	want := `import { A } from "./a";
type Props = { a: string };
for (const i of xs) {}
`
	assert.Equal(t, want, Print(stmts))
}

func TestPrintImportFields(t *testing.T) {
	tests := []struct {
		name string
		imp  ast.SImport
		want string
	}{
		{"default", ast.SImport{Source: "./Header", Default: "Header"}, `import Header from "./Header";`},
		{"namespace", ast.SImport{Source: "ui", Default: "UI", Namespace: "ui"}, `import UI, * as ui from "ui";`},
		{"named", ast.SImport{Source: "./s", Names: []ast.ImportName{
			{Imported: "A", Local: "A"},
			{Imported: "B", Local: "C"},
			{Imported: "a-b", Local: "ab"},
		}}, `import { A, B as C, "a-b" as ab } from "./s";`},
		{"type only", ast.SImport{Source: "./t", TypeOnly: true, Names: []ast.ImportName{{Imported: "P", Local: "P"}}}, `import type { P } from "./t";`},
		{"side effect", ast.SImport{Source: "./styles.css"}, `import "./styles.css";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := tt.imp
			assert.Equal(t, tt.want+"\n", Print([]ast.Stmt{{Data: &imp}}))
		})
	}
}

func TestPrintUnary(t *testing.T) {
	neg := ast.Expr{Data: &ast.EUnary{Op: "-", Value: ast.Expr{Data: &ast.EUnary{Op: "-", Value: ident("x")}}}}
	assert.Equal(t, "- -x", PrintExpr(neg))

	typeOf := ast.Expr{Data: &ast.EUnary{Op: "typeof", Value: ident("x")}}
	assert.Equal(t, "typeof x", PrintExpr(typeOf))

	post := ast.Expr{Data: &ast.EUnary{Op: "++", Value: ident("i"), Postfix: true}}
	assert.Equal(t, "i++", PrintExpr(post))
}

func TestPrintJSX(t *testing.T) {
	el := ast.Expr{Data: &ast.EJSXElement{
		Tag: ident("Box"),
		Attrs: []ast.JSXAttr{
			{Name: "title", Value: str(`a "b"`)},
			{Name: "n", Container: true, Value: ast.Expr{Data: &ast.ENumber{Raw: "1"}}},
			{Name: "disabled"},
			{Spread: true, Value: ident("rest")},
		},
		Children: []ast.Expr{{Data: &ast.EJSXText{Text: "hi {x}"}}},
	}}
	assert.Equal(t, `<Box title="a &#34;b&#34;" n={1} disabled {...rest}>hi &#123;x&#125;</Box>`, PrintExpr(el))

	frag := ast.Expr{Data: &ast.EJSXElement{}}
	assert.Equal(t, "<></>", PrintExpr(frag))
}
