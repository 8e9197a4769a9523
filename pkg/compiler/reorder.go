package compiler

import (
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/diagnostic"
)

// propsTypeName is the type alias or interface that types the props
// parameter when the template declares it.
const propsTypeName = "Props"

// synthesize reorders a rewritten template and wraps its statements in the
// default-exported component function. Imports come first, then type
// declarations, then the function whose body is the remaining statements with
// the final expression returned.
func synthesize(stmts []ast.Stmt) ([]ast.Stmt, error) {
	var imports, types, rest []ast.Stmt
	typedProps := false

	for _, stmt := range stmts {
		stmt.Range = ast.Range{}
		switch d := stmt.Data.(type) {
		case *ast.SImport:
			imports = append(imports, stmt)
		case *ast.STypeDecl:
			types = append(types, stmt)
			if d.Name == propsTypeName {
				typedProps = true
			}
		default:
			rest = append(rest, stmt)
		}
	}

	if len(rest) == 0 {
		return nil, diagnostic.NewInternalError("template has no statement left to return")
	}
	last, ok := rest[len(rest)-1].Data.(*ast.SExpr)
	if !ok {
		return nil, diagnostic.NewInternalError("template's last statement is %T, not an expression statement", rest[len(rest)-1].Data)
	}

	body := make([]ast.Stmt, 0, len(rest))
	body = append(body, rest[:len(rest)-1]...)
	body = append(body, ast.Stmt{Data: &ast.SReturn{Value: last.Value}})

	params := ast.Text{Code: "props", Names: []string{"props"}}
	if typedProps {
		params.Code = "props: " + propsTypeName
		params.Refs = []string{propsTypeName}
	}

	component := ast.Stmt{Data: &ast.SFunction{Fn: ast.Fn{Params: params, Body: body}}}

	out := make([]ast.Stmt, 0, len(imports)+len(types)+1)
	out = append(out, imports...)
	out = append(out, types...)
	out = append(out, ast.Stmt{Data: &ast.SExportDefault{Decl: &component}})
	return out, nil
}
