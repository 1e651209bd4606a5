package loader_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/loader"
	"martianoff/stc/stcerr"
)

func load(t *testing.T, src string) *ast.Unit {
	t.Helper()
	u, err := loader.New(nil).Load([]byte(src), "inline.yaml")
	require.NoError(t, err)
	return u
}

func loadErrors(t *testing.T, src string) []*stcerr.Diagnostic {
	t.Helper()
	_, err := loader.New(nil).Load([]byte(src), "inline.yaml")
	require.Error(t, err)
	var multi *stcerr.MultiError
	require.ErrorAs(t, err, &multi)
	var out []*stcerr.Diagnostic
	for _, e := range multi.Errors {
		var d *stcerr.Diagnostic
		require.True(t, errors.As(e, &d))
		assert.Equal(t, stcerr.TypeLoad, d.Type())
		assert.Equal(t, "inline.yaml", d.FilePath)
		out = append(out, d)
	}
	return out
}

func body(m *ast.MethodNode) []ast.Stmt {
	return m.Body.(*ast.BlockStmt).Stmts
}

const counter = `
package: demo
classes:
  - name: Counter
    generics: [T]
    fields:
      - {name: count, type: int, modifiers: [private]}
    properties:
      - {name: label, type: String}
    methods:
      - name: bump
        returns: int
        params: [{name: by, type: int, default: 1}]
        body:
          - decl: {name: step, type: int, init: {var: by}}
          - decl: {name: f, init: {closure: [{return: {var: it}}]}}
          - expr: {call: {name: f, args: [{var: step}]}}
          - expr: {call: {name: helper}}
          - expr: {var: label}
          - expr: {var: missing}
          - return: {binary: {op: "+=", left: {var: count}, right: {var: step}}}
      - name: first
        generics: [U extends Comparable<U>]
        returns: U
        params: [{name: xs, type: "List<U>"}]
        body:
          - return: {call: {obj: {var: xs}, name: get, args: [0]}}
`

func TestLoadBindsNames(t *testing.T) {
	u := load(t, counter)
	require.Len(t, u.Classes, 1)
	c := u.Classes[0]
	assert.Equal(t, "demo.Counter", c.Name)
	assert.True(t, c.Primary)
	require.Len(t, c.Generics, 1)
	assert.Equal(t, "T", c.Generics[0].Name)
	assert.True(t, c.Modifiers.Has(ast.Public))

	bump := c.DeclaredMethods("bump")[0]
	require.Len(t, bump.Params, 1)
	by := bump.Params[0]
	assert.Equal(t, ast.IntType, by.Type)
	assert.Equal(t, int64(1), by.Default.(*ast.ConstantExpr).Value)

	stmts := body(bump)
	require.Len(t, stmts, 7)

	decl := stmts[0].(*ast.ExprStmt).Expr.(*ast.DeclarationExpr)
	assert.Equal(t, "step", decl.Var.Name)
	assert.Same(t, by, decl.Init.(*ast.VariableExpr).Accessed)

	f := stmts[1].(*ast.ExprStmt).Expr.(*ast.DeclarationExpr)
	assert.True(t, f.Var.Dynamic)
	closure := f.Init.(*ast.ClosureExpr)
	assert.False(t, closure.ParamsDeclared)
	ret := closure.Body.(*ast.BlockStmt).Stmts[0].(*ast.ReturnStmt)
	assert.Same(t, closure.ImplicitParam(), ret.Expr.(*ast.VariableExpr).Accessed)

	t.Run("call of a local becomes call()", func(t *testing.T) {
		call := stmts[2].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)
		assert.Equal(t, "call", call.Method)
		assert.False(t, call.ImplicitThis)
		assert.Same(t, f.Var, call.Object.(*ast.VariableExpr).Accessed)
		assert.Same(t, decl.Var, call.Args[0].(*ast.VariableExpr).Accessed)
	})
	t.Run("implicit this call", func(t *testing.T) {
		call := stmts[3].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)
		assert.True(t, call.ImplicitThis)
		assert.Equal(t, "helper", call.Method)
	})
	t.Run("property binding", func(t *testing.T) {
		v := stmts[4].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
		assert.Same(t, c.Property("label"), v.Accessed)
	})
	t.Run("unbound name is dynamic", func(t *testing.T) {
		v := stmts[5].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
		_, ok := v.Accessed.(*ast.DynamicVariable)
		assert.True(t, ok)
	})
	t.Run("field binding", func(t *testing.T) {
		bin := stmts[6].(*ast.ReturnStmt).Expr.(*ast.BinaryExpr)
		assert.Equal(t, ast.OpPlusAssign, bin.Op)
		assert.Same(t, c.Field("count"), bin.Left.(*ast.VariableExpr).Accessed)
	})

	first := c.DeclaredMethods("first")[0]
	require.Len(t, first.Generics, 1)
	assert.True(t, first.ReturnType.IsPlaceholder())
	assert.Equal(t, "java.util.List<U>", first.Params[0].Type.Text())
}

func TestLoadPositions(t *testing.T) {
	u := load(t, counter)
	bump := u.Classes[0].DeclaredMethods("bump")[0]
	decl := body(bump)[0].(*ast.ExprStmt).Expr
	assert.Equal(t, 15, decl.Position().Line)
	assert.Equal(t, 13, decl.Position().Column)
	assert.Equal(t, 11, bump.Pos.Line)
}

func TestLoadNestedAndHierarchy(t *testing.T) {
	u := load(t, `
classes:
  - name: Base
    modifiers: [abstract]
    properties: [{name: id, type: long}]
  - name: Named
    kind: interface
    methods: [{name: name, returns: String}]
  - name: Item
    super: Base
    interfaces: [Named]
    methods:
      - name: name
        returns: String
        body: [{return: {gstring: ["item-", {var: id}]}}]
    classes:
      - name: Part
        modifiers: [static]
        fields: [{name: owner, type: Item}]
`)
	item := u.Class("Item")
	require.NotNil(t, item)
	assert.Equal(t, "Base", item.SuperClass.Name)
	require.Len(t, item.Interfaces, 1)
	assert.True(t, item.Interfaces[0].IsInterface())
	assert.True(t, u.Class("Named").DeclaredMethods("name")[0].IsAbstract())

	part := u.Class("Item$Part")
	require.NotNil(t, part)
	assert.Same(t, item, part.Outer)
	assert.Same(t, item, part.Field("owner").Type)

	gs := body(item.DeclaredMethods("name")[0])[0].(*ast.ReturnStmt).Expr.(*ast.GStringExpr)
	assert.Equal(t, []string{"item-", ""}, gs.Strings)
	assert.Same(t, u.Class("Base").Property("id"), gs.Values[0].(*ast.VariableExpr).Accessed)
}

func TestLoadStatements(t *testing.T) {
	u := load(t, `
classes:
  - name: Flow
    methods:
      - name: run
        returns: void
        params: [{name: xs, type: "List<String>"}, {name: o, type: Object}]
        body:
          - for: {var: {name: s, type: String}, in: {var: xs}, body: [{expr: {var: s}}]}
          - for:
              init: {decl: {name: i, type: int, init: 0}}
              cond: {binary: {op: "<", left: {var: i}, right: 3}}
              update: {postfix: {op: "++", expr: {var: i}}}
              body: [{continue: ~}]
          - if:
              cond: {binary: {op: instanceof, left: {var: o}, right: String}}
              then: [{expr: {call: {obj: {var: o}, name: length}}}]
              else: [{throw: {new: {type: IllegalArgumentException, args: [bad]}}}]
          - switch:
              subject: {var: o}
              cases: [{case: 1, body: [{break: ~}]}]
              default: [{empty: ~}]
          - try:
              body: [{expr: {call: {name: run, args: [{var: xs}, {null: ~}]}}}]
              catches: [{param: {name: e, type: Exception}, body: [{expr: {prop: {obj: {var: e}, name: message}}}]}]
              finally: [{return: ~}]
`)
	stmts := body(u.Classes[0].DeclaredMethods("run")[0])
	require.Len(t, stmts, 5)

	forIn := stmts[0].(*ast.ForStmt)
	assert.True(t, forIn.IsForIn())
	assert.Equal(t, ast.StringType, forIn.Var.Type)
	inner := forIn.Body.(*ast.BlockStmt).Stmts[0].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
	assert.Same(t, forIn.Var, inner.Accessed)

	classic := stmts[1].(*ast.ForStmt)
	assert.False(t, classic.IsForIn())
	init := classic.Init.(*ast.DeclarationExpr)
	assert.Same(t, init.Var, classic.Update.(*ast.PostfixExpr).Expr.(*ast.VariableExpr).Accessed)

	ifs := stmts[2].(*ast.IfStmt)
	cond := ifs.Cond.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpInstanceOf, cond.Op)
	assert.Equal(t, ast.StringType, cond.Right.(*ast.ClassExpr).Type)
	assert.IsType(t, &ast.ThrowStmt{}, ifs.Else.(*ast.BlockStmt).Stmts[0])

	sw := stmts[3].(*ast.SwitchStmt)
	assert.Len(t, sw.Cases, 1)
	assert.NotNil(t, sw.Default)

	try := stmts[4].(*ast.TryCatchStmt)
	require.Len(t, try.Catches, 1)
	assert.Equal(t, ast.ExceptionType, try.Catches[0].Param.Type)
	prop := try.Catches[0].Body.(*ast.BlockStmt).Stmts[0].(*ast.ExprStmt).Expr.(*ast.PropertyExpr)
	assert.Same(t, try.Catches[0].Param, prop.Object.(*ast.VariableExpr).Accessed)
	assert.Nil(t, try.Finally.(*ast.BlockStmt).Stmts[0].(*ast.ReturnStmt).Expr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"malformed yaml", "classes: [", "did not find expected"},
		{"not a mapping", "- a\n- b\n", "a unit must be a mapping"},
		{"unknown type", "classes: [{name: A, fields: [{name: f, type: Nope}]}]", "unable to resolve class Nope"},
		{"unknown modifier", "classes: [{name: A, modifiers: [sealed]}]", "unknown modifier sealed"},
		{"duplicate class", "classes: [{name: A}, {name: A}]", "class A is already defined"},
		{"extends interface", "classes: [{name: I, kind: interface}, {name: A, super: I}]", "A cannot extend interface I"},
		{"implements class", "classes: [{name: B}, {name: A, interfaces: [B]}]", "B is not an interface"},
		{"type argument count", "classes: [{name: A, fields: [{name: f, type: \"Map<String>\"}]}]", "wrong number of type arguments"},
		{"unknown expression", "classes: [{name: A, methods: [{name: m, body: [{frobnicate: 1}]}]}]", "unknown expression frobnicate"},
		{"unknown operator", "classes: [{name: A, methods: [{name: m, body: [{binary: {op: \"<=>>\", left: 1, right: 2}}]}]}]", "unknown binary operator"},
		{"duplicate local", "classes: [{name: A, methods: [{name: m, body: [{decl: {name: x}}, {decl: {name: x}}]}]}]", "variable x is already defined"},
		{"missing import", "imports: [nowhere]\nclasses: [{name: A}]", "unit not found: nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := loadErrors(t, tt.src)
			require.NotEmpty(t, diags)
			assert.Contains(t, diags[0].Msg, tt.want)
		})
	}
}

func TestLoadFileImports(t *testing.T) {
	l := loader.New(nil)
	u, err := l.LoadFile(testdata("point.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "point", u.Name)

	point := u.Class("Point")
	require.NotNil(t, point)
	assert.Equal(t, "demo.Point", point.Name)
	require.Len(t, point.Interfaces, 1)

	shape := u.Class("Shape")
	require.NotNil(t, shape)
	assert.False(t, shape.Primary)
	assert.True(t, shape.Meta.Checked)
	assert.Same(t, shape, point.Interfaces[0].Decl())

	util := u.Class("Util")
	require.NotNil(t, util)
	describe := util.DeclaredMethods("describe")[0]
	assert.Nil(t, describe.Body, "imported units are loaded without bodies")
	assert.True(t, describe.Meta.Checked)

	again, err := l.LoadFile(testdata("point.yaml"))
	require.NoError(t, err)
	assert.Same(t, shape, again.Class("Shape"), "imports are loaded once per loader")
}

func TestLoadSearchPath(t *testing.T) {
	dir := filepath.Dir(testdata("point.yaml"))
	u, err := loader.New([]string{filepath.Join(dir, "lib")}).LoadFile(testdata("uses_search_path.yaml"))
	require.NoError(t, err)
	turn := u.Class("Turn")
	assert.Equal(t, "lib.Angle", turn.Property("angle").Type.Name)
}

func TestLoadImportCycle(t *testing.T) {
	_, err := loader.New(nil).LoadFile(testdata("cycle_a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import cycle")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loader.New(nil).LoadFile(testdata("missing.yaml"))
	assert.Error(t, err)
}
