package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassText(t *testing.T) {
	tests := []struct {
		name string
		typ  *ClassNode
		want string
	}{
		{"raw", ListType, "java.util.List"},
		{"parameterized", ListType.Parameterize(StringType), "java.util.List<java.lang.String>"},
		{"nested", MapType.Parameterize(StringType, ListType.Parameterize(IntegerWrapper)), "java.util.Map<java.lang.String, java.util.List<java.lang.Integer>>"},
		{"wildcard", ListType.ParameterizeWith(WildcardExtends(NumberType)), "java.util.List<? extends java.lang.Number>"},
		{"super wildcard", ComparatorType.ParameterizeWith(WildcardSuper(StringType)), "java.util.Comparator<? super java.lang.String>"},
		{"array", IntType.MakeArray(), "int[]"},
		{"placeholder", PlaceholderType("T"), "T"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Text())
		})
	}
}

func TestRedirect(t *testing.T) {
	ls := ListType.Parameterize(StringType)
	assert.True(t, ls.IsRedirect())
	assert.Same(t, ListType, ls.Decl())
	assert.True(t, ls.SameErasure(ListType))
	assert.False(t, ls.Equal(ListType))
	assert.True(t, ls.Equal(ListType.Parameterize(StringType)))
	assert.True(t, ls.IsInterface())
	assert.Len(t, ls.DeclaredMethods("get"), 1)
	assert.Same(t, ListType, ls.PlainRedirect().Decl())
	assert.Empty(t, ls.PlainRedirect().Generics)
}

func TestPlaceholder(t *testing.T) {
	p := PlaceholderType("T", NumberType)
	assert.True(t, p.IsPlaceholder())
	assert.True(t, p.IsUsingGenerics())
	assert.False(t, p.IsInterface())
	assert.Same(t, NumberType, p.Decl())

	gt := TypeParam("T", NumberType)
	assert.Equal(t, "T extends java.lang.Number", gt.Text())
}

func TestWellKnown(t *testing.T) {
	for _, name := range []string{"String", "java.lang.String", "List", "Map.Entry", "int", "Function", "BigDecimal"} {
		assert.NotNil(t, Known(name), name)
	}
	assert.Nil(t, Known("NoSuchClass"))
	assert.True(t, IntType.IsPrimitive())
	assert.False(t, IntegerWrapper.IsPrimitive())
	assert.Same(t, MapType, MapEntryType.Outer)
	assert.Equal(t, "Entry", MapEntryType.SimpleName())
	assert.Equal(t, "java.util", MapEntryType.PackageName())
}

func TestAddProperty(t *testing.T) {
	c := NewClass("p.Person", Public)
	p := c.AddProperty(NewProperty("name", StringType, 0))
	require.NotNil(t, p.Field)
	assert.True(t, p.Field.IsPrivate())
	assert.Same(t, c, p.Field.Owner)
	assert.Same(t, p, c.Property("name"))
	assert.Same(t, p.Field, c.Field("name"))
	assert.False(t, p.ReadOnly())

	ro := c.AddProperty(NewProperty("id", LongType, Final))
	assert.True(t, ro.ReadOnly())
}

func TestMethodSignature(t *testing.T) {
	c := NewClass("p.Box", Public)
	m := c.AddMethod(NewMethod("put", VoidType, NewParam("v", StringType), NewParam("n", IntType.MakeArray())))
	assert.Equal(t, "p.Box#put(java.lang.String, int[])", m.Signature())
	assert.True(t, m.IsVarArgs())
	assert.False(t, m.IsConstructor())

	k := c.AddConstructor(NewConstructor())
	assert.True(t, k.IsConstructor())
	assert.Same(t, VoidType, k.ReturnType)
}

func TestOps(t *testing.T) {
	tests := []struct {
		text     string
		op       Op
		method   string
		assign   bool
		compound bool
	}{
		{"+", OpPlus, "plus", false, false},
		{"+=", OpPlusAssign, "plus", true, true},
		{"=", OpAssign, "", true, false},
		{"<<", OpLeftShift, "leftShift", false, false},
		{"[]", OpIndex, "getAt", false, false},
		{"=~", OpFind, "", false, false},
		{"in", OpIn, "isCase", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			op, ok := ParseBinaryOp(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.op, op)
			assert.Equal(t, tt.method, op.MethodName())
			assert.Equal(t, tt.assign, op.IsAssignment())
			assert.Equal(t, tt.compound, op.IsCompoundAssignment())
		})
	}
	assert.Equal(t, OpPlus, OpPlusAssign.Base())
}

func TestInspect(t *testing.T) {
	x := NewLocal("x", IntType)
	body := NewBlock(
		NewExprStmt(NewDecl(x, Int(1))),
		&IfStmt{Cond: NewBinary(NewVar(x), OpLess, Int(2)), Then: NewReturn(NewVar(x))},
	)
	var kinds []string
	Inspect(body, func(n Node) bool {
		switch n.(type) {
		case *ConstantExpr:
			kinds = append(kinds, "const")
		case *VariableExpr:
			kinds = append(kinds, "var")
		}
		return true
	})
	assert.Equal(t, []string{"var", "const", "var", "const", "var"}, kinds)
}

func TestClosureImplicitParam(t *testing.T) {
	c := NewImplicitClosure(NewBlock())
	it := c.ImplicitParam()
	require.NotNil(t, it)
	assert.Equal(t, "it", it.Name)
	assert.Same(t, it, c.ImplicitParam())
	assert.Equal(t, []*Parameter{it}, c.EffectiveParams())

	explicit := NewClosure(nil, NewBlock())
	assert.Nil(t, explicit.ImplicitParam())
	assert.Empty(t, explicit.EffectiveParams())
}

func TestExitsAbruptly(t *testing.T) {
	assert.True(t, ExitsAbruptly(NewBlock(NewReturn(nil))))
	assert.False(t, ExitsAbruptly(NewBlock()))
	assert.True(t, ExitsAbruptly(&IfStmt{Cond: Bool(true), Then: &ThrowStmt{}, Else: &BreakStmt{}}))
	assert.False(t, ExitsAbruptly(&IfStmt{Cond: Bool(true), Then: &ThrowStmt{}}))
}

func TestClassMetaOrdering(t *testing.T) {
	var m ClassMeta
	b := &FieldNode{Name: "b"}
	a := &FieldNode{Name: "a"}
	m.RecordFieldRead(b)
	m.RecordFieldRead(a)
	m.RecordFieldRead(b)
	assert.Equal(t, []*FieldNode{a, b}, m.FieldsRead())
	assert.Nil(t, m.FieldsWritten())
}
