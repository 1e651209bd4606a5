package generics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/ast"
	"martianoff/stc/stcerr"
)

// newBox declares class Box<T> { T value; T get(); void set(T v) }.
func newBox() *ast.ClassNode {
	box := ast.NewClass("test.Box", ast.Public)
	box.Generics = []*ast.GenericsType{ast.TypeParam("T")}
	tp := box.Generics[0].Type
	box.AddField(ast.NewField("value", tp, ast.Private))
	box.AddMethod(ast.NewMethod("get", tp))
	box.AddMethod(ast.NewMethod("set", ast.VoidType, ast.NewParam("v", tp)))
	return box
}

func TestBoxRoundTrip(t *testing.T) {
	box := newBox()
	recv := box.Parameterize(ast.StringType)
	get := box.DeclaredMethods("get")[0]

	spec := ClassSpec(recv, box)
	got := ApplyContext(spec, get.ReturnType)
	assert.Same(t, ast.StringType, got)
	assert.Same(t, ast.StringType, FullyResolve(spec, get.ReturnType))
}

func TestParameterizedSupertype(t *testing.T) {
	tests := []struct {
		name   string
		from   *ast.ClassNode
		target *ast.ClassNode
		want   string
	}{
		{"direct", ast.ArrayListType.Parameterize(ast.StringType), ast.ListType, "java.util.List<java.lang.String>"},
		{"transitive", ast.ArrayListType.Parameterize(ast.StringType), ast.IterableType, "java.lang.Iterable<java.lang.String>"},
		{"map impl", ast.LinkedHashMapType.Parameterize(ast.StringType, ast.IntegerWrapper), ast.MapType, "java.util.Map<java.lang.String, java.lang.Integer>"},
		{"fixed argument", ast.IntRangeType, ast.ListType, "java.util.List<java.lang.Integer>"},
		{"self", ast.StringType, ast.StringType, "java.lang.String"},
		{"non generic interface", ast.StringType, ast.ComparableType, "java.lang.Comparable<java.lang.String>"},
		{"raw", ast.ArrayListType.PlainRedirect(), ast.ListType, "java.util.List"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParameterizedSupertype(tt.from, tt.target)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Text())
		})
	}
	assert.Nil(t, ParameterizedSupertype(ast.StringType, ast.ListType))
}

func TestExtractConnections(t *testing.T) {
	tp := ast.PlaceholderType("T")
	up := ast.PlaceholderType("U")

	tests := []struct {
		name   string
		actual *ast.ClassNode
		formal *ast.ClassNode
		want   map[string]string
	}{
		{
			name:   "plain placeholder boxes primitives",
			actual: ast.IntType,
			formal: tp,
			want:   map[string]string{"T": "java.lang.Integer"},
		},
		{
			name:   "through a supertype",
			actual: ast.ArrayListType.Parameterize(ast.StringType),
			formal: ast.CollectionType.Parameterize(tp),
			want:   map[string]string{"T": "java.lang.String"},
		},
		{
			name:   "nested",
			actual: ast.MapType.Parameterize(ast.StringType, ast.ListType.Parameterize(ast.LongWrapper)),
			formal: ast.MapType.Parameterize(tp, ast.ListType.Parameterize(up)),
			want:   map[string]string{"T": "java.lang.String", "U": "java.lang.Long"},
		},
		{
			name:   "wildcard extends",
			actual: ast.ListType.Parameterize(ast.IntegerWrapper),
			formal: ast.ListType.ParameterizeWith(ast.WildcardExtends(tp)),
			want:   map[string]string{"T": "java.lang.Integer"},
		},
		{
			name:   "arrays",
			actual: ast.StringType.MakeArray(),
			formal: tp.MakeArray(),
			want:   map[string]string{"T": "java.lang.String"},
		},
		{
			name:   "mismatch is ignored",
			actual: ast.StringType,
			formal: ast.ListType.Parameterize(tp),
			want:   map[string]string{},
		},
		{
			name:   "null binds nothing",
			actual: ast.UnknownType,
			formal: tp,
			want:   map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Spec{}
			ExtractConnections(spec, tt.actual, tt.formal)
			got := map[string]string{}
			for k, v := range spec {
				got[k] = v.Text()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindKeepsFirstConcrete(t *testing.T) {
	spec := Spec{}
	assert.True(t, spec.Bind("T", ast.TypeArg(ast.StringType)))
	assert.False(t, spec.Bind("T", ast.TypeArg(ast.IntegerWrapper)))
	assert.Equal(t, "java.lang.String", spec["T"].Text())
	assert.False(t, spec.Bind("U", ast.TypeArg(ast.PlaceholderType("U"))))
	assert.NotContains(t, spec, "U")
}

func TestApplyContextLeavesOpenPlaceholders(t *testing.T) {
	tp := ast.PlaceholderType("T")
	up := ast.PlaceholderType("U")
	m := ast.MapType.Parameterize(tp, up)

	spec := Spec{"T": ast.TypeArg(ast.StringType)}
	got := ApplyContext(spec, m)
	assert.Equal(t, "java.util.Map<java.lang.String, U>", got.Text())
	assert.True(t, HasPlaceholders(got))

	assert.Equal(t, "java.util.Map<java.lang.String, java.lang.Object>", FullyResolve(spec, m).Text())
}

func TestApplyContextNoSelfLoop(t *testing.T) {
	tp := ast.PlaceholderType("T")
	spec := Spec{"T": ast.TypeArg(tp)}
	assert.Same(t, tp, ApplyContext(spec, tp))
}

func TestApplyContextDoesNotResubstitute(t *testing.T) {
	// T is bound to a type mentioning U; U must not be substituted inside
	// that bound value.
	tp := ast.PlaceholderType("T")
	up := ast.PlaceholderType("U")
	spec := Spec{
		"T": ast.TypeArg(ast.ListType.Parameterize(up)),
		"U": ast.TypeArg(ast.StringType),
	}
	assert.Equal(t, "java.util.List<U>", ApplyContext(spec, tp).Text())
}

func TestWildcardBindings(t *testing.T) {
	tp := ast.PlaceholderType("T")
	tests := []struct {
		name string
		g    *ast.GenericsType
		want *ast.ClassNode
	}{
		{"extends", ast.WildcardExtends(ast.NumberType), ast.NumberType},
		{"super widens to Object", ast.WildcardSuper(ast.IntegerWrapper), ast.ObjectType},
		{"unbounded", ast.WildcardType(), ast.ObjectType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, ApplyContext(Spec{"T": tt.g}, tp))
		})
	}
}

func TestHigherRankBoundFallsBackToObject(t *testing.T) {
	// <T extends Comparable<T>> with nothing known about T
	self := ast.PlaceholderType("T")
	bounded := ast.PlaceholderType("T", ast.ComparableType.Parameterize(self))
	assert.Same(t, ast.ObjectType, FullyResolve(Spec{}, bounded))
}

func TestArityMismatchIsInternalError(t *testing.T) {
	bad := ast.ListType.Parameterize(ast.StringType, ast.StringType)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := r.(*stcerr.InternalError)
		require.True(t, ok)
		assert.Contains(t, ie.Error(), "2 type arguments")
	}()
	ClassSpec(bad, ast.ListType)
}

func TestErasure(t *testing.T) {
	assert.Same(t, ast.ListType, Erasure(ast.ListType.Parameterize(ast.StringType)))
	assert.Same(t, ast.NumberType, Erasure(ast.PlaceholderType("T", ast.NumberType)))
	assert.Equal(t, "java.util.List[]", Erasure(ast.ListType.Parameterize(ast.StringType).MakeArray()).Text())
}

func TestSpecString(t *testing.T) {
	spec := Spec{"U": ast.TypeArg(ast.IntegerWrapper), "T": ast.TypeArg(ast.StringType)}
	assert.Equal(t, "{T -> java.lang.String, U -> java.lang.Integer}", spec.String())
	assert.NotContains(t, spec.Without("T"), "T")
	assert.Contains(t, spec, "T")
}
