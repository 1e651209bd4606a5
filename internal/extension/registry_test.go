package extension

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/ast"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	assert.NotNil(t, r)
	assert.Empty(t, r.Modules())
	assert.Empty(t, r.Lookup(ast.StringType, "each"))
}

func TestRegister(t *testing.T) {
	owner := ast.NewClass("test.Helpers", ast.Public)
	shout := ast.NewMethod("shout", ast.StringType, ast.NewParam("self", ast.StringType))
	shout.Modifiers |= ast.Static
	owner.AddMethod(shout)

	r := NewRegistry()
	require.NoError(t, r.Register(Module{Name: "test", Owner: owner, Methods: owner.Methods}))

	assert.True(t, r.Has("test"))
	assert.False(t, r.Has("unknown"))
	require.Len(t, r.Modules(), 1)
	assert.Equal(t, "test", r.Modules()[0].Name)

	var conflict *ConflictError
	err := r.Register(Module{Name: "test", Owner: owner})
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "'test'")
}

func TestRegisterRejectsInstanceMethods(t *testing.T) {
	owner := ast.NewClass("test.Helpers", ast.Public)
	owner.AddMethod(ast.NewMethod("broken", ast.VoidType, ast.NewParam("self", ast.StringType)))
	noReceiver := ast.NewMethod("empty", ast.VoidType)
	noReceiver.Modifiers |= ast.Static

	tests := []struct {
		name   string
		method *ast.MethodNode
	}{
		{"instance method", owner.Methods[0]},
		{"no receiver parameter", noReceiver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var invalid *InvalidMethodError
			err := NewRegistry().Register(Module{Name: "bad", Owner: owner, Methods: []*ast.MethodNode{tt.method}})
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.method.Name, invalid.Method)
		})
	}
}

func TestLookup(t *testing.T) {
	r := Default()

	tests := []struct {
		name     string
		receiver *ast.ClassNode
		method   string
		want     []string
	}{
		{"list each", ast.ListType.Parameterize(ast.StringType), "each", []string{"java.lang.Iterable<T>"}},
		{"map each", ast.HashMapType.Parameterize(ast.StringType, ast.IntegerWrapper), "each", []string{"java.util.Map<K, V>"}},
		{"array each", ast.StringType.MakeArray(), "each", []string{"T[]"}},
		{"primitive array has no generic each", ast.IntType.MakeArray(), "each", nil},
		{"with on anything", ast.StringType, "with", []string{"T"}},
		{"primitive receiver is boxed", ast.IntType, "times", []string{"java.lang.Number"}},
		{"string size", ast.StringType, "size", []string{"java.lang.CharSequence"}},
		{"strings module", ast.StringType, "toInteger", []string{"java.lang.CharSequence"}},
		{"not applicable", ast.IntegerWrapper, "collect", nil},
		{"null receiver", ast.UnknownType, "println", nil},
		{"unknown name", ast.StringType, "frobnicate", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := r.Lookup(tt.receiver, tt.method)
			var got []string
			for _, v := range views {
				got = append(got, v.Extension.Params[0].Type.Text())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestView(t *testing.T) {
	r := Default()
	recv := ast.ListType.Parameterize(ast.StringType)
	views := r.Lookup(recv, "collect")
	require.Len(t, views, 1)
	v := views[0]

	assert.Equal(t, "collect", v.Name)
	assert.Same(t, recv, v.Owner)
	assert.False(t, v.IsStatic())
	assert.True(t, v.IsExtension())
	require.Len(t, v.Params, 1)
	assert.Equal(t, "transform", v.Params[0].Name)
	require.NotNil(t, v.Params[0].ClosureParams)
	assert.Equal(t, []ast.HintRef{{Param: 0, Generic: 0}}, v.Params[0].ClosureParams.Params)
	assert.Equal(t, "org.codehaus.groovy.runtime.DefaultGroovyMethods#collect(java.lang.Iterable<T>, groovy.lang.Closure<R>)", v.Signature())
}

func TestWithDelegatesToReceiver(t *testing.T) {
	views := Default().Lookup(ast.StringType, "with")
	require.Len(t, views, 1)
	hint := views[0].Params[0].DelegatesTo
	require.NotNil(t, hint)
	assert.Equal(t, 0, hint.Target)
	assert.Equal(t, ast.DelegateFirst, hint.Strategy)
}

func TestNewWithNames(t *testing.T) {
	r, err := New(DefaultModuleName)
	require.NoError(t, err)
	assert.True(t, r.Has(DefaultModuleName))
	assert.False(t, r.Has(StringsModuleName))
	assert.Empty(t, r.Lookup(ast.StringType, "toInteger"))

	_, err = New("nope")
	assert.ErrorContains(t, err, "unknown extension module 'nope'")

	_, err = New(DefaultModuleName, DefaultModuleName)
	assert.Error(t, err)
}

func TestConcurrentLookup(t *testing.T) {
	r := Default()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NotEmpty(t, r.Lookup(ast.ArrayListType.Parameterize(ast.IntegerWrapper), "findAll"))
			}
		}()
	}
	wg.Wait()
}
