package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/ast"
)

func TestParseType(t *testing.T) {
	box := ast.NewClass("demo.Box", ast.Public)
	box.Generics = []*ast.GenericsType{ast.TypeParam("T")}
	names := func(n string) *ast.ClassNode {
		if n == "Box" {
			return box
		}
		return ast.Known(n)
	}

	tests := []struct {
		src     string
		text    string
		dynamic bool
		diamond bool
		err     string
	}{
		{src: "", dynamic: true},
		{src: "def", dynamic: true},
		{src: "int", text: "int"},
		{src: "String", text: "java.lang.String"},
		{src: "int[][]", text: "int[][]"},
		{src: "List<String>", text: "java.util.List<java.lang.String>"},
		{src: "Map<String, List<Integer>>", text: "java.util.Map<java.lang.String, java.util.List<java.lang.Integer>>"},
		{src: "List<? extends Number>", text: "java.util.List<? extends java.lang.Number>"},
		{src: "Comparator<? super Integer>", text: "java.util.Comparator<? super java.lang.Integer>"},
		{src: "List<?>", text: "java.util.List<?>"},
		{src: "Box<String>", text: "demo.Box<java.lang.String>"},
		{src: "Box<>", text: "demo.Box", diamond: true},
		{src: "Box<String, String>", err: "wrong number of type arguments for demo.Box: expected 1, got 2"},
		{src: "Nope", err: "unable to resolve class Nope"},
		{src: "List<String", err: "expected '>'"},
		{src: "String)", err: "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ref, err := parseType(tt.src, names)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dynamic, ref.dynamic)
			assert.Equal(t, tt.diamond, ref.diamond)
			if !tt.dynamic {
				assert.Equal(t, tt.text, ref.typ.Text())
			}
		})
	}
}

func TestParseTypeParam(t *testing.T) {
	g, err := parseTypeParam("T extends Comparable<T>", ast.Known)
	require.NoError(t, err)
	assert.Equal(t, "T", g.Name)
	require.Len(t, g.UpperBounds, 1)
	assert.Equal(t, "java.lang.Comparable<T>", g.UpperBounds[0].Text())

	g, err = parseTypeParam("N extends Number & Comparable<N>", ast.Known)
	require.NoError(t, err)
	assert.Len(t, g.UpperBounds, 2)

	_, err = parseTypeParam("List<T>", ast.Known)
	assert.Error(t, err)
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"A", " B<C & D>", " E"}, splitTopLevel("A& B<C & D>& E", '&'))
}
