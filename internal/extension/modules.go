package extension

import (
	"fmt"

	"martianoff/stc/internal/ast"
)

// Names of the built-in modules.
const (
	DefaultModuleName = "default"
	StringsModuleName = "strings"
)

// builtins lists the module constructors in registration order.
var builtins = []struct {
	name string
	make func() Module
}{
	{DefaultModuleName, DefaultModule},
	{StringsModuleName, StringsModule},
}

// BuiltinNames returns the names of the built-in modules.
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}

// Builtin returns a fresh copy of the named built-in module.
func Builtin(name string) (Module, bool) {
	for _, b := range builtins {
		if b.name == name {
			return b.make(), true
		}
	}
	return Module{}, false
}

// New returns a registry holding the named built-in modules.
func New(names ...string) (*Registry, error) {
	r := NewRegistry()
	for _, name := range names {
		m, ok := Builtin(name)
		if !ok {
			return nil, fmt.Errorf("unknown extension module '%s'", name)
		}
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry with every built-in module registered.
func Default() *Registry {
	r, err := New(BuiltinNames()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Closure parameter hints, relative to the helper's parameters.
var (
	firstParam             = ast.HintRef{Param: 0, Generic: ast.HintWhole}
	firstParamFirstGeneric = ast.HintRef{Param: 0, Generic: 0}
	firstParamSecondGen    = ast.HintRef{Param: 0, Generic: 1}
	firstParamComponent    = ast.HintRef{Param: 0, Generic: ast.HintComponent}
	intHint                = ast.HintRef{Type: ast.IntType}
)

type moduleBuilder struct {
	owner *ast.ClassNode
}

func (b moduleBuilder) def(name string, ret *ast.ClassNode, gens []*ast.GenericsType, params ...*ast.Parameter) *ast.MethodNode {
	m := ast.NewMethod(name, ret, params...)
	m.Modifiers = ast.Public | ast.Static
	m.Generics = gens
	return b.owner.AddMethod(m)
}

func self(t *ast.ClassNode) *ast.Parameter {
	return ast.NewParam("self", t)
}

func arg(name string, t *ast.ClassNode) *ast.Parameter {
	return ast.NewParam(name, t)
}

func closure(name string, ret *ast.ClassNode, hints ...ast.HintRef) *ast.Parameter {
	t := ast.ClosureType
	if ret != nil {
		t = ast.ClosureType.Parameterize(ret)
	}
	p := ast.NewParam(name, t)
	if len(hints) > 0 {
		p.ClosureParams = &ast.ClosureParamsHint{Params: hints}
	}
	return p
}

func gens(names ...string) []*ast.GenericsType {
	out := make([]*ast.GenericsType, len(names))
	for i, n := range names {
		out[i] = ast.TypeParam(n)
	}
	return out
}

// DefaultModule returns the default method module: operators on
// collections and strings, iteration helpers taking closures, and a few
// methods available on every object.
func DefaultModule() Module {
	b := moduleBuilder{owner: ast.NewClass("org.codehaus.groovy.runtime.DefaultGroovyMethods", ast.Public|ast.Final)}

	list := func(t *ast.ClassNode) *ast.ClassNode { return ast.ListType.Parameterize(t) }
	iter := func(t *ast.ClassNode) *ast.ClassNode { return ast.IterableType.Parameterize(t) }
	coll := func(t *ast.ClassNode) *ast.ClassNode { return ast.CollectionType.Parameterize(t) }
	mapOf := func(k, v *ast.ClassNode) *ast.ClassNode { return ast.MapType.Parameterize(k, v) }

	// operators
	{
		g := gens("T")
		T := g[0].Type
		b.def("plus", list(T), g, self(list(T)), arg("right", ast.CollectionType.ParameterizeWith(ast.WildcardExtends(T))))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("plus", list(T), g, self(list(T)), arg("right", T))
	}
	{
		g := gens("K", "V")
		K, V := g[0].Type, g[1].Type
		b.def("plus", mapOf(K, V), g, self(mapOf(K, V)), arg("right", mapOf(K, V)))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("minus", list(T), g, self(list(T)), arg("removeMe", ast.ObjectType))
	}
	b.def("minus", ast.StringType, nil, self(ast.StringType), arg("target", ast.ObjectType))
	b.def("multiply", ast.StringType, nil, self(ast.CharSequenceType), arg("factor", ast.NumberType))
	{
		g := gens("T")
		T := g[0].Type
		b.def("multiply", list(T), g, self(list(T)), arg("factor", ast.NumberType))
	}
	b.def("div", ast.NumberType, nil, self(ast.NumberType), arg("right", ast.NumberType))
	b.def("power", ast.NumberType, nil, self(ast.NumberType), arg("exponent", ast.NumberType))
	{
		g := gens("T")
		T := g[0].Type
		b.def("leftShift", coll(T), g, self(coll(T)), arg("value", T))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("leftShift", list(T), g, self(list(T)), arg("value", T))
	}
	{
		g := gens("K", "V")
		K, V := g[0].Type, g[1].Type
		b.def("leftShift", mapOf(K, V), g, self(mapOf(K, V)), arg("entry", ast.MapEntryType.Parameterize(K, V)))
	}

	// subscript
	{
		g := gens("T")
		T := g[0].Type
		b.def("getAt", T, g, self(list(T)), arg("idx", ast.IntType))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("getAt", T, g, self(T.MakeArray()), arg("idx", ast.IntType))
	}
	{
		g := gens("K", "V")
		K, V := g[0].Type, g[1].Type
		b.def("getAt", V, g, self(mapOf(K, V)), arg("key", K))
	}
	b.def("getAt", ast.StringType, nil, self(ast.CharSequenceType), arg("index", ast.IntType))
	{
		g := gens("T")
		T := g[0].Type
		b.def("putAt", ast.VoidType, g, self(list(T)), arg("idx", ast.IntType), arg("value", T))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("putAt", ast.VoidType, g, self(T.MakeArray()), arg("idx", ast.IntType), arg("value", T))
	}
	{
		g := gens("K", "V")
		K, V := g[0].Type, g[1].Type
		b.def("putAt", V, g, self(mapOf(K, V)), arg("key", K), arg("value", V))
	}

	// increment and decrement
	b.def("next", ast.StringType, nil, self(ast.StringType))
	b.def("previous", ast.StringType, nil, self(ast.StringType))
	b.def("next", ast.CharacterWrapper, nil, self(ast.CharacterWrapper))
	b.def("previous", ast.CharacterWrapper, nil, self(ast.CharacterWrapper))

	// iteration
	{
		g := gens("T")
		T := g[0].Type
		b.def("each", iter(T), g, self(iter(T)), closure("closure", nil, firstParamFirstGeneric))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("each", T.MakeArray(), g, self(T.MakeArray()), closure("closure", nil, firstParamComponent))
	}
	{
		g := gens("K", "V")
		K, V := g[0].Type, g[1].Type
		b.def("each", mapOf(K, V), g, self(mapOf(K, V)), closure("closure", nil, firstParamFirstGeneric, firstParamSecondGen))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("eachWithIndex", iter(T), g, self(iter(T)), closure("closure", nil, firstParamFirstGeneric, intHint))
	}
	{
		g := gens("T", "R")
		T, R := g[0].Type, g[1].Type
		b.def("collect", list(R), g, self(iter(T)), closure("transform", R, firstParamFirstGeneric))
	}
	{
		g := gens("K", "V", "R")
		K, V, R := g[0].Type, g[1].Type, g[2].Type
		b.def("collect", list(R), g, self(mapOf(K, V)), closure("transform", R, firstParamFirstGeneric, firstParamSecondGen))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("find", T, g, self(iter(T)), closure("closure", nil, firstParamFirstGeneric))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("findAll", list(T), g, self(coll(T)), closure("closure", nil, firstParamFirstGeneric))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("any", ast.BoolType, g, self(iter(T)), closure("predicate", nil, firstParamFirstGeneric))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("every", ast.BoolType, g, self(iter(T)), closure("predicate", nil, firstParamFirstGeneric))
	}
	{
		g := gens("E", "T")
		E, T := g[0].Type, g[1].Type
		b.def("inject", T, g, self(coll(E)), arg("initialValue", T),
			closure("closure", T, ast.HintRef{Param: 1, Generic: ast.HintWhole}, firstParamFirstGeneric))
	}
	b.def("times", ast.VoidType, nil, self(ast.NumberType), closure("closure", nil, intHint))
	{
		g := gens("T")
		T := g[0].Type
		b.def("sort", list(T), g, self(iter(T)))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("first", T, g, self(list(T)))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("last", T, g, self(list(T)))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("toList", list(T), g, self(iter(T)))
	}
	{
		g := gens("T")
		T := g[0].Type
		b.def("toList", list(T), g, self(T.MakeArray()))
	}
	b.def("join", ast.StringType, nil, self(ast.IterableType.ParameterizeWith(ast.WildcardType())), arg("separator", ast.StringType))
	b.def("sum", ast.ObjectType, nil, self(ast.IterableType))
	b.def("sum", ast.IntType, nil, self(ast.IntType.MakeArray()))

	// every object
	{
		g := gens("T", "U")
		T, U := g[0].Type, g[1].Type
		c := closure("closure", U, firstParam)
		c.DelegatesTo = &ast.DelegatesToHint{Target: 0, Strategy: ast.DelegateFirst}
		b.def("with", U, g, self(T), c)
	}
	b.def("println", ast.VoidType, nil, self(ast.ObjectType))
	b.def("println", ast.VoidType, nil, self(ast.ObjectType), arg("value", ast.ObjectType))
	b.def("print", ast.VoidType, nil, self(ast.ObjectType), arg("value", ast.ObjectType))
	b.def("isCase", ast.BoolType, nil, self(ast.ObjectType), arg("switchValue", ast.ObjectType))
	b.def("asBoolean", ast.BoolType, nil, self(ast.ObjectType))
	b.def("size", ast.IntType, nil, self(ast.CharSequenceType))
	b.def("size", ast.IntType, nil, self(ast.MapType))
	b.def("size", ast.IntType, nil, self(ast.ObjectType.MakeArray()))
	b.def("size", ast.IntType, nil, self(ast.IteratorType))

	return Module{Name: DefaultModuleName, Owner: b.owner, Methods: b.owner.Methods}
}

// StringsModule returns string conversion helpers.
func StringsModule() Module {
	b := moduleBuilder{owner: ast.NewClass("org.codehaus.groovy.runtime.StringGroovyMethods", ast.Public|ast.Final)}

	b.def("capitalize", ast.StringType, nil, self(ast.CharSequenceType))
	b.def("reverse", ast.StringType, nil, self(ast.CharSequenceType))
	b.def("toInteger", ast.IntegerWrapper, nil, self(ast.CharSequenceType))
	b.def("toLong", ast.LongWrapper, nil, self(ast.CharSequenceType))
	b.def("toBigDecimal", ast.BigDecimalType, nil, self(ast.CharSequenceType))
	b.def("isNumber", ast.BoolType, nil, self(ast.CharSequenceType))
	b.def("padLeft", ast.StringType, nil, self(ast.CharSequenceType), arg("numberOfChars", ast.NumberType))
	b.def("padRight", ast.StringType, nil, self(ast.CharSequenceType), arg("numberOfChars", ast.NumberType))
	b.def("eachLine", ast.ObjectType, nil, self(ast.CharSequenceType), closure("closure", nil, ast.HintRef{Type: ast.StringType}))
	b.def("toList", ast.ListType.Parameterize(ast.StringType), nil, self(ast.CharSequenceType))

	return Module{Name: StringsModuleName, Owner: b.owner, Methods: b.owner.Methods}
}
