package ast

import "strings"

const objectName = "java.lang.Object"

// Well-known types. They are built in init because their declarations refer
// to each other.
var (
	ObjectType *ClassNode
	// UnknownType is the type of the null literal.
	UnknownType *ClassNode

	BoolType   *ClassNode
	ByteType   *ClassNode
	ShortType  *ClassNode
	CharType   *ClassNode
	IntType    *ClassNode
	LongType   *ClassNode
	FloatType  *ClassNode
	DoubleType *ClassNode
	VoidType   *ClassNode

	BooleanWrapper   *ClassNode
	ByteWrapper      *ClassNode
	ShortWrapper     *ClassNode
	CharacterWrapper *ClassNode
	IntegerWrapper   *ClassNode
	LongWrapper      *ClassNode
	FloatWrapper     *ClassNode
	DoubleWrapper    *ClassNode
	VoidWrapper      *ClassNode

	NumberType     *ClassNode
	BigIntegerType *ClassNode
	BigDecimalType *ClassNode

	StringType       *ClassNode
	GStringType      *ClassNode
	CharSequenceType *ClassNode
	ComparableType   *ClassNode
	SerializableType *ClassNode
	CloneableType    *ClassNode
	ClassType        *ClassNode

	IterableType      *ClassNode
	IteratorType      *ClassNode
	CollectionType    *ClassNode
	ListType          *ClassNode
	ArrayListType     *ClassNode
	LinkedListType    *ClassNode
	SetType           *ClassNode
	HashSetType       *ClassNode
	LinkedHashSetType *ClassNode
	MapType           *ClassNode
	MapEntryType      *ClassNode
	HashMapType       *ClassNode
	LinkedHashMapType *ClassNode
	RangeType         *ClassNode
	IntRangeType      *ClassNode

	ClosureType    *ClassNode
	MatcherType    *ClassNode
	PatternType    *ClassNode
	FunctionType   *ClassNode
	BiFunctionType *ClassNode
	SupplierType   *ClassNode
	ConsumerType   *ClassNode
	PredicateType  *ClassNode
	RunnableType   *ClassNode
	ComparatorType *ClassNode

	ThrowableType                *ClassNode
	ExceptionType                *ClassNode
	RuntimeExceptionType         *ClassNode
	IllegalArgumentExceptionType *ClassNode

	MathType *ClassNode
)

var known = map[string]*ClassNode{}

// Known returns a well-known class by qualified or simple name.
func Known(name string) *ClassNode {
	return known[name]
}

// KnownClasses returns every well-known declaration in declaration order.
func KnownClasses() []*ClassNode {
	return knownOrder
}

var knownOrder []*ClassNode

func register(c *ClassNode) *ClassNode {
	known[c.Name] = c
	if !c.primitive {
		simple := c.Name
		if i := strings.LastIndex(simple, "."); i >= 0 {
			simple = simple[i+1:]
		}
		known[strings.ReplaceAll(simple, "$", ".")] = c
	}
	knownOrder = append(knownOrder, c)
	return c
}

func primitiveClass(name string) *ClassNode {
	return register(&ClassNode{Name: name, Modifiers: Public | Final, primitive: true})
}

func class(name string, mods Modifier, super *ClassNode, generics []*GenericsType, ifaces ...*ClassNode) *ClassNode {
	c := &ClassNode{Name: name, Modifiers: Public | mods, SuperClass: super, Interfaces: ifaces, Generics: generics}
	return register(c)
}

func iface(name string, generics []*GenericsType, extends ...*ClassNode) *ClassNode {
	return register(&ClassNode{Name: name, Modifiers: Public | Interface | Abstract, Interfaces: extends, Generics: generics})
}

func params(names ...string) []*GenericsType {
	out := make([]*GenericsType, len(names))
	for i, n := range names {
		out[i] = TypeParam(n)
	}
	return out
}

// ph returns the placeholder usage for type parameter i of c.
func ph(c *ClassNode, i int) *ClassNode {
	return c.Generics[i].Type
}

func def(owner *ClassNode, mods Modifier, name string, ret *ClassNode, ptypes ...*ClassNode) *MethodNode {
	ps := make([]*Parameter, len(ptypes))
	for i, t := range ptypes {
		ps[i] = NewParam(paramName(i), t)
	}
	m := &MethodNode{Name: name, Modifiers: Public | mods, ReturnType: ret, Params: ps}
	if owner.IsInterface() && !mods.Has(Static) && !mods.Has(Default) {
		m.Modifiers |= Abstract
	}
	return owner.AddMethod(m)
}

func ctor(owner *ClassNode, ptypes ...*ClassNode) *MethodNode {
	ps := make([]*Parameter, len(ptypes))
	for i, t := range ptypes {
		ps[i] = NewParam(paramName(i), t)
	}
	return owner.AddConstructor(&MethodNode{Modifiers: Public, Params: ps})
}

func paramName(i int) string {
	return "arg" + string(rune('0'+i))
}

func init() {
	ObjectType = register(&ClassNode{Name: objectName, Modifiers: Public})
	UnknownType = &ClassNode{Name: "<unknown>", SuperClass: ObjectType}

	BoolType = primitiveClass("boolean")
	ByteType = primitiveClass("byte")
	ShortType = primitiveClass("short")
	CharType = primitiveClass("char")
	IntType = primitiveClass("int")
	LongType = primitiveClass("long")
	FloatType = primitiveClass("float")
	DoubleType = primitiveClass("double")
	VoidType = primitiveClass("void")

	SerializableType = iface("java.io.Serializable", nil)
	CloneableType = iface("java.lang.Cloneable", nil)
	ComparableType = iface("java.lang.Comparable", params("T"))
	CharSequenceType = iface("java.lang.CharSequence", nil)
	ClassType = class("java.lang.Class", Final, ObjectType, params("T"), SerializableType)

	StringType = class("java.lang.String", Final, ObjectType, nil, SerializableType, CharSequenceType, nil)
	StringType.Interfaces[2] = ComparableType.Parameterize(StringType)
	GStringType = class("groovy.lang.GString", Abstract, ObjectType, nil, CharSequenceType, SerializableType)

	NumberType = class("java.lang.Number", Abstract, ObjectType, nil, SerializableType)
	wrapper := func(name string, super *ClassNode) *ClassNode {
		c := class(name, Final, super, nil, nil)
		c.Interfaces[0] = ComparableType.Parameterize(c)
		return c
	}
	BooleanWrapper = wrapper("java.lang.Boolean", ObjectType)
	CharacterWrapper = wrapper("java.lang.Character", ObjectType)
	ByteWrapper = wrapper("java.lang.Byte", NumberType)
	ShortWrapper = wrapper("java.lang.Short", NumberType)
	IntegerWrapper = wrapper("java.lang.Integer", NumberType)
	LongWrapper = wrapper("java.lang.Long", NumberType)
	FloatWrapper = wrapper("java.lang.Float", NumberType)
	DoubleWrapper = wrapper("java.lang.Double", NumberType)
	BigIntegerType = class("java.math.BigInteger", 0, NumberType, nil, nil)
	BigIntegerType.Interfaces = []*ClassNode{ComparableType.Parameterize(BigIntegerType)}
	BigDecimalType = class("java.math.BigDecimal", 0, NumberType, nil, nil)
	BigDecimalType.Interfaces = []*ClassNode{ComparableType.Parameterize(BigDecimalType)}
	VoidWrapper = class("java.lang.Void", Final, ObjectType, nil)

	IteratorType = iface("java.util.Iterator", params("E"))
	IterableType = iface("java.lang.Iterable", params("T"))
	CollectionType = iface("java.util.Collection", params("E"))
	CollectionType.Interfaces = []*ClassNode{IterableType.Parameterize(ph(CollectionType, 0))}
	ListType = iface("java.util.List", params("E"))
	ListType.Interfaces = []*ClassNode{CollectionType.Parameterize(ph(ListType, 0))}
	SetType = iface("java.util.Set", params("E"))
	SetType.Interfaces = []*ClassNode{CollectionType.Parameterize(ph(SetType, 0))}
	listImpl := func(name string) *ClassNode {
		c := class(name, 0, ObjectType, params("E"))
		c.Interfaces = []*ClassNode{ListType.Parameterize(ph(c, 0)), SerializableType, CloneableType}
		return c
	}
	ArrayListType = listImpl("java.util.ArrayList")
	LinkedListType = listImpl("java.util.LinkedList")
	setImpl := func(name string) *ClassNode {
		c := class(name, 0, ObjectType, params("E"))
		c.Interfaces = []*ClassNode{SetType.Parameterize(ph(c, 0)), SerializableType, CloneableType}
		return c
	}
	HashSetType = setImpl("java.util.HashSet")
	LinkedHashSetType = class("java.util.LinkedHashSet", 0, nil, params("E"))
	LinkedHashSetType.SuperClass = HashSetType.Parameterize(ph(LinkedHashSetType, 0))
	LinkedHashSetType.Interfaces = []*ClassNode{SetType.Parameterize(ph(LinkedHashSetType, 0))}

	MapType = iface("java.util.Map", params("K", "V"))
	MapEntryType = iface("java.util.Map$Entry", params("K", "V"))
	MapEntryType.Outer = MapType
	MapEntryType.Modifiers |= Static
	mapImpl := func(name string) *ClassNode {
		c := class(name, 0, ObjectType, params("K", "V"))
		c.Interfaces = []*ClassNode{MapType.Parameterize(ph(c, 0), ph(c, 1)), SerializableType, CloneableType}
		return c
	}
	HashMapType = mapImpl("java.util.HashMap")
	LinkedHashMapType = class("java.util.LinkedHashMap", 0, nil, params("K", "V"))
	LinkedHashMapType.SuperClass = HashMapType.Parameterize(ph(LinkedHashMapType, 0), ph(LinkedHashMapType, 1))
	LinkedHashMapType.Interfaces = []*ClassNode{MapType.Parameterize(ph(LinkedHashMapType, 0), ph(LinkedHashMapType, 1))}

	RangeType = iface("groovy.lang.Range", []*GenericsType{TypeParam("T", ComparableType)})
	RangeType.Interfaces = []*ClassNode{ListType.Parameterize(ph(RangeType, 0))}
	IntRangeType = class("groovy.lang.IntRange", 0, ObjectType, nil)
	IntRangeType.Interfaces = []*ClassNode{RangeType.Parameterize(IntegerWrapper), SerializableType}

	RunnableType = iface("java.lang.Runnable", nil)
	ClosureType = class("groovy.lang.Closure", Abstract, ObjectType, params("V"), RunnableType, CloneableType, SerializableType)
	MatcherType = class("java.util.regex.Matcher", Final, ObjectType, nil)
	PatternType = class("java.util.regex.Pattern", Final, ObjectType, nil, SerializableType)
	FunctionType = iface("java.util.function.Function", params("T", "R"))
	BiFunctionType = iface("java.util.function.BiFunction", params("T", "U", "R"))
	SupplierType = iface("java.util.function.Supplier", params("T"))
	ConsumerType = iface("java.util.function.Consumer", params("T"))
	PredicateType = iface("java.util.function.Predicate", params("T"))
	ComparatorType = iface("java.util.Comparator", params("T"))

	ThrowableType = class("java.lang.Throwable", 0, ObjectType, nil, SerializableType)
	ExceptionType = class("java.lang.Exception", 0, ThrowableType, nil)
	RuntimeExceptionType = class("java.lang.RuntimeException", 0, ExceptionType, nil)
	IllegalArgumentExceptionType = class("java.lang.IllegalArgumentException", 0, RuntimeExceptionType, nil)
	MathType = class("java.lang.Math", Final, ObjectType, nil)

	declareObjectMembers()
	declareTextMembers()
	declareNumberMembers()
	declareCollectionMembers()
	declareFunctionalMembers()
	declareMiscMembers()
}

func declareObjectMembers() {
	def(ObjectType, 0, "equals", BoolType, ObjectType)
	def(ObjectType, 0, "hashCode", IntType)
	def(ObjectType, 0, "toString", StringType)
	def(ObjectType, 0, "getClass", ClassType.ParameterizeWith(WildcardType()))
	ctor(ObjectType)

	def(ComparableType, 0, "compareTo", IntType, ph(ComparableType, 0))

	def(ClassType, 0, "getName", StringType)
	def(ClassType, 0, "getSimpleName", StringType)
	def(ClassType, 0, "newInstance", ph(ClassType, 0))
	def(ClassType, 0, "isInstance", BoolType, ObjectType)
}

func declareTextMembers() {
	def(CharSequenceType, 0, "length", IntType)
	def(CharSequenceType, 0, "charAt", CharType, IntType)
	def(CharSequenceType, 0, "toString", StringType)

	s := StringType
	ctor(s)
	ctor(s, s)
	def(s, 0, "length", IntType)
	def(s, 0, "charAt", CharType, IntType)
	def(s, 0, "isEmpty", BoolType)
	def(s, 0, "substring", s, IntType)
	def(s, 0, "substring", s, IntType, IntType)
	def(s, 0, "toUpperCase", s)
	def(s, 0, "toLowerCase", s)
	def(s, 0, "trim", s)
	def(s, 0, "concat", s, s)
	def(s, 0, "contains", BoolType, CharSequenceType)
	def(s, 0, "startsWith", BoolType, s)
	def(s, 0, "endsWith", BoolType, s)
	def(s, 0, "indexOf", IntType, s)
	def(s, 0, "indexOf", IntType, IntType)
	def(s, 0, "replace", s, CharSequenceType, CharSequenceType)
	def(s, 0, "split", s.MakeArray(), s)
	def(s, 0, "compareTo", IntType, s)
	def(s, 0, "equals", BoolType, ObjectType)
	def(s, 0, "matches", BoolType, s)
	def(s, Static, "valueOf", s, ObjectType)
	def(s, Static, "valueOf", s, IntType)
	def(s, Static, "valueOf", s, CharType)
	fmtM := def(s, Static, "format", s, s, ObjectType.MakeArray())
	fmtM.Modifiers |= VarArgs

	def(GStringType, 0, "toString", StringType)
	def(GStringType, 0, "length", IntType)
	def(GStringType, 0, "charAt", CharType, IntType)
	def(GStringType, 0, "getValues", ObjectType.MakeArray())

	def(MatcherType, 0, "find", BoolType)
	def(MatcherType, 0, "matches", BoolType)
	def(MatcherType, 0, "group", StringType)
	def(MatcherType, 0, "group", StringType, IntType)
	def(MatcherType, 0, "groupCount", IntType)
	def(PatternType, Static, "compile", PatternType, StringType)
	def(PatternType, 0, "matcher", MatcherType, CharSequenceType)
	def(PatternType, 0, "pattern", StringType)
}

func declareNumberMembers() {
	n := NumberType
	def(n, Abstract, "intValue", IntType)
	def(n, Abstract, "longValue", LongType)
	def(n, Abstract, "floatValue", FloatType)
	def(n, Abstract, "doubleValue", DoubleType)

	boxes := []struct {
		wrapper, prim *ClassNode
		parse         string
	}{
		{ByteWrapper, ByteType, "parseByte"},
		{ShortWrapper, ShortType, "parseShort"},
		{IntegerWrapper, IntType, "parseInt"},
		{LongWrapper, LongType, "parseLong"},
		{FloatWrapper, FloatType, "parseFloat"},
		{DoubleWrapper, DoubleType, "parseDouble"},
		{BooleanWrapper, BoolType, "parseBoolean"},
	}
	for _, b := range boxes {
		ctor(b.wrapper, b.prim)
		def(b.wrapper, Static, "valueOf", b.wrapper, b.prim)
		def(b.wrapper, Static, "valueOf", b.wrapper, StringType)
		def(b.wrapper, Static, b.parse, b.prim, StringType)
		def(b.wrapper, 0, "compareTo", IntType, b.wrapper)
		def(b.wrapper, 0, "equals", BoolType, ObjectType)
		if b.wrapper != BooleanWrapper {
			def(b.wrapper, 0, "intValue", IntType)
			def(b.wrapper, 0, "longValue", LongType)
			def(b.wrapper, 0, "floatValue", FloatType)
			def(b.wrapper, 0, "doubleValue", DoubleType)
			b.wrapper.AddField(&FieldNode{Name: "MAX_VALUE", Modifiers: Public | Static | Final, Type: b.prim})
			b.wrapper.AddField(&FieldNode{Name: "MIN_VALUE", Modifiers: Public | Static | Final, Type: b.prim})
		} else {
			def(b.wrapper, 0, "booleanValue", BoolType)
			b.wrapper.AddField(&FieldNode{Name: "TRUE", Modifiers: Public | Static | Final, Type: b.wrapper})
			b.wrapper.AddField(&FieldNode{Name: "FALSE", Modifiers: Public | Static | Final, Type: b.wrapper})
		}
	}
	ctor(CharacterWrapper, CharType)
	def(CharacterWrapper, Static, "valueOf", CharacterWrapper, CharType)
	def(CharacterWrapper, Static, "isDigit", BoolType, CharType)
	def(CharacterWrapper, 0, "charValue", CharType)
	def(CharacterWrapper, 0, "compareTo", IntType, CharacterWrapper)

	for _, big := range []*ClassNode{BigIntegerType, BigDecimalType} {
		ctor(big, StringType)
		def(big, 0, "add", big, big)
		def(big, 0, "subtract", big, big)
		def(big, 0, "multiply", big, big)
		def(big, 0, "negate", big)
		def(big, 0, "compareTo", IntType, big)
		def(big, 0, "intValue", IntType)
		def(big, 0, "longValue", LongType)
		def(big, 0, "floatValue", FloatType)
		def(big, 0, "doubleValue", DoubleType)
		def(big, Static, "valueOf", big, LongType)
	}
	def(BigDecimalType, 0, "divide", BigDecimalType, BigDecimalType)
	def(BigDecimalType, 0, "scale", IntType)
	def(BigIntegerType, 0, "mod", BigIntegerType, BigIntegerType)

	for _, t := range []*ClassNode{IntType, LongType, FloatType, DoubleType} {
		def(MathType, Static, "max", t, t, t)
		def(MathType, Static, "min", t, t, t)
		def(MathType, Static, "abs", t, t)
	}
	def(MathType, Static, "sqrt", DoubleType, DoubleType)
	def(MathType, Static, "pow", DoubleType, DoubleType, DoubleType)
	def(MathType, Static, "round", LongType, DoubleType)
	MathType.AddField(&FieldNode{Name: "PI", Modifiers: Public | Static | Final, Type: DoubleType})
}

func declareCollectionMembers() {
	itE := ph(IteratorType, 0)
	def(IteratorType, 0, "hasNext", BoolType)
	def(IteratorType, 0, "next", itE)
	def(IteratorType, Default, "remove", VoidType)

	def(IterableType, 0, "iterator", IteratorType.Parameterize(ph(IterableType, 0)))

	c := CollectionType
	cE := ph(c, 0)
	def(c, 0, "size", IntType)
	def(c, 0, "isEmpty", BoolType)
	def(c, 0, "contains", BoolType, ObjectType)
	def(c, 0, "add", BoolType, cE)
	def(c, 0, "remove", BoolType, ObjectType)
	def(c, 0, "addAll", BoolType, c.ParameterizeWith(WildcardExtends(cE)))
	def(c, 0, "clear", VoidType)
	def(c, 0, "iterator", IteratorType.Parameterize(cE))
	def(c, 0, "toArray", ObjectType.MakeArray())

	l := ListType
	lE := ph(l, 0)
	def(l, 0, "get", lE, IntType)
	def(l, 0, "set", lE, IntType, lE)
	def(l, 0, "add", BoolType, lE)
	def(l, 0, "add", VoidType, IntType, lE)
	def(l, 0, "remove", lE, IntType)
	def(l, 0, "indexOf", IntType, ObjectType)
	def(l, 0, "subList", l.Parameterize(lE), IntType, IntType)
	def(l, Default, "sort", VoidType, ComparatorType.ParameterizeWith(WildcardSuper(lE)))

	for _, impl := range []*ClassNode{ArrayListType, LinkedListType, HashSetType, LinkedHashSetType} {
		e := ph(impl, 0)
		ctor(impl)
		ctor(impl, CollectionType.ParameterizeWith(WildcardExtends(e)))
		if impl == ArrayListType || impl == HashSetType {
			ctor(impl, IntType)
		}
	}
	def(LinkedListType, 0, "getFirst", ph(LinkedListType, 0))
	def(LinkedListType, 0, "addFirst", VoidType, ph(LinkedListType, 0))

	m := MapType
	k, v := ph(m, 0), ph(m, 1)
	def(m, 0, "size", IntType)
	def(m, 0, "isEmpty", BoolType)
	def(m, 0, "get", v, ObjectType)
	def(m, 0, "put", v, k, v)
	def(m, 0, "remove", v, ObjectType)
	def(m, 0, "containsKey", BoolType, ObjectType)
	def(m, 0, "containsValue", BoolType, ObjectType)
	def(m, 0, "keySet", SetType.Parameterize(k))
	def(m, 0, "values", CollectionType.Parameterize(v))
	def(m, 0, "entrySet", SetType.Parameterize(MapEntryType.Parameterize(k, v)))
	def(m, Default, "getOrDefault", v, ObjectType, v)
	def(MapEntryType, 0, "getKey", ph(MapEntryType, 0))
	def(MapEntryType, 0, "getValue", ph(MapEntryType, 1))
	def(MapEntryType, 0, "setValue", ph(MapEntryType, 1), ph(MapEntryType, 1))
	for _, impl := range []*ClassNode{HashMapType, LinkedHashMapType} {
		ctor(impl)
		ctor(impl, MapType.ParameterizeWith(WildcardExtends(ph(impl, 0)), WildcardExtends(ph(impl, 1))))
	}

	rT := ph(RangeType, 0)
	def(RangeType, 0, "getFrom", rT)
	def(RangeType, 0, "getTo", rT)
	def(RangeType, 0, "isReverse", BoolType)
	def(RangeType, 0, "contains", BoolType, ObjectType)
	ctor(IntRangeType, IntType, IntType)
	def(IntRangeType, 0, "getFrom", IntegerWrapper)
	def(IntRangeType, 0, "getTo", IntegerWrapper)
	def(IntRangeType, 0, "getFromInt", IntType)
	def(IntRangeType, 0, "getToInt", IntType)
	def(IntRangeType, 0, "size", IntType)
}

func declareFunctionalMembers() {
	def(RunnableType, 0, "run", VoidType)
	def(FunctionType, 0, "apply", ph(FunctionType, 1), ph(FunctionType, 0))
	andThen := def(FunctionType, Default, "andThen",
		FunctionType.Parameterize(ph(FunctionType, 0), PlaceholderType("V")),
		FunctionType.ParameterizeWith(WildcardSuper(ph(FunctionType, 1)), WildcardExtends(PlaceholderType("V"))))
	andThen.Generics = params("V")
	def(BiFunctionType, 0, "apply", ph(BiFunctionType, 2), ph(BiFunctionType, 0), ph(BiFunctionType, 1))
	def(SupplierType, 0, "get", ph(SupplierType, 0))
	def(ConsumerType, 0, "accept", VoidType, ph(ConsumerType, 0))
	def(PredicateType, 0, "test", BoolType, ph(PredicateType, 0))
	def(PredicateType, Default, "negate", PredicateType.Parameterize(ph(PredicateType, 0)))
	def(ComparatorType, 0, "compare", IntType, ph(ComparatorType, 0), ph(ComparatorType, 0))
	def(ComparatorType, Default, "reversed", ComparatorType.Parameterize(ph(ComparatorType, 0)))

	cl := ClosureType
	ctor(cl, ObjectType)
	call := def(cl, 0, "call", ph(cl, 0), ObjectType.MakeArray())
	call.Modifiers |= VarArgs
	def(cl, 0, "call", ph(cl, 0))
	def(cl, 0, "getDelegate", ObjectType)
	def(cl, 0, "setDelegate", VoidType, ObjectType)
	def(cl, 0, "getOwner", ObjectType)
	def(cl, 0, "getMaximumNumberOfParameters", IntType)
	def(cl, 0, "curry", cl.Parameterize(ph(cl, 0)), ObjectType)
	def(cl, 0, "run", VoidType)
}

func declareMiscMembers() {
	for _, t := range []*ClassNode{ThrowableType, ExceptionType, RuntimeExceptionType, IllegalArgumentExceptionType} {
		ctor(t)
		ctor(t, StringType)
	}
	def(ThrowableType, 0, "getMessage", StringType)
	def(ThrowableType, 0, "getCause", ThrowableType)
}

var (
	wrappers   = map[*ClassNode]*ClassNode{}
	primitives = map[*ClassNode]*ClassNode{}
)

func init() {
	pairs := [][2]*ClassNode{
		{BoolType, BooleanWrapper},
		{ByteType, ByteWrapper},
		{ShortType, ShortWrapper},
		{CharType, CharacterWrapper},
		{IntType, IntegerWrapper},
		{LongType, LongWrapper},
		{FloatType, FloatWrapper},
		{DoubleType, DoubleWrapper},
		{VoidType, VoidWrapper},
	}
	for _, p := range pairs {
		wrappers[p[0]] = p[1]
		primitives[p[1]] = p[0]
	}
}

// WrapperOf returns the wrapper class of a primitive, or t itself.
func WrapperOf(t *ClassNode) *ClassNode {
	if t == nil || t.IsArray() || t.IsPlaceholder() {
		return t
	}
	if w, ok := wrappers[t.Decl()]; ok {
		return w
	}
	return t
}

// PrimitiveOf returns the primitive for a wrapper class, or t itself.
func PrimitiveOf(t *ClassNode) *ClassNode {
	if t == nil || t.IsArray() || t.IsPlaceholder() {
		return t
	}
	if p, ok := primitives[t.Decl()]; ok {
		return p
	}
	return t
}

// IsWrapper reports whether t is the wrapper class of a primitive.
func IsWrapper(t *ClassNode) bool {
	if t == nil || t.IsArray() || t.IsPlaceholder() {
		return false
	}
	_, ok := primitives[t.Decl()]
	return ok
}
