package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/ast"
)

func TestMathResultType(t *testing.T) {
	tests := []struct {
		name  string
		op    ast.Op
		left  *ast.ClassNode
		right *ast.ClassNode
		want  *ast.ClassNode
	}{
		{"int plus int", ast.OpPlus, ast.IntType, ast.IntType, ast.IntType},
		{"Integer plus short", ast.OpPlus, ast.IntegerWrapper, ast.ShortType, ast.IntType},
		{"int minus long", ast.OpMinus, ast.IntType, ast.LongType, ast.LongType},
		{"long times BigInteger", ast.OpMultiply, ast.LongType, ast.BigIntegerType, ast.BigIntegerType},
		{"int plus double", ast.OpPlus, ast.IntType, ast.DoubleType, ast.DoubleType},
		{"power", ast.OpPower, ast.IntType, ast.IntType, ast.NumberType},
		{"int div int", ast.OpDiv, ast.IntType, ast.IntType, ast.BigDecimalType},
		{"int div double", ast.OpDiv, ast.IntType, ast.DoubleType, ast.DoubleType},
		{"Integer div double", ast.OpDiv, ast.IntegerWrapper, ast.DoubleType, ast.DoubleWrapper},
		{"long mod int", ast.OpMod, ast.LongType, ast.IntType, ast.LongType},
		{"less", ast.OpLess, ast.IntType, ast.DoubleType, ast.BoolType},
		{"spaceship", ast.OpCompareTo, ast.IntType, ast.LongType, ast.IntType},
		{"logical", ast.OpLogicalAnd, ast.BoolType, ast.StringType, ast.BoolType},
		{"find", ast.OpFind, ast.StringType, ast.StringType, ast.MatcherType},
		{"shift", ast.OpLeftShift, ast.IntegerWrapper, ast.IntType, ast.IntType},
		{"bitand", ast.OpBitAnd, ast.IntType, ast.IntType, ast.IntType},
		{"bool xor", ast.OpBitXor, ast.BoolType, ast.BooleanWrapper, ast.BoolType},
		{"string plus", ast.OpPlus, ast.StringType, ast.IntType, ast.StringType},
		{"compound", ast.OpPlusAssign, ast.IntType, ast.IntType, ast.IntType},
		{"list shift needs lookup", ast.OpLeftShift, ast.ListType, ast.IntType, nil},
		{"float bitand needs lookup", ast.OpBitAnd, ast.DoubleType, ast.DoubleType, nil},
		{"string minus needs lookup", ast.OpMinus, ast.StringType, ast.StringType, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MathResultType(tt.op, tt.left, tt.right))
		})
	}
}

func TestIsAssignableTo(t *testing.T) {
	tests := []struct {
		name string
		from *ast.ClassNode
		to   *ast.ClassNode
		want bool
	}{
		{"same", ast.StringType, ast.StringType, true},
		{"to Object", ast.IntType, ast.ObjectType, true},
		{"subtype", ast.ArrayListType, ast.CollectionType, true},
		{"interface", ast.StringType, ast.CharSequenceType, true},
		{"boxing", ast.IntType, ast.IntegerWrapper, true},
		{"boxing to super", ast.IntType, ast.NumberType, true},
		{"unboxing", ast.IntegerWrapper, ast.IntType, true},
		{"widening", ast.IntType, ast.LongType, true},
		{"char to int", ast.CharType, ast.IntType, true},
		{"narrowing", ast.LongType, ast.IntType, false},
		{"short to char", ast.ShortType, ast.CharType, false},
		{"null to ref", ast.UnknownType, ast.StringType, true},
		{"null to prim", ast.UnknownType, ast.IntType, false},
		{"unrelated", ast.StringType, ast.IntegerWrapper, false},
		{"string to int", ast.StringType, ast.IntType, false},
		{"array covariance", ast.StringType.MakeArray(), ast.ObjectType.MakeArray(), true},
		{"prim array", ast.IntType.MakeArray(), ast.LongType.MakeArray(), false},
		{"placeholder bound", ast.IntegerWrapper, ast.PlaceholderType("T", ast.NumberType), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAssignableTo(tt.from, tt.to))
		})
	}
}

func TestCheckAssignment(t *testing.T) {
	tests := []struct {
		name  string
		left  *ast.ClassNode
		right *ast.ClassNode
		expr  ast.Expr
		want  AssignResult
	}{
		{"string to int", ast.IntType, ast.StringType, ast.Str("hello"), Incompatible},
		{"int constant to byte", ast.ByteType, ast.IntType, ast.Int(12), Compatible},
		{"big constant to byte", ast.ByteType, ast.IntType, ast.Int(1000), PrecisionLoss},
		{"negative constant to byte", ast.ByteType, ast.IntType, &ast.UnaryExpr{Op: ast.OpNegate, Expr: ast.Int(128)}, Compatible},
		{"double constant to int", ast.IntType, ast.DoubleType, ast.Double(1.5), PrecisionLoss},
		{"long variable to int", ast.IntType, ast.LongType, nil, PrecisionLoss},
		{"double variable to int", ast.IntType, ast.DoubleType, nil, PrecisionLoss},
		{"Long variable to int", ast.IntType, ast.LongWrapper, nil, PrecisionLoss},
		{"BigDecimal variable to int", ast.IntType, ast.BigDecimalType, nil, Incompatible},
		{"int to long", ast.LongType, ast.IntType, nil, Compatible},
		{"Integer from long", ast.IntegerWrapper, ast.LongType, ast.Long(1), Incompatible},
		{"Integer from int", ast.IntegerWrapper, ast.IntType, ast.Int(1), Compatible},
		{"Long from int", ast.LongWrapper, ast.IntType, ast.Int(1), Compatible},
		{"Double from int", ast.DoubleWrapper, ast.IntType, ast.Int(2), Compatible},
		{"Long from Integer", ast.LongWrapper, ast.IntegerWrapper, nil, Compatible},
		{"BigDecimal from int", ast.BigDecimalType, ast.IntType, nil, Compatible},
		{"anything to String", ast.StringType, ast.IntType, nil, Compatible},
		{"anything to boolean", ast.BoolType, ast.ListType, nil, Compatible},
		{"char from one letter", ast.CharType, ast.StringType, ast.Str("a"), Compatible},
		{"null to int", ast.IntType, ast.UnknownType, ast.Null(), Incompatible},
		{"invariant generics", ast.ListType.Parameterize(ast.NumberType), ast.ArrayListType.Parameterize(ast.IntegerWrapper), nil, Incompatible},
		{"wildcard generics", ast.ListType.ParameterizeWith(ast.WildcardExtends(ast.NumberType)), ast.ArrayListType.Parameterize(ast.IntegerWrapper), nil, Compatible},
		{"raw right", ast.ListType.Parameterize(ast.StringType), ast.ArrayListType.PlainRedirect(), nil, Compatible},
		{"closure to SAM", ast.FunctionType.Parameterize(ast.StringType, ast.IntegerWrapper), ast.ClosureType.Parameterize(ast.IntegerWrapper), nil, Compatible},
		{"list literal to array", ast.IntType.MakeArray(), ast.ListType.Parameterize(ast.IntegerWrapper), &ast.ListExpr{}, Compatible},
		{"lub to Number", ast.NumberType, LowestUpperBound(ast.IntType, ast.DoubleType), nil, Compatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckAssignment(tt.left, tt.right, tt.expr))
		})
	}
}

func TestGenericsCompatible(t *testing.T) {
	strs := ast.ListType.Parameterize(ast.StringType)
	assert.True(t, GenericsCompatible(strs, ast.ArrayListType.Parameterize(ast.StringType)))
	assert.False(t, GenericsCompatible(strs, ast.ArrayListType.Parameterize(ast.IntegerWrapper)))
	assert.True(t, GenericsCompatible(ast.ListType.ParameterizeWith(ast.WildcardType()), ast.ArrayListType.Parameterize(ast.IntegerWrapper)))
	assert.True(t, GenericsCompatible(ast.ComparatorType.ParameterizeWith(ast.WildcardSuper(ast.IntegerWrapper)), ast.ComparatorType.Parameterize(ast.NumberType)))
	assert.False(t, GenericsCompatible(ast.ComparatorType.ParameterizeWith(ast.WildcardSuper(ast.NumberType)), ast.ComparatorType.Parameterize(ast.IntegerWrapper)))
}

func TestLowestUpperBound(t *testing.T) {
	tests := []struct {
		name string
		a, b *ast.ClassNode
		want string
	}{
		{"same", ast.StringType, ast.StringType, "java.lang.String"},
		{"same primitive", ast.IntType, ast.IntType, "int"},
		{"boxed numbers", ast.IntType, ast.DoubleType, "(java.lang.Number & java.lang.Comparable<?>)"},
		{"null", ast.UnknownType, ast.IntType, "java.lang.Integer"},
		{"list impls", ast.ArrayListType.Parameterize(ast.StringType), ast.LinkedListType.Parameterize(ast.StringType), "(java.lang.Object & java.io.Serializable & java.lang.Cloneable & java.util.List<java.lang.String>)"},
		{"parameterized list", ast.ListType.Parameterize(ast.StringType), ast.ArrayListType.Parameterize(ast.StringType), "java.util.List<java.lang.String>"},
		{"lists of different elements", ast.ListType.Parameterize(ast.IntegerWrapper), ast.ListType.Parameterize(ast.LongWrapper), "java.util.List<?>"},
		{"unrelated", ast.StringType, ast.IntegerWrapper, "(java.lang.Object & java.io.Serializable & java.lang.Comparable<?>)"},
		{"interfaces", ast.ListType, ast.SetType, "java.util.Collection"},
		{"subtype", ast.IntegerWrapper, ast.NumberType, "java.lang.Number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LowestUpperBound(tt.a, tt.b).Text())
		})
	}
}

func TestLowestUpperBoundProperties(t *testing.T) {
	pool := []*ast.ClassNode{
		ast.StringType, ast.IntType, ast.DoubleType, ast.IntegerWrapper, ast.LongWrapper,
		ast.NumberType, ast.BigDecimalType, ast.ArrayListType.Parameterize(ast.StringType),
		ast.LinkedHashSetType.Parameterize(ast.StringType), ast.ListType, ast.GStringType,
		ast.UnknownType,
	}
	erased := func(t *ast.ClassNode) []string {
		var names []string
		for _, s := range AllSupertypes(t) {
			names = append(names, s.Name)
		}
		return names
	}

	for _, a := range pool {
		// idempotence on single element lists
		assert.Same(t, a, LowestUpperBoundOf([]*ast.ClassNode{a}))
		for _, b := range pool {
			ab, ba := LowestUpperBound(a, b), LowestUpperBound(b, a)
			assert.Equal(t, ab.Text(), ba.Text(), "commutative %s %s", a, b)
			for _, c := range pool {
				left := LowestUpperBound(LowestUpperBound(a, b), c)
				right := LowestUpperBound(a, LowestUpperBound(b, c))
				assert.ElementsMatch(t, erased(left), erased(right), "associative %s %s %s", a, b, c)
			}
		}
	}
}

func TestFindSAM(t *testing.T) {
	tests := []struct {
		name string
		typ  *ast.ClassNode
		want string
	}{
		{"function", ast.FunctionType, "apply"},
		{"parameterized", ast.FunctionType.Parameterize(ast.StringType, ast.IntegerWrapper), "apply"},
		{"comparator ignores defaults", ast.ComparatorType, "compare"},
		{"runnable", ast.RunnableType, "run"},
		{"predicate", ast.PredicateType, "test"},
		{"not an interface", ast.StringType, ""},
		{"several abstract methods", ast.ListType, ""},
		{"abstract class", ast.NumberType, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FindSAM(tt.typ)
			if tt.want == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Name)
		})
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, DistanceExact, Distance(ast.StringType, ast.StringType))
	assert.Equal(t, DistanceBoxing, Distance(ast.IntType, ast.IntegerWrapper))
	assert.Equal(t, DistanceBoxing, Distance(ast.IntegerWrapper, ast.IntType))
	assert.Equal(t, DistanceObject, Distance(ast.StringType, ast.ObjectType))
	assert.Equal(t, NotApplicable, Distance(ast.StringType, ast.IntegerWrapper))
	assert.Equal(t, NotApplicable, Distance(ast.UnknownType, ast.IntType))
	assert.Equal(t, DistanceClosureSAM, Distance(ast.ClosureType, ast.FunctionType))

	assert.Less(t, Distance(ast.IntType, ast.LongType), Distance(ast.IntType, ast.DoubleType))
	assert.Less(t, Distance(ast.StringType, ast.CharSequenceType), Distance(ast.StringType, ast.ObjectType))
	assert.Less(t, Distance(ast.ArrayListType, ast.ListType), Distance(ast.ArrayListType, ast.IterableType))
}

func TestAccessorNames(t *testing.T) {
	assert.Equal(t, []string{"getName", "isName"}, GetterNames("name"))
	assert.Equal(t, "setURL", SetterName("URL"))
	assert.Equal(t, "getxValue", GetterNames("xValue")[0])

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"getName", "name", true},
		{"isEmpty", "empty", true},
		{"setURL", "URL", true},
		{"get", "", false},
		{"getter", "", false},
		{"size", "", false},
	}
	for _, tt := range tests {
		got, ok := PropertyName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
