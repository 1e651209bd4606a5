package types

import (
	"math"
	"math/big"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
)

// AssignResult is the outcome of an assignment compatibility check.
type AssignResult int

const (
	Compatible AssignResult = iota
	Incompatible
	PrecisionLoss
)

func (r AssignResult) String() string {
	switch r {
	case Incompatible:
		return "incompatible"
	case PrecisionLoss:
		return "precision loss"
	default:
		return "compatible"
	}
}

// IsNull reports whether t is the type of the null literal.
func IsNull(t *ast.ClassNode) bool {
	return t == ast.UnknownType
}

// IsAssignableTo reports whether a value of type from can be stored in a
// location of type to, ignoring type arguments. Boxing, unboxing and
// primitive widening are applied.
func IsAssignableTo(from, to *ast.ClassNode) bool {
	if from == nil || to == nil {
		return true
	}
	if IsNull(from) {
		return !to.IsPrimitive()
	}
	if to.IsPlaceholder() {
		return IsAssignableTo(from, to.Decl())
	}
	if from.IsPlaceholder() {
		return IsAssignableTo(from.Decl(), to)
	}
	if to.IsIntersection() {
		for _, c := range directSupers(to) {
			if !IsAssignableTo(from, c) {
				return false
			}
		}
		return true
	}
	if !to.IsArray() && to.Decl() == ast.ObjectType {
		return true
	}
	if from.IsPrimitive() || to.IsPrimitive() {
		return primitiveAssignable(from, to)
	}
	if to.IsArray() {
		if !from.IsArray() {
			return false
		}
		fc, tc := from.Component(), to.Component()
		if fc.IsPrimitive() || tc.IsPrimitive() {
			return fc.SameErasure(tc)
		}
		return IsAssignableTo(fc, tc)
	}
	return IsSubtype(from, to)
}

func primitiveAssignable(from, to *ast.ClassNode) bool {
	switch {
	case from.IsPrimitive() && to.IsPrimitive():
		return canWiden(from, to)
	case from.IsPrimitive():
		// boxing, then reference assignability: int -> Integer, Number, Comparable
		return IsSubtype(Box(from), to)
	default:
		// unboxing, then widening: Integer -> int, long
		p := Unbox(from)
		return p.IsPrimitive() && canWiden(p, to)
	}
}

// IsWildcardLeftHandSide reports whether any value can be assigned to t
// through Groovy-style coercion.
func IsWildcardLeftHandSide(t *ast.ClassNode) bool {
	if t == nil || t.IsArray() || t.IsPlaceholder() {
		return false
	}
	switch t.Decl() {
	case ast.ObjectType, ast.StringType, ast.BoolType, ast.BooleanWrapper, ast.ClassType:
		return true
	}
	return false
}

// CheckAssignment checks that a value of type right, produced by rightExpr
// when known, can be assigned to a location declared as left.
func CheckAssignment(left, right *ast.ClassNode, rightExpr ast.Expr) AssignResult {
	if left == nil || right == nil {
		return Compatible
	}
	if IsNull(right) {
		if left.IsPrimitive() {
			return Incompatible
		}
		return Compatible
	}
	if IsWildcardLeftHandSide(left) {
		return Compatible
	}
	if left.Decl() == ast.CharType || left.Decl() == ast.CharacterWrapper {
		if c, ok := rightExpr.(*ast.ConstantExpr); ok {
			if s, ok := c.Value.(string); ok && len([]rune(s)) == 1 {
				return Compatible
			}
		}
	}
	if IsNumber(left) && IsNumber(right) && (left.IsPrimitive() || ast.IsWrapper(left) || isBigNumber(left)) {
		return checkNumeric(left, right, rightExpr)
	}
	if left.IsArray() && !right.IsArray() && IsSubtype(right, ast.ListType) {
		// [1, 2] initializes an array
		if _, ok := rightExpr.(*ast.ListExpr); ok {
			return Compatible
		}
	}
	if IsClosure(right) && FindSAM(left) != nil {
		return Compatible
	}
	if !IsAssignableTo(right, left) {
		return Incompatible
	}
	if !GenericsCompatible(left, right) {
		return Incompatible
	}
	return Compatible
}

func isBigNumber(t *ast.ClassNode) bool {
	c := CategoryOf(t)
	return !t.IsPrimitive() && (c == BigIntCategory || c == BigDecCategory)
}

func checkNumeric(left, right *ast.ClassNode, rightExpr ast.Expr) AssignResult {
	if isBigNumber(left) {
		switch CategoryOf(left) {
		case BigDecCategory:
			if isBigDecCategory(right) || isFloating(right) {
				return Compatible
			}
		case BigIntCategory:
			if isBigIntCategory(right) {
				return Compatible
			}
		}
		return Incompatible
	}
	lp, rp := Unbox(left), Unbox(right)
	if rp.IsPrimitive() && canWiden(rp, lp) {
		// Long l = 1 boxes after widening
		return Compatible
	}
	if ast.IsWrapper(left) {
		// Integer i = 1L is rejected: a box is never narrowed
		return Incompatible
	}
	if c, ok := rightExpr.(*ast.ConstantExpr); ok {
		if constantFits(c, lp) {
			return Compatible
		}
		return PrecisionLoss
	}
	if u, ok := rightExpr.(*ast.UnaryExpr); ok && u.Op == ast.OpNegate {
		if c, ok := u.Expr.(*ast.ConstantExpr); ok {
			neg := negateConstant(c)
			if neg != nil && constantFits(neg, lp) {
				return Compatible
			}
			return PrecisionLoss
		}
	}
	if rp.IsPrimitive() {
		return PrecisionLoss
	}
	return Incompatible
}

func negateConstant(c *ast.ConstantExpr) *ast.ConstantExpr {
	switch v := c.Value.(type) {
	case int64:
		return &ast.ConstantExpr{Value: -v, Type: c.Type}
	case float64:
		return &ast.ConstantExpr{Value: -v, Type: c.Type}
	case *big.Int:
		return &ast.ConstantExpr{Value: new(big.Int).Neg(v), Type: c.Type}
	}
	return nil
}

// constantFits reports whether the literal c is representable in primitive
// p without loss.
func constantFits(c *ast.ConstantExpr, p *ast.ClassNode) bool {
	var lo, hi float64
	switch p.Decl() {
	case ast.ByteType:
		lo, hi = math.MinInt8, math.MaxInt8
	case ast.ShortType:
		lo, hi = math.MinInt16, math.MaxInt16
	case ast.CharType:
		lo, hi = 0, math.MaxUint16
	case ast.IntType:
		lo, hi = math.MinInt32, math.MaxInt32
	case ast.LongType:
		lo, hi = math.MinInt64, math.MaxInt64
	case ast.FloatType:
		if f, ok := c.Value.(float64); ok {
			return math.Abs(f) <= math.MaxFloat32 && float64(float32(f)) == f
		}
		lo, hi = -math.MaxFloat32, math.MaxFloat32
	case ast.DoubleType:
		if _, ok := c.Value.(float64); ok {
			return true
		}
		lo, hi = -math.MaxFloat64, math.MaxFloat64
	default:
		return false
	}
	switch v := c.Value.(type) {
	case int64:
		f := float64(v)
		return f >= lo && f <= hi
	case float64:
		// floating literals never fit a whole-number type
		return false
	case *big.Int:
		return v.IsInt64() && float64(v.Int64()) >= lo && float64(v.Int64()) <= hi
	}
	return false
}

// GenericsCompatible reports whether actual can be assigned to formal with
// respect to type arguments. Arguments are invariant unless formal uses a
// wildcard. Raw types on either side are accepted.
func GenericsCompatible(formal, actual *ast.ClassNode) bool {
	if formal == nil || actual == nil || IsNull(actual) {
		return true
	}
	if formal.IsArray() && actual.IsArray() {
		return GenericsCompatible(formal.Component(), actual.Component())
	}
	if len(formal.Generics) == 0 || formal.IsPlaceholder() {
		return true
	}
	view := generics.ParameterizedSupertype(Box(actual), formal)
	if view == nil || len(view.Generics) == 0 || len(view.Generics) != len(formal.Generics) {
		return true
	}
	for i, fg := range formal.Generics {
		if !typeArgCompatible(fg, view.Generics[i]) {
			return false
		}
	}
	return true
}

func typeArgCompatible(formal, actual *ast.GenericsType) bool {
	if formal.Placeholder || actual.Placeholder {
		return true
	}
	if formal.Wildcard {
		if formal.LowerBound != nil {
			if actual.Wildcard {
				return actual.LowerBound != nil && IsAssignableTo(formal.LowerBound, actual.LowerBound)
			}
			return IsAssignableTo(formal.LowerBound, actual.Type)
		}
		if len(formal.UpperBounds) == 0 {
			return true
		}
		at := actual.Type
		if actual.Wildcard {
			if actual.LowerBound != nil || len(actual.UpperBounds) == 0 {
				return formal.UpperBounds[0].Decl() == ast.ObjectType
			}
			at = actual.UpperBounds[0]
		}
		for _, ub := range formal.UpperBounds {
			if !IsAssignableTo(at, ub) || !GenericsCompatible(ub, at) {
				return false
			}
		}
		return true
	}
	if actual.Wildcard {
		return false
	}
	if !formal.Type.SameErasure(actual.Type) {
		return false
	}
	return GenericsCompatible(formal.Type, actual.Type) && GenericsCompatible(actual.Type, formal.Type)
}

// IsClosure reports whether t is Closure or a subclass.
func IsClosure(t *ast.ClassNode) bool {
	return t != nil && !t.IsArray() && !t.IsPrimitive() && !IsNull(t) && IsSubtype(t, ast.ClosureType)
}
