// Package types answers type-relation questions for the checker: numeric
// promotion, assignability, lowest upper bounds, SAM lookup and overload
// distance.
package types

import (
	"martianoff/stc/internal/ast"
)

// Category is the numeric category of a type after unboxing.
type Category int

const (
	NotNumber Category = iota
	IntCategory
	LongCategory
	BigIntCategory
	BigDecCategory
	FloatingCategory
	NumberCategory
)

// Box returns the wrapper of a primitive, or t.
func Box(t *ast.ClassNode) *ast.ClassNode {
	return ast.WrapperOf(t)
}

// Unbox returns the primitive of a wrapper, or t.
func Unbox(t *ast.ClassNode) *ast.ClassNode {
	return ast.PrimitiveOf(t)
}

// CategoryOf returns the numeric category of t.
func CategoryOf(t *ast.ClassNode) Category {
	if t == nil || t.IsArray() {
		return NotNumber
	}
	switch Unbox(t).Decl() {
	case ast.ByteType, ast.ShortType, ast.CharType, ast.IntType:
		return IntCategory
	case ast.LongType:
		return LongCategory
	case ast.FloatType, ast.DoubleType:
		return FloatingCategory
	case ast.BigIntegerType.Decl():
		return BigIntCategory
	case ast.BigDecimalType.Decl():
		return BigDecCategory
	}
	if IsSubtype(t, ast.NumberType) {
		return NumberCategory
	}
	return NotNumber
}

// IsNumber reports whether t is a number once unboxed.
func IsNumber(t *ast.ClassNode) bool {
	return CategoryOf(t) != NotNumber
}

func isIntCategory(t *ast.ClassNode) bool { return CategoryOf(t) == IntCategory }

func isLongCategory(t *ast.ClassNode) bool {
	c := CategoryOf(t)
	return c == IntCategory || c == LongCategory
}

func isBigIntCategory(t *ast.ClassNode) bool {
	c := CategoryOf(t)
	return c == IntCategory || c == LongCategory || c == BigIntCategory
}

func isBigDecCategory(t *ast.ClassNode) bool {
	c := CategoryOf(t)
	return isBigIntCategory(t) || c == BigDecCategory
}

func isFloating(t *ast.ClassNode) bool { return CategoryOf(t) == FloatingCategory }

func isBoolean(t *ast.ClassNode) bool {
	return t != nil && !t.IsArray() && Unbox(t).Decl() == ast.BoolType
}

func isStringLike(t *ast.ClassNode) bool {
	if t == nil || t.IsArray() || t.IsPlaceholder() {
		return false
	}
	d := t.Decl()
	return d == ast.StringType || d == ast.GStringType
}

// primitive widening order: byte < short < int < long < float < double, char < int
var wideningRank = map[*ast.ClassNode]int{}

func init() {
	wideningRank[ast.ByteType] = 1
	wideningRank[ast.ShortType] = 2
	wideningRank[ast.CharType] = 2
	wideningRank[ast.IntType] = 3
	wideningRank[ast.LongType] = 4
	wideningRank[ast.FloatType] = 5
	wideningRank[ast.DoubleType] = 6
}

// WideningRank returns the primitive widening rank of t, 0 for non-numeric
// primitives and reference types.
func WideningRank(t *ast.ClassNode) int {
	if t == nil || !t.IsPrimitive() {
		return 0
	}
	return wideningRank[t.Decl()]
}

// canWiden reports whether primitive from widens to primitive to.
func canWiden(from, to *ast.ClassNode) bool {
	if from.Decl() == to.Decl() {
		return true
	}
	rf, rt := WideningRank(from), WideningRank(to)
	if rf == 0 || rt == 0 {
		return false
	}
	if to.Decl() == ast.CharType {
		return false
	}
	if from.Decl() == ast.CharType && rt <= 2 {
		return false
	}
	return rf < rt
}

// MathResultType returns the result type of left op right for the operator
// shortcuts that need no method lookup. It returns nil when the operator has
// to be dispatched to a method.
func MathResultType(op ast.Op, left, right *ast.ClassNode) *ast.ClassNode {
	if op.IsCompoundAssignment() {
		op = op.Base()
	}
	switch op {
	case ast.OpEqual, ast.OpNotEqual, ast.OpIdentical, ast.OpNotIdentical,
		ast.OpLogicalAnd, ast.OpLogicalOr, ast.OpInstanceOf, ast.OpNotInstanceOf,
		ast.OpIn, ast.OpNotIn, ast.OpMatch:
		return ast.BoolType
	case ast.OpFind:
		return ast.MatcherType
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		if IsNumber(left) && IsNumber(right) {
			return ast.BoolType
		}
		return nil
	case ast.OpCompareTo:
		if IsNumber(left) && IsNumber(right) {
			return ast.IntType
		}
		return nil
	}
	if left == nil || right == nil {
		return nil
	}
	if op == ast.OpPlus && isStringLike(left) {
		return ast.StringType
	}
	if op.IsBitwise() && isBoolean(left) && isBoolean(right) {
		return ast.BoolType
	}
	if !IsNumber(left) || !IsNumber(right) {
		return nil
	}
	l, r := Unbox(left), Unbox(right)
	switch op {
	case ast.OpPower:
		return ast.NumberType
	case ast.OpDiv:
		if isFloating(l) || isFloating(r) {
			if !left.IsPrimitive() || !right.IsPrimitive() {
				return ast.DoubleWrapper
			}
			return ast.DoubleType
		}
		if isBigDecCategory(l) && isBigDecCategory(r) {
			return ast.BigDecimalType
		}
		return l
	case ast.OpMod:
		return left
	case ast.OpLeftShift, ast.OpRightShift, ast.OpRightShiftUnsigned:
		if isLongCategory(l) && isLongCategory(r) {
			return l
		}
		return nil
	case ast.OpPlus, ast.OpMinus, ast.OpMultiply, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		switch {
		case isIntCategory(l) && isIntCategory(r):
			return ast.IntType
		case isLongCategory(l) && isLongCategory(r):
			return ast.LongType
		case op.IsBitwise():
			return nil
		case isBigIntCategory(l) && isBigIntCategory(r):
			return ast.BigIntegerType
		case isBigDecCategory(l) && isBigDecCategory(r):
			return ast.BigDecimalType
		case isFloating(l) || isFloating(r):
			return ast.DoubleType
		}
		return nil
	}
	return nil
}

// UnaryResultType returns the type of -x, +x, ~x, ++x and --x on numbers,
// or nil when the operator needs a method lookup.
func UnaryResultType(op ast.Op, t *ast.ClassNode) *ast.ClassNode {
	switch op {
	case ast.OpNegate, ast.OpPositive, ast.OpIncrement, ast.OpDecrement:
		if IsNumber(t) {
			return t
		}
	case ast.OpBitwiseNegate:
		if isLongCategory(t) {
			return t
		}
	}
	return nil
}
