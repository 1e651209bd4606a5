package ast

// Op is a binary, unary, prefix or postfix operator.
type Op int

const (
	OpInvalid Op = iota

	OpAssign
	OpPlusAssign
	OpMinusAssign
	OpMultiplyAssign
	OpDivAssign
	OpModAssign
	OpPowerAssign
	OpLeftShiftAssign
	OpRightShiftAssign
	OpRightShiftUnsignedAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpElvisAssign

	OpPlus
	OpMinus
	OpMultiply
	OpDiv
	OpMod
	OpPower
	OpLeftShift
	OpRightShift
	OpRightShiftUnsigned
	OpBitAnd
	OpBitOr
	OpBitXor

	OpLogicalAnd
	OpLogicalOr

	OpEqual
	OpNotEqual
	OpIdentical
	OpNotIdentical
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpCompareTo

	OpIndex
	OpInstanceOf
	OpNotInstanceOf
	OpIn
	OpNotIn
	OpFind
	OpMatch

	OpIncrement
	OpDecrement
	OpNegate
	OpPositive
	OpBitwiseNegate
)

type opInfo struct {
	text   string
	method string
	base   Op
}

var ops = map[Op]opInfo{
	OpAssign:                   {"=", "", OpInvalid},
	OpPlusAssign:               {"+=", "plus", OpPlus},
	OpMinusAssign:              {"-=", "minus", OpMinus},
	OpMultiplyAssign:           {"*=", "multiply", OpMultiply},
	OpDivAssign:                {"/=", "div", OpDiv},
	OpModAssign:                {"%=", "mod", OpMod},
	OpPowerAssign:              {"**=", "power", OpPower},
	OpLeftShiftAssign:          {"<<=", "leftShift", OpLeftShift},
	OpRightShiftAssign:         {">>=", "rightShift", OpRightShift},
	OpRightShiftUnsignedAssign: {">>>=", "rightShiftUnsigned", OpRightShiftUnsigned},
	OpAndAssign:                {"&=", "and", OpBitAnd},
	OpOrAssign:                 {"|=", "or", OpBitOr},
	OpXorAssign:                {"^=", "xor", OpBitXor},
	OpElvisAssign:              {"?=", "", OpInvalid},
	OpPlus:                     {"+", "plus", OpInvalid},
	OpMinus:                    {"-", "minus", OpInvalid},
	OpMultiply:                 {"*", "multiply", OpInvalid},
	OpDiv:                      {"/", "div", OpInvalid},
	OpMod:                      {"%", "mod", OpInvalid},
	OpPower:                    {"**", "power", OpInvalid},
	OpLeftShift:                {"<<", "leftShift", OpInvalid},
	OpRightShift:               {">>", "rightShift", OpInvalid},
	OpRightShiftUnsigned:       {">>>", "rightShiftUnsigned", OpInvalid},
	OpBitAnd:                   {"&", "and", OpInvalid},
	OpBitOr:                    {"|", "or", OpInvalid},
	OpBitXor:                   {"^", "xor", OpInvalid},
	OpLogicalAnd:               {"&&", "", OpInvalid},
	OpLogicalOr:                {"||", "", OpInvalid},
	OpEqual:                    {"==", "equals", OpInvalid},
	OpNotEqual:                 {"!=", "equals", OpInvalid},
	OpIdentical:                {"===", "", OpInvalid},
	OpNotIdentical:             {"!==", "", OpInvalid},
	OpLess:                     {"<", "compareTo", OpInvalid},
	OpLessEqual:                {"<=", "compareTo", OpInvalid},
	OpGreater:                  {">", "compareTo", OpInvalid},
	OpGreaterEqual:             {">=", "compareTo", OpInvalid},
	OpCompareTo:                {"<=>", "compareTo", OpInvalid},
	OpIndex:                    {"[]", "getAt", OpInvalid},
	OpInstanceOf:               {"instanceof", "", OpInvalid},
	OpNotInstanceOf:            {"!instanceof", "", OpInvalid},
	OpIn:                       {"in", "isCase", OpInvalid},
	OpNotIn:                    {"!in", "isCase", OpInvalid},
	OpFind:                     {"=~", "", OpInvalid},
	OpMatch:                    {"==~", "", OpInvalid},
	OpIncrement:                {"++", "next", OpInvalid},
	OpDecrement:                {"--", "previous", OpInvalid},
	OpNegate:                   {"-", "negative", OpInvalid},
	OpPositive:                 {"+", "positive", OpInvalid},
	OpBitwiseNegate:            {"~", "bitwiseNegate", OpInvalid},
}

var opsByText = func() map[string]Op {
	m := make(map[string]Op, len(ops))
	for op, info := range ops {
		switch op {
		case OpNegate, OpPositive, OpIncrement, OpDecrement, OpBitwiseNegate:
			continue
		}
		m[info.text] = op
	}
	return m
}()

// ParseBinaryOp returns the binary operator written as s.
func ParseBinaryOp(s string) (Op, bool) {
	op, ok := opsByText[s]
	return op, ok
}

// Text returns the source form of the operator.
func (o Op) Text() string {
	return ops[o].text
}

func (o Op) String() string {
	if t := o.Text(); t != "" {
		return t
	}
	return "<invalid>"
}

// MethodName returns the method an operator is dispatched to, or "".
func (o Op) MethodName() string {
	return ops[o].method
}

// IsAssignment reports whether o is = or a compound assignment.
func (o Op) IsAssignment() bool {
	return o >= OpAssign && o <= OpElvisAssign
}

// IsCompoundAssignment reports whether o is a compound assignment such as +=.
func (o Op) IsCompoundAssignment() bool {
	return o.IsAssignment() && ops[o].base != OpInvalid
}

// Base returns the operator a compound assignment applies, e.g. + for +=.
func (o Op) Base() Op {
	return ops[o].base
}

// IsComparison reports whether o yields a boolean from an ordering or equality test.
func (o Op) IsComparison() bool {
	switch o {
	case OpEqual, OpNotEqual, OpIdentical, OpNotIdentical, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// IsLogical reports whether o is && or ||.
func (o Op) IsLogical() bool {
	return o == OpLogicalAnd || o == OpLogicalOr
}

// IsBitwise reports whether o is &, | or ^.
func (o Op) IsBitwise() bool {
	return o == OpBitAnd || o == OpBitOr || o == OpBitXor
}

// IsShift reports whether o is a shift operator.
func (o Op) IsShift() bool {
	return o == OpLeftShift || o == OpRightShift || o == OpRightShiftUnsigned
}
