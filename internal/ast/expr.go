package ast

import "math/big"

// Node is any tree node with a source position.
type Node interface {
	Position() Position
	SetPosition(Position)
}

// Expr is an expression. The set of implementations is closed: every
// concrete expression embeds exprBase.
type Expr interface {
	Node
	Meta() *ExprMeta
	exprNode()
}

type exprBase struct {
	Pos  Position
	meta ExprMeta
}

func (e *exprBase) Position() Position     { return e.Pos }
func (e *exprBase) SetPosition(p Position) { e.Pos = p }
func (e *exprBase) Meta() *ExprMeta        { return &e.meta }
func (*exprBase) exprNode()                {}

// At sets the position of n and returns it.
func At[N Node](n N, p Position) N {
	n.SetPosition(p)
	return n
}

// VariableExpr references a variable. A VariableExpr with no Accessed
// variable is itself a local declaration.
type VariableExpr struct {
	exprBase
	Name string
	// Type is the declared type of a local declaration.
	Type     *ClassNode
	Dynamic  bool
	Accessed Variable

	vmeta VariableMeta
}

// NewVar returns a reference to v.
func NewVar(v Variable) *VariableExpr {
	return &VariableExpr{Name: v.VarName(), Accessed: v}
}

// NewLocal returns a local variable declaration target.
func NewLocal(name string, t *ClassNode) *VariableExpr {
	return &VariableExpr{Name: name, Type: t, Dynamic: t == nil}
}

// This returns a reference to this.
func This() *VariableExpr { return &VariableExpr{Name: "this", Dynamic: true} }

// Super returns a reference to super.
func Super() *VariableExpr { return &VariableExpr{Name: "super", Dynamic: true} }

func (v *VariableExpr) IsThis() bool  { return v.Name == "this" && v.Accessed == nil }
func (v *VariableExpr) IsSuper() bool { return v.Name == "super" && v.Accessed == nil }

// Variable returns the bound variable, v itself for local declarations.
func (v *VariableExpr) Variable() Variable {
	if v.Accessed != nil {
		return v.Accessed
	}
	return v
}

func (v *VariableExpr) VarName() string { return v.Name }
func (v *VariableExpr) VarType() *ClassNode {
	if v.Accessed != nil {
		return v.Accessed.VarType()
	}
	return typeOrObject(v.Type, v.Dynamic)
}
func (v *VariableExpr) IsDynamicTyped() bool {
	if v.Accessed != nil {
		return v.Accessed.IsDynamicTyped()
	}
	return v.Dynamic || v.Type == nil
}
func (v *VariableExpr) VarMeta() *VariableMeta {
	if v.Accessed != nil {
		return v.Accessed.VarMeta()
	}
	return &v.vmeta
}

// ConstantExpr is a literal. Value holds int64, float64, *big.Int,
// *big.Float, string, bool or nil.
type ConstantExpr struct {
	exprBase
	Value any
	Type  *ClassNode
}

func Int(v int64) *ConstantExpr      { return &ConstantExpr{Value: v, Type: IntType} }
func Long(v int64) *ConstantExpr     { return &ConstantExpr{Value: v, Type: LongType} }
func Double(v float64) *ConstantExpr { return &ConstantExpr{Value: v, Type: DoubleType} }
func Float(v float64) *ConstantExpr  { return &ConstantExpr{Value: v, Type: FloatType} }
func Str(v string) *ConstantExpr     { return &ConstantExpr{Value: v, Type: StringType} }
func Bool(v bool) *ConstantExpr      { return &ConstantExpr{Value: v, Type: BoolType} }
func Null() *ConstantExpr            { return &ConstantExpr{Type: UnknownType} }
func Char(v rune) *ConstantExpr      { return &ConstantExpr{Value: int64(v), Type: CharType} }

// Decimal returns a BigDecimal literal.
func Decimal(v *big.Float) *ConstantExpr { return &ConstantExpr{Value: v, Type: BigDecimalType} }

// BigInt returns a BigInteger literal.
func BigInt(v *big.Int) *ConstantExpr { return &ConstantExpr{Value: v, Type: BigIntegerType} }

// IsNull reports whether c is the null literal.
func (c *ConstantExpr) IsNull() bool {
	return c.Value == nil && c.Type == UnknownType
}

// PropertyExpr is obj.prop, obj?.prop, obj*.prop or obj.@field.
type PropertyExpr struct {
	exprBase
	Object       Expr
	Property     string
	Safe         bool
	Spread       bool
	Attribute    bool
	ImplicitThis bool
}

// NewPropertyExpr returns obj.name.
func NewPropertyExpr(obj Expr, name string) *PropertyExpr {
	return &PropertyExpr{Object: obj, Property: name}
}

// MethodCallExpr is obj.name(args). Calls written without a receiver have
// ImplicitThis set and a this reference as Object.
type MethodCallExpr struct {
	exprBase
	Object       Expr
	Method       string
	Args         []Expr
	TypeArgs     []*GenericsType
	Safe         bool
	Spread       bool
	ImplicitThis bool
}

// NewCall returns obj.name(args...).
func NewCall(obj Expr, name string, args ...Expr) *MethodCallExpr {
	return &MethodCallExpr{Object: obj, Method: name, Args: args}
}

// NewImplicitCall returns name(args...) with an implicit this receiver.
func NewImplicitCall(name string, args ...Expr) *MethodCallExpr {
	return &MethodCallExpr{Object: This(), Method: name, Args: args, ImplicitThis: true}
}

// StaticMethodCallExpr is a call to a statically imported or owner method.
type StaticMethodCallExpr struct {
	exprBase
	Owner  *ClassNode
	Method string
	Args   []Expr
}

// ConstructorCallExpr is new T(args). Special is "this" or "super" for
// explicit constructor calls.
type ConstructorCallExpr struct {
	exprBase
	Type    *ClassNode
	Args    []Expr
	Diamond bool
	Special string
}

// NewCtorCall returns new t(args...).
func NewCtorCall(t *ClassNode, args ...Expr) *ConstructorCallExpr {
	return &ConstructorCallExpr{Type: t, Args: args}
}

// BinaryExpr covers arithmetic, comparison, logical, assignment, index,
// instanceof and the regex operators.
type BinaryExpr struct {
	exprBase
	Left  Expr
	Op    Op
	Right Expr
}

// NewBinary returns left op right.
func NewBinary(left Expr, op Op, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

// UnaryExpr is -x, +x or ~x.
type UnaryExpr struct {
	exprBase
	Op   Op
	Expr Expr
}

// NotExpr is !x.
type NotExpr struct {
	exprBase
	Expr Expr
}

// PostfixExpr is x++ or x--.
type PostfixExpr struct {
	exprBase
	Expr Expr
	Op   Op
}

// PrefixExpr is ++x or --x.
type PrefixExpr struct {
	exprBase
	Op   Op
	Expr Expr
}

// ListExpr is a list literal.
type ListExpr struct {
	exprBase
	Elems []Expr
}

// MapEntryExpr is key: value inside a map literal.
type MapEntryExpr struct {
	exprBase
	Key   Expr
	Value Expr
}

// MapExpr is a map literal.
type MapExpr struct {
	exprBase
	Entries []*MapEntryExpr
}

// RangeExpr is from..to or from..<to.
type RangeExpr struct {
	exprBase
	From      Expr
	To        Expr
	Inclusive bool
}

// ClosureExpr is a closure or lambda. A closure that declares no parameter
// list gets an implicit parameter named it.
type ClosureExpr struct {
	exprBase
	Params []*Parameter
	// ParamsDeclared is set when a parameter list, possibly empty, was written.
	ParamsDeclared bool
	Body           Stmt
	Lambda         bool

	implicit *Parameter
}

// NewClosure returns a closure with an explicit parameter list.
func NewClosure(params []*Parameter, body Stmt) *ClosureExpr {
	return &ClosureExpr{Params: params, ParamsDeclared: true, Body: body}
}

// NewImplicitClosure returns a closure using the implicit it parameter.
func NewImplicitClosure(body Stmt) *ClosureExpr {
	return &ClosureExpr{Body: body}
}

// ImplicitParam returns the it parameter, or nil when parameters are declared.
func (c *ClosureExpr) ImplicitParam() *Parameter {
	if c.ParamsDeclared {
		return nil
	}
	if c.implicit == nil {
		c.implicit = &Parameter{Name: "it", Dynamic: true}
	}
	return c.implicit
}

// EffectiveParams returns the declared parameters or the implicit one.
func (c *ClosureExpr) EffectiveParams() []*Parameter {
	if c.ParamsDeclared {
		return c.Params
	}
	return []*Parameter{c.ImplicitParam()}
}

// CastExpr is (T) x, or x as T when Coerce is set.
type CastExpr struct {
	exprBase
	Type   *ClassNode
	Expr   Expr
	Coerce bool
}

// TernaryExpr is cond ? then : else.
type TernaryExpr struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

// ElvisExpr is value ?: else.
type ElvisExpr struct {
	exprBase
	Value Expr
	Else  Expr
}

// MethodPointerExpr is obj.&name or T::name.
type MethodPointerExpr struct {
	exprBase
	Object Expr
	Method string
}

// SpreadExpr is *list inside arguments or literals.
type SpreadExpr struct {
	exprBase
	Expr Expr
}

// SpreadMapExpr is *:map inside a map literal or named arguments.
type SpreadMapExpr struct {
	exprBase
	Expr Expr
}

// ClassExpr is a type literal such as String or String.class.
type ClassExpr struct {
	exprBase
	Type *ClassNode
}

// DeclarationExpr declares a local variable with an optional initializer.
type DeclarationExpr struct {
	exprBase
	Var  *VariableExpr
	Init Expr
}

// NewDecl returns a declaration of v initialized with init.
func NewDecl(v *VariableExpr, init Expr) *DeclarationExpr {
	return &DeclarationExpr{Var: v, Init: init}
}

// GStringExpr is an interpolated string.
type GStringExpr struct {
	exprBase
	Strings []string
	Values  []Expr
}
