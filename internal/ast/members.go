package ast

import "strings"

// ConstructorName is the method name used for constructors.
const ConstructorName = "<init>"

// Variable is anything a variable reference can be bound to.
type Variable interface {
	VarName() string
	VarType() *ClassNode
	IsDynamicTyped() bool
	VarMeta() *VariableMeta
}

// FieldNode is a field declaration.
type FieldNode struct {
	Name      string
	Modifiers Modifier
	Type      *ClassNode
	Owner     *ClassNode
	Init      Expr
	Dynamic   bool
	Pos       Position

	meta VariableMeta
}

// NewField declares a field; mods default to private when no visibility is given.
func NewField(name string, t *ClassNode, mods Modifier) *FieldNode {
	return &FieldNode{Name: name, Type: t, Modifiers: mods}
}

func (f *FieldNode) VarName() string            { return f.Name }
func (f *FieldNode) VarType() *ClassNode        { return typeOrObject(f.Type, f.Dynamic) }
func (f *FieldNode) IsDynamicTyped() bool       { return f.Dynamic || f.Type == nil }
func (f *FieldNode) VarMeta() *VariableMeta     { return &f.meta }
func (f *FieldNode) IsStatic() bool             { return f.Modifiers.Has(Static) }
func (f *FieldNode) IsPrivate() bool            { return f.Modifiers.Has(Private) }
func (f *FieldNode) IsFinal() bool              { return f.Modifiers.Has(Final) }
func (f *FieldNode) Visibility() Modifier       { return f.Modifiers }
func (f *FieldNode) DeclaringClass() *ClassNode { return f.Owner }

// PropertyNode is a property: a private backing field plus accessors.
type PropertyNode struct {
	Name      string
	Modifiers Modifier
	Type      *ClassNode
	Owner     *ClassNode
	Field     *FieldNode
	Dynamic   bool
	Pos       Position

	meta VariableMeta
}

// NewProperty declares a property.
func NewProperty(name string, t *ClassNode, mods Modifier) *PropertyNode {
	return &PropertyNode{Name: name, Type: t, Modifiers: mods | Public}
}

func (p *PropertyNode) VarName() string        { return p.Name }
func (p *PropertyNode) VarType() *ClassNode    { return typeOrObject(p.Type, p.Dynamic) }
func (p *PropertyNode) IsDynamicTyped() bool   { return p.Dynamic || p.Type == nil }
func (p *PropertyNode) VarMeta() *VariableMeta { return &p.meta }
func (p *PropertyNode) IsStatic() bool         { return p.Modifiers.Has(Static) }

// ReadOnly reports whether the property only exposes a getter.
func (p *PropertyNode) ReadOnly() bool {
	return p.Modifiers.Has(Final)
}

// HintRef selects a type for one closure parameter from the signature of the
// method receiving the closure.
type HintRef struct {
	// Param indexes the method parameters; extension methods count the
	// receiver as parameter 0.
	Param int
	// Generic selects a type argument of that parameter, or one of
	// HintWhole and HintComponent.
	Generic int
	// Type, when set, is used as is.
	Type *ClassNode
}

// Special HintRef.Generic values.
const (
	HintWhole     = -1
	HintComponent = -2
)

// ClosureParamsHint declares the parameter types of a closure argument.
type ClosureParamsHint struct {
	Params []HintRef
}

// Strategy is a closure resolve strategy.
type Strategy int

const (
	OwnerFirst Strategy = iota
	DelegateFirst
	OwnerOnly
	DelegateOnly
)

func (s Strategy) String() string {
	switch s {
	case DelegateFirst:
		return "DELEGATE_FIRST"
	case OwnerOnly:
		return "OWNER_ONLY"
	case DelegateOnly:
		return "DELEGATE_ONLY"
	default:
		return "OWNER_FIRST"
	}
}

// DelegatesToHint declares the delegate of a closure argument.
type DelegatesToHint struct {
	Type *ClassNode
	// Target is the index of the parameter whose type is the delegate, or -1.
	Target   int
	Strategy Strategy
}

// Parameter is a method, constructor or closure parameter.
type Parameter struct {
	Name          string
	Type          *ClassNode
	Dynamic       bool
	Default       Expr
	ClosureParams *ClosureParamsHint
	DelegatesTo   *DelegatesToHint
	Pos           Position

	meta VariableMeta
}

// NewParam declares a typed parameter.
func NewParam(name string, t *ClassNode) *Parameter {
	return &Parameter{Name: name, Type: t}
}

// NewDynamicParam declares an untyped parameter.
func NewDynamicParam(name string) *Parameter {
	return &Parameter{Name: name, Dynamic: true}
}

func (p *Parameter) VarName() string        { return p.Name }
func (p *Parameter) VarType() *ClassNode    { return typeOrObject(p.Type, p.Dynamic) }
func (p *Parameter) IsDynamicTyped() bool   { return p.Dynamic || p.Type == nil }
func (p *Parameter) VarMeta() *VariableMeta { return &p.meta }

// HasDefault reports whether the parameter declares a default value.
func (p *Parameter) HasDefault() bool {
	return p.Default != nil
}

// MethodNode is a method or constructor.
type MethodNode struct {
	Name       string
	Modifiers  Modifier
	Owner      *ClassNode
	Params     []*Parameter
	ReturnType *ClassNode
	Generics   []*GenericsType
	Exceptions []*ClassNode
	Body       Stmt
	Dynamic    bool
	Synthetic  bool
	Pos        Position
	Meta       MethodMeta

	// Extension links an extension view to the static helper it stands for.
	Extension *MethodNode
	// Property links a synthesized accessor to its property.
	Property *PropertyNode
	// Field links a synthesized accessor to a field without a property.
	Field *FieldNode
	// Original links a default-argument stub to the full method.
	Original *MethodNode
}

// NewMethod declares a public method.
func NewMethod(name string, ret *ClassNode, params ...*Parameter) *MethodNode {
	return &MethodNode{Name: name, Modifiers: Public, ReturnType: ret, Params: params}
}

// NewConstructor declares a public constructor.
func NewConstructor(params ...*Parameter) *MethodNode {
	return &MethodNode{Name: ConstructorName, Modifiers: Public, ReturnType: VoidType, Params: params}
}

func (m *MethodNode) IsStatic() bool             { return m.Modifiers.Has(Static) }
func (m *MethodNode) IsAbstract() bool           { return m.Modifiers.Has(Abstract) }
func (m *MethodNode) IsPrivate() bool            { return m.Modifiers.Has(Private) }
func (m *MethodNode) IsProtected() bool          { return m.Modifiers.Has(Protected) }
func (m *MethodNode) IsPublic() bool             { return m.Modifiers.Has(Public) }
func (m *MethodNode) IsPackagePrivate() bool     { return m.Modifiers.PackagePrivate() }
func (m *MethodNode) IsConstructor() bool        { return m.Name == ConstructorName }
func (m *MethodNode) IsExtension() bool          { return m.Extension != nil }
func (m *MethodNode) DeclaringClass() *ClassNode { return m.Owner }
func (m *MethodNode) Visibility() Modifier       { return m.Modifiers }

// IsVarArgs reports whether the last parameter collects trailing arguments.
func (m *MethodNode) IsVarArgs() bool {
	if len(m.Params) == 0 {
		return false
	}
	last := m.Params[len(m.Params)-1]
	return last.Type != nil && last.Type.IsArray()
}

// Return returns the declared return type, Object for dynamic methods.
func (m *MethodNode) Return() *ClassNode {
	return typeOrObject(m.ReturnType, m.Dynamic)
}

// ParamTypes returns the declared parameter types.
func (m *MethodNode) ParamTypes() []*ClassNode {
	out := make([]*ClassNode, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.VarType()
	}
	return out
}

// TypeDescriptor renders name(paramTypes).
func (m *MethodNode) TypeDescriptor() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.VarType().Text())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Signature renders Owner#name(paramTypes) for diagnostics.
func (m *MethodNode) Signature() string {
	owner := "<unknown>"
	if m.Owner != nil {
		owner = m.Owner.Text()
	}
	if m.Extension != nil {
		owner = m.Extension.Owner.Text()
		return owner + "#" + m.Extension.TypeDescriptor()
	}
	return owner + "#" + m.TypeDescriptor()
}

func (m *MethodNode) String() string {
	return m.Signature()
}

// DynamicVariable is an unresolved reference.
type DynamicVariable struct {
	Name string

	meta VariableMeta
}

func (d *DynamicVariable) VarName() string        { return d.Name }
func (d *DynamicVariable) VarType() *ClassNode    { return ObjectType }
func (d *DynamicVariable) IsDynamicTyped() bool   { return true }
func (d *DynamicVariable) VarMeta() *VariableMeta { return &d.meta }

func typeOrObject(t *ClassNode, dynamic bool) *ClassNode {
	if t == nil || dynamic {
		return ObjectType
	}
	return t
}
