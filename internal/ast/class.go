package ast

import (
	"strings"
)

// ClassNode is a reference to a nominal type. A declaration carries the
// members and its type parameters in Generics. A parameterized usage such as
// List<String> is a separate node that redirects to the declaration and
// carries the type arguments in Generics.
type ClassNode struct {
	Name         string
	Modifiers    Modifier
	SuperClass   *ClassNode
	Interfaces   []*ClassNode
	Generics     []*GenericsType
	Fields       []*FieldNode
	Properties   []*PropertyNode
	Methods      []*MethodNode
	Constructors []*MethodNode
	Outer        *ClassNode
	// Primary is set for classes compiled in the current unit.
	Primary bool
	Pos     Position
	Meta    ClassMeta

	component    *ClassNode
	primitive    bool
	placeholder  bool
	intersection bool
	redirect     *ClassNode
}

// NewClass declares a class extending Object.
func NewClass(name string, mods Modifier) *ClassNode {
	c := &ClassNode{Name: name, Modifiers: mods}
	if name != objectName {
		c.SuperClass = ObjectType
	}
	return c
}

// NewInterface declares an interface.
func NewInterface(name string, mods Modifier, extends ...*ClassNode) *ClassNode {
	return &ClassNode{Name: name, Modifiers: mods | Interface | Abstract, Interfaces: extends}
}

// PlaceholderType returns a type variable usage. Member lookups on it use
// its first bound, or Object.
func PlaceholderType(name string, bounds ...*ClassNode) *ClassNode {
	target := ObjectType
	if len(bounds) > 0 && bounds[0] != nil {
		target = bounds[0]
	}
	return &ClassNode{Name: name, placeholder: true, redirect: target}
}

// NewIntersection builds the synthetic node used for lowest upper bounds
// that need more than one supertype.
func NewIntersection(super *ClassNode, interfaces []*ClassNode) *ClassNode {
	parts := make([]string, 0, len(interfaces)+1)
	if super != nil {
		parts = append(parts, super.Text())
	}
	for _, i := range interfaces {
		parts = append(parts, i.Text())
	}
	return &ClassNode{
		Name:         "(" + strings.Join(parts, " & ") + ")",
		SuperClass:   super,
		Interfaces:   interfaces,
		intersection: true,
	}
}

// Decl returns the declaration behind a usage node.
func (c *ClassNode) Decl() *ClassNode {
	for c.redirect != nil {
		c = c.redirect
	}
	return c
}

// IsRedirect reports whether c is a usage of another declaration.
func (c *ClassNode) IsRedirect() bool {
	return c.redirect != nil
}

// Parameterize returns a usage of c's declaration with the given arguments.
func (c *ClassNode) Parameterize(args ...*ClassNode) *ClassNode {
	gts := make([]*GenericsType, len(args))
	for i, a := range args {
		gts[i] = TypeArg(a)
	}
	return c.ParameterizeWith(gts...)
}

// ParameterizeWith returns a usage of c's declaration with explicit generics types.
func (c *ClassNode) ParameterizeWith(gts ...*GenericsType) *ClassNode {
	d := c.Decl()
	if c.IsArray() {
		return c.component.ParameterizeWith(gts...).MakeArray()
	}
	return &ClassNode{Name: d.Name, redirect: d, Generics: gts}
}

// PlainRedirect returns a raw usage of the declaration, without type arguments.
func (c *ClassNode) PlainRedirect() *ClassNode {
	if c.IsArray() || c.placeholder || c.intersection {
		return c
	}
	d := c.Decl()
	if len(d.Generics) == 0 {
		return d
	}
	return &ClassNode{Name: d.Name, redirect: d}
}

// MakeArray returns the array type whose component is c.
func (c *ClassNode) MakeArray() *ClassNode {
	return &ClassNode{Name: c.Text() + "[]", SuperClass: ObjectType, component: c}
}

// IsArray reports whether c is an array type.
func (c *ClassNode) IsArray() bool {
	return c.component != nil
}

// Component returns the component type of an array, or nil.
func (c *ClassNode) Component() *ClassNode {
	return c.component
}

// IsPrimitive reports whether c is a primitive type.
func (c *ClassNode) IsPrimitive() bool {
	return !c.placeholder && c.Decl().primitive
}

// IsPlaceholder reports whether c is a type variable.
func (c *ClassNode) IsPlaceholder() bool {
	return c.placeholder
}

// IsIntersection reports whether c is a synthetic lowest-upper-bound node.
func (c *ClassNode) IsIntersection() bool {
	return c.intersection
}

// IsInterface reports whether c is an interface.
func (c *ClassNode) IsInterface() bool {
	return !c.placeholder && c.Decl().Modifiers.Has(Interface)
}

// IsAbstract reports whether c is abstract.
func (c *ClassNode) IsAbstract() bool {
	return c.Decl().Modifiers.Has(Abstract)
}

// IsFinal reports whether c is final.
func (c *ClassNode) IsFinal() bool {
	return c.Decl().Modifiers.Has(Final)
}

// IsStaticClass reports whether a nested class is static.
func (c *ClassNode) IsStaticClass() bool {
	return c.Decl().Modifiers.Has(Static)
}

// IsUsingGenerics reports whether c carries type arguments or is a type variable.
func (c *ClassNode) IsUsingGenerics() bool {
	if c.IsArray() {
		return c.component.IsUsingGenerics()
	}
	return c.placeholder || len(c.Generics) > 0
}

// Super returns the declared superclass, possibly parameterized with the
// declaration's placeholders.
func (c *ClassNode) Super() *ClassNode {
	if c.intersection {
		return c.SuperClass
	}
	return c.Decl().SuperClass
}

// DirectInterfaces returns the directly implemented interfaces.
func (c *ClassNode) DirectInterfaces() []*ClassNode {
	if c.intersection {
		return c.Interfaces
	}
	return c.Decl().Interfaces
}

// TypeParameters returns the declaration's placeholders.
func (c *ClassNode) TypeParameters() []*GenericsType {
	if c.IsArray() {
		return nil
	}
	return c.Decl().Generics
}

// SameErasure reports whether c and o denote the same raw type.
func (c *ClassNode) SameErasure(o *ClassNode) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.IsArray() || o.IsArray() {
		return c.IsArray() && o.IsArray() && c.component.SameErasure(o.component)
	}
	if c.intersection || o.intersection {
		return c.Name == o.Name
	}
	if c.placeholder && o.placeholder {
		return c.Name == o.Name
	}
	return c.Decl() == o.Decl()
}

// Equal reports whether c and o are the same type including type arguments.
func (c *ClassNode) Equal(o *ClassNode) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.SameErasure(o) && c.Text() == o.Text()
}

// Text renders the type with its generics.
func (c *ClassNode) Text() string {
	if c == nil {
		return "<nil>"
	}
	if c.IsArray() {
		return c.component.Text() + "[]"
	}
	if len(c.Generics) == 0 || c.placeholder {
		return c.Name
	}
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('<')
	for i, g := range c.Generics {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.Text())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (c *ClassNode) String() string {
	return c.Text()
}

// SimpleName returns the name without package or outer classes.
func (c *ClassNode) SimpleName() string {
	name := c.Name
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// PackageName returns the package part of the qualified name.
func (c *ClassNode) PackageName() string {
	name := c.Decl().Name
	if c.IsArray() {
		return ""
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

// OuterMost returns the top-level class enclosing c.
func (c *ClassNode) OuterMost() *ClassNode {
	d := c.Decl()
	for d.Outer != nil {
		d = d.Outer
	}
	return d
}

// IsNestedIn reports whether c is declared, directly or not, inside outer.
func (c *ClassNode) IsNestedIn(outer *ClassNode) bool {
	for o := c.Decl().Outer; o != nil; o = o.Outer {
		if o == outer.Decl() {
			return true
		}
	}
	return false
}

// DeclaredMethods returns the methods named name declared on c itself.
func (c *ClassNode) DeclaredMethods(name string) []*MethodNode {
	var out []*MethodNode
	for _, m := range c.Decl().Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// DeclaredConstructors returns the constructors declared on c.
func (c *ClassNode) DeclaredConstructors() []*MethodNode {
	return c.Decl().Constructors
}

// Field returns the field declared on c with the given name.
func (c *ClassNode) Field(name string) *FieldNode {
	for _, f := range c.Decl().Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Property returns the property declared on c with the given name.
func (c *ClassNode) Property(name string) *PropertyNode {
	for _, p := range c.Decl().Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddMethod declares m on c.
func (c *ClassNode) AddMethod(m *MethodNode) *MethodNode {
	m.Owner = c
	c.Methods = append(c.Methods, m)
	return m
}

// AddConstructor declares a constructor on c.
func (c *ClassNode) AddConstructor(m *MethodNode) *MethodNode {
	m.Owner = c
	m.Name = ConstructorName
	m.ReturnType = VoidType
	c.Constructors = append(c.Constructors, m)
	return m
}

// AddField declares f on c.
func (c *ClassNode) AddField(f *FieldNode) *FieldNode {
	f.Owner = c
	c.Fields = append(c.Fields, f)
	return f
}

// AddProperty declares p and its backing field on c.
func (c *ClassNode) AddProperty(p *PropertyNode) *PropertyNode {
	p.Owner = c
	if p.Field == nil {
		p.Field = &FieldNode{Name: p.Name, Modifiers: Private | (p.Modifiers & (Static | Final)), Type: p.Type, Dynamic: p.Dynamic, Pos: p.Pos}
	}
	p.Field.Owner = c
	c.Fields = append(c.Fields, p.Field)
	c.Properties = append(c.Properties, p)
	return p
}

// GenericsType is either a type parameter declaration, a type argument, a
// placeholder reference or a wildcard.
type GenericsType struct {
	Name        string
	Type        *ClassNode
	Placeholder bool
	Wildcard    bool
	UpperBounds []*ClassNode
	LowerBound  *ClassNode
}

// TypeArg wraps t as a type argument.
func TypeArg(t *ClassNode) *GenericsType {
	if t.IsPlaceholder() {
		return &GenericsType{Name: t.Name, Type: t, Placeholder: true}
	}
	return &GenericsType{Name: t.Name, Type: t}
}

// TypeParam declares a type parameter with optional upper bounds.
func TypeParam(name string, bounds ...*ClassNode) *GenericsType {
	return &GenericsType{Name: name, Type: PlaceholderType(name, bounds...), Placeholder: true, UpperBounds: bounds}
}

// WildcardType returns an unbounded wildcard.
func WildcardType() *GenericsType {
	return &GenericsType{Name: "?", Type: ObjectType, Wildcard: true}
}

// WildcardExtends returns ? extends bound.
func WildcardExtends(bound *ClassNode) *GenericsType {
	return &GenericsType{Name: "?", Type: bound, Wildcard: true, UpperBounds: []*ClassNode{bound}}
}

// WildcardSuper returns ? super bound.
func WildcardSuper(bound *ClassNode) *GenericsType {
	return &GenericsType{Name: "?", Type: ObjectType, Wildcard: true, LowerBound: bound}
}

// Text renders the generics type as it appears in source.
func (g *GenericsType) Text() string {
	switch {
	case g.Wildcard:
		if g.LowerBound != nil {
			return "? super " + g.LowerBound.Text()
		}
		if len(g.UpperBounds) > 0 {
			return "? extends " + joinTypes(g.UpperBounds, " & ")
		}
		return "?"
	case g.Placeholder:
		if len(g.UpperBounds) > 0 {
			return g.Name + " extends " + joinTypes(g.UpperBounds, " & ")
		}
		return g.Name
	default:
		return g.Type.Text()
	}
}

func (g *GenericsType) String() string {
	return g.Text()
}

func joinTypes(ts []*ClassNode, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Text()
	}
	return strings.Join(parts, sep)
}
