package checker

import (
	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// propertyResult is what a property read or write resolved to.
type propertyResult struct {
	typ      *ast.ClassNode
	owner    *ast.ClassNode
	readOnly bool
	field    *ast.FieldNode
	getter   *ast.MethodNode
	setter   *ast.MethodNode
}

func (v *visitor) visitProperty(e *ast.PropertyExpr) *ast.ClassNode {
	var t *ast.ClassNode
	switch {
	case e.ImplicitThis:
		if t = v.implicitProperty(e, e.Property); t == nil {
			v.addError(e, stcerr.TypeUnresolvedReference, "No such property: %s for class: %s", e.Property, v.thisType(false).Text())
			e.Meta().Dynamic = true
			t = ast.ObjectType
		}
	case e.Spread:
		recv := v.typeOf(e.Object)
		res := v.lookupProperty(e, elementType(recv), e.Property, false, e.Attribute)
		return ast.ListType.Parameterize(types.Box(nullToObject(res)))
	default:
		recv := v.typeOf(e.Object)
		static := false
		if ce, ok := e.Object.(*ast.ClassExpr); ok {
			recv, static = ce.Type, true
		}
		t = v.lookupProperty(e, recv, e.Property, static, e.Attribute)
		if e.Safe {
			t = types.Box(t)
		}
	}
	if key, ok := narrowKeyOf(e); ok {
		if ts := v.ctx.narrowed(key); ts != nil {
			t = narrowTo(t, ts)
		}
	}
	return t
}

// lookupProperty reads a property of recv and reports it when missing.
func (v *visitor) lookupProperty(e ast.Expr, recv *ast.ClassNode, name string, static, attribute bool) *ast.ClassNode {
	res := v.findProperty(recv, name, static, attribute, false)
	if res == nil {
		v.addError(e, stcerr.TypeUnresolvedReference, "No such property: %s for class: %s", name, recv.Text())
		e.Meta().Dynamic = true
		return ast.ObjectType
	}
	v.noteProperty(e, res)
	return res.typ
}

func (v *visitor) noteProperty(e ast.Expr, res *propertyResult) {
	meta := e.Meta()
	meta.PropertyOwner = res.owner
	meta.ReadOnly = res.readOnly
	if res.getter != nil {
		meta.DirectTarget = res.getter
		v.recordMethodAccess(res.getter)
	}
	if res.field != nil {
		v.recordFieldAccess(res.field, false)
	}
}

// implicitProperty resolves a property without receiver against the
// implicit receivers.
func (v *visitor) implicitProperty(e ast.Expr, name string) *ast.ClassNode {
	for _, r := range v.implicitReceivers() {
		res := v.findProperty(r.typ, name, r.static, false, false)
		if res == nil {
			continue
		}
		e.Meta().ImplicitReceiver = r.label
		v.noteProperty(e, res)
		return res.typ
	}
	if owner := v.ctx.currentClass(); owner != nil && v.ctx.inStaticContext() {
		if res := v.findProperty(owner, name, false, false, false); res != nil {
			v.addError(e, stcerr.TypeStaticContext,
				"Non-static property %s cannot be referenced from a static context", name)
			return res.typ
		}
	}
	return nil
}

// dynamicReference types a name bound to no declaration: a property of
// an implicit receiver, or an undeclared variable.
func (v *visitor) dynamicReference(e *ast.VariableExpr, name string) *ast.ClassNode {
	if t := v.implicitProperty(e, name); t != nil {
		return t
	}
	v.addError(e, stcerr.TypeUnresolvedReference, "The variable [%s] is undeclared.", name)
	e.Meta().Dynamic = true
	return ast.ObjectType
}

// findProperty resolves name on recv for reading, or for writing when
// write is set. Declared properties come first, then accessor methods,
// then fields, then map keys. An attribute access only sees fields.
func (v *visitor) findProperty(recv *ast.ClassNode, name string, static, attribute, write bool) *propertyResult {
	if recv == nil {
		return nil
	}
	if name == "class" && !write {
		c := types.Box(recv).PlainRedirect()
		if static {
			c = recv.PlainRedirect()
		}
		return &propertyResult{typ: ast.ClassType.Parameterize(c), owner: recv, readOnly: true}
	}
	if recv.IsArray() && name == "length" {
		return &propertyResult{typ: ast.IntType, owner: recv, readOnly: true}
	}
	if types.IsNull(recv) {
		recv = ast.ObjectType
	}
	boxed := types.Box(recv)
	supers := types.AllSupertypes(boxed)

	if !attribute {
		for _, s := range supers {
			p := s.Property(name)
			if p == nil || (static && !p.IsStatic()) {
				continue
			}
			res := &propertyResult{
				typ:      generics.ApplyContext(generics.ClassSpec(boxed, s.Decl()), p.VarType()),
				owner:    s,
				readOnly: p.ReadOnly(),
			}
			if write && p.ReadOnly() && v.inInitializerOf(s) {
				res.readOnly = false
			}
			return res
		}
		if res := v.accessorProperty(boxed, name, static, write); res != nil {
			return res
		}
	}

	for _, s := range supers {
		f := s.Field(name)
		if f == nil || (static && !f.IsStatic()) || !v.canAccess(f.Owner, f.Modifiers) {
			continue
		}
		t := f.VarType()
		if f.IsDynamicTyped() && f.VarMeta().InferredType != nil {
			t = f.VarMeta().InferredType
		}
		return &propertyResult{
			typ:   generics.ApplyContext(generics.ClassSpec(boxed, s.Decl()), t),
			owner: s,
			field: f,
		}
	}

	if !static && !attribute && types.IsSubtype(boxed, ast.MapType) {
		t := ast.ObjectType
		if view := generics.ParameterizedSupertype(boxed, ast.MapType); view != nil && len(view.Generics) == 2 {
			t = bindingType(view.Generics[1])
		}
		return &propertyResult{typ: t, owner: boxed}
	}
	if static {
		// String.name reads a property of Class
		return v.findProperty(ast.ClassType.Parameterize(recv.PlainRedirect()), name, false, attribute, write)
	}
	return nil
}

// accessorProperty resolves a property through getX/isX, or setX when
// writing.
func (v *visitor) accessorProperty(recv *ast.ClassNode, name string, static, write bool) *propertyResult {
	if write {
		setter := v.soleAccessor(recv, types.SetterName(name), static, 1)
		if setter == nil {
			if v.soleAccessorNamed(recv, name, static) != nil {
				return &propertyResult{typ: v.getterType(recv, name, static), owner: recv, readOnly: true}
			}
			return nil
		}
		return &propertyResult{
			typ:    v.paramTypes(recv, setter)[0],
			owner:  setter.Owner,
			setter: setter,
		}
	}
	getter := v.soleAccessorNamed(recv, name, static)
	if getter == nil {
		return nil
	}
	ret := generics.ApplyContext(v.receiverSpec(recv, getter), getter.Return())
	if getter.Dynamic && getter.Owner != nil && getter.Owner.Decl().Primary && getter.Body != nil {
		ret = v.visitOutOfLine(getter)
	}
	owner := getter.Owner
	if getter.IsExtension() {
		owner = recv
	}
	return &propertyResult{
		typ:      ret,
		owner:    owner,
		readOnly: v.soleAccessor(recv, types.SetterName(name), static, 1) == nil,
		getter:   getter,
	}
}

func (v *visitor) getterType(recv *ast.ClassNode, name string, static bool) *ast.ClassNode {
	g := v.soleAccessorNamed(recv, name, static)
	return generics.ApplyContext(v.receiverSpec(recv, g), g.Return())
}

// soleAccessorNamed returns the getter of name, trying getX before isX.
func (v *visitor) soleAccessorNamed(recv *ast.ClassNode, name string, static bool) *ast.MethodNode {
	for _, gn := range types.GetterNames(name) {
		if m := v.soleAccessor(recv, gn, static, 0); m != nil {
			if gn[:2] == "is" && types.Unbox(m.Return()) != ast.BoolType {
				continue
			}
			return m
		}
	}
	return nil
}

// soleAccessor returns the method called name taking nargs parameters,
// or nil when there is none or more than one.
func (v *visitor) soleAccessor(recv *ast.ClassNode, name string, static bool, nargs int) *ast.MethodNode {
	_, ms, _ := v.findMethods(&callSite{receiver: recv, name: name, static: static})
	var found *ast.MethodNode
	for _, m := range ms {
		if len(m.Params) != nargs || m.Property != nil {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}

// inInitializerOf reports whether the code being checked is a constructor
// of cn, where final properties may still be assigned.
func (v *visitor) inInitializerOf(cn *ast.ClassNode) bool {
	m := v.ctx.currentMethod()
	return m != nil && m.IsConstructor() && m.Owner != nil && m.Owner.Decl() == cn.Decl() && v.ctx.currentClosure() == nil
}
