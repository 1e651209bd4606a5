package checker

import (
	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// visitListLiteral types [a, b, *c]. Without an expected element type the
// element type is the lowest upper bound of the boxed element types.
func (v *visitor) visitListLiteral(e *ast.ListExpr, elem *ast.ClassNode) *ast.ClassNode {
	var ts []*ast.ClassNode
	for _, x := range e.Elems {
		var t *ast.ClassNode
		if sp, ok := x.(*ast.SpreadExpr); ok {
			t = elementType(v.typeOf(sp.Expr))
			store(sp, t)
		} else {
			t = v.typeOfWithTarget(x, elem)
		}
		if elem != nil {
			v.checkElement(x, elem, t, "list element")
			continue
		}
		if !types.IsNull(t) {
			ts = append(ts, types.Box(t))
		}
	}
	if elem != nil {
		return ast.ArrayListType.Parameterize(types.Box(elem))
	}
	if len(e.Elems) == 0 {
		return ast.ArrayListType
	}
	if len(ts) == 0 {
		return ast.ArrayListType.Parameterize(ast.ObjectType)
	}
	return ast.ArrayListType.Parameterize(types.LowestUpperBoundOf(ts))
}

// visitMapLiteral types [k: v, *:m]. With expected key and value types
// every entry is checked against them.
func (v *visitor) visitMapLiteral(e *ast.MapExpr, key, val *ast.ClassNode) *ast.ClassNode {
	var ks, vs []*ast.ClassNode
	for _, entry := range e.Entries {
		kt := v.typeOfWithTarget(entry.Key, key)
		vt := v.typeOfWithTarget(entry.Value, val)
		if key != nil {
			v.checkElement(entry.Key, key, kt, "map key")
			v.checkElement(entry.Value, val, vt, "map value")
		}
		store(entry, ast.MapEntryType.Parameterize(types.Box(nullToObject(kt)), types.Box(nullToObject(vt))))
		if !types.IsNull(kt) {
			ks = append(ks, types.Box(kt))
		}
		if !types.IsNull(vt) {
			vs = append(vs, types.Box(vt))
		}
	}
	if key != nil {
		return ast.LinkedHashMapType.Parameterize(types.Box(key), types.Box(val))
	}
	if len(e.Entries) == 0 {
		return ast.LinkedHashMapType
	}
	kt, vt := ast.ObjectType, ast.ObjectType
	if len(ks) > 0 {
		kt = types.LowestUpperBoundOf(ks)
	}
	if len(vs) > 0 {
		vt = types.LowestUpperBoundOf(vs)
	}
	return ast.LinkedHashMapType.Parameterize(kt, vt)
}

func (v *visitor) checkElement(x ast.Expr, want, got *ast.ClassNode, what string) {
	if want == nil {
		return
	}
	switch types.CheckAssignment(want, got, x) {
	case types.Incompatible:
		v.addError(x, stcerr.TypeIncompatibleAssignment, "Cannot assign value of type %s to %s of type %s", got.Text(), what, want.Text())
	case types.PrecisionLoss:
		v.addError(x, stcerr.TypePrecisionLoss, "Possible loss of precision from %s to %s", got.Text(), want.Text())
	}
}

// literalElementType returns the element type a list literal flowing into
// target must have, or nil when the elements decide.
func literalElementType(target *ast.ClassNode) *ast.ClassNode {
	if target.IsArray() {
		return target.Component()
	}
	if len(target.Generics) != 1 || !types.IsAssignableTo(ast.ArrayListType, target.PlainRedirect()) {
		return nil
	}
	return expectedArg(target.Generics[0])
}

// literalEntryTypes returns the key and value types a map literal flowing
// into target must have, or nils.
func literalEntryTypes(target *ast.ClassNode) (*ast.ClassNode, *ast.ClassNode) {
	if len(target.Generics) != 2 || !types.IsAssignableTo(ast.LinkedHashMapType, target.PlainRedirect()) {
		return nil, nil
	}
	k, val := expectedArg(target.Generics[0]), expectedArg(target.Generics[1])
	if k == nil || val == nil {
		return nil, nil
	}
	return k, val
}

// expectedArg returns the type a value must have to be stored under the
// type argument g.
func expectedArg(g *ast.GenericsType) *ast.ClassNode {
	switch {
	case g.Placeholder:
		return nil
	case g.Wildcard && g.LowerBound != nil:
		return g.LowerBound
	case g.Wildcard:
		return nil
	}
	return g.Type
}

// checkAssignment checks that a value of type actual, produced by e, can
// be stored in a location of type target. A list literal assigned to a
// class type calls a constructor and a map literal sets properties.
func (v *visitor) checkAssignment(e ast.Expr, target, actual *ast.ClassNode, at ast.Node) {
	if target == nil || actual == nil {
		return
	}
	switch types.CheckAssignment(target, actual, e) {
	case types.Compatible:
		return
	case types.PrecisionLoss:
		v.addError(at, stcerr.TypePrecisionLoss, "Possible loss of precision from %s to %s", actual.Text(), target.Text())
		return
	}
	if !target.IsInterface() && !target.IsArray() && !target.IsPrimitive() {
		switch x := e.(type) {
		case *ast.ListExpr:
			v.checkListConstructor(x, target)
			return
		case *ast.MapExpr:
			v.checkMapConstructor(x, target)
			return
		}
	}
	v.addError(at, stcerr.TypeIncompatibleAssignment, "Cannot assign value of type %s to variable of type %s", actual.Text(), target.Text())
}

// checkListConstructor checks T x = [a, b] as a call to new T(a, b).
func (v *visitor) checkListConstructor(e *ast.ListExpr, target *ast.ClassNode) {
	argTypes := make([]*ast.ClassNode, len(e.Elems))
	for i, x := range e.Elems {
		argTypes[i] = v.typeOf(x)
	}
	best := v.rank(target, v.visibleConstructors(target.Decl()), argTypes)
	if len(best) != 1 || target.IsAbstract() {
		v.addError(e, stcerr.TypeMethodNotFound, "No matching constructor found: %s(%s)", target.Text(), typeList(argTypes))
		return
	}
	meta := e.Meta()
	meta.DirectTarget = best[0].method
	meta.CallParamTypes = best[0].params
	v.recordMethodAccess(best[0].method)
}

// checkMapConstructor checks T x = [a: 1] as new T() followed by property
// writes. Keys must be constant names of writable properties.
func (v *visitor) checkMapConstructor(e *ast.MapExpr, target *ast.ClassNode) {
	if target.IsAbstract() || len(v.rank(target, v.visibleConstructors(target.Decl()), nil)) != 1 {
		v.addError(e, stcerr.TypeMethodNotFound, "No matching constructor found: %s()", target.Text())
		return
	}
	for _, entry := range e.Entries {
		c, ok := entry.Key.(*ast.ConstantExpr)
		name, isStr := "", false
		if ok {
			name, isStr = c.Value.(string)
		}
		if !isStr {
			v.typeOf(entry.Key)
			v.typeOf(entry.Value)
			continue
		}
		res := v.findProperty(target, name, false, false, true)
		if res == nil {
			v.typeOf(entry.Value)
			v.addError(entry.Key, stcerr.TypeUnresolvedReference, "No such property: %s for class: %s", name, target.Text())
			continue
		}
		vt := v.typeOfWithTarget(entry.Value, res.typ)
		if types.CheckAssignment(res.typ, vt, entry.Value) != types.Compatible {
			v.addError(entry.Value, stcerr.TypeIncompatibleAssignment,
				"Cannot assign value of type %s to variable of type %s", vt.Text(), res.typ.Text())
		}
	}
	e.Meta().DirectTarget = constructorsOf(target.Decl())[0]
}

// elementType returns the type of the elements produced by iterating t.
func elementType(t *ast.ClassNode) *ast.ClassNode {
	switch {
	case t == nil || types.IsNull(t):
		return ast.ObjectType
	case t.IsArray():
		return t.Component()
	}
	b := types.Box(t)
	if types.IsSubtype(b, ast.MapType) {
		k, val := ast.ObjectType, ast.ObjectType
		if view := generics.ParameterizedSupertype(b, ast.MapType); view != nil && len(view.Generics) == 2 {
			k, val = bindingType(view.Generics[0]), bindingType(view.Generics[1])
		}
		return ast.MapEntryType.Parameterize(k, val)
	}
	if types.IsSubtype(b, ast.CharSequenceType) {
		return ast.StringType
	}
	for _, it := range []*ast.ClassNode{ast.IterableType, ast.IteratorType} {
		if !types.IsSubtype(b, it) {
			continue
		}
		if view := generics.ParameterizedSupertype(b, it); view != nil && len(view.Generics) == 1 {
			return bindingType(view.Generics[0])
		}
		return ast.ObjectType
	}
	return ast.ObjectType
}
