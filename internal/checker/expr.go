package checker

import (
	"fmt"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// typeOf returns the inferred type of e, visiting e the first time.
func (v *visitor) typeOf(e ast.Expr) *ast.ClassNode {
	if e == nil {
		return nil
	}
	meta := e.Meta()
	if meta.InferredType != nil {
		return meta.InferredType
	}
	t := v.infer(e)
	if t == nil {
		t = ast.ObjectType
	}
	meta.InferredType = t
	return t
}

// store annotates e with t and returns t.
func store(e ast.Expr, t *ast.ClassNode) *ast.ClassNode {
	e.Meta().InferredType = t
	return t
}

// typeOfWithTarget types e knowing the type of the location it flows into.
// Closures are coerced to a SAM target, empty and literal containers take
// the target's type arguments and diamonds are inferred from it.
func (v *visitor) typeOfWithTarget(e ast.Expr, target *ast.ClassNode) *ast.ClassNode {
	if target == nil || e.Meta().InferredType != nil {
		return v.typeOf(e)
	}
	switch x := e.(type) {
	case *ast.ClosureExpr:
		if sam := types.FindSAM(target); sam != nil && !types.IsClosure(target) {
			return store(x, v.visitClosureAsSAM(x, target, sam))
		}
	case *ast.ListExpr:
		if elem := literalElementType(target); elem != nil {
			return store(x, v.visitListLiteral(x, elem))
		}
	case *ast.MapExpr:
		if k, val := literalEntryTypes(target); k != nil {
			return store(x, v.visitMapLiteral(x, k, val))
		}
	case *ast.ConstructorCallExpr:
		if x.Diamond {
			return store(x, v.visitConstructorCall(x, target))
		}
	case *ast.TernaryExpr:
		return store(x, v.visitTernary(x, target))
	case *ast.ElvisExpr:
		a := v.typeOfWithTarget(x.Value, target)
		b := v.typeOfWithTarget(x.Else, target)
		return store(x, types.LowestUpperBound(a, b))
	}
	return v.typeOf(e)
}

// infer dispatches on the expression kind. Every expression kind is
// handled here; anything else is a checker bug.
func (v *visitor) infer(e ast.Expr) *ast.ClassNode {
	switch e := e.(type) {
	case *ast.VariableExpr:
		return v.visitVariable(e)
	case *ast.ConstantExpr:
		if e.Type == nil {
			return ast.ObjectType
		}
		return e.Type
	case *ast.PropertyExpr:
		return v.visitProperty(e)
	case *ast.MethodCallExpr:
		return v.visitMethodCall(e)
	case *ast.StaticMethodCallExpr:
		return v.visitStaticCall(e)
	case *ast.ConstructorCallExpr:
		return v.visitConstructorCall(e, nil)
	case *ast.BinaryExpr:
		return v.visitBinary(e)
	case *ast.UnaryExpr:
		return v.visitUnary(e)
	case *ast.NotExpr:
		v.typeOf(e.Expr)
		return ast.BoolType
	case *ast.PostfixExpr:
		return v.visitIncrement(e, e.Expr, e.Op, false)
	case *ast.PrefixExpr:
		return v.visitIncrement(e, e.Expr, e.Op, true)
	case *ast.ListExpr:
		return v.visitListLiteral(e, nil)
	case *ast.MapExpr:
		return v.visitMapLiteral(e, nil, nil)
	case *ast.MapEntryExpr:
		k, val := v.typeOf(e.Key), v.typeOf(e.Value)
		return ast.MapEntryType.Parameterize(types.Box(nullToObject(k)), types.Box(nullToObject(val)))
	case *ast.RangeExpr:
		return v.visitRange(e)
	case *ast.ClosureExpr:
		return v.visitClosure(e, nil, nil)
	case *ast.CastExpr:
		return v.visitCast(e)
	case *ast.TernaryExpr:
		return v.visitTernary(e, nil)
	case *ast.ElvisExpr:
		return types.LowestUpperBound(v.typeOf(e.Value), v.typeOf(e.Else))
	case *ast.MethodPointerExpr:
		return v.visitMethodPointer(e)
	case *ast.SpreadExpr:
		v.addError(e, stcerr.TypeUnsupported, "The spread operator cannot be used outside of argument lists and literals")
		return v.typeOf(e.Expr)
	case *ast.SpreadMapExpr:
		t := v.typeOf(e.Expr)
		if !types.IsNull(t) && !types.IsSubtype(t, ast.MapType) {
			v.addError(e, stcerr.TypeIncompatibleAssignment, "Cannot spread value of type %s, a map is expected", t.Text())
		}
		return t
	case *ast.ClassExpr:
		return ast.ClassType.Parameterize(types.Box(e.Type))
	case *ast.DeclarationExpr:
		return v.visitDeclaration(e)
	case *ast.GStringExpr:
		for _, val := range e.Values {
			v.typeOf(val)
		}
		return ast.GStringType
	default:
		panic(stcerr.NewInternalError(fmt.Sprintf("unexpected expression %T", e), e))
	}
}

// visitVariable types a variable reference. instanceof facts override the
// declared type.
func (v *visitor) visitVariable(e *ast.VariableExpr) *ast.ClassNode {
	if e.IsThis() || e.IsSuper() {
		return v.thisType(e.IsSuper())
	}
	t := v.variableType(e)
	if key, ok := narrowKeyOf(e); ok {
		if ts := v.ctx.narrowed(key); ts != nil {
			t = narrowTo(t, ts)
		}
	}
	return t
}

func (v *visitor) variableType(e *ast.VariableExpr) *ast.ClassNode {
	switch av := e.Accessed.(type) {
	case *ast.DynamicVariable:
		return v.dynamicReference(e, av.Name)
	case *ast.FieldNode:
		v.checkStaticMember(e, av.Name, av.IsStatic(), "field")
		v.recordFieldAccess(av, false)
		if av.IsDynamicTyped() && av.VarMeta().InferredType != nil {
			return av.VarMeta().InferredType
		}
		return av.VarType()
	case *ast.PropertyNode:
		v.checkStaticMember(e, av.Name, av.IsStatic(), "property")
		return av.VarType()
	}
	return localType(e.Variable())
}

// localType returns the current type of a local variable or parameter:
// the declared type, or the flow type of a dynamic variable.
func localType(vr ast.Variable) *ast.ClassNode {
	if !vr.IsDynamicTyped() {
		return vr.VarType()
	}
	if t := vr.VarMeta().InferredType; t != nil {
		return t
	}
	return ast.ObjectType
}

// thisType returns the type of this or super: the enclosing class, or
// Class<C> in a static context.
func (v *visitor) thisType(super bool) *ast.ClassNode {
	cn := v.ctx.currentClass()
	if cn == nil {
		return ast.ObjectType
	}
	t := cn
	if super && cn.Super() != nil {
		t = cn.Super()
	}
	if v.ctx.inStaticContext() {
		return ast.ClassType.Parameterize(t.PlainRedirect())
	}
	return t
}

func (v *visitor) checkStaticMember(at ast.Node, name string, static bool, kind string) {
	if !static && v.ctx.inStaticContext() {
		v.addError(at, stcerr.TypeStaticContext,
			"Non-static %s %s cannot be referenced from a static context", kind, name)
	}
}

// visitDeclaration types a local declaration. A typed declaration keeps
// its declared type; a dynamic one takes the type of its initializer.
func (v *visitor) visitDeclaration(d *ast.DeclarationExpr) *ast.ClassNode {
	vr := d.Var
	v.ctx.tracker.declare(vr)
	meta := vr.VarMeta()

	if !vr.IsDynamicTyped() {
		if d.Init != nil {
			rt := v.typeOfWithTarget(d.Init, vr.Type)
			v.checkAssignment(d.Init, vr.Type, rt, d.Init)
		}
		meta.InferredType = vr.Type
		return store(vr, vr.Type)
	}

	t := ast.ObjectType
	if d.Init != nil {
		t = nullToObject(v.typeOf(d.Init))
	}
	meta.InferredType = t
	meta.DeclarationInferredType = widen(meta.DeclarationInferredType, t)
	return store(vr, t)
}

// widen joins the declaration type of a dynamic variable with a newly
// assigned type.
func widen(prev, t *ast.ClassNode) *ast.ClassNode {
	if prev == nil {
		return t
	}
	return types.LowestUpperBound(prev, t)
}

func (v *visitor) visitTernary(e *ast.TernaryExpr, target *ast.ClassNode) *ast.ClassNode {
	v.typeOf(e.Cond)
	pop := v.ctx.pushNarrowing(v.facts(e.Cond, true))
	a := v.typeOfWithTarget(e.Then, target)
	pop()
	pop = v.ctx.pushNarrowing(v.facts(e.Cond, false))
	b := v.typeOfWithTarget(e.Else, target)
	pop()
	return types.LowestUpperBound(a, b)
}

func (v *visitor) visitRange(e *ast.RangeExpr) *ast.ClassNode {
	from, to := v.typeOf(e.From), v.typeOf(e.To)
	if types.CategoryOf(from) == types.IntCategory && types.CategoryOf(to) == types.IntCategory {
		return ast.IntRangeType
	}
	return ast.RangeType.Parameterize(types.Box(types.LowestUpperBound(from, to)))
}

// visitCast checks explicit casts. Coercions with as are always accepted.
func (v *visitor) visitCast(e *ast.CastExpr) *ast.ClassNode {
	from := v.typeOfWithTarget(e.Expr, e.Type)
	if !e.Coerce && !castAllowed(from, e.Type) {
		v.addError(e, stcerr.TypeInvalidCast, "Inconvertible types: cannot cast %s to %s", from.Text(), e.Type.Text())
	}
	return e.Type
}

func castAllowed(from, to *ast.ClassNode) bool {
	switch {
	case types.IsNull(from):
		return !to.IsPrimitive()
	case types.IsAssignableTo(from, to), types.IsAssignableTo(to, from):
		return true
	case types.IsNumber(from) && types.IsNumber(to):
		// char counts as a number here
		return true
	case types.IsClosure(from) && types.FindSAM(to) != nil:
		return true
	case from.IsArray() && to.IsArray():
		return castAllowed(from.Component(), to.Component())
	case from.IsArray() || to.IsArray() || from.IsPrimitive() || to.IsPrimitive():
		return false
	case to.IsInterface():
		return !from.IsFinal() || types.IsSubtype(from, to)
	case from.IsInterface():
		return !to.IsFinal() || types.IsSubtype(to, from)
	}
	return false
}

// visitMethodPointer types obj.&name as a closure returning the method's
// return type when the name is not overloaded.
func (v *visitor) visitMethodPointer(e *ast.MethodPointerExpr) *ast.ClassNode {
	recv := v.typeOf(e.Object)
	static := false
	if ce, ok := e.Object.(*ast.ClassExpr); ok {
		recv, static = ce.Type, true
	}
	cands := v.accessibleMethods(recv, e.Method, static)
	switch len(cands) {
	case 0:
		v.addError(e, stcerr.TypeMethodNotFound, "Cannot find matching method %s#%s", recv.Text(), e.Method)
		e.Meta().Dynamic = true
		return ast.ClosureType
	case 1:
		m := cands[0]
		spec := v.receiverSpec(recv, m)
		ret := generics.FullyResolve(spec, m.Return())
		if m.Dynamic && m.Owner != nil && m.Owner.Decl().Primary && m.Body != nil {
			ret = v.visitOutOfLine(m)
		}
		e.Meta().DirectTarget = m
		return ast.ClosureType.Parameterize(types.Box(nullToObject(ret)))
	}
	return ast.ClosureType.Parameterize(ast.ObjectType)
}
