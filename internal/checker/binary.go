package checker

import (
	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

func (v *visitor) visitBinary(e *ast.BinaryExpr) *ast.ClassNode {
	if e.Op.IsAssignment() {
		return v.visitAssignment(e)
	}
	pop := v.ctx.pushBinary(e)
	defer pop()

	switch e.Op {
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		v.typeOf(e.Left)
		popN := v.ctx.pushNarrowing(v.facts(e.Left, e.Op == ast.OpLogicalAnd))
		v.typeOf(e.Right)
		popN()
		return ast.BoolType
	case ast.OpInstanceOf, ast.OpNotInstanceOf:
		v.typeOf(e.Left)
		v.typeOf(e.Right)
		return ast.BoolType
	case ast.OpIdentical, ast.OpNotIdentical:
		v.typeOf(e.Left)
		v.typeOf(e.Right)
		return ast.BoolType
	case ast.OpIn, ast.OpNotIn:
		l, r := v.typeOf(e.Left), v.typeOf(e.Right)
		v.operatorCall(e, r, "isCase", []ast.Expr{e.Left}, []*ast.ClassNode{l})
		return ast.BoolType
	case ast.OpIndex:
		return v.visitIndex(e)
	}
	l, r := v.typeOf(e.Left), v.typeOf(e.Right)
	return v.binaryResult(e, e.Op, l, r, e.Right)
}

// binaryResult types left op right. Number and string shortcuts are
// answered directly; everything else is a call to the operator method.
func (v *visitor) binaryResult(e ast.Expr, op ast.Op, l, r *ast.ClassNode, right ast.Expr) *ast.ClassNode {
	if rt := types.MathResultType(op, l, r); rt != nil {
		return rt
	}
	name := op.MethodName()
	if name == "" {
		v.addError(e, stcerr.TypeUnsupported, "Operator %s is not supported on %s and %s", op.Text(), l.Text(), r.Text())
		return ast.ObjectType
	}
	var args []ast.Expr
	if right != nil {
		args = []ast.Expr{right}
	}
	ret := v.operatorCall(e, l, name, args, []*ast.ClassNode{r})
	switch {
	case op.IsComparison(), op == ast.OpEqual, op == ast.OpNotEqual:
		return ast.BoolType
	case op == ast.OpCompareTo:
		return ast.IntType
	}
	return ret
}

// operatorCall resolves an operator method on the receiver type.
func (v *visitor) operatorCall(e ast.Expr, recv *ast.ClassNode, name string, args []ast.Expr, argTypes []*ast.ClassNode) *ast.ClassNode {
	if types.IsNull(recv) {
		recv = ast.ObjectType
	}
	cs := &callSite{node: e, receiver: types.Box(recv), name: name, args: args, argTypes: argTypes}
	_, ret := v.resolve(cs)
	return ret
}

// visitIndex types a[i]. Arrays index directly; everything else goes
// through getAt.
func (v *visitor) visitIndex(e *ast.BinaryExpr) *ast.ClassNode {
	l, r := v.typeOf(e.Left), v.typeOf(e.Right)
	if l.IsArray() && types.CategoryOf(r) == types.IntCategory {
		return l.Component()
	}
	return v.operatorCall(e, l, "getAt", []ast.Expr{e.Right}, []*ast.ClassNode{r})
}

// visitAssignment checks =, ?= and the compound assignments.
func (v *visitor) visitAssignment(e *ast.BinaryExpr) *ast.ClassNode {
	pop := v.ctx.pushBinary(e)
	defer pop()

	switch left := e.Left.(type) {
	case *ast.VariableExpr:
		if !left.IsThis() && !left.IsSuper() {
			t := v.assignVariable(e, left)
			v.forgetNarrowing(left, t)
			return t
		}
	case *ast.PropertyExpr:
		if !left.Spread {
			t := v.assignProperty(e, left)
			v.forgetNarrowing(left, nil)
			return t
		}
	case *ast.BinaryExpr:
		if left.Op == ast.OpIndex {
			return v.assignIndex(e, left)
		}
	}
	v.typeOf(e.Left)
	return v.typeOf(e.Right)
}

// forgetNarrowing ends the instanceof narrowing of an assigned expression.
// A statically typed variable keeps the assigned type as its narrowed
// type; a dynamic one falls back to its flow type.
func (v *visitor) forgetNarrowing(left ast.Expr, assigned *ast.ClassNode) {
	key, ok := narrowKeyOf(left)
	if !ok {
		return
	}
	var t *ast.ClassNode
	if ve, ok := left.(*ast.VariableExpr); ok && !ve.IsDynamicTyped() && assigned != nil {
		if !types.IsNull(assigned) && !isVoid(assigned) && types.IsAssignableTo(assigned, ve.VarType()) {
			t = types.Box(assigned)
		}
	}
	v.ctx.reassigned(key, t)
}

// assignedType computes the value stored by e given the current type of
// the left-hand side and its declared type, nil when dynamic.
func (v *visitor) assignedType(e *ast.BinaryExpr, current, declared *ast.ClassNode) *ast.ClassNode {
	switch {
	case e.Op == ast.OpAssign:
		return v.typeOfWithTarget(e.Right, declared)
	case e.Op == ast.OpElvisAssign:
		return types.LowestUpperBound(current, v.typeOfWithTarget(e.Right, declared))
	}
	r := v.typeOf(e.Right)
	return v.binaryResult(e, e.Op.Base(), current, r, e.Right)
}

// checkStore checks a value assigned to a declared location. Compound
// arithmetic on numbers narrows implicitly and is not checked.
func (v *visitor) checkStore(e *ast.BinaryExpr, declared, t *ast.ClassNode) {
	if e.Op.IsCompoundAssignment() && types.IsNumber(declared) && types.IsNumber(t) {
		return
	}
	rhs := e.Right
	if e.Op != ast.OpAssign {
		rhs = nil
	}
	v.checkAssignment(rhs, declared, t, e)
}

func (v *visitor) assignVariable(e *ast.BinaryExpr, left *ast.VariableExpr) *ast.ClassNode {
	switch av := left.Accessed.(type) {
	case *ast.DynamicVariable:
		return v.assignDynamicReference(e, left, av.Name)
	case *ast.FieldNode:
		v.checkStaticMember(left, av.Name, av.IsStatic(), "field")
		v.checkFinalField(left, av)
		v.recordFieldAccess(av, true)
		if av.IsDynamicTyped() {
			t := v.assignedType(e, localType(av), nil)
			if av.Owner == nil || !av.Owner.Decl().Primary {
				// imported classes are read-only
				store(left, av.VarType())
				return t
			}
			av.VarMeta().InferredType = widen(av.VarMeta().InferredType, nullToObject(t))
			store(left, av.VarMeta().InferredType)
			return t
		}
		t := v.assignedType(e, av.VarType(), av.VarType())
		v.checkStore(e, av.VarType(), t)
		store(left, av.VarType())
		return t
	case *ast.PropertyNode:
		v.checkStaticMember(left, av.Name, av.IsStatic(), "property")
		t := v.assignedType(e, av.VarType(), declaredType(av))
		if !av.IsDynamicTyped() {
			v.checkStore(e, av.VarType(), t)
		}
		store(left, av.VarType())
		return t
	}

	vr := left.Variable()
	if !vr.IsDynamicTyped() {
		t := v.assignedType(e, vr.VarType(), vr.VarType())
		v.checkStore(e, vr.VarType(), t)
		store(left, vr.VarType())
		return t
	}

	prev := localType(vr)
	t := v.assignedType(e, prev, nil)
	flow := t
	if types.IsNull(t) || isVoid(t) {
		// null keeps the variable's type
		flow = prev
	}
	meta := vr.VarMeta()
	meta.InferredType = flow
	meta.DeclarationInferredType = widen(meta.DeclarationInferredType, flow)
	v.ctx.tracker.record(vr, prev, flow)
	store(left, flow)
	return t
}

// checkFinalField rejects writes to a final field outside the
// constructors and static initializer of its class.
func (v *visitor) checkFinalField(at ast.Node, f *ast.FieldNode) {
	if !f.IsFinal() {
		return
	}
	if m := v.ctx.currentMethod(); m != nil && v.ctx.currentClosure() == nil && f.Owner != nil && m.Owner != nil &&
		m.Owner.Decl() == f.Owner.Decl() && (m.IsConstructor() || m.Name == "<clinit>") {
		return
	}
	v.addError(at, stcerr.TypeReadOnly, "Cannot assign a value to final variable '%s'", f.Name)
}

// assignDynamicReference handles name = value where name is not a
// declared variable: a property of an implicit receiver.
func (v *visitor) assignDynamicReference(e *ast.BinaryExpr, left *ast.VariableExpr, name string) *ast.ClassNode {
	for _, r := range v.implicitReceivers() {
		res := v.findProperty(r.typ, name, r.static, false, true)
		if res == nil {
			continue
		}
		meta := left.Meta()
		meta.ImplicitReceiver = r.label
		meta.PropertyOwner = res.owner
		return v.storeProperty(e, left, name, res)
	}
	v.addError(left, stcerr.TypeUnresolvedReference, "The variable [%s] is undeclared.", name)
	left.Meta().Dynamic = true
	store(left, ast.ObjectType)
	return v.typeOf(e.Right)
}

func (v *visitor) assignProperty(e *ast.BinaryExpr, left *ast.PropertyExpr) *ast.ClassNode {
	var res *propertyResult
	if left.ImplicitThis {
		for _, r := range v.implicitReceivers() {
			if res = v.findProperty(r.typ, left.Property, r.static, left.Attribute, true); res != nil {
				left.Meta().ImplicitReceiver = r.label
				break
			}
		}
		if res == nil {
			return v.missingPropertyWrite(e, left, v.thisType(false))
		}
	} else {
		recv := v.typeOf(left.Object)
		static := false
		if ce, ok := left.Object.(*ast.ClassExpr); ok {
			recv, static = ce.Type, true
		}
		if res = v.findProperty(recv, left.Property, static, left.Attribute, true); res == nil {
			return v.missingPropertyWrite(e, left, recv)
		}
	}
	left.Meta().PropertyOwner = res.owner
	return v.storeProperty(e, left, left.Property, res)
}

func (v *visitor) missingPropertyWrite(e *ast.BinaryExpr, left *ast.PropertyExpr, recv *ast.ClassNode) *ast.ClassNode {
	v.addError(left, stcerr.TypeUnresolvedReference, "No such property: %s for class: %s", left.Property, recv.Text())
	left.Meta().Dynamic = true
	store(left, ast.ObjectType)
	return v.typeOf(e.Right)
}

// storeProperty checks a write through a resolved property.
func (v *visitor) storeProperty(e *ast.BinaryExpr, left ast.Expr, name string, res *propertyResult) *ast.ClassNode {
	if res.readOnly {
		v.addError(left, stcerr.TypeReadOnly, "Cannot set read-only property: %s", name)
		left.Meta().ReadOnly = true
	}
	if res.field != nil {
		v.checkFinalField(left, res.field)
		v.recordFieldAccess(res.field, true)
	}
	if res.setter != nil {
		left.Meta().DirectTarget = res.setter
	}
	t := v.assignedType(e, res.typ, res.typ)
	v.checkStore(e, res.typ, t)
	store(left, res.typ)
	return t
}

// assignIndex checks a[i] = value. Arrays store directly, anything else
// calls putAt.
func (v *visitor) assignIndex(e *ast.BinaryExpr, left *ast.BinaryExpr) *ast.ClassNode {
	recv, idx := v.typeOf(left.Left), v.typeOf(left.Right)
	if recv.IsArray() && types.CategoryOf(idx) == types.IntCategory {
		comp := recv.Component()
		t := v.assignedType(e, comp, comp)
		v.checkStore(e, comp, t)
		store(left, comp)
		return t
	}
	current := ast.ObjectType
	if e.Op != ast.OpAssign {
		current = v.typeOf(left)
	}
	t := v.assignedType(e, current, nil)
	v.operatorCall(e, recv, "putAt", []ast.Expr{left.Right, e.Right}, []*ast.ClassNode{idx, t})
	if left.Meta().InferredType == nil {
		store(left, t)
	}
	return t
}

// visitUnary types -x, +x and ~x.
func (v *visitor) visitUnary(e *ast.UnaryExpr) *ast.ClassNode {
	t := v.typeOf(e.Expr)
	if rt := types.UnaryResultType(e.Op, t); rt != nil {
		return rt
	}
	return v.operatorCall(e, t, e.Op.MethodName(), nil, nil)
}

// visitIncrement types x++, x--, ++x and --x. The operand is assigned
// the result of next or previous.
func (v *visitor) visitIncrement(e ast.Expr, operand ast.Expr, op ast.Op, prefix bool) *ast.ClassNode {
	t := v.typeOf(operand)
	next := types.UnaryResultType(op, t)
	if next == nil {
		next = v.operatorCall(e, t, op.MethodName(), nil, nil)
	}
	if ve, ok := operand.(*ast.VariableExpr); ok && !ve.IsThis() && !ve.IsSuper() {
		switch av := ve.Accessed.(type) {
		case *ast.FieldNode:
			v.checkFinalField(ve, av)
			v.recordFieldAccess(av, true)
		case nil, *ast.Parameter, *ast.VariableExpr:
			if vr := ve.Variable(); vr.IsDynamicTyped() {
				v.ctx.tracker.record(vr, t, next)
				vr.VarMeta().InferredType = next
			}
		}
	}
	if prefix {
		return next
	}
	return t
}
