package checker

import (
	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// visitClosure checks a closure body. expected gives the parameter types
// implied by the call site, del the delegate of unqualified references.
// Both may be nil. The body is revisited while variables it assigns keep
// widening.
func (v *visitor) visitClosure(c *ast.ClosureExpr, expected []*ast.ClassNode, del *ast.Delegation) *ast.ClassNode {
	params := c.EffectiveParams()
	argTypes := make([]*ast.ClassNode, len(params))
	for i, p := range params {
		var want *ast.ClassNode
		if i < len(expected) {
			want = expected[i]
		}
		switch {
		case p.IsDynamicTyped():
			if want == nil {
				want = ast.ObjectType
			}
			p.VarMeta().InferredType = want
			argTypes[i] = want
		default:
			if want != nil && !types.IsAssignableTo(want, p.Type) && !types.IsAssignableTo(p.Type, want) {
				v.addError(c, stcerr.TypeIncompatibleArguments,
					"Expected parameter of type %s but got %s", want.Text(), p.Type.Text())
			}
			p.VarMeta().InferredType = p.Type
			argTypes[i] = p.Type
		}
		if p.Default != nil {
			v.typeOfWithTarget(p.Default, declaredType(p))
		}
	}

	meta := c.Meta()
	meta.ClosureArgTypes = argTypes
	meta.Delegation = del
	if del != nil {
		popDel := v.ctx.pushDelegation(del)
		defer popDel()
	}
	frame, pop := v.ctx.pushClosure(c)
	defer pop()

	v.loop(true, func() {
		frame.returns = nil
		for _, p := range params {
			v.ctx.tracker.declare(p)
		}
		v.visitStmt(c.Body)
		if last := lastExprStmt(c.Body); last != nil {
			frame.returns = append(frame.returns, v.typeOf(last.Expr))
		}
	}, c.Body)

	ret := types.Box(returnTypeOf(frame.returns))
	if len(frame.returns) == 0 || allVoid(frame.returns) {
		ret = ast.ObjectType
	}
	meta.InferredReturnType = ret
	t := ast.ClosureType.Parameterize(ret)
	meta.InferredType = t
	return t
}

func allVoid(ts []*ast.ClassNode) bool {
	for _, t := range ts {
		if !isVoid(t) {
			return false
		}
	}
	return true
}

// visitClosureAsSAM checks a closure coerced to a single abstract method
// type. The closure takes the SAM's parameter types and must return
// something assignable to the SAM's return type.
func (v *visitor) visitClosureAsSAM(c *ast.ClosureExpr, target *ast.ClassNode, sam *ast.MethodNode) *ast.ClassNode {
	expected := samParamTypes(target, sam)
	params := c.EffectiveParams()
	if c.ParamsDeclared && len(params) != len(expected) {
		v.addError(c, stcerr.TypeIncompatibleArguments,
			"Incorrect number of parameters. Expected %d but found %d", len(expected), len(params))
		expected = nil
	}
	t := v.visitClosure(c, expected, nil)
	v.checkClosureReturn(c, target, sam)
	return t
}

// checkClosureReturn checks the inferred return type of a closure against
// the return type of the SAM it is coerced to.
func (v *visitor) checkClosureReturn(c *ast.ClosureExpr, target *ast.ClassNode, sam *ast.MethodNode) {
	want := samReturn(target, sam)
	got := c.Meta().InferredReturnType
	if want == nil || got == nil || isVoid(want) || generics.HasPlaceholders(want) || got.Decl() == ast.ObjectType {
		return
	}
	if types.CheckAssignment(types.Box(want), got, nil) == types.Incompatible {
		v.addError(c, stcerr.TypeIncompatibleReturn,
			"Cannot return value of type %s for closure expecting %s", got.Text(), want.Text())
	}
}

// samReturn returns the return type of sam as seen through target.
func samReturn(target *ast.ClassNode, sam *ast.MethodNode) *ast.ClassNode {
	return generics.ApplyContext(samSpec(target, sam), sam.Return())
}
