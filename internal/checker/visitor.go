package checker

import (
	"fmt"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

func (v *visitor) visitClass(cn *ast.ClassNode) {
	if cn.Meta.Checked {
		return
	}
	pop := v.ctx.pushClass(cn)
	defer pop()
	v.log.WithField("class", cn.Name).Debug("visiting class")

	for _, f := range cn.Fields {
		v.visitField(cn, f)
	}
	for _, m := range cn.Constructors {
		v.visitMethod(m)
	}
	for _, m := range cn.Methods {
		v.visitMethod(m)
	}
	cn.Meta.Checked = true
}

func (v *visitor) visitField(cn *ast.ClassNode, f *ast.FieldNode) {
	if f.Init == nil {
		return
	}
	if f.IsStatic() {
		// static initializers have no this
		clinit := &ast.MethodNode{Name: "<clinit>", Modifiers: ast.Static, Owner: cn, ReturnType: ast.VoidType, Synthetic: true}
		_, pop := v.ctx.pushMethod(clinit)
		defer pop()
	}
	if f.IsDynamicTyped() {
		t := v.typeOf(f.Init)
		f.VarMeta().InferredType = nullToObject(t)
		return
	}
	rt := v.typeOfWithTarget(f.Init, f.Type)
	v.checkAssignment(f.Init, f.Type, rt, f.Init)
}

// visitMethod checks a method or constructor body once.
func (v *visitor) visitMethod(m *ast.MethodNode) {
	if m.Meta.Checked {
		return
	}
	if !v.ctx.markVisited(m) {
		return
	}
	frame, pop := v.ctx.pushMethod(m)
	defer pop()
	log := v.log.WithField("method", m.Name)
	log.Trace("visiting method")

	for _, p := range m.Params {
		if p.Default == nil {
			continue
		}
		rt := v.typeOfWithTarget(p.Default, declaredType(p))
		if !p.IsDynamicTyped() {
			v.checkAssignment(p.Default, p.Type, rt, p.Default)
		}
	}

	if m.Body != nil {
		v.visitBody(frame, m)
	}

	switch {
	case !m.Dynamic:
		m.Meta.InferredReturnType = m.Return()
	default:
		m.Meta.InferredReturnType = returnTypeOf(frame.returns)
	}
	m.Meta.Checked = true
	log.WithField("returns", m.Meta.InferredReturnType.Text()).Trace("method checked")
}

// visitBody checks a method body; its last expression statement is the
// implicit return value.
func (v *visitor) visitBody(frame *methodFrame, m *ast.MethodNode) {
	_, pop := v.ctx.pushTracker()
	defer pop()
	v.visitStmt(m.Body)
	if m.IsConstructor() {
		return
	}
	if last := lastExprStmt(m.Body); last != nil && !isVoid(m.ReturnType) {
		v.methodReturn(frame, last, last.Expr, v.typeOf(last.Expr))
	}
}

// visitOutOfLine checks a dynamic-return method of a primary class before
// its return type is used. A recursive call sees Object.
func (v *visitor) visitOutOfLine(m *ast.MethodNode) *ast.ClassNode {
	if !m.Meta.Checked && !v.ctx.visited.Contains(m) {
		restore := v.ctx.swapStacks()
		popClass := v.ctx.pushClass(m.Owner.Decl())
		v.visitMethod(m)
		popClass()
		restore()
	}
	if m.Meta.InferredReturnType != nil {
		return m.Meta.InferredReturnType
	}
	return ast.ObjectType
}

func (v *visitor) visitStmt(s ast.Stmt) {
	switch s := s.(type) {
	case nil:
	case *ast.BlockStmt:
		v.visitBlock(s)
	case *ast.ExprStmt:
		v.typeOf(s.Expr)
	case *ast.ReturnStmt:
		v.visitReturn(s)
	case *ast.IfStmt:
		v.visitIf(s)
	case *ast.WhileStmt:
		v.loop(false, func() {
			v.typeOf(s.Cond)
			pop := v.ctx.pushNarrowing(v.facts(s.Cond, true))
			v.visitStmt(s.Body)
			pop()
		}, s.Cond, s.Body)
	case *ast.ForStmt:
		v.visitFor(s)
	case *ast.SwitchStmt:
		v.visitSwitch(s)
	case *ast.TryCatchStmt:
		v.visitTry(s)
	case *ast.ThrowStmt:
		t := v.typeOf(s.Expr)
		if !types.IsNull(t) && !types.IsAssignableTo(t, ast.ThrowableType) {
			v.addError(s.Expr, stcerr.TypeIncompatibleAssignment,
				"Cannot throw value of type %s, expected %s", t.Text(), ast.ThrowableType.Text())
		}
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt:
	default:
		panic(stcerr.NewInternalError(fmt.Sprintf("unexpected statement %T", s), s))
	}
}

// visitBlock visits statements in order. An if without else whose branch
// always exits keeps the negated condition's facts for the rest of the
// block.
func (v *visitor) visitBlock(b *ast.BlockStmt) {
	var pops []func()
	defer func() {
		for i := len(pops) - 1; i >= 0; i-- {
			pops[i]()
		}
	}()
	for _, s := range b.Stmts {
		v.visitStmt(s)
		ifs, ok := s.(*ast.IfStmt)
		if !ok || ifs.Else != nil || !ast.ExitsAbruptly(ifs.Then) {
			continue
		}
		if fs := v.facts(ifs.Cond, false); len(fs) > 0 {
			pops = append(pops, v.ctx.pushNarrowing(fs))
		}
	}
}

func (v *visitor) visitIf(s *ast.IfStmt) {
	v.typeOf(s.Cond)
	v.track(false, func(arm func(func())) {
		arm(func() {
			pop := v.ctx.pushNarrowing(v.facts(s.Cond, true))
			defer pop()
			v.visitStmt(s.Then)
		})
		if s.Else != nil {
			arm(func() {
				pop := v.ctx.pushNarrowing(v.facts(s.Cond, false))
				defer pop()
				v.visitStmt(s.Else)
			})
		}
	})
}

func (v *visitor) visitFor(s *ast.ForStmt) {
	if !s.IsForIn() {
		if s.Init != nil {
			v.typeOf(s.Init)
		}
		v.loop(false, func() {
			if s.Cond != nil {
				v.typeOf(s.Cond)
			}
			pop := v.ctx.pushNarrowing(v.facts(s.Cond, true))
			v.visitStmt(s.Body)
			pop()
			if s.Update != nil {
				v.typeOf(s.Update)
			}
		}, s.Cond, s.Body, s.Update)
		return
	}

	ct := v.typeOf(s.Collection)
	elem := elementType(ct)
	p := s.Var
	if p.IsDynamicTyped() {
		p.VarMeta().InferredType = elem
	} else if !types.IsAssignableTo(elem, p.Type) && elem.Decl() != ast.ObjectType {
		v.addError(s.Collection, stcerr.TypeIncompatibleAssignment,
			"Cannot loop with element of type %s with variable of type %s", elem.Text(), p.Type.Text())
	}
	v.loop(false, func() {
		v.ctx.tracker.declare(p)
		v.visitStmt(s.Body)
	}, s.Body)
}

func (v *visitor) visitSwitch(s *ast.SwitchStmt) {
	v.typeOf(s.Subject)
	v.track(false, func(arm func(func())) {
		for _, c := range s.Cases {
			arm(func() {
				v.typeOf(c.Expr)
				v.visitStmt(c.Body)
			})
		}
		if s.Default != nil {
			arm(func() { v.visitStmt(s.Default) })
		}
	})
}

func (v *visitor) visitTry(s *ast.TryCatchStmt) {
	v.track(false, func(arm func(func())) {
		arm(func() { v.visitStmt(s.Try) })
		for _, c := range s.Catches {
			arm(func() {
				v.ctx.tracker.declare(c.Param)
				if c.Param.IsDynamicTyped() {
					c.Param.VarMeta().InferredType = ast.ExceptionType
				}
				v.visitStmt(c.Body)
			})
		}
	})
	v.visitStmt(s.Finally)
}

func (v *visitor) visitReturn(s *ast.ReturnStmt) {
	if f := v.ctx.currentClosure(); f != nil {
		t := ast.VoidType
		if s.Expr != nil {
			t = v.typeOf(s.Expr)
		}
		f.returns = append(f.returns, t)
		return
	}
	frame := v.ctx.currentMethodFrame()
	if frame == nil {
		return
	}
	t := ast.VoidType
	if s.Expr != nil {
		t = v.typeOfWithTarget(s.Expr, declaredReturn(frame.method))
	}
	v.methodReturn(frame, s, s.Expr, t)
}

// methodReturn records a returned type and checks it against the declared
// return type.
func (v *visitor) methodReturn(frame *methodFrame, at ast.Node, e ast.Expr, t *ast.ClassNode) {
	frame.returns = append(frame.returns, t)
	m := frame.method
	if m.Dynamic || m.ReturnType == nil || m.IsConstructor() {
		return
	}
	if isVoid(m.ReturnType) {
		if e != nil && !isVoid(t) {
			v.addError(at, stcerr.TypeIncompatibleReturn, "Cannot return value of type %s on method returning type void", t.Text())
		}
		return
	}
	if e == nil {
		v.addError(at, stcerr.TypeIncompatibleReturn, "Cannot return void on method returning type %s", m.ReturnType.Text())
		return
	}
	switch types.CheckAssignment(m.ReturnType, t, e) {
	case types.Incompatible:
		v.addError(at, stcerr.TypeIncompatibleReturn,
			"Cannot return value of type %s on method returning type %s", t.Text(), m.ReturnType.Text())
	case types.PrecisionLoss:
		v.addError(at, stcerr.TypePrecisionLoss,
			"Possible loss of precision from %s to %s", t.Text(), m.ReturnType.Text())
	}
}

// lastExprStmt returns the statement producing the implicit return value
// of a body, or nil.
func lastExprStmt(s ast.Stmt) *ast.ExprStmt {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return s
	case *ast.BlockStmt:
		if len(s.Stmts) == 0 {
			return nil
		}
		return lastExprStmt(s.Stmts[len(s.Stmts)-1])
	}
	return nil
}

func declaredReturn(m *ast.MethodNode) *ast.ClassNode {
	if m.Dynamic || isVoid(m.ReturnType) {
		return nil
	}
	return m.ReturnType
}

func declaredType(v ast.Variable) *ast.ClassNode {
	if v.IsDynamicTyped() {
		return nil
	}
	return v.VarType()
}

func isVoid(t *ast.ClassNode) bool {
	return t != nil && (t.Decl() == ast.VoidType || t.Decl() == ast.VoidWrapper)
}

// returnTypeOf joins the types returned by a body; void and null returns
// only count when nothing else is returned.
func returnTypeOf(returns []*ast.ClassNode) *ast.ClassNode {
	var ts []*ast.ClassNode
	for _, t := range returns {
		if !isVoid(t) && !types.IsNull(t) {
			ts = append(ts, t)
		}
	}
	if len(ts) == 0 {
		return ast.ObjectType
	}
	return types.LowestUpperBoundOf(ts)
}

func nullToObject(t *ast.ClassNode) *ast.ClassNode {
	if t == nil || types.IsNull(t) || isVoid(t) {
		return ast.ObjectType
	}
	return t
}
