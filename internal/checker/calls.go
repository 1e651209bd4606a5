package checker

import (
	"strings"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// callSite describes one method, operator or constructor call.
type callSite struct {
	node     ast.Expr
	receiver *ast.ClassNode
	name     string
	// args may be nil for operator calls, argTypes never is.
	args     []ast.Expr
	argTypes []*ast.ClassNode
	typeArgs []*ast.GenericsType
	// static is set when the receiver is a type rather than a value.
	static   bool
	implicit bool
}

// argumentTypes types call arguments. Closures are left unvisited until
// the target is known and count as raw Closure for ranking.
func (v *visitor) argumentTypes(args []ast.Expr) []*ast.ClassNode {
	out := make([]*ast.ClassNode, len(args))
	for i, a := range args {
		if c, ok := a.(*ast.ClosureExpr); ok && c.Meta().InferredType == nil {
			out[i] = ast.ClosureType
			continue
		}
		out[i] = v.typeOf(a)
	}
	return out
}

// rejectSpread reports spread arguments, whose arity is unknown statically.
func (v *visitor) rejectSpread(call ast.Expr, args []ast.Expr) bool {
	found := false
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadExpr); ok {
			v.typeOf(sp.Expr)
			store(sp, ast.ObjectType)
			v.addError(sp, stcerr.TypeUnsupported, "The spread operator cannot be used as argument of method or closure calls with static type checking because the number of arguments cannot be determined at compile time")
			found = true
		}
	}
	if found {
		for _, a := range args {
			if _, ok := a.(*ast.SpreadExpr); !ok {
				v.typeOf(a)
			}
		}
		call.Meta().Dynamic = true
	}
	return found
}

func (v *visitor) visitMethodCall(e *ast.MethodCallExpr) *ast.ClassNode {
	if e.ImplicitThis {
		return v.visitImplicitCall(e)
	}
	recvType := v.typeOf(e.Object)
	if v.rejectSpread(e, e.Args) {
		return ast.ObjectType
	}
	cs := &callSite{node: e, receiver: recvType, name: e.Method, args: e.Args, typeArgs: e.TypeArgs}
	if ce, ok := e.Object.(*ast.ClassExpr); ok {
		cs.receiver, cs.static = ce.Type, true
	}
	if e.Spread {
		cs.receiver = elementType(recvType)
	}
	cs.argTypes = v.argumentTypes(e.Args)
	_, ret := v.resolve(cs)
	if e.Safe && !isVoid(ret) {
		ret = types.Box(ret)
	}
	if e.Spread {
		ret = ast.ListType.Parameterize(types.Box(nullToObject(ret)))
	}
	return ret
}

// receiver is one candidate for an implicit this.
type receiver struct {
	typ    *ast.ClassNode
	static bool
	label  string
}

// implicitReceivers lists where a call or reference without receiver is
// looked up, following the innermost closure's resolve strategy.
func (v *visitor) implicitReceivers() []receiver {
	owner := receiver{typ: ast.ObjectType, label: "this"}
	if cn := v.ctx.currentClass(); cn != nil {
		owner.typ, owner.static = cn, v.ctx.inStaticContext()
	}
	d := v.ctx.delegation
	if d == nil {
		return []receiver{owner}
	}
	var delegates []receiver
	for p := d; p != nil; p = p.Parent {
		delegates = append(delegates, receiver{typ: p.Type, label: "delegate"})
	}
	switch d.Strategy {
	case ast.DelegateFirst:
		return append(delegates, owner)
	case ast.DelegateOnly:
		return delegates[:1]
	case ast.OwnerOnly:
		return []receiver{owner}
	}
	return append([]receiver{owner}, delegates...)
}

// visitImplicitCall resolves name(args) against the delegate and owner
// chain. The first receiver with an applicable method wins; when none has
// one the error is reported against the owner.
func (v *visitor) visitImplicitCall(e *ast.MethodCallExpr) *ast.ClassNode {
	if v.rejectSpread(e, e.Args) {
		return ast.ObjectType
	}
	cs := &callSite{node: e, name: e.Method, args: e.Args, typeArgs: e.TypeArgs, implicit: true}
	cs.argTypes = v.argumentTypes(e.Args)
	recvs := v.implicitReceivers()
	chosen := recvs[len(recvs)-1]
	for _, r := range recvs {
		if r.label == "this" {
			chosen = r
		}
	}
	for _, r := range recvs {
		cs.receiver, cs.static = r.typ, r.static
		recv, methods, _ := v.findMethods(cs)
		if len(v.rank(recv, methods, cs.argTypes)) > 0 {
			chosen = r
			break
		}
	}
	cs.receiver, cs.static = chosen.typ, chosen.static
	e.Meta().ImplicitReceiver = chosen.label
	store(e.Object, chosen.typ)
	_, ret := v.resolve(cs)
	return ret
}

func (v *visitor) visitStaticCall(e *ast.StaticMethodCallExpr) *ast.ClassNode {
	if v.rejectSpread(e, e.Args) {
		return ast.ObjectType
	}
	cs := &callSite{node: e, receiver: e.Owner, name: e.Method, args: e.Args, static: true, implicit: true}
	cs.argTypes = v.argumentTypes(e.Args)
	_, ret := v.resolve(cs)
	return ret
}

// resolve picks the target of a call, reports resolution errors and
// returns the target with the call's type. The target is nil when the
// call could not be resolved.
func (v *visitor) resolve(cs *callSite) (*ast.MethodNode, *ast.ClassNode) {
	recv, methods, staticErr := v.findMethods(cs)
	best := v.rank(recv, methods, cs.argTypes)
	switch {
	case len(best) == 0 && staticErr:
		v.addError(cs.node, stcerr.TypeStaticContext,
			"Non-static method %s#%s cannot be called from static context", recv.Text(), cs.name)
		cs.node.Meta().Dynamic = true
		v.visitPendingClosures(cs)
		return nil, ast.ObjectType
	case len(best) == 0:
		v.addError(cs.node, stcerr.TypeMethodNotFound,
			"Cannot find matching method %s#%s(%s). Please check if the declared type is correct and if the method exists.",
			recv.Text(), cs.name, typeList(cs.argTypes))
		cs.node.Meta().Dynamic = true
		v.visitPendingClosures(cs)
		return nil, ast.ObjectType
	case len(best) > 1:
		sigs := make([]string, len(best))
		for i, c := range best {
			sigs[i] = c.method.Signature()
		}
		v.log.WithField("candidates", sigs).Debug("ambiguous call")
		v.addError(cs.node, stcerr.TypeAmbiguousMethod,
			"Reference to method is ambiguous. Cannot choose between [%s]", strings.Join(sigs, ", "))
		v.visitPendingClosures(cs)
		return nil, ast.ObjectType
	}
	m, ret, ok := v.complete(cs, recv, best[0])
	if !ok {
		return nil, ast.ObjectType
	}
	return m, ret
}

// complete finishes a resolved call: closure arguments are visited with
// the parameter types of the target, type parameters are inferred and the
// arguments are checked against the resolved signature. The annotations
// are stored only when that check passes.
func (v *visitor) complete(cs *callSite, recv *ast.ClassNode, c *candidate) (*ast.MethodNode, *ast.ClassNode, bool) {
	m := c.method
	spec := v.receiverSpec(recv, m)
	formals := make([]*ast.ClassNode, len(m.Params))
	for i, p := range m.Params {
		formals[i] = generics.ApplyContext(spec, p.VarType())
	}

	if hasClosure(cs.args) {
		partial := spec.Clone()
		partial.Override(v.methodSpec(m, formals, cs.argTypes, cs.typeArgs, c.varargs, spec, false))
		v.visitClosureArgs(cs, recv, m, partial, c.varargs)
	}

	full := spec.Clone()
	if len(m.Generics) > 0 {
		full.Override(v.methodSpec(m, formals, cs.argTypes, cs.typeArgs, c.varargs, spec, true))
	}
	params := make([]*ast.ClassNode, len(m.Params))
	for i, p := range m.Params {
		params[i] = generics.ApplyContext(full, p.VarType())
	}
	for i, a := range cs.argTypes {
		f := formalAt(params, i, c.varargs)
		if !types.GenericsCompatible(f, a) || !witnessFits(cs, params, i, a, c.varargs) {
			v.addError(cs.node, stcerr.TypeIncompatibleArguments,
				"Cannot call %s with arguments [%s]", signatureWith(m, params), typeList(cs.argTypes))
			cs.node.Meta().Dynamic = true
			return nil, nil, false
		}
	}

	ret := generics.ApplyContext(full, m.Return())
	target := m
	if m.Original != nil {
		target = m.Original
	}
	if target.Dynamic && target.Owner != nil && target.Owner.Decl().Primary && target.Body != nil && !target.IsConstructor() {
		ret = v.visitOutOfLine(target)
	}

	meta := cs.node.Meta()
	meta.DirectTarget = m
	meta.CallParamTypes = params
	meta.CallReturnType = ret
	v.recordMethodAccess(target)
	return m, ret, true
}

// witnessFits checks argument i against its parameter once explicit type
// arguments have been substituted. Ranking only saw the bounds.
func witnessFits(cs *callSite, params []*ast.ClassNode, i int, a *ast.ClassNode, varargs bool) bool {
	if len(cs.typeArgs) == 0 || a == nil || types.IsNull(a) {
		return true
	}
	f := formalAt(params, i, varargs)
	if varargs && i == len(params)-1 && len(cs.argTypes) == len(params) && a.IsArray() {
		// the array itself fills the varargs slot
		f = params[i]
	}
	if f == nil {
		return true
	}
	if types.IsClosure(a) && types.FindSAM(f) != nil {
		return true
	}
	return types.IsAssignableTo(a, f)
}

// methodSpec infers m's own type parameters from the arguments. Explicit
// type arguments win. With fallback set, parameters left unbound take
// their bound.
func (v *visitor) methodSpec(m *ast.MethodNode, formals, args []*ast.ClassNode, typeArgs []*ast.GenericsType, varargs bool, recvSpec generics.Spec, fallback bool) generics.Spec {
	spec := generics.Spec{}
	for i, a := range args {
		f := formalAt(formals, i, varargs)
		if f == nil || a == nil {
			continue
		}
		switch {
		case types.IsClosure(a) && !types.IsClosure(f):
			extractFromClosure(spec, a, f)
		case f.IsPlaceholder() && !types.IsNull(a):
			if cur, ok := spec[f.Name]; ok && !cur.Placeholder && !cur.Wildcard {
				// T bound twice, as in pick(T a, T b)
				spec[f.Name] = ast.TypeArg(types.Box(types.LowestUpperBound(cur.Type, a)))
				continue
			}
			generics.ExtractConnections(spec, a, f)
		default:
			generics.ExtractConnections(spec, a, f)
		}
	}
	for i, ta := range typeArgs {
		if i < len(m.Generics) {
			spec[m.Generics[i].Name] = ta
		}
	}
	if fallback {
		for _, g := range m.Generics {
			if _, ok := spec[g.Name]; ok {
				continue
			}
			if _, ok := recvSpec[g.Name]; ok {
				continue
			}
			spec[g.Name] = ast.TypeArg(placeholderBound(g))
		}
	}
	return spec
}

// extractFromClosure binds the placeholders of a SAM's return type from
// the return type of a closure coerced to it.
func extractFromClosure(into generics.Spec, closure, formal *ast.ClassNode) {
	sam := types.FindSAM(formal)
	if sam == nil || len(closure.Generics) == 0 {
		return
	}
	want := generics.ApplyContext(samSpec(formal, sam), sam.Return())
	if isVoid(want) {
		return
	}
	generics.ExtractConnections(into, closure.Generics[0].Type, want)
}

// samSpec binds a SAM declaration's type parameters from formal, taking
// wildcard bounds as the bound types.
func samSpec(formal *ast.ClassNode, sam *ast.MethodNode) generics.Spec {
	spec := generics.ClassSpec(formal, sam.Owner)
	for name, g := range spec {
		if !g.Wildcard {
			continue
		}
		switch {
		case g.LowerBound != nil:
			spec[name] = ast.TypeArg(g.LowerBound)
		case len(g.UpperBounds) > 0:
			spec[name] = ast.TypeArg(g.UpperBounds[0])
		default:
			spec[name] = ast.TypeArg(ast.ObjectType)
		}
	}
	return spec
}

// samParamTypes returns the closure parameter types implied by coercion
// to formal.
func samParamTypes(formal *ast.ClassNode, sam *ast.MethodNode) []*ast.ClassNode {
	spec := samSpec(formal, sam)
	out := make([]*ast.ClassNode, len(sam.Params))
	for i, p := range sam.Params {
		out[i] = generics.FullyResolve(spec, p.VarType())
	}
	return out
}

func hasClosure(args []ast.Expr) bool {
	for _, a := range args {
		if _, ok := a.(*ast.ClosureExpr); ok {
			return true
		}
	}
	return false
}

// visitClosureArgs visits the closure arguments of a resolved call with
// the parameter types given by the target: ClosureParams hints first,
// then SAM coercion.
func (v *visitor) visitClosureArgs(cs *callSite, recv *ast.ClassNode, m *ast.MethodNode, spec generics.Spec, varargs bool) {
	for i, a := range cs.args {
		c, ok := a.(*ast.ClosureExpr)
		if !ok {
			continue
		}
		if t := c.Meta().InferredType; t != nil {
			cs.argTypes[i] = t
			continue
		}
		p := paramAt(m, i)
		if p == nil {
			cs.argTypes[i] = v.typeOf(c)
			continue
		}
		formal := generics.ApplyContext(spec, p.VarType())
		if varargs && i >= len(m.Params)-1 && formal.IsArray() {
			formal = formal.Component()
		}
		var expected []*ast.ClassNode
		var sam *ast.MethodNode
		switch {
		case p.ClosureParams != nil:
			expected = v.hintTypes(p.ClosureParams, m, recv, cs.argTypes)
		case !types.IsClosure(formal):
			if sam = types.FindSAM(formal); sam != nil {
				expected = samParamTypes(formal, sam)
			}
		}
		expected = v.fitArity(c, expected, recv)
		var del *ast.Delegation
		if p.DelegatesTo != nil {
			del = v.delegationFor(p.DelegatesTo, m, recv, cs.argTypes)
		}
		t := v.visitClosure(c, expected, del)
		if sam != nil {
			v.checkClosureReturn(c, formal, sam)
		}
		cs.argTypes[i] = t
	}
}

// visitPendingClosures visits closure arguments of a call that could not
// be resolved, so their bodies are still checked.
func (v *visitor) visitPendingClosures(cs *callSite) {
	for i, a := range cs.args {
		if c, ok := a.(*ast.ClosureExpr); ok && c.Meta().InferredType == nil {
			cs.argTypes[i] = v.typeOf(c)
		}
	}
}

// fitArity matches hinted parameter types to the closure's parameters. A
// single parameter given two map hints becomes a Map.Entry.
func (v *visitor) fitArity(c *ast.ClosureExpr, expected []*ast.ClassNode, recv *ast.ClassNode) []*ast.ClassNode {
	params := c.EffectiveParams()
	if expected == nil || len(expected) == len(params) {
		return expected
	}
	if len(params) == 1 && len(expected) == 2 && types.IsSubtype(recv, ast.MapType) {
		return []*ast.ClassNode{ast.MapEntryType.Parameterize(types.Box(expected[0]), types.Box(expected[1]))}
	}
	if !c.ParamsDeclared {
		// it is optional
		return nil
	}
	v.addError(c, stcerr.TypeIncompatibleArguments,
		"Incorrect number of parameters. Expected %d but found %d", len(expected), len(params))
	return nil
}

// hintActual returns the actual and formal type of the parameter a hint
// points at. Extension methods count their receiver as parameter 0.
func (v *visitor) hintActual(idx int, m *ast.MethodNode, recv *ast.ClassNode, args []*ast.ClassNode) (*ast.ClassNode, *ast.ClassNode) {
	if m.IsExtension() {
		helper := m.Extension
		if idx == 0 {
			return types.Box(recv), helper.Params[0].VarType()
		}
		if idx-1 < len(args) && idx < len(helper.Params) {
			return args[idx-1], helper.Params[idx].VarType()
		}
		return nil, nil
	}
	if idx < len(args) && idx < len(m.Params) {
		return args[idx], m.Params[idx].VarType()
	}
	return nil, nil
}

// hintTypes computes the closure parameter types declared by a
// ClosureParams hint.
func (v *visitor) hintTypes(hint *ast.ClosureParamsHint, m *ast.MethodNode, recv *ast.ClassNode, args []*ast.ClassNode) []*ast.ClassNode {
	out := make([]*ast.ClassNode, 0, len(hint.Params))
	for _, h := range hint.Params {
		if h.Type != nil {
			out = append(out, h.Type)
			continue
		}
		actual, formal := v.hintActual(h.Param, m, recv, args)
		if actual == nil {
			out = append(out, ast.ObjectType)
			continue
		}
		src := types.Box(actual)
		if !formal.IsPlaceholder() {
			if view := generics.ParameterizedSupertype(src, generics.Erasure(formal)); view != nil {
				src = view
			}
		}
		var t *ast.ClassNode
		switch {
		case h.Generic == ast.HintWhole:
			t = src
		case h.Generic == ast.HintComponent:
			t = src.Component()
		case h.Generic >= 0 && h.Generic < len(src.Generics):
			t = bindingType(src.Generics[h.Generic])
		}
		if t == nil {
			t = ast.ObjectType
		}
		out = append(out, generics.FullyResolve(nil, t))
	}
	return out
}

// delegationFor builds the delegation of a closure argument.
func (v *visitor) delegationFor(hint *ast.DelegatesToHint, m *ast.MethodNode, recv *ast.ClassNode, args []*ast.ClassNode) *ast.Delegation {
	t := hint.Type
	if hint.Target >= 0 {
		t, _ = v.hintActual(hint.Target, m, recv, args)
	}
	if t == nil {
		t = ast.ObjectType
	}
	return &ast.Delegation{Type: t, Strategy: hint.Strategy, Parent: v.ctx.delegation}
}

// bindingType returns the type a type argument stands for when read:
// upper-bounded wildcards give their bound, other wildcards Object.
func bindingType(g *ast.GenericsType) *ast.ClassNode {
	if g.Wildcard {
		if g.LowerBound == nil && len(g.UpperBounds) > 0 {
			return g.UpperBounds[0]
		}
		return ast.ObjectType
	}
	return g.Type
}

// visitConstructorCall resolves new T(args), this(args) and super(args).
// A diamond takes its type arguments from target, then from the
// constructor arguments.
func (v *visitor) visitConstructorCall(e *ast.ConstructorCallExpr, target *ast.ClassNode) *ast.ClassNode {
	t := e.Type
	if e.Special != "" {
		cn := v.ctx.currentClass()
		t = cn
		if e.Special == "super" && cn.Super() != nil {
			t = cn.Super()
		}
	}
	result := t
	if e.Special != "" {
		result = ast.VoidType
	}
	if v.rejectSpread(e, e.Args) {
		return result
	}
	if e.Special == "" && t.IsAbstract() {
		kind := "class"
		if t.IsInterface() {
			kind = "interface"
		}
		v.addError(e, stcerr.TypeMethodNotFound, "You cannot create an instance from the abstract %s %s", kind, t.Text())
		v.argumentTypes(e.Args)
		e.Meta().Dynamic = true
		return result
	}

	decl := t.Decl()
	recv := t
	if e.Diamond {
		recv = decl
	}
	cs := &callSite{node: e, receiver: recv, name: ast.ConstructorName, args: e.Args}
	cs.argTypes = v.argumentTypes(e.Args)
	best := v.rank(recv, v.visibleConstructors(decl), cs.argTypes)
	switch {
	case len(best) == 0:
		if me := singleMapArg(e.Args); me != nil && len(v.rank(recv, constructorsOf(decl), nil)) == 1 {
			v.checkMapConstructor(me, t)
			break
		}
		v.addError(e, stcerr.TypeMethodNotFound, "Cannot find matching constructor %s(%s)", t.Text(), typeList(cs.argTypes))
		e.Meta().Dynamic = true
		v.visitPendingClosures(cs)
	case len(best) > 1:
		sigs := make([]string, len(best))
		for i, c := range best {
			sigs[i] = c.method.Signature()
		}
		v.addError(e, stcerr.TypeAmbiguousMethod,
			"Reference to constructor is ambiguous. Cannot choose between [%s]", strings.Join(sigs, ", "))
		v.visitPendingClosures(cs)
	default:
		ctor, _, ok := v.complete(cs, recv, best[0])
		if ok && e.Diamond {
			result = diamondType(decl, target, ctor, cs.argTypes)
			e.Meta().CallReturnType = result
		} else if ok {
			e.Meta().CallReturnType = result
		}
	}
	if e.Diamond && result == t {
		result = diamondType(decl, target, nil, nil)
	}
	return result
}

func (v *visitor) visibleConstructors(decl *ast.ClassNode) []*ast.MethodNode {
	var out []*ast.MethodNode
	for _, c := range constructorsOf(decl) {
		if v.accessible(c) {
			out = append(out, c)
		}
	}
	return out
}

func singleMapArg(args []ast.Expr) *ast.MapExpr {
	if len(args) != 1 {
		return nil
	}
	me, _ := args[0].(*ast.MapExpr)
	return me
}

// diamondType infers the type arguments of new C<>(args): first from the
// assignment target seen as C, then from the constructor arguments. Type
// parameters left open become Object.
func diamondType(decl, target *ast.ClassNode, ctor *ast.MethodNode, args []*ast.ClassNode) *ast.ClassNode {
	if len(decl.Generics) == 0 {
		return decl
	}
	spec := generics.Spec{}
	if target != nil && len(target.Generics) > 0 {
		if view := generics.ParameterizedSupertype(decl, target); view != nil {
			generics.ExtractConnections(spec, target, view)
		}
	}
	if ctor != nil {
		for i, a := range args {
			if f := formalAt(ctor.ParamTypes(), i, ctor.IsVarArgs() && len(args) != len(ctor.Params)); f != nil {
				generics.ExtractConnections(spec, a, f)
			}
		}
	}
	gts := make([]*ast.GenericsType, len(decl.Generics))
	for i, g := range decl.Generics {
		b, ok := spec[g.Name]
		switch {
		case !ok || b.Placeholder:
			gts[i] = ast.TypeArg(ast.ObjectType)
		case b.Wildcard:
			t := bindingType(b)
			if b.LowerBound != nil {
				t = b.LowerBound
			}
			gts[i] = ast.TypeArg(t)
		default:
			gts[i] = b
		}
	}
	return decl.ParameterizeWith(gts...)
}

// recordMethodAccess notes private and protected calls that cross a
// nested class or closure boundary on the declaring class.
func (v *visitor) recordMethodAccess(m *ast.MethodNode) {
	if m.IsExtension() || m.Property != nil {
		return
	}
	if owner := v.bridgeOwner(m.Owner, m.Modifiers); owner != nil {
		owner.Meta.RecordMethod(m)
	}
}

func (v *visitor) recordFieldAccess(f *ast.FieldNode, write bool) {
	owner := v.bridgeOwner(f.Owner, f.Modifiers)
	if owner == nil {
		return
	}
	if write {
		owner.Meta.RecordFieldWrite(f)
	} else {
		owner.Meta.RecordFieldRead(f)
	}
}

// bridgeOwner returns the declaring class when a private or protected
// member of a primary class is used from another class of its nest or
// from a closure.
func (v *visitor) bridgeOwner(owner *ast.ClassNode, mods ast.Modifier) *ast.ClassNode {
	cur := v.ctx.currentClass()
	if cur == nil || owner == nil {
		return nil
	}
	decl := owner.Decl()
	if !decl.Primary || !(mods.Has(ast.Private) || mods.Has(ast.Protected)) {
		return nil
	}
	if cur.Decl() == decl {
		if v.ctx.currentClosure() != nil && mods.Has(ast.Private) {
			return decl
		}
		return nil
	}
	if cur.OuterMost() != decl.OuterMost() {
		return nil
	}
	return decl
}

func typeList(ts []*ast.ClassNode) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Text()
	}
	return strings.Join(parts, ", ")
}

// signatureWith renders m with resolved parameter types.
func signatureWith(m *ast.MethodNode, params []*ast.ClassNode) string {
	owner := ownerName(m)
	if m.Owner != nil && m.Extension == nil {
		owner = m.Owner.Text()
	}
	return owner + "#" + m.Name + "(" + typeList(params) + ")"
}
