package checker

import (
	"cmp"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"golang.org/x/exp/slices"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
	"martianoff/stc/internal/types"
)

// candidate is a method applicable to a call together with its score.
type candidate struct {
	method *ast.MethodNode
	// params are the parameter types seen through the receiver.
	params   []*ast.ClassNode
	distance int
	varargs  bool
}

// gatherMethods collects the methods named name available on receiver,
// most derived first. A method overridden further down the hierarchy is
// dropped. Default-argument stubs and extension methods are included.
func (v *visitor) gatherMethods(receiver *ast.ClassNode, name string) []*ast.MethodNode {
	var out []*ast.MethodNode
	seen := set.New[string](8)
	add := func(m *ast.MethodNode) {
		if seen.Insert(erasedDescriptor(m)) {
			out = append(out, m)
		}
	}
	for _, s := range types.AllSupertypes(receiver) {
		for _, m := range s.DeclaredMethods(name) {
			add(m)
			for _, stub := range defaultStubs(m) {
				add(stub)
			}
		}
	}
	for _, m := range v.registry.Lookup(types.Box(receiver), name) {
		out = append(out, m)
	}
	return out
}

// constructorsOf returns the constructors of decl with their
// default-argument stubs. A class declaring none gets the implicit no-arg
// constructor.
func constructorsOf(decl *ast.ClassNode) []*ast.MethodNode {
	decl = decl.Decl()
	if len(decl.Constructors) == 0 {
		return []*ast.MethodNode{{
			Name:       ast.ConstructorName,
			Modifiers:  ast.Public,
			Owner:      decl,
			ReturnType: ast.VoidType,
			Synthetic:  true,
		}}
	}
	var out []*ast.MethodNode
	for _, c := range decl.Constructors {
		out = append(out, c)
		out = append(out, defaultStubs(c)...)
	}
	return out
}

// defaultStubs returns one stub per omittable trailing run of parameters
// with default values, rightmost first.
func defaultStubs(m *ast.MethodNode) []*ast.MethodNode {
	var stubs []*ast.MethodNode
	params := m.Params
	for len(params) > 0 && params[len(params)-1].HasDefault() {
		params = params[:len(params)-1]
		stub := *m
		stub.Params = params
		stub.Synthetic = true
		stub.Original = m
		stub.Meta = ast.MethodMeta{}
		stubs = append(stubs, &stub)
	}
	return stubs
}

func erasedDescriptor(m *ast.MethodNode) string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(generics.Erasure(p.VarType()).Text())
	}
	sb.WriteByte(')')
	return sb.String()
}

// accessorStub synthesizes getX/isX/setX for a property when the class
// declares no such method.
func accessorStub(receiver *ast.ClassNode, name string, nargs int) *ast.MethodNode {
	prop, ok := types.PropertyName(name)
	if !ok {
		return nil
	}
	setter := strings.HasPrefix(name, "set")
	if setter != (nargs == 1) || nargs > 1 {
		return nil
	}
	for _, s := range types.AllSupertypes(receiver) {
		p := s.Property(prop)
		if p == nil {
			continue
		}
		if strings.HasPrefix(name, "is") && types.Unbox(p.VarType()) != ast.BoolType {
			return nil
		}
		m := &ast.MethodNode{
			Name:      name,
			Modifiers: ast.Public | p.Modifiers&ast.Static,
			Owner:     s,
			Property:  p,
			Synthetic: true,
			Pos:       p.Pos,
		}
		if setter {
			if p.ReadOnly() {
				return nil
			}
			m.Params = []*ast.Parameter{ast.NewParam("value", p.VarType())}
			m.ReturnType = ast.VoidType
		} else {
			m.ReturnType = p.VarType()
		}
		return m
	}
	return nil
}

// findMethods returns the receiver to resolve against and the methods
// visible from the current class. staticErr reports that only instance
// methods exist where a static one is required.
func (v *visitor) findMethods(cs *callSite) (recv *ast.ClassNode, methods []*ast.MethodNode, staticErr bool) {
	recv = cs.receiver
	all := v.gatherMethods(recv, cs.name)
	if len(all) == 0 {
		if stub := accessorStub(recv, cs.name, len(cs.argTypes)); stub != nil {
			all = append(all, stub)
		}
	}
	visible := slices.DeleteFunc(all, func(m *ast.MethodNode) bool { return !v.accessible(m) })
	if !cs.static {
		return recv, visible, false
	}

	var statics []*ast.MethodNode
	for _, m := range visible {
		if m.IsStatic() {
			statics = append(statics, m)
		}
	}
	if len(statics) > 0 {
		return recv, statics, false
	}
	if !cs.implicit {
		// String.getName() calls a method of Class
		ct := ast.ClassType.Parameterize(types.Box(recv).PlainRedirect())
		if cms := v.gatherMethods(ct, cs.name); len(cms) > 0 {
			return ct, slices.DeleteFunc(cms, func(m *ast.MethodNode) bool { return !v.accessible(m) }), false
		}
	}
	return recv, nil, len(visible) > 0
}

// accessibleMethods returns every visible method named name on receiver
// regardless of arguments.
func (v *visitor) accessibleMethods(receiver *ast.ClassNode, name string, static bool) []*ast.MethodNode {
	_, ms, _ := v.findMethods(&callSite{receiver: receiver, name: name, static: static})
	return ms
}

func (v *visitor) accessible(m *ast.MethodNode) bool {
	if m.IsExtension() || m.Owner == nil {
		return true
	}
	return v.canAccess(m.Owner, m.Modifiers)
}

// canAccess applies member visibility from the current class.
func (v *visitor) canAccess(owner *ast.ClassNode, mods ast.Modifier) bool {
	if mods.Has(ast.Public) {
		return true
	}
	cur := v.ctx.currentClass()
	if cur == nil {
		return false
	}
	decl := owner.Decl()
	sameNest := cur.OuterMost() == decl.OuterMost()
	samePackage := cur.PackageName() == decl.PackageName()
	switch {
	case mods.Has(ast.Private):
		return sameNest
	case mods.Has(ast.Protected):
		return sameNest || samePackage || types.IsSubtype(cur, decl) || types.IsSubtype(cur.OuterMost(), decl)
	}
	return samePackage
}

// rank scores methods against the argument types and returns the best
// candidates. More than one result means the call is ambiguous.
func (v *visitor) rank(receiver *ast.ClassNode, methods []*ast.MethodNode, args []*ast.ClassNode) []*candidate {
	var cands []*candidate
	for _, m := range methods {
		params := v.paramTypes(receiver, m)
		d, varargs, ok := argumentDistance(params, args, m.IsVarArgs())
		if !ok {
			continue
		}
		if m.IsExtension() {
			rd := types.Distance(types.Box(receiver), m.Extension.Params[0].VarType())
			if rd == types.NotApplicable {
				continue
			}
			d += rd
		}
		cands = append(cands, &candidate{method: m, params: params, distance: d, varargs: varargs})
	}
	if len(cands) == 0 {
		return nil
	}
	slices.SortStableFunc(cands, func(a, b *candidate) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		if c := strings.Compare(ownerName(a.method), ownerName(b.method)); c != 0 {
			return c
		}
		return strings.Compare(a.method.TypeDescriptor(), b.method.TypeDescriptor())
	})
	best := cands[:1]
	for _, c := range cands[1:] {
		if c.distance != best[0].distance {
			break
		}
		best = append(best, c)
	}
	if len(best) > 1 {
		best = mostSpecific(best)
	}
	return best
}

func ownerName(m *ast.MethodNode) string {
	if m.Extension != nil {
		return m.Extension.Owner.Name
	}
	if m.Owner == nil {
		return ""
	}
	return m.Owner.Name
}

// argumentDistance sums the parameter distances of a call. Trailing
// arguments may be collected by a varargs parameter at an extra cost.
func argumentDistance(params, args []*ast.ClassNode, varargs bool) (int, bool, bool) {
	if len(params) == len(args) {
		if d, ok := sumDistance(params, args); ok {
			return d, false, true
		}
	}
	if !varargs || len(args) < len(params)-1 {
		return 0, false, false
	}
	last := len(params) - 1
	d, ok := sumDistance(params[:last], args[:last])
	if !ok {
		return 0, false, false
	}
	comp := params[last].Component()
	for _, a := range args[last:] {
		ad := types.Distance(a, comp)
		if ad == types.NotApplicable {
			return 0, false, false
		}
		d += ad
	}
	return d + types.DistanceVarArgs, true, true
}

func sumDistance(params, args []*ast.ClassNode) (int, bool) {
	total := 0
	for i, p := range params {
		d := types.Distance(args[i], p)
		if d == types.NotApplicable {
			return 0, false
		}
		total += d
	}
	return total, true
}

// mostSpecific drops candidates whose parameters all accept another
// candidate's parameters, then prefers declared methods over extension
// methods.
func mostSpecific(best []*candidate) []*candidate {
	var out []*candidate
	for _, a := range best {
		dominated := false
		for _, b := range best {
			if a != b && moreSpecific(b, a) && !moreSpecific(a, b) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, a)
		}
	}
	if len(out) > 1 {
		declared := slices.DeleteFunc(slices.Clone(out), func(c *candidate) bool { return c.method.IsExtension() })
		if len(declared) > 0 {
			out = declared
		}
	}
	if len(out) > 1 {
		// the same signature reached through two interfaces
		seen := set.New[string](len(out))
		out = slices.DeleteFunc(out, func(c *candidate) bool { return !seen.Insert(erasedDescriptor(c.method)) })
	}
	return out
}

func moreSpecific(a, b *candidate) bool {
	if len(a.params) != len(b.params) {
		return false
	}
	for i := range a.params {
		if !types.IsAssignableTo(a.params[i], b.params[i]) {
			return false
		}
	}
	if a.method.IsExtension() && b.method.IsExtension() {
		return types.IsAssignableTo(a.method.Extension.Params[0].VarType(), b.method.Extension.Params[0].VarType())
	}
	return true
}

// paramTypes returns m's parameter types with the receiver's type
// arguments applied. Method type parameters stay open.
func (v *visitor) paramTypes(receiver *ast.ClassNode, m *ast.MethodNode) []*ast.ClassNode {
	spec := v.receiverSpec(receiver, m)
	out := make([]*ast.ClassNode, len(m.Params))
	for i, p := range m.Params {
		out[i] = generics.ApplyContext(spec, p.VarType())
	}
	return out
}

// receiverSpec binds the type parameters of m's declaring class as seen
// through receiver. A raw receiver binds them to their erased bounds; the
// declaring class itself keeps them open. For extension methods the
// helper's receiver parameter is matched against receiver instead.
func (v *visitor) receiverSpec(receiver *ast.ClassNode, m *ast.MethodNode) generics.Spec {
	if m.IsExtension() {
		spec := generics.Spec{}
		generics.ExtractConnections(spec, types.Box(receiver), m.Extension.Params[0].VarType())
		return spec
	}
	if m.Owner == nil || receiver == nil {
		return generics.Spec{}
	}
	decl := m.Owner.Decl()
	view := generics.ParameterizedSupertype(receiver, decl)
	var spec generics.Spec
	if view != nil && view.IsRedirect() && len(view.Generics) == 0 && len(decl.Generics) > 0 {
		spec = generics.Spec{}
		for _, g := range decl.Generics {
			spec[g.Name] = ast.TypeArg(placeholderBound(g))
		}
	} else {
		spec = generics.ClassSpec(receiver, decl)
	}
	return spec.Without(generics.MethodPlaceholders(m)...)
}

// placeholderBound returns the erased first bound of a type parameter.
func placeholderBound(g *ast.GenericsType) *ast.ClassNode {
	if len(g.UpperBounds) > 0 {
		return generics.Erasure(g.UpperBounds[0])
	}
	return ast.ObjectType
}

// formalAt returns the parameter type matching argument i.
func formalAt(params []*ast.ClassNode, i int, varargs bool) *ast.ClassNode {
	if len(params) == 0 {
		return nil
	}
	last := len(params) - 1
	if varargs && i >= last {
		return params[last].Component()
	}
	if i > last {
		return nil
	}
	return params[i]
}

// paramAt returns the declared parameter matching argument i.
func paramAt(m *ast.MethodNode, i int) *ast.Parameter {
	if len(m.Params) == 0 {
		return nil
	}
	if i >= len(m.Params) {
		if m.IsVarArgs() {
			return m.Params[len(m.Params)-1]
		}
		return nil
	}
	return m.Params[i]
}
