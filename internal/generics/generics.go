// Package generics binds type parameters to actual types.
//
// The two primitives are ExtractConnections, which walks an actual type and
// a formal type in lock-step and records placeholder bindings, and
// ApplyContext, which substitutes those bindings into a type. Everything the
// checker does with generics (member access through a parameterized
// receiver, method return types, diamond constructors, closure to SAM
// coercion) is a composition of the two.
package generics

import (
	"fmt"
	"sort"
	"strings"

	"martianoff/stc/internal/ast"
	"martianoff/stc/stcerr"
)

// Spec maps placeholder names to their bound generics types.
type Spec map[string]*ast.GenericsType

// Clone returns a shallow copy of s.
func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Bind records name -> g unless name is already bound to something other
// than an open placeholder. It reports whether the binding was stored.
func (s Spec) Bind(name string, g *ast.GenericsType) bool {
	if g == nil {
		return false
	}
	if g.Placeholder && g.Name == name {
		// binding T to T carries no information
		return false
	}
	if cur, ok := s[name]; ok && !cur.Placeholder {
		return false
	}
	s[name] = g
	return true
}

// Override merges other into s, replacing existing bindings.
func (s Spec) Override(other Spec) {
	for k, v := range other {
		s[k] = v
	}
}

// Without returns a copy of s with names removed; used when method-level
// type parameters shadow class-level ones.
func (s Spec) Without(names ...string) Spec {
	out := s.Clone()
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// Names returns the bound names in sorted order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s Spec) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, n := range s.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s -> %s", n, s[n].Text())
	}
	sb.WriteByte('}')
	return sb.String()
}

// ExtractConnections walks actual and formal in lock-step and records, in
// into, a binding for every placeholder of formal. Structural mismatches
// are ignored.
func ExtractConnections(into Spec, actual, formal *ast.ClassNode) {
	if actual == nil || formal == nil || actual == ast.UnknownType {
		return
	}
	if formal.IsArray() {
		if actual.IsArray() {
			ExtractConnections(into, actual.Component(), formal.Component())
		}
		return
	}
	if formal.IsPlaceholder() {
		into.Bind(formal.Name, ast.TypeArg(ast.WrapperOf(actual)))
		return
	}
	if len(formal.Generics) == 0 {
		return
	}
	view := ParameterizedSupertype(actual, formal)
	if view == nil || len(view.Generics) != len(formal.Generics) {
		return
	}
	for i, fg := range formal.Generics {
		extractFromGenericsType(into, view.Generics[i], fg)
	}
}

func extractFromGenericsType(into Spec, ag, fg *ast.GenericsType) {
	switch {
	case fg.Placeholder:
		into.Bind(fg.Name, ag)
	case fg.Wildcard:
		if fg.LowerBound != nil {
			if ag.Wildcard && ag.LowerBound != nil {
				ExtractConnections(into, ag.LowerBound, fg.LowerBound)
			} else if !ag.Wildcard {
				ExtractConnections(into, ag.Type, fg.LowerBound)
			}
			return
		}
		if len(fg.UpperBounds) > 0 {
			actual := ag.Type
			if ag.Wildcard {
				if len(ag.UpperBounds) == 0 {
					return
				}
				actual = ag.UpperBounds[0]
			}
			ExtractConnections(into, actual, fg.UpperBounds[0])
		}
	default:
		if ag.Wildcard {
			if len(ag.UpperBounds) > 0 {
				ExtractConnections(into, ag.UpperBounds[0], fg.Type)
			}
			return
		}
		ExtractConnections(into, ag.Type, fg.Type)
	}
}

// ApplyContext substitutes every bound placeholder in t. Unbound
// placeholders are left in place. A bound value is used as is and never
// substituted again.
func ApplyContext(spec Spec, t *ast.ClassNode) *ast.ClassNode {
	if t == nil || len(spec) == 0 {
		return t
	}
	if t.IsArray() {
		c := ApplyContext(spec, t.Component())
		if c == t.Component() {
			return t
		}
		return c.MakeArray()
	}
	if t.IsPlaceholder() {
		g, ok := spec[t.Name]
		if !ok || (g.Placeholder && g.Name == t.Name) {
			return t
		}
		return typeOfBinding(g)
	}
	if t.IsIntersection() || len(t.Generics) == 0 {
		return t
	}
	gts := make([]*ast.GenericsType, len(t.Generics))
	changed := false
	for i, g := range t.Generics {
		gts[i] = applyToGenericsType(spec, g)
		changed = changed || gts[i] != g
	}
	if !changed {
		return t
	}
	return t.ParameterizeWith(gts...)
}

func applyToGenericsType(spec Spec, g *ast.GenericsType) *ast.GenericsType {
	switch {
	case g.Placeholder:
		b, ok := spec[g.Name]
		if !ok || (b.Placeholder && b.Name == g.Name) {
			return g
		}
		return b
	case g.Wildcard:
		out := &ast.GenericsType{Name: g.Name, Type: g.Type, Wildcard: true}
		changed := false
		for _, ub := range g.UpperBounds {
			nb := ApplyContext(spec, ub)
			changed = changed || nb != ub
			out.UpperBounds = append(out.UpperBounds, nb)
		}
		if len(out.UpperBounds) > 0 {
			out.Type = out.UpperBounds[0]
		}
		if g.LowerBound != nil {
			out.LowerBound = ApplyContext(spec, g.LowerBound)
			changed = changed || out.LowerBound != g.LowerBound
		}
		if !changed {
			return g
		}
		return out
	default:
		nt := ApplyContext(spec, g.Type)
		if nt == g.Type {
			return g
		}
		return ast.TypeArg(nt)
	}
}

// typeOfBinding returns the type a placeholder stands for when bound to g.
// Upper-bounded wildcards yield their bound; lower-bounded and unbounded
// wildcards yield Object.
func typeOfBinding(g *ast.GenericsType) *ast.ClassNode {
	if g.Wildcard {
		if g.LowerBound == nil && len(g.UpperBounds) > 0 {
			return g.UpperBounds[0]
		}
		return ast.ObjectType
	}
	return g.Type
}

// FullyResolve applies spec and then widens every remaining placeholder to
// Object, including placeholders whose bounds mention other unresolved
// placeholders.
func FullyResolve(spec Spec, t *ast.ClassNode) *ast.ClassNode {
	return eraseOpen(ApplyContext(spec, t))
}

func eraseOpen(t *ast.ClassNode) *ast.ClassNode {
	if t == nil {
		return nil
	}
	if t.IsArray() {
		c := eraseOpen(t.Component())
		if c == t.Component() {
			return t
		}
		return c.MakeArray()
	}
	if t.IsPlaceholder() {
		return ast.ObjectType
	}
	if t.IsIntersection() || len(t.Generics) == 0 {
		return t
	}
	gts := make([]*ast.GenericsType, len(t.Generics))
	changed := false
	for i, g := range t.Generics {
		switch {
		case g.Placeholder:
			gts[i] = ast.TypeArg(ast.ObjectType)
		case g.Wildcard:
			w := &ast.GenericsType{Name: g.Name, Type: g.Type, Wildcard: true, LowerBound: g.LowerBound}
			for _, ub := range g.UpperBounds {
				w.UpperBounds = append(w.UpperBounds, eraseOpen(ub))
			}
			if w.LowerBound != nil {
				w.LowerBound = eraseOpen(w.LowerBound)
			}
			if len(w.UpperBounds) > 0 {
				w.Type = w.UpperBounds[0]
			}
			gts[i] = w
		default:
			nt := eraseOpen(g.Type)
			if nt == g.Type {
				gts[i] = g
				continue
			}
			gts[i] = ast.TypeArg(nt)
		}
		changed = changed || gts[i] != g
	}
	if !changed {
		return t
	}
	return t.ParameterizeWith(gts...)
}

// ParameterizedSupertype returns target as seen from t, with t's type
// arguments carried through the hierarchy: ArrayList<String> seen as
// Collection returns Collection<String>. It returns nil when target is not
// a supertype of t. A raw t yields a raw target.
func ParameterizedSupertype(t, target *ast.ClassNode) *ast.ClassNode {
	if t == nil || target == nil {
		return nil
	}
	if t.IsPlaceholder() {
		return ParameterizedSupertype(t.Decl(), target)
	}
	if t.SameErasure(target) {
		return t
	}
	if t.IsArray() {
		if target.SameErasure(ast.ObjectType) {
			return ast.ObjectType
		}
		return nil
	}
	decl := t.Decl()
	raw := len(decl.Generics) > 0 && len(t.Generics) == 0 && !t.IsIntersection()
	var spec Spec
	if !raw {
		spec = declarationSpec(t)
	}
	supers := make([]*ast.ClassNode, 0, 1+len(t.DirectInterfaces()))
	if s := t.Super(); s != nil {
		supers = append(supers, s)
	}
	supers = append(supers, t.DirectInterfaces()...)
	for _, s := range supers {
		if s == nil {
			continue
		}
		if raw {
			s = s.PlainRedirect()
		} else {
			s = ApplyContext(spec, s)
		}
		if r := ParameterizedSupertype(s, target); r != nil {
			if raw {
				return r.PlainRedirect()
			}
			return r
		}
	}
	return nil
}

// declarationSpec maps the declaration placeholders of t to t's type arguments.
func declarationSpec(t *ast.ClassNode) Spec {
	params := t.TypeParameters()
	if len(params) == 0 || len(t.Generics) == 0 || t.IsIntersection() || !t.IsRedirect() {
		return nil
	}
	if len(params) != len(t.Generics) {
		panic(stcerr.NewInternalError(
			fmt.Sprintf("type %s has %d type arguments, declaration has %d", t.Text(), len(t.Generics), len(params)), t))
	}
	spec := make(Spec, len(params))
	for i, p := range params {
		spec[p.Name] = t.Generics[i]
	}
	return spec
}

// ClassSpec returns the bindings of declaring's type parameters as seen
// through receiver. Member types declared on declaring are resolved by
// applying the result.
func ClassSpec(receiver, declaring *ast.ClassNode) Spec {
	if receiver == nil || declaring == nil {
		return Spec{}
	}
	view := ParameterizedSupertype(receiver, declaring)
	if view == nil {
		return Spec{}
	}
	spec := declarationSpec(view)
	if spec == nil {
		return Spec{}
	}
	return spec
}

// MethodPlaceholders returns the names of m's own type parameters.
func MethodPlaceholders(m *ast.MethodNode) []string {
	names := make([]string, len(m.Generics))
	for i, g := range m.Generics {
		names[i] = g.Name
	}
	return names
}

// HasPlaceholders reports whether t mentions a type variable anywhere.
func HasPlaceholders(t *ast.ClassNode) bool {
	if t == nil {
		return false
	}
	if t.IsArray() {
		return HasPlaceholders(t.Component())
	}
	if t.IsPlaceholder() {
		return true
	}
	for _, g := range t.Generics {
		if g.Placeholder {
			return true
		}
		if g.Wildcard {
			for _, ub := range g.UpperBounds {
				if HasPlaceholders(ub) {
					return true
				}
			}
			if HasPlaceholders(g.LowerBound) {
				return true
			}
			continue
		}
		if HasPlaceholders(g.Type) {
			return true
		}
	}
	return false
}

// Erasure returns the raw type of t. Type variables erase to their bound.
func Erasure(t *ast.ClassNode) *ast.ClassNode {
	if t == nil {
		return nil
	}
	if t.IsArray() {
		return Erasure(t.Component()).MakeArray()
	}
	if t.IsPlaceholder() {
		return Erasure(t.Decl())
	}
	if t.IsIntersection() {
		return t
	}
	return t.Decl()
}
