package types

import (
	"strings"

	"golang.org/x/exp/slices"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
)

// LowestUpperBound returns the most specific common supertype of a and b.
// Primitives are boxed unless both sides are the same primitive. When the
// common supertypes have more than one minimal element the result is an
// intersection node whose interfaces are ordered by name.
func LowestUpperBound(a, b *ast.ClassNode) *ast.ClassNode {
	return lub(a, b, 0)
}

// LowestUpperBoundOf folds LowestUpperBound over ts. A single type is
// returned unchanged; an empty list yields nil.
func LowestUpperBoundOf(ts []*ast.ClassNode) *ast.ClassNode {
	var out *ast.ClassNode
	for _, t := range ts {
		if out == nil {
			out = t
			continue
		}
		out = LowestUpperBound(out, t)
	}
	return out
}

func lub(a, b *ast.ClassNode, depth int) *ast.ClassNode {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Equal(b):
		return a
	case IsNull(a):
		return Box(b)
	case IsNull(b):
		return Box(a)
	}
	if a.IsPrimitive() || b.IsPrimitive() {
		a, b = Box(a), Box(b)
		if a.Equal(b) {
			return a
		}
	}
	if a.IsArray() && b.IsArray() {
		if a.Component().SameErasure(b.Component()) {
			if a.Component().IsPrimitive() {
				return a
			}
			return lub(a.Component(), b.Component(), depth).MakeArray()
		}
		if !a.Component().IsPrimitive() && !b.Component().IsPrimitive() {
			return lub(a.Component(), b.Component(), depth).MakeArray()
		}
	}

	common := commonSupertypes(a, b)
	minimal := minimalElements(common)

	var class *ast.ClassNode
	var ifaces []*ast.ClassNode
	for _, m := range minimal {
		if m.IsInterface() {
			ifaces = append(ifaces, m)
		} else {
			class = m
		}
	}
	slices.SortFunc(ifaces, func(x, y *ast.ClassNode) int {
		return strings.Compare(x.Name, y.Name)
	})

	param := func(decl *ast.ClassNode) *ast.ClassNode {
		return parameterizeCommon(decl, a, b, depth)
	}
	if class == nil || class == ast.ObjectType {
		switch len(ifaces) {
		case 0:
			return ast.ObjectType
		case 1:
			return param(ifaces[0])
		}
	} else if len(ifaces) == 0 {
		return param(class)
	}
	super := ast.ObjectType
	if class != nil {
		super = param(class)
	}
	parts := make([]*ast.ClassNode, len(ifaces))
	for i, it := range ifaces {
		parts[i] = param(it)
	}
	return ast.NewIntersection(super, parts)
}

// commonSupertypes returns the erased supertypes shared by a and b, in the
// breadth-first order of a.
func commonSupertypes(a, b *ast.ClassNode) []*ast.ClassNode {
	inB := map[*ast.ClassNode]bool{}
	for _, s := range AllSupertypes(b) {
		inB[s] = true
	}
	var out []*ast.ClassNode
	for _, s := range AllSupertypes(a) {
		if inB[s] {
			out = append(out, s)
		}
	}
	return out
}

// minimalElements drops every type that is a proper supertype of another
// type in the set.
func minimalElements(set []*ast.ClassNode) []*ast.ClassNode {
	var out []*ast.ClassNode
	for _, c := range set {
		minimal := true
		for _, d := range set {
			if d != c && IsSubtype(d, c) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, c)
		}
	}
	return out
}

// parameterizeCommon returns decl with type arguments when a and b agree on
// them as seen through decl. Disagreeing arguments become
// ? extends lub(args) at the top level and are dropped below it.
func parameterizeCommon(decl, a, b *ast.ClassNode, depth int) *ast.ClassNode {
	if len(decl.Generics) == 0 {
		return decl
	}
	va := generics.ParameterizedSupertype(a, decl)
	vb := generics.ParameterizedSupertype(b, decl)
	if va == nil || vb == nil || len(va.Generics) == 0 || len(vb.Generics) == 0 {
		return decl.PlainRedirect()
	}
	if va.Equal(vb) {
		return va
	}
	if depth > 0 {
		return decl.PlainRedirect()
	}
	gts := make([]*ast.GenericsType, len(decl.Generics))
	for i := range decl.Generics {
		ga, gb := va.Generics[i], vb.Generics[i]
		if ga.Text() == gb.Text() {
			gts[i] = ga
			continue
		}
		if ga.Wildcard || gb.Wildcard || ga.Placeholder || gb.Placeholder {
			gts[i] = ast.WildcardType()
			continue
		}
		bound := lub(ga.Type, gb.Type, depth+1)
		if bound.IsIntersection() || bound.Decl() == ast.ObjectType {
			gts[i] = ast.WildcardType()
			continue
		}
		gts[i] = ast.WildcardExtends(bound)
	}
	return decl.ParameterizeWith(gts...)
}
