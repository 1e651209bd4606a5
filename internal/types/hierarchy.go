package types

import (
	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/generics"
)

// directSupers returns the declared supertypes of t's declaration, the
// superclass first.
func directSupers(t *ast.ClassNode) []*ast.ClassNode {
	if t.IsArray() {
		return []*ast.ClassNode{ast.ObjectType, ast.CloneableType, ast.SerializableType}
	}
	if t.IsPlaceholder() {
		return []*ast.ClassNode{t.Decl()}
	}
	var out []*ast.ClassNode
	if s := t.Super(); s != nil {
		out = append(out, s)
	}
	for _, i := range t.DirectInterfaces() {
		if i != nil {
			out = append(out, i)
		}
	}
	if len(out) == 0 && t.IsInterface() {
		out = append(out, ast.ObjectType)
	}
	return out
}

// AllSupertypes returns the erased declarations of t and all its
// supertypes in breadth-first order, t first and Object last.
func AllSupertypes(t *ast.ClassNode) []*ast.ClassNode {
	if t == nil {
		return nil
	}
	start := generics.Erasure(t)
	if t.IsPrimitive() {
		start = Box(t).Decl()
	}
	seen := map[*ast.ClassNode]bool{}
	var out []*ast.ClassNode
	queue := []*ast.ClassNode{start}
	sawObject := false
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		key := cur
		if !cur.IsArray() && !cur.IsIntersection() {
			key = cur.Decl()
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if key == ast.ObjectType {
			sawObject = true
		} else if !cur.IsIntersection() {
			out = append(out, key)
		}
		for _, s := range directSupers(cur) {
			if s.IsPlaceholder() || s.IsArray() {
				queue = append(queue, s)
				continue
			}
			queue = append(queue, s.Decl())
		}
	}
	if sawObject || len(out) == 0 {
		out = append(out, ast.ObjectType)
	}
	return out
}

// IsSubtype reports whether the erasure of t is the erasure of super or one
// of its subtypes. Primitives are boxed first.
func IsSubtype(t, super *ast.ClassNode) bool {
	if t == nil || super == nil {
		return false
	}
	target := generics.Erasure(super)
	if super.IsPrimitive() {
		target = Box(super).Decl()
	}
	if target.Decl() == ast.ObjectType {
		return true
	}
	if t.IsIntersection() {
		for _, c := range directSupers(t) {
			if IsSubtype(c, super) {
				return true
			}
		}
		return false
	}
	if target.IsArray() {
		return t.IsArray() && IsSubtype(t.Component(), target.Component())
	}
	for _, s := range AllSupertypes(t) {
		if s == target.Decl() {
			return true
		}
	}
	return false
}

// SupertypeDistance returns the number of inheritance steps from t to super,
// or -1 when super is not a supertype of t.
func SupertypeDistance(t, super *ast.ClassNode) int {
	target := generics.Erasure(super).Decl()
	type item struct {
		c     *ast.ClassNode
		depth int
	}
	start := generics.Erasure(t)
	if t.IsPrimitive() {
		start = Box(t).Decl()
	}
	seen := map[*ast.ClassNode]bool{}
	queue := []item{{start, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := cur.c
		if !d.IsArray() && !d.IsIntersection() {
			d = d.Decl()
		}
		if d == target {
			return cur.depth
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		for _, s := range directSupers(cur.c) {
			queue = append(queue, item{s, cur.depth + 1})
		}
	}
	return -1
}
