package types

import (
	"martianoff/stc/internal/ast"
)

// FindSAM returns the single abstract method of an interface or abstract
// class, or nil when t is not a SAM type. Abstract redeclarations of Object
// methods do not count.
func FindSAM(t *ast.ClassNode) *ast.MethodNode {
	if t == nil || t.IsArray() || t.IsPrimitive() || t.IsPlaceholder() || !t.IsAbstract() {
		return nil
	}
	var found *ast.MethodNode
	implemented := map[string]bool{}
	for _, s := range AllSupertypes(t) {
		for _, m := range s.Methods {
			key := m.TypeDescriptor()
			if !m.IsAbstract() {
				implemented[key] = true
				continue
			}
			if m.IsStatic() || implemented[key] || isObjectMethod(m) {
				continue
			}
			if found != nil {
				if found.Name == m.Name && len(found.Params) == len(m.Params) {
					// the same method redeclared down the hierarchy
					continue
				}
				return nil
			}
			found = m
		}
	}
	return found
}

func isObjectMethod(m *ast.MethodNode) bool {
	for _, om := range ast.ObjectType.Methods {
		if om.Name == m.Name && len(om.Params) == len(m.Params) {
			return true
		}
	}
	return false
}

// IsSAMType reports whether t can be the target of closure coercion.
func IsSAMType(t *ast.ClassNode) bool {
	return FindSAM(t) != nil
}
