package checker

import (
	"fmt"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/types"
)

// facts returns the instanceof facts that hold when cond evaluates to
// whenTrue.
func (v *visitor) facts(cond ast.Expr, whenTrue bool) []fact {
	switch e := cond.(type) {
	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpInstanceOf:
			if whenTrue {
				return instanceofFact(e)
			}
		case ast.OpNotInstanceOf:
			if !whenTrue {
				return instanceofFact(e)
			}
		case ast.OpLogicalAnd:
			if whenTrue {
				return append(v.facts(e.Left, true), v.facts(e.Right, true)...)
			}
		case ast.OpLogicalOr:
			if !whenTrue {
				return append(v.facts(e.Left, false), v.facts(e.Right, false)...)
			}
		}
	case *ast.NotExpr:
		return v.facts(e.Expr, !whenTrue)
	}
	return nil
}

func instanceofFact(e *ast.BinaryExpr) []fact {
	ce, ok := e.Right.(*ast.ClassExpr)
	if !ok {
		return nil
	}
	key, ok := narrowKeyOf(e.Left)
	if !ok {
		return nil
	}
	return []fact{{key: key, typ: ce.Type}}
}

// narrowKeyOf identifies the expressions that can be narrowed: variables
// and property chains rooted at one.
func narrowKeyOf(e ast.Expr) (narrowKey, bool) {
	switch e := e.(type) {
	case *ast.VariableExpr:
		if e.IsThis() || e.IsSuper() {
			return narrowKey{text: e.Name}, true
		}
		if dv, ok := e.Accessed.(*ast.DynamicVariable); ok {
			return narrowKey{text: dv.Name}, true
		}
		return narrowKey{v: e.Variable()}, true
	case *ast.PropertyExpr:
		if e.Spread {
			return narrowKey{}, false
		}
		if e.ImplicitThis {
			return narrowKey{text: "this." + e.Property}, true
		}
		parent, ok := narrowKeyOf(e.Object)
		if !ok {
			return narrowKey{}, false
		}
		prefix := parent.text
		if parent.v != nil {
			// two variables may share a name
			prefix = fmt.Sprintf("%s@%p", parent.v.VarName(), parent.v)
		}
		return narrowKey{text: prefix + "." + e.Property}, true
	}
	return narrowKey{}, false
}

// narrowTo applies instanceof facts to a declared type: a type already
// more specific than the tested one is kept, otherwise the tested type
// wins. Testing an interface on a class keeps both.
func narrowTo(declared *ast.ClassNode, tested []*ast.ClassNode) *ast.ClassNode {
	t := declared
	for _, tt := range tested {
		switch {
		case types.IsAssignableTo(t, tt) && !t.IsPrimitive():
		case tt.IsInterface() && !t.IsInterface() && t.Decl() != ast.ObjectType && !types.IsSubtype(tt, t):
			t = ast.NewIntersection(t, []*ast.ClassNode{tt})
		default:
			t = tt
		}
	}
	return t
}
