package types

import "martianoff/stc/internal/ast"

// Distance weights used to rank overload candidates. Lower is better.
const (
	DistanceExact       = 0
	DistanceBoxing      = 1
	DistanceClosureSAM  = 1
	distanceWidenBase   = 2
	distancePerStep     = 10
	DistanceObject      = 100
	DistanceVarArgs     = 10000
	NotApplicable       = -1
	distanceNullToRef   = 0
	distanceUnknownType = 50
)

// Distance measures how well an argument of type arg fits a parameter of
// type param, or returns NotApplicable.
func Distance(arg, param *ast.ClassNode) int {
	if param == nil {
		return DistanceObject
	}
	if arg == nil {
		return distanceUnknownType
	}
	if IsNull(arg) {
		if param.IsPrimitive() {
			return NotApplicable
		}
		return distanceNullToRef
	}
	if param.IsPlaceholder() {
		if !IsAssignableTo(arg, param.Decl()) {
			return NotApplicable
		}
		if param.Decl() == ast.ObjectType {
			return DistanceObject / 2
		}
		return Distance(arg, param.Decl())
	}
	if arg.SameErasure(param) {
		return DistanceExact
	}
	if arg.IsPrimitive() || param.IsPrimitive() {
		return primitiveDistance(arg, param)
	}
	if IsClosure(arg) && !param.SameErasure(ast.ObjectType) && FindSAM(param) != nil {
		return DistanceClosureSAM
	}
	if param.Decl() == ast.ObjectType && !param.IsArray() {
		return DistanceObject
	}
	if !IsAssignableTo(arg, param) {
		return NotApplicable
	}
	if arg.IsArray() && param.IsArray() {
		d := Distance(arg.Component(), param.Component())
		if d == NotApplicable {
			return NotApplicable
		}
		return d
	}
	steps := SupertypeDistance(arg, param)
	if steps < 0 {
		// intersections and placeholders reach the parameter indirectly
		return DistanceObject - 1
	}
	return steps * distancePerStep
}

func primitiveDistance(arg, param *ast.ClassNode) int {
	switch {
	case arg.IsPrimitive() && param.IsPrimitive():
		if !canWiden(arg, param) {
			return NotApplicable
		}
		return distanceWidenBase + WideningRank(param) - WideningRank(arg)
	case arg.IsPrimitive():
		boxed := Box(arg)
		if boxed.SameErasure(param) {
			return DistanceBoxing
		}
		if param.Decl() == ast.ObjectType {
			return DistanceObject
		}
		if !IsSubtype(boxed, param) {
			return NotApplicable
		}
		return DistanceBoxing + SupertypeDistance(boxed, param)*distancePerStep
	default:
		unboxed := Unbox(arg)
		if !unboxed.IsPrimitive() || !canWiden(unboxed, param) {
			return NotApplicable
		}
		if unboxed.SameErasure(param) {
			return DistanceBoxing
		}
		return DistanceBoxing + distanceWidenBase + WideningRank(param) - WideningRank(unboxed)
	}
}
