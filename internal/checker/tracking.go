package checker

import (
	"martianoff/stc/internal/ast"
)

// track runs a branching construct. body calls arm once per branch; every
// branch starts from the variable types in effect before the construct.
// At the join point each variable assigned in some branch gets the lowest
// upper bound of its type before the construct and every assigned type.
// track reports whether a joined type differs from the type before.
func (v *visitor) track(shared bool, body func(arm func(func()))) bool {
	t, pop := v.ctx.pushTracker()
	arm := func(f func()) {
		f()
		for _, vr := range t.order {
			vr.VarMeta().InferredType = t.before[vr]
		}
	}
	func() {
		defer pop()
		body(arm)
	}()

	order, joined := t.joined()
	changed := false
	for _, vr := range order {
		before, j := t.before[vr], joined[vr]
		meta := vr.VarMeta()
		meta.InferredType = j
		if shared {
			meta.ClosureShared = true
		}
		t.parent.record(vr, before, j)
		if !j.Equal(before) {
			changed = true
		}
	}
	return changed
}

// loop runs a construct whose body may execute more than once: a loop
// body or a closure. When a variable assigned inside changes type at the
// join point, the annotations under nodes are cleared and the body is
// visited again with the widened types, up to MaxPasses times.
func (v *visitor) loop(shared bool, body func(), nodes ...ast.Node) {
	for pass := 1; ; pass++ {
		changed := v.track(shared, func(arm func(func())) { arm(body) })
		if !changed {
			return
		}
		if pass >= v.cfg.MaxPasses {
			v.log.WithField("passes", pass).Debug("variable types still widening, keeping last pass")
			return
		}
		v.log.WithField("pass", pass+1).Debug("revisiting body with widened types")
		for _, n := range nodes {
			resetMeta(n)
		}
	}
}

// resetMeta clears the expression annotations under n.
func resetMeta(n ast.Node) {
	if n == nil {
		return
	}
	ast.Inspect(n, func(c ast.Node) bool {
		if e, ok := c.(ast.Expr); ok {
			e.Meta().Reset()
		}
		return true
	})
}
