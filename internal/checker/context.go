package checker

import (
	"github.com/hashicorp/go-set/v3"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/types"
	"martianoff/stc/stcerr"
)

// Context is the mutable state of one compilation unit's check: the stacks
// of enclosing declarations, the narrowing frames, the assignment tracker
// and the diagnostic sink. It is not safe for concurrent use; every unit
// gets its own.
//
// Every push method returns the matching pop. Callers defer it.
type Context struct {
	classes  []*ast.ClassNode
	methods  []*methodFrame
	closures []*closureFrame
	binaries []*ast.BinaryExpr

	narrowing  []*narrowFrame
	tracker    *tracker
	delegation *ast.Delegation

	errors  *stcerr.Collector
	visited *set.Set[*ast.MethodNode]
}

// NewContext returns an empty context reporting into a fresh collector.
func NewContext(debug bool) *Context {
	return &Context{
		errors:  stcerr.NewCollector(debug),
		visited: set.New[*ast.MethodNode](8),
	}
}

// Diagnostics returns what was reported so far.
func (c *Context) Diagnostics() []*stcerr.Diagnostic {
	return c.errors.Diagnostics()
}

type methodFrame struct {
	method  *ast.MethodNode
	returns []*ast.ClassNode
}

type closureFrame struct {
	expr    *ast.ClosureExpr
	returns []*ast.ClassNode
}

func (c *Context) pushClass(cn *ast.ClassNode) func() {
	c.classes = append(c.classes, cn)
	return func() { c.classes = c.classes[:len(c.classes)-1] }
}

func (c *Context) pushMethod(m *ast.MethodNode) (*methodFrame, func()) {
	f := &methodFrame{method: m}
	c.methods = append(c.methods, f)
	return f, func() { c.methods = c.methods[:len(c.methods)-1] }
}

func (c *Context) pushClosure(e *ast.ClosureExpr) (*closureFrame, func()) {
	f := &closureFrame{expr: e}
	c.closures = append(c.closures, f)
	return f, func() { c.closures = c.closures[:len(c.closures)-1] }
}

func (c *Context) pushBinary(b *ast.BinaryExpr) func() {
	c.binaries = append(c.binaries, b)
	return func() { c.binaries = c.binaries[:len(c.binaries)-1] }
}

func (c *Context) pushDelegation(d *ast.Delegation) func() {
	prev := c.delegation
	c.delegation = d
	return func() { c.delegation = prev }
}

// swapStacks installs empty declaration stacks, used when a method of
// another class is checked out of line. The returned func restores them.
func (c *Context) swapStacks() func() {
	classes, methods, closures, binaries := c.classes, c.methods, c.closures, c.binaries
	narrowing, tr, del := c.narrowing, c.tracker, c.delegation
	c.classes, c.methods, c.closures, c.binaries = nil, nil, nil, nil
	c.narrowing, c.tracker, c.delegation = nil, nil, nil
	return func() {
		c.classes, c.methods, c.closures, c.binaries = classes, methods, closures, binaries
		c.narrowing, c.tracker, c.delegation = narrowing, tr, del
	}
}

func (c *Context) currentClass() *ast.ClassNode {
	if len(c.classes) == 0 {
		return nil
	}
	return c.classes[len(c.classes)-1]
}

func (c *Context) currentMethod() *ast.MethodNode {
	if f := c.currentMethodFrame(); f != nil {
		return f.method
	}
	return nil
}

func (c *Context) currentMethodFrame() *methodFrame {
	if len(c.methods) == 0 {
		return nil
	}
	return c.methods[len(c.methods)-1]
}

func (c *Context) currentClosure() *closureFrame {
	if len(c.closures) == 0 {
		return nil
	}
	return c.closures[len(c.closures)-1]
}

func (c *Context) enclosingBinary() *ast.BinaryExpr {
	if len(c.binaries) == 0 {
		return nil
	}
	return c.binaries[len(c.binaries)-1]
}

// inStaticContext reports whether the code being checked has no this.
func (c *Context) inStaticContext() bool {
	m := c.currentMethod()
	return m != nil && m.IsStatic()
}

// markVisited adds m to the visited set and reports whether it was new.
// The set is updated before descending into m.
func (c *Context) markVisited(m *ast.MethodNode) bool {
	return c.visited.Insert(m)
}

// narrowFrame holds instanceof facts of one condition.
type narrowFrame struct {
	keys  []narrowKey
	types map[narrowKey][]*ast.ClassNode
}

// narrowKey identifies a narrowed expression: the variable it is bound to,
// or its text when it is not a variable.
type narrowKey struct {
	v    ast.Variable
	text string
}

type fact struct {
	key narrowKey
	typ *ast.ClassNode
}

func (c *Context) pushNarrowing(facts []fact) func() {
	f := &narrowFrame{types: make(map[narrowKey][]*ast.ClassNode)}
	for _, fc := range facts {
		if _, ok := f.types[fc.key]; !ok {
			f.keys = append(f.keys, fc.key)
		}
		f.types[fc.key] = append(f.types[fc.key], fc.typ)
	}
	c.narrowing = append(c.narrowing, f)
	return func() { c.narrowing = c.narrowing[:len(c.narrowing)-1] }
}

// narrowed returns the instanceof types recorded for key, innermost frame
// first, or nil.
func (c *Context) narrowed(key narrowKey) []*ast.ClassNode {
	for i := len(c.narrowing) - 1; i >= 0; i-- {
		if ts, ok := c.narrowing[i].types[key]; ok {
			return ts
		}
	}
	return nil
}

// reassigned drops the instanceof facts on key after a write to it. A
// non-nil t replaces them for the rest of the innermost frame that held
// one.
func (c *Context) reassigned(key narrowKey, t *ast.ClassNode) {
	innermost := -1
	for i, f := range c.narrowing {
		if _, ok := f.types[key]; ok {
			delete(f.types, key)
			innermost = i
		}
	}
	if innermost >= 0 && t != nil {
		c.narrowing[innermost].types[key] = []*ast.ClassNode{t}
	}
}

// tracker records the types assigned to variables inside one branching
// construct.
type tracker struct {
	parent   *tracker
	order    []ast.Variable
	before   map[ast.Variable]*ast.ClassNode
	types    map[ast.Variable][]*ast.ClassNode
	declared map[ast.Variable]bool
}

func (c *Context) pushTracker() (*tracker, func()) {
	t := &tracker{
		parent:   c.tracker,
		before:   make(map[ast.Variable]*ast.ClassNode),
		types:    make(map[ast.Variable][]*ast.ClassNode),
		declared: make(map[ast.Variable]bool),
	}
	c.tracker = t
	return t, func() { c.tracker = t.parent }
}

// declare notes that v is local to the construct; assignments to it are
// not tracked past the join point.
func (t *tracker) declare(v ast.Variable) {
	if t != nil {
		t.declared[v] = true
	}
}

// record notes that v, whose type was prev, has been assigned typ.
func (t *tracker) record(v ast.Variable, prev, typ *ast.ClassNode) {
	if t == nil || t.declared[v] {
		return
	}
	if _, ok := t.before[v]; !ok {
		t.before[v] = prev
		t.order = append(t.order, v)
	}
	t.types[v] = append(t.types[v], typ)
}

// joined returns, for every variable assigned in the construct, the lowest
// upper bound of its type before the construct and every assigned type.
func (t *tracker) joined() ([]ast.Variable, map[ast.Variable]*ast.ClassNode) {
	out := make(map[ast.Variable]*ast.ClassNode, len(t.order))
	for _, v := range t.order {
		all := make([]*ast.ClassNode, 0, len(t.types[v])+1)
		if b := t.before[v]; b != nil {
			all = append(all, b)
		}
		all = append(all, t.types[v]...)
		out[v] = types.LowestUpperBoundOf(all)
	}
	return t.order, out
}
