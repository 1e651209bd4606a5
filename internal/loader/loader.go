// Package loader reads compilation units written as YAML trees, binds every
// name to its declaration and resolves imports. It stands in for a parser
// and scope-binding pass so that units can be fed to the checker.
//
// A unit looks like:
//
//	unit: Sample
//	package: demo
//	imports: [shapes]
//	classes:
//	  - name: Point
//	    properties:
//	      - {name: x, type: int}
//	    methods:
//	      - name: shifted
//	        returns: Point
//	        params: [{name: dx, type: int}]
//	        body:
//	          - return: {new: {type: Point, args: [{binary: {op: "+", left: {var: x}, right: {var: dx}}}]}}
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"martianoff/stc/internal/ast"
	"martianoff/stc/stcerr"
)

// Loader loads units and the units they import. Imported units are
// loaded once per Loader, as signatures only.
type Loader struct {
	resolver *Resolver
	log      *logrus.Entry
	loading  *set.Set[string]
	imports  map[string]*ast.Unit
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the log entry used for debug output.
func WithLogger(l *logrus.Entry) Option {
	return func(ld *Loader) { ld.log = l }
}

// New returns a Loader resolving imports against searchPaths.
func New(searchPaths []string, opts ...Option) *Loader {
	l := &Loader{
		resolver: NewResolver(searchPaths),
		loading:  set.New[string](4),
		imports:  make(map[string]*ast.Unit),
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		l.log = logrus.NewEntry(logger)
	}
	return l
}

// LoadFile reads and loads the unit at path.
func (l *Loader) LoadFile(path string) (*ast.Unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading unit %s: %w", path, err)
	}
	return l.Load(data, abs)
}

// Load decodes a unit from data. path names the unit in diagnostics and
// anchors relative imports. Every problem found is reported; the error is
// a *stcerr.MultiError of LoadError diagnostics.
func (l *Loader) Load(data []byte, path string) (*ast.Unit, error) {
	return l.load(data, path, true)
}

// loadImport loads the unit at path without bodies. Its classes are not
// primary and count as already checked.
func (l *Loader) loadImport(path string) (*ast.Unit, error) {
	if u, ok := l.imports[path]; ok {
		return u, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit %s: %w", path, err)
	}
	u, err := l.load(data, path, false)
	if err != nil {
		return nil, err
	}
	for _, c := range u.Classes {
		c.Primary = false
		c.Meta.Checked = true
		for _, m := range append(append([]*ast.MethodNode{}, c.Methods...), c.Constructors...) {
			m.Meta.Checked = true
			m.Meta.InferredReturnType = m.Return()
		}
	}
	l.imports[path] = u
	return u, nil
}

func (l *Loader) load(data []byte, path string, bodies bool) (*ast.Unit, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		d := stcerr.NewDiagnostic(stcerr.TypeLoad, err.Error()).InFile(path)
		return nil, &stcerr.MultiError{Errors: []error{d}}
	}
	if !l.loading.Insert(path) {
		d := stcerr.NewDiagnostic(stcerr.TypeLoad, "import cycle through "+path).InFile(path)
		return nil, &stcerr.MultiError{Errors: []error{d}}
	}
	defer l.loading.Remove(path)

	u := &unitState{
		loader:  l,
		path:    path,
		bodies:  bodies,
		errs:    stcerr.NewCollector(true),
		classes: make(map[string]*ast.ClassNode),
		unit:    &ast.Unit{Path: path},
	}
	if path != "" {
		u.dir = filepath.Dir(path)
		u.unit.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(doc.Content) == 0 {
		u.errorf(&doc, "empty unit")
	} else {
		u.load(doc.Content[0])
	}
	if u.errs.Len() > 0 {
		diags := u.errs.Diagnostics()
		errs := make([]error, len(diags))
		for i, d := range diags {
			errs[i] = d.InFile(path)
		}
		return nil, &stcerr.MultiError{Errors: errs}
	}
	l.log.WithFields(logrus.Fields{"unit": u.unit.Name, "classes": len(u.unit.Classes), "bodies": bodies}).Debug("unit loaded")
	return u.unit, nil
}

// unitState is the state of loading one unit.
type unitState struct {
	loader  *Loader
	path    string
	dir     string
	bodies  bool
	pkg     string
	unit    *ast.Unit
	errs    *stcerr.Collector
	classes map[string]*ast.ClassNode
	// decls pairs every declared class with its YAML node.
	decls []classDecl
	// pending are the members whose bodies and initializers are loaded
	// once every signature is known.
	pending []pendingBody
}

type pendingBody struct {
	class  *ast.ClassNode
	method *ast.MethodNode
	field  *ast.FieldNode
	node   *yaml.Node
}

type classDecl struct {
	class *ast.ClassNode
	node  *yaml.Node
}

func (u *unitState) errorf(n *yaml.Node, format string, args ...any) {
	u.errs.Add(stcerr.NewDiagnosticAt(stcerr.TypeLoad, n.Line, n.Column, n.Line, n.Column, fmt.Sprintf(format, args...)))
}

func (u *unitState) load(root *yaml.Node) {
	if root.Kind != yaml.MappingNode {
		u.errorf(root, "a unit must be a mapping")
		return
	}
	if n := field(root, "unit"); n != nil {
		u.unit.Name = n.Value
	}
	if n := field(root, "package"); n != nil {
		u.pkg = n.Value
	}
	if n := field(root, "imports"); n != nil {
		for _, imp := range u.sequence(n) {
			u.importUnit(imp)
		}
	}
	classes := field(root, "classes")
	if classes == nil {
		return
	}
	for _, cn := range u.sequence(classes) {
		u.declareClass(cn, nil)
	}
	for _, d := range u.decls {
		u.resolveHierarchy(d.class, d.node)
	}
	for _, d := range u.decls {
		u.declareMembers(d.class, d.node)
	}
	if !u.bodies {
		return
	}
	for _, p := range u.pending {
		u.loadBody(p)
	}
}

func (u *unitState) importUnit(n *yaml.Node) {
	path, err := u.loader.resolver.Resolve(n.Value, u.dir)
	if err != nil {
		u.errorf(n, "%v", err)
		return
	}
	if u.loader.loading.Contains(path) {
		u.errorf(n, "import cycle: %s imports %s", u.unit.Name, n.Value)
		return
	}
	imported, err := u.loader.loadImport(path)
	if err != nil {
		u.errorf(n, "importing %s: %v", n.Value, err)
		return
	}
	u.unit.Imported = append(u.unit.Imported, imported.Classes...)
	u.unit.Imported = append(u.unit.Imported, imported.Imported...)
}

func (u *unitState) declareClass(n *yaml.Node, outer *ast.ClassNode) {
	nameNode := field(n, "name")
	if nameNode == nil {
		u.errorf(n, "class without name")
		return
	}
	name := nameNode.Value
	pkg := u.pkg
	if p := field(n, "package"); p != nil {
		pkg = p.Value
	}
	switch {
	case outer != nil:
		name = outer.Name + "$" + name
	case pkg != "" && !strings.Contains(name, "."):
		name = pkg + "." + name
	}
	if _, dup := u.classes[name]; dup {
		u.errorf(nameNode, "class %s is already defined", name)
		return
	}

	mods := u.modifiers(field(n, "modifiers"))
	var c *ast.ClassNode
	if kind := field(n, "kind"); kind != nil && kind.Value == "interface" {
		c = ast.NewInterface(name, mods)
	} else {
		c = ast.NewClass(name, mods)
	}
	if mods.PackagePrivate() {
		c.Modifiers |= ast.Public
	}
	c.Outer = outer
	c.Pos = pos(nameNode)
	u.unit.AddClass(c)
	u.register(c)
	u.decls = append(u.decls, classDecl{class: c, node: n})

	if gs := field(n, "generics"); gs != nil {
		for _, g := range u.sequence(gs) {
			if tp := u.typeParam(g, u.typeNames(c, nil)); tp != nil {
				c.Generics = append(c.Generics, tp)
			}
		}
	}
	if nested := field(n, "classes"); nested != nil {
		for _, nn := range u.sequence(nested) {
			u.declareClass(nn, c)
		}
	}
}

func (u *unitState) register(c *ast.ClassNode) {
	u.classes[c.Name] = c
	u.classes[strings.ReplaceAll(c.Name, "$", ".")] = c
	if c.Outer != nil {
		u.classes[strings.ReplaceAll(strings.TrimPrefix(c.Name, c.OuterMost().PackageName()+"."), "$", ".")] = c
	}
	if _, taken := u.classes[c.SimpleName()]; !taken {
		u.classes[c.SimpleName()] = c
	}
}

func (u *unitState) resolveHierarchy(c *ast.ClassNode, n *yaml.Node) {
	names := u.typeNames(c, nil)
	if s := field(n, "super"); s != nil {
		if t := u.typeOf(s, names); t != nil {
			if t.IsInterface() {
				u.errorf(s, "%s cannot extend interface %s", c.Name, t.Text())
			} else if c.IsInterface() {
				u.errorf(s, "interface %s cannot extend class %s", c.Name, t.Text())
			} else {
				c.SuperClass = t
			}
		}
	}
	if is := field(n, "interfaces"); is != nil {
		for _, in := range u.sequence(is) {
			t := u.typeOf(in, names)
			if t == nil {
				continue
			}
			if !t.IsInterface() {
				u.errorf(in, "%s is not an interface", t.Text())
				continue
			}
			c.Interfaces = append(c.Interfaces, t)
		}
	}
}

func (u *unitState) declareMembers(c *ast.ClassNode, n *yaml.Node) {
	names := u.typeNames(c, nil)
	if fs := field(n, "fields"); fs != nil {
		for _, fn := range u.sequence(fs) {
			name, t, dynamic := u.member(fn, names)
			f := ast.NewField(name, t, u.modifiers(field(fn, "modifiers")))
			f.Dynamic = dynamic
			f.Pos = pos(fn)
			c.AddField(f)
			u.pending = append(u.pending, pendingBody{class: c, field: f, node: fn})
		}
	}
	if ps := field(n, "properties"); ps != nil {
		for _, pn := range u.sequence(ps) {
			name, t, dynamic := u.member(pn, names)
			p := ast.NewProperty(name, t, u.modifiers(field(pn, "modifiers")))
			p.Dynamic = dynamic
			p.Pos = pos(pn)
			c.AddProperty(p)
			u.pending = append(u.pending, pendingBody{class: c, field: p.Field, node: pn})
		}
	}
	if cs := field(n, "constructors"); cs != nil {
		for _, mn := range u.sequence(cs) {
			m := &ast.MethodNode{Modifiers: u.modifiers(field(mn, "modifiers")), Pos: pos(mn)}
			if m.Modifiers.PackagePrivate() {
				m.Modifiers |= ast.Public
			}
			m.Params = u.params(field(mn, "params"), u.typeNames(c, m))
			c.AddConstructor(m)
			u.pending = append(u.pending, pendingBody{class: c, method: m, node: mn})
		}
	}
	if ms := field(n, "methods"); ms != nil {
		for _, mn := range u.sequence(ms) {
			u.declareMethod(c, mn)
		}
	}
}

func (u *unitState) member(n *yaml.Node, names func(string) *ast.ClassNode) (string, *ast.ClassNode, bool) {
	name := ""
	if nn := field(n, "name"); nn != nil {
		name = nn.Value
	} else {
		u.errorf(n, "member without name")
	}
	tn := field(n, "type")
	if tn == nil {
		return name, nil, true
	}
	ref := u.typeRef(tn, names)
	return name, ref.typ, ref.dynamic
}

func (u *unitState) declareMethod(c *ast.ClassNode, n *yaml.Node) {
	nameNode := field(n, "name")
	if nameNode == nil {
		u.errorf(n, "method without name")
		return
	}
	m := &ast.MethodNode{Name: nameNode.Value, Modifiers: u.modifiers(field(n, "modifiers")), Pos: pos(nameNode)}
	if m.Modifiers.PackagePrivate() {
		m.Modifiers |= ast.Public
	}
	if gs := field(n, "generics"); gs != nil {
		for _, g := range u.sequence(gs) {
			if tp := u.typeParam(g, u.typeNames(c, m)); tp != nil {
				m.Generics = append(m.Generics, tp)
			}
		}
	}
	names := u.typeNames(c, m)
	if rn := field(n, "returns"); rn != nil {
		ref := u.typeRef(rn, names)
		m.ReturnType, m.Dynamic = ref.typ, ref.dynamic
	} else {
		m.Dynamic = true
	}
	m.Params = u.params(field(n, "params"), names)
	if ts := field(n, "throws"); ts != nil {
		for _, tn := range u.sequence(ts) {
			if t := u.typeOf(tn, names); t != nil {
				m.Exceptions = append(m.Exceptions, t)
			}
		}
	}
	if c.IsInterface() && field(n, "body") == nil && !m.IsStatic() {
		m.Modifiers |= ast.Abstract
	}
	c.AddMethod(m)
	u.pending = append(u.pending, pendingBody{class: c, method: m, node: n})
}

func (u *unitState) params(n *yaml.Node, names func(string) *ast.ClassNode) []*ast.Parameter {
	if n == nil {
		return nil
	}
	var out []*ast.Parameter
	for _, pn := range u.sequence(n) {
		name, t, dynamic := u.member(pn, names)
		p := &ast.Parameter{Name: name, Type: t, Dynamic: dynamic, Pos: pos(pn)}
		if hn := field(pn, "closureParams"); hn != nil {
			p.ClosureParams = u.closureParams(hn, names)
		}
		if dn := field(pn, "delegatesTo"); dn != nil {
			p.DelegatesTo = u.delegatesTo(dn, names)
		}
		out = append(out, p)
	}
	if len(out) > 0 {
		last := out[len(out)-1]
		if vn := field(n.Content[len(n.Content)-1], "varargs"); vn != nil && vn.Value == "true" && last.Type != nil && !last.Type.IsArray() {
			last.Type = last.Type.MakeArray()
		}
	}
	return out
}

// closureParams decodes [{param: 0, generic: 1}, {type: String}]. generic
// may be "whole" or "component".
func (u *unitState) closureParams(n *yaml.Node, names func(string) *ast.ClassNode) *ast.ClosureParamsHint {
	hint := &ast.ClosureParamsHint{}
	for _, hn := range u.sequence(n) {
		ref := ast.HintRef{Generic: ast.HintWhole}
		if tn := field(hn, "type"); tn != nil {
			ref.Type = u.typeOf(tn, names)
			hint.Params = append(hint.Params, ref)
			continue
		}
		if pn := field(hn, "param"); pn != nil {
			ref.Param = u.intValue(pn)
		}
		if gn := field(hn, "generic"); gn != nil {
			switch gn.Value {
			case "whole":
				ref.Generic = ast.HintWhole
			case "component":
				ref.Generic = ast.HintComponent
			default:
				ref.Generic = u.intValue(gn)
			}
		}
		hint.Params = append(hint.Params, ref)
	}
	return hint
}

func (u *unitState) delegatesTo(n *yaml.Node, names func(string) *ast.ClassNode) *ast.DelegatesToHint {
	hint := &ast.DelegatesToHint{Target: -1}
	if n.Kind == yaml.ScalarNode {
		hint.Type = u.typeOf(n, names)
		return hint
	}
	if tn := field(n, "type"); tn != nil {
		hint.Type = u.typeOf(tn, names)
	}
	if tn := field(n, "target"); tn != nil {
		hint.Target = u.intValue(tn)
	}
	if sn := field(n, "strategy"); sn != nil {
		switch sn.Value {
		case "OWNER_FIRST":
			hint.Strategy = ast.OwnerFirst
		case "DELEGATE_FIRST":
			hint.Strategy = ast.DelegateFirst
		case "OWNER_ONLY":
			hint.Strategy = ast.OwnerOnly
		case "DELEGATE_ONLY":
			hint.Strategy = ast.DelegateOnly
		default:
			u.errorf(sn, "unknown resolve strategy %s", sn.Value)
		}
	}
	return hint
}

func (u *unitState) modifiers(n *yaml.Node) ast.Modifier {
	var mods ast.Modifier
	if n == nil {
		return mods
	}
	for _, mn := range u.sequence(n) {
		m, ok := ast.ParseModifier(mn.Value)
		if !ok {
			u.errorf(mn, "unknown modifier %s", mn.Value)
			continue
		}
		mods |= m
	}
	return mods
}

func (u *unitState) typeParam(n *yaml.Node, names func(string) *ast.ClassNode) *ast.GenericsType {
	g, err := parseTypeParam(n.Value, names)
	if err != nil {
		u.errorf(n, "%v", err)
		return nil
	}
	return g
}

func (u *unitState) typeRef(n *yaml.Node, names func(string) *ast.ClassNode) typeRef {
	ref, err := parseType(n.Value, names)
	if err != nil {
		u.errorf(n, "%v", err)
		return typeRef{typ: ast.ObjectType}
	}
	return ref
}

// typeOf parses a type that may not be dynamic.
func (u *unitState) typeOf(n *yaml.Node, names func(string) *ast.ClassNode) *ast.ClassNode {
	ref := u.typeRef(n, names)
	if ref.dynamic {
		u.errorf(n, "a type is required")
		return nil
	}
	return ref.typ
}

// typeNames returns the type name lookup inside c, and inside m when m is
// not nil: method type parameters, then class type parameters of c and of
// its enclosing classes, then classes.
func (u *unitState) typeNames(c *ast.ClassNode, m *ast.MethodNode) func(string) *ast.ClassNode {
	return func(name string) *ast.ClassNode {
		if m != nil {
			for _, g := range m.Generics {
				if g.Name == name {
					return g.Type
				}
			}
		}
		for o := c; o != nil; o = o.Outer {
			for _, g := range o.Generics {
				if g.Name == name {
					return g.Type
				}
			}
			if o.IsStaticClass() {
				break
			}
		}
		return u.lookupClass(name)
	}
}

func (u *unitState) lookupClass(name string) *ast.ClassNode {
	if c, ok := u.classes[name]; ok {
		return c
	}
	if c := u.unit.Class(name); c != nil {
		return c
	}
	for _, c := range u.unit.Imported {
		if strings.ReplaceAll(c.Name, "$", ".") == name {
			return c
		}
	}
	return ast.Known(name)
}

func (u *unitState) sequence(n *yaml.Node) []*yaml.Node {
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Content
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return []*yaml.Node{n}
	}
	u.errorf(n, "expected a list")
	return nil
}

func (u *unitState) intValue(n *yaml.Node) int {
	var i int
	if err := n.Decode(&i); err != nil {
		u.errorf(n, "expected an integer, got %q", n.Value)
	}
	return i
}

// field returns the value of key in mapping n, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func pos(n *yaml.Node) ast.Position {
	return ast.Span(n.Line, n.Column, n.Line, n.Column+len(n.Value))
}
