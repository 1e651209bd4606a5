package loader

import (
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"

	"martianoff/stc/internal/ast"
)

// scope holds the variables declared by one block, closure or method.
type scope struct {
	parent *scope
	vars   map[string]ast.Variable
}

func (s *scope) lookup(name string) ast.Variable {
	for ; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v
		}
	}
	return nil
}

// bodyState loads the statements of one member.
type bodyState struct {
	*unitState
	class *ast.ClassNode
	names func(string) *ast.ClassNode
	scope *scope
}

func (u *unitState) loadBody(p pendingBody) {
	b := &bodyState{unitState: u, class: p.class, names: u.typeNames(p.class, p.method)}
	if p.field != nil {
		if in := field(p.node, "init"); in != nil {
			b.push()
			p.field.Init = b.expr(in)
		}
		return
	}
	m := p.method
	b.push()
	var params []*yaml.Node
	if pn := field(p.node, "params"); pn != nil {
		params = u.sequence(pn)
	}
	for i, param := range m.Params {
		if dn := field(params[i], "default"); dn != nil {
			param.Default = b.expr(dn)
		}
		b.declare(params[i], param)
	}
	if body := field(p.node, "body"); body != nil {
		m.Body = b.stmts(body)
	}
}

func (b *bodyState) push() func() {
	b.scope = &scope{parent: b.scope, vars: make(map[string]ast.Variable)}
	s := b.scope
	return func() { b.scope = s.parent }
}

func (b *bodyState) declare(n *yaml.Node, v ast.Variable) {
	if _, dup := b.scope.vars[v.VarName()]; dup {
		b.errorf(n, "variable %s is already defined in this scope", v.VarName())
	}
	b.scope.vars[v.VarName()] = v
}

// reference binds name to a local, a parameter or a member of the
// enclosing classes. Anything else is left to the checker.
func (b *bodyState) reference(name string) *ast.VariableExpr {
	switch name {
	case "this":
		return ast.This()
	case "super":
		return ast.Super()
	}
	if v := b.scope.lookup(name); v != nil {
		return ast.NewVar(v)
	}
	if v := b.member(name); v != nil {
		return ast.NewVar(v)
	}
	return ast.NewVar(&ast.DynamicVariable{Name: name})
}

func (b *bodyState) member(name string) ast.Variable {
	for o := b.class; o != nil; o = o.Outer {
		seen := make(map[*ast.ClassNode]bool)
		queue := []*ast.ClassNode{o}
		for len(queue) > 0 {
			c := queue[0].Decl()
			queue = queue[1:]
			if c == nil || seen[c] {
				continue
			}
			seen[c] = true
			if p := c.Property(name); p != nil {
				return p
			}
			if f := c.Field(name); f != nil {
				return f
			}
			if c.SuperClass != nil {
				queue = append(queue, c.SuperClass)
			}
			queue = append(queue, c.Interfaces...)
		}
	}
	return nil
}

// stmts loads a list of statements, or a single one, as a block with its
// own scope.
func (b *bodyState) stmts(n *yaml.Node) *ast.BlockStmt {
	defer b.push()()
	block := ast.At(ast.NewBlock(), pos(n))
	if n.Kind == yaml.MappingNode {
		block.Stmts = append(block.Stmts, b.stmt(n))
		return block
	}
	for _, sn := range b.sequence(n) {
		block.Stmts = append(block.Stmts, b.stmt(sn))
	}
	return block
}

func (b *bodyState) stmt(n *yaml.Node) ast.Stmt {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return ast.NewExprStmt(b.expr(n))
	}
	k, v := n.Content[0], n.Content[1]
	p := pos(k)
	switch k.Value {
	case "decl":
		return ast.At(ast.NewExprStmt(b.decl(v, k)), p)
	case "expr":
		return ast.At(ast.NewExprStmt(b.expr(v)), p)
	case "return":
		if v.Tag == "!!null" {
			return ast.At(ast.NewReturn(nil), p)
		}
		return ast.At(ast.NewReturn(b.expr(v)), p)
	case "if":
		s := &ast.IfStmt{Cond: b.expr(field(v, "cond")), Then: b.branch(field(v, "then"))}
		if en := field(v, "else"); en != nil {
			s.Else = b.branch(en)
		}
		return ast.At(s, p)
	case "while":
		return ast.At(&ast.WhileStmt{Cond: b.expr(field(v, "cond")), Body: b.branch(field(v, "body"))}, p)
	case "for":
		return ast.At(b.forStmt(v), p)
	case "switch":
		s := &ast.SwitchStmt{Subject: b.expr(field(v, "subject"))}
		if cs := field(v, "cases"); cs != nil {
			for _, cn := range b.sequence(cs) {
				c := &ast.CaseStmt{Expr: b.expr(field(cn, "case")), Body: b.branch(field(cn, "body"))}
				s.Cases = append(s.Cases, ast.At(c, pos(cn)))
			}
		}
		if dn := field(v, "default"); dn != nil {
			s.Default = b.branch(dn)
		}
		return ast.At(s, p)
	case "break":
		return ast.At(&ast.BreakStmt{Label: label(v)}, p)
	case "continue":
		return ast.At(&ast.ContinueStmt{Label: label(v)}, p)
	case "throw":
		return ast.At(&ast.ThrowStmt{Expr: b.expr(v)}, p)
	case "try":
		return ast.At(b.tryStmt(v), p)
	case "block":
		return b.stmts(v)
	case "empty":
		return ast.At(&ast.EmptyStmt{}, p)
	}
	return ast.NewExprStmt(b.expr(n))
}

func label(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// branch loads an optional nested statement list.
func (b *bodyState) branch(n *yaml.Node) ast.Stmt {
	if n == nil {
		return &ast.EmptyStmt{}
	}
	return b.stmts(n)
}

// decl loads {name, type, init}. The initializer cannot see the variable.
func (b *bodyState) decl(n, at *yaml.Node) *ast.DeclarationExpr {
	name, t, dynamic := b.unitState.member(n, b.names)
	var init ast.Expr
	if in := field(n, "init"); in != nil {
		init = b.expr(in)
	}
	v := ast.At(ast.NewLocal(name, t), pos(n))
	v.Dynamic = dynamic
	b.declare(n, v)
	return ast.At(ast.NewDecl(v, init), pos(at))
}

func (b *bodyState) forStmt(n *yaml.Node) *ast.ForStmt {
	defer b.push()()
	s := &ast.ForStmt{}
	if in := field(n, "in"); in != nil {
		s.Collection = b.expr(in)
		vn := field(n, "var")
		if vn == nil {
			b.errorf(n, "for-in loop without var")
			vn = &yaml.Node{Kind: yaml.ScalarNode, Value: "it", Line: n.Line, Column: n.Column}
		}
		s.Var = b.param(vn)
		b.declare(vn, s.Var)
		s.Body = b.branch(field(n, "body"))
		return s
	}
	if in := field(n, "init"); in != nil {
		if dn := field(in, "decl"); dn != nil {
			s.Init = b.decl(dn, in)
		} else {
			s.Init = b.expr(in)
		}
	}
	if cn := field(n, "cond"); cn != nil {
		s.Cond = b.expr(cn)
	}
	if un := field(n, "update"); un != nil {
		s.Update = b.expr(un)
	}
	s.Body = b.branch(field(n, "body"))
	return s
}

func (b *bodyState) tryStmt(n *yaml.Node) *ast.TryCatchStmt {
	s := &ast.TryCatchStmt{Try: b.branch(field(n, "body"))}
	if cs := field(n, "catches"); cs != nil {
		for _, cn := range b.sequence(cs) {
			pop := b.push()
			pn := field(cn, "param")
			if pn == nil {
				b.errorf(cn, "catch without param")
				pop()
				continue
			}
			c := &ast.CatchStmt{Param: b.param(pn)}
			b.declare(pn, c.Param)
			c.Body = b.branch(field(cn, "body"))
			s.Catches = append(s.Catches, ast.At(c, pos(cn)))
			pop()
		}
	}
	if fn := field(n, "finally"); fn != nil {
		s.Finally = b.stmts(fn)
	}
	return s
}

// param loads a parameter written as a bare name or as {name, type}.
func (b *bodyState) param(n *yaml.Node) *ast.Parameter {
	if n.Kind == yaml.ScalarNode {
		p := ast.NewDynamicParam(n.Value)
		p.Pos = pos(n)
		return p
	}
	name, t, dynamic := b.unitState.member(n, b.names)
	return &ast.Parameter{Name: name, Type: t, Dynamic: dynamic, Pos: pos(n)}
}

// expr loads an expression: a scalar literal or a mapping with one key
// naming the expression kind.
func (b *bodyState) expr(n *yaml.Node) ast.Expr {
	if n == nil {
		return ast.Null()
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return ast.At(b.scalar(n), pos(n))
	case yaml.MappingNode:
		if len(n.Content) == 2 {
			k := n.Content[0]
			return ast.At(b.exprOf(k, n.Content[1]), pos(k))
		}
	}
	b.errorf(n, "an expression is a literal or a mapping with a single key")
	return ast.Null()
}

func (b *bodyState) exprs(n *yaml.Node) []ast.Expr {
	if n == nil {
		return nil
	}
	var out []ast.Expr
	for _, en := range b.sequence(n) {
		out = append(out, b.expr(en))
	}
	return out
}

func (b *bodyState) scalar(n *yaml.Node) ast.Expr {
	switch n.Tag {
	case "!!null":
		return ast.Null()
	case "!!bool":
		return ast.Bool(n.Value == "true")
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			b.errorf(n, "invalid int %s", n.Value)
		}
		return ast.Int(i)
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			b.errorf(n, "invalid double %s", n.Value)
		}
		return ast.Double(f)
	}
	return ast.Str(n.Value)
}

func (b *bodyState) exprOf(k, v *yaml.Node) ast.Expr {
	switch k.Value {
	case "int", "long":
		i, err := strconv.ParseInt(v.Value, 0, 64)
		if err != nil {
			b.errorf(v, "invalid %s %s", k.Value, v.Value)
		}
		if k.Value == "long" {
			return ast.Long(i)
		}
		return ast.Int(i)
	case "double", "float":
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			b.errorf(v, "invalid %s %s", k.Value, v.Value)
		}
		if k.Value == "float" {
			return ast.Float(f)
		}
		return ast.Double(f)
	case "string":
		return ast.Str(v.Value)
	case "bool":
		return ast.Bool(v.Value == "true")
	case "null":
		return ast.Null()
	case "char":
		r := []rune(v.Value)
		if len(r) != 1 {
			b.errorf(v, "invalid char %q", v.Value)
			return ast.Char(0)
		}
		return ast.Char(r[0])
	case "decimal":
		f, ok := new(big.Float).SetString(v.Value)
		if !ok {
			b.errorf(v, "invalid decimal %s", v.Value)
		}
		return ast.Decimal(f)
	case "bigint":
		i, ok := new(big.Int).SetString(v.Value, 10)
		if !ok {
			b.errorf(v, "invalid bigint %s", v.Value)
		}
		return ast.BigInt(i)
	case "gstring":
		return b.gstring(v)

	case "var":
		return b.reference(v.Value)
	case "this":
		return ast.This()
	case "super":
		return ast.Super()
	case "class":
		return &ast.ClassExpr{Type: b.typeOf(v, b.names)}
	case "prop":
		return b.property(v)
	case "call":
		return b.call(v)
	case "static":
		return &ast.StaticMethodCallExpr{
			Owner:  b.typeField(v, "owner"),
			Method: b.name(v),
			Args:   b.exprs(field(v, "args")),
		}
	case "new":
		return b.newExpr(v)
	case "mref":
		return &ast.MethodPointerExpr{Object: b.expr(field(v, "obj")), Method: b.name(v)}

	case "binary":
		return b.binary(v)
	case "unary":
		e := &ast.UnaryExpr{Expr: b.expr(field(v, "expr"))}
		switch op := b.text(field(v, "op")); op {
		case "-":
			e.Op = ast.OpNegate
		case "+":
			e.Op = ast.OpPositive
		case "~":
			e.Op = ast.OpBitwiseNegate
		default:
			b.errorf(v, "unknown unary operator %s", op)
		}
		return e
	case "not":
		return &ast.NotExpr{Expr: b.expr(v)}
	case "postfix":
		return &ast.PostfixExpr{Op: b.step(v), Expr: b.expr(field(v, "expr"))}
	case "prefix":
		return &ast.PrefixExpr{Op: b.step(v), Expr: b.expr(field(v, "expr"))}
	case "ternary":
		return &ast.TernaryExpr{Cond: b.expr(field(v, "cond")), Then: b.expr(field(v, "then")), Else: b.expr(field(v, "else"))}
	case "elvis":
		return &ast.ElvisExpr{Value: b.expr(field(v, "value")), Else: b.expr(field(v, "else"))}
	case "cast":
		return &ast.CastExpr{
			Type:   b.typeField(v, "type"),
			Expr:   b.expr(field(v, "expr")),
			Coerce: b.flag(v, "as"),
		}

	case "list":
		return &ast.ListExpr{Elems: b.exprs(v)}
	case "map":
		return b.mapExpr(v)
	case "range":
		return &ast.RangeExpr{From: b.expr(field(v, "from")), To: b.expr(field(v, "to")), Inclusive: !b.flag(v, "exclusive")}
	case "spread":
		return &ast.SpreadExpr{Expr: b.expr(v)}
	case "spreadMap":
		return &ast.SpreadMapExpr{Expr: b.expr(v)}
	case "closure":
		return b.closure(v)
	}
	b.errorf(k, "unknown expression %s", k.Value)
	return ast.Null()
}

func (b *bodyState) typeField(n *yaml.Node, key string) *ast.ClassNode {
	tn := field(n, key)
	if tn == nil {
		b.errorf(n, "missing %s", key)
		return ast.ObjectType
	}
	return b.typeOf(tn, b.names)
}

func (b *bodyState) name(n *yaml.Node) string {
	nn := field(n, "name")
	if nn == nil {
		b.errorf(n, "missing name")
		return ""
	}
	return nn.Value
}

func (b *bodyState) text(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	return n.Value
}

func (b *bodyState) flag(n *yaml.Node, key string) bool {
	f := field(n, key)
	return f != nil && f.Value == "true"
}

func (b *bodyState) step(n *yaml.Node) ast.Op {
	switch op := b.text(field(n, "op")); op {
	case "++":
		return ast.OpIncrement
	case "--":
		return ast.OpDecrement
	default:
		b.errorf(n, "unknown step operator %s", op)
		return ast.OpIncrement
	}
}

func (b *bodyState) property(n *yaml.Node) ast.Expr {
	e := &ast.PropertyExpr{
		Property:  b.name(n),
		Safe:      b.flag(n, "safe"),
		Spread:    b.flag(n, "spread"),
		Attribute: b.flag(n, "attr"),
	}
	if on := field(n, "obj"); on != nil {
		e.Object = b.expr(on)
	} else {
		e.Object, e.ImplicitThis = ast.This(), true
	}
	return e
}

// call loads obj.name(args). A receiver-less call of a local holding a
// closure becomes local.call(args).
func (b *bodyState) call(n *yaml.Node) ast.Expr {
	name := b.name(n)
	args := b.exprs(field(n, "args"))
	on := field(n, "obj")
	if on == nil {
		if v := b.scope.lookup(name); v != nil {
			return ast.NewCall(ast.NewVar(v), "call", args...)
		}
		return ast.NewImplicitCall(name, args...)
	}
	e := ast.NewCall(b.expr(on), name, args...)
	e.Safe = b.flag(n, "safe")
	e.Spread = b.flag(n, "spread")
	if tn := field(n, "typeArgs"); tn != nil {
		for _, t := range b.sequence(tn) {
			if ct := b.typeOf(t, b.names); ct != nil {
				e.TypeArgs = append(e.TypeArgs, ast.TypeArg(ct))
			}
		}
	}
	return e
}

func (b *bodyState) newExpr(n *yaml.Node) ast.Expr {
	args := b.exprs(field(n, "args"))
	if sp := field(n, "special"); sp != nil {
		e := &ast.ConstructorCallExpr{Special: sp.Value, Args: args, Type: b.class}
		switch sp.Value {
		case "this":
		case "super":
			e.Type = b.class.Super()
		default:
			b.errorf(sp, "unknown constructor call %s", sp.Value)
		}
		return e
	}
	tn := field(n, "type")
	if tn == nil {
		b.errorf(n, "new without type")
		return ast.Null()
	}
	ref := b.typeRef(tn, b.names)
	if ref.dynamic {
		b.errorf(tn, "a type is required")
		return ast.Null()
	}
	e := ast.NewCtorCall(ref.typ, args...)
	e.Diamond = ref.diamond
	return e
}

func (b *bodyState) binary(n *yaml.Node) ast.Expr {
	opn := field(n, "op")
	op, ok := ast.ParseBinaryOp(b.text(opn))
	if !ok {
		b.errorf(n, "unknown binary operator %s", b.text(opn))
		op = ast.OpPlus
	}
	left := b.expr(field(n, "left"))
	rn := field(n, "right")
	var right ast.Expr
	if (op == ast.OpInstanceOf || op == ast.OpNotInstanceOf) && rn != nil && rn.Kind == yaml.ScalarNode {
		right = ast.At(&ast.ClassExpr{Type: b.typeOf(rn, b.names)}, pos(rn))
	} else {
		right = b.expr(rn)
	}
	return ast.NewBinary(left, op, right)
}

// mapExpr loads {a: 1} with string keys, or [{key: k, value: v}].
func (b *bodyState) mapExpr(n *yaml.Node) ast.Expr {
	e := &ast.MapExpr{}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			key := ast.At(ast.Str(k.Value), pos(k))
			e.Entries = append(e.Entries, ast.At(&ast.MapEntryExpr{Key: key, Value: b.expr(n.Content[i+1])}, pos(k)))
		}
		return e
	}
	for _, en := range b.sequence(n) {
		entry := &ast.MapEntryExpr{Key: b.expr(field(en, "key")), Value: b.expr(field(en, "value"))}
		e.Entries = append(e.Entries, ast.At(entry, pos(en)))
	}
	return e
}

// gstring loads a list of parts: plain strings are text, anything else an
// interpolated value.
func (b *bodyState) gstring(n *yaml.Node) ast.Expr {
	e := &ast.GStringExpr{}
	text := ""
	for _, part := range b.sequence(n) {
		if part.Kind == yaml.ScalarNode && part.Tag == "!!str" {
			text += part.Value
			continue
		}
		e.Strings = append(e.Strings, text)
		e.Values = append(e.Values, b.expr(part))
		text = ""
	}
	e.Strings = append(e.Strings, text)
	return e
}

// closure loads either a bare statement list using it, or
// {params, body, lambda}.
func (b *bodyState) closure(n *yaml.Node) ast.Expr {
	defer b.push()()
	if n.Kind != yaml.MappingNode || field(n, "body") == nil {
		c := ast.NewImplicitClosure(nil)
		b.declare(n, c.ImplicitParam())
		c.Body = b.stmts(n)
		return c
	}
	pn := field(n, "params")
	if pn == nil {
		c := ast.NewImplicitClosure(nil)
		c.Lambda = b.flag(n, "lambda")
		b.declare(n, c.ImplicitParam())
		c.Body = b.stmts(field(n, "body"))
		return c
	}
	var params []*ast.Parameter
	for _, p := range b.sequence(pn) {
		param := b.param(p)
		if dn := field(p, "default"); dn != nil {
			param.Default = b.expr(dn)
		}
		b.declare(p, param)
		params = append(params, param)
	}
	c := ast.NewClosure(params, b.stmts(field(n, "body")))
	c.Lambda = b.flag(n, "lambda")
	return c
}
