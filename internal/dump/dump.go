// Package dump prints a checked unit as an indented tree, one node per line,
// with the inferred type and resolved target of every expression.
package dump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"martianoff/stc/internal/ast"
)

// Fprint writes the annotated tree of u to w.
func Fprint(w io.Writer, u *ast.Unit) error {
	p := &printer{}
	for _, c := range u.Classes {
		p.class(c)
	}
	_, err := w.Write(p.buf.Bytes())
	return err
}

// String returns the annotated tree of u.
func String(u *ast.Unit) string {
	var sb strings.Builder
	_ = Fprint(&sb, u)
	return sb.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) line(format string, args ...any) {
	p.buf.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) class(c *ast.ClassNode) {
	p.line("class %s", c.Text())
	p.depth++
	defer func() { p.depth-- }()
	for _, f := range c.Fields {
		p.line("field %s: %s", f.Name, f.VarType().Text())
	}
	for _, m := range c.Constructors {
		p.method(m)
	}
	for _, m := range c.Methods {
		p.method(m)
	}
}

func (p *printer) method(m *ast.MethodNode) {
	ret := m.Return().Text()
	if r := m.Meta.InferredReturnType; r != nil && m.Dynamic {
		ret = r.Text()
	}
	p.line("method %s: %s", m.TypeDescriptor(), ret)
	if m.Body == nil {
		return
	}
	p.depth++
	p.node(m.Body)
	p.depth--
}

func (p *printer) node(n ast.Node) {
	p.line("%s", label(n))
	p.depth++
	for _, c := range ast.Children(n) {
		p.node(c)
	}
	p.depth--
}

func label(n ast.Node) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
	var sb strings.Builder
	sb.WriteString(name)
	if d := detail(n); d != "" {
		sb.WriteByte(' ')
		sb.WriteString(d)
	}
	e, ok := n.(ast.Expr)
	if !ok {
		return sb.String()
	}
	meta := e.Meta()
	if meta.InferredType != nil {
		sb.WriteString(" : ")
		sb.WriteString(meta.InferredType.Text())
	}
	if meta.DirectTarget != nil {
		sb.WriteString(" -> ")
		sb.WriteString(meta.DirectTarget.Signature())
	}
	if meta.Dynamic {
		sb.WriteString(" [dynamic]")
	}
	if meta.ImplicitReceiver != "" {
		sb.WriteString(" [" + meta.ImplicitReceiver + "]")
	}
	return sb.String()
}

func detail(n ast.Node) string {
	switch n := n.(type) {
	case *ast.VariableExpr:
		return n.Name
	case *ast.ConstantExpr:
		if n.IsNull() {
			return "null"
		}
		if s, ok := n.Value.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprint(n.Value)
	case *ast.PropertyExpr:
		return n.Property
	case *ast.MethodCallExpr:
		return n.Method
	case *ast.StaticMethodCallExpr:
		return n.Owner.Text() + "." + n.Method
	case *ast.ConstructorCallExpr:
		return n.Type.Text()
	case *ast.BinaryExpr:
		return n.Op.String()
	case *ast.UnaryExpr:
		return n.Op.String()
	case *ast.PostfixExpr:
		return n.Op.String()
	case *ast.PrefixExpr:
		return n.Op.String()
	case *ast.CastExpr:
		return n.Type.Text()
	case *ast.ClassExpr:
		return n.Type.Text()
	case *ast.MethodPointerExpr:
		return n.Method
	case *ast.ClosureExpr:
		params := make([]string, 0, len(n.EffectiveParams()))
		for _, prm := range n.EffectiveParams() {
			t := prm.VarType()
			if it := prm.VarMeta().InferredType; it != nil {
				t = it
			}
			params = append(params, prm.Name+": "+t.Text())
		}
		return "(" + strings.Join(params, ", ") + ")"
	case *ast.ForStmt:
		if n.IsForIn() {
			return n.Var.Name
		}
	}
	return ""
}
