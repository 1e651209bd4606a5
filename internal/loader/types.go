package loader

import (
	"fmt"
	"strings"
	"unicode"

	"martianoff/stc/internal/ast"
)

// typeRef is a parsed type string.
type typeRef struct {
	typ *ast.ClassNode
	// diamond is set for Foo<>.
	diamond bool
	// dynamic is set for def and the empty string.
	dynamic bool
}

// typeParser parses type strings such as Map<String, List<? extends Number>>
// or int[].
type typeParser struct {
	src   string
	pos   int
	names func(string) *ast.ClassNode
}

func parseType(src string, names func(string) *ast.ClassNode) (typeRef, error) {
	src = strings.TrimSpace(src)
	if src == "" || src == "def" || src == "var" {
		return typeRef{dynamic: true}, nil
	}
	p := &typeParser{src: src, names: names}
	t, diamond, err := p.typ()
	if err != nil {
		return typeRef{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return typeRef{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return typeRef{typ: t, diamond: diamond}, nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q: %s", p.src, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *typeParser) expect(c byte) error {
	if !p.peek(c) {
		return p.errorf("expected '%c' at %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' && r != '.' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) keyword(word string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) && p.src[end] != ' ' {
		return false
	}
	p.pos = end
	return true
}

func (p *typeParser) typ() (*ast.ClassNode, bool, error) {
	name := p.ident()
	if name == "" {
		return nil, false, p.errorf("expected type name at %d", p.pos)
	}
	base := p.names(name)
	if base == nil {
		return nil, false, p.errorf("unable to resolve class %s", name)
	}

	var args []*ast.GenericsType
	diamond := false
	if p.peek('<') {
		p.pos++
		if p.peek('>') {
			p.pos++
			diamond = true
		} else {
			for {
				g, err := p.typeArg()
				if err != nil {
					return nil, false, err
				}
				args = append(args, g)
				if p.peek(',') {
					p.pos++
					continue
				}
				if err := p.expect('>'); err != nil {
					return nil, false, err
				}
				break
			}
		}
	}

	t := base
	switch {
	case len(args) > 0:
		if want := len(base.Decl().Generics); want != len(args) {
			return nil, false, p.errorf("wrong number of type arguments for %s: expected %d, got %d", base.Name, want, len(args))
		}
		t = base.ParameterizeWith(args...)
	case !base.IsPlaceholder():
		t = base.PlainRedirect()
	}
	for p.peek('[') {
		p.pos++
		if err := p.expect(']'); err != nil {
			return nil, false, err
		}
		t = t.MakeArray()
	}
	return t, diamond, nil
}

func (p *typeParser) typeArg() (*ast.GenericsType, error) {
	if !p.peek('?') {
		t, _, err := p.typ()
		if err != nil {
			return nil, err
		}
		return ast.TypeArg(t), nil
	}
	p.pos++
	switch {
	case p.keyword("extends"):
		t, _, err := p.typ()
		if err != nil {
			return nil, err
		}
		return ast.WildcardExtends(t), nil
	case p.keyword("super"):
		t, _, err := p.typ()
		if err != nil {
			return nil, err
		}
		return ast.WildcardSuper(t), nil
	}
	return ast.WildcardType(), nil
}

// parseTypeParam parses a type parameter declaration such as
// "T extends Comparable<T>". The bounds may mention the parameter itself.
func parseTypeParam(src string, names func(string) *ast.ClassNode) (*ast.GenericsType, error) {
	name, rest, hasBound := strings.Cut(strings.TrimSpace(src), " extends ")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "<>[], ") {
		return nil, fmt.Errorf("type parameter %q: invalid name", src)
	}
	if !hasBound {
		return ast.TypeParam(name), nil
	}
	self := ast.TypeParam(name)
	scoped := func(n string) *ast.ClassNode {
		if n == name {
			return self.Type
		}
		return names(n)
	}
	var bounds []*ast.ClassNode
	for _, part := range splitTopLevel(rest, '&') {
		ref, err := parseType(part, scoped)
		if err != nil {
			return nil, err
		}
		if ref.dynamic {
			return nil, fmt.Errorf("type parameter %q: empty bound", src)
		}
		bounds = append(bounds, ref.typ)
	}
	return ast.TypeParam(name, bounds...), nil
}

// splitTopLevel splits s on sep outside angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
