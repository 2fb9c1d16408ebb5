package syntax

import (
	"fmt"
	"strings"
)

// Parse turns source text into a Module. The grammar is the subset of
// C#-style declarations the engine restructures: using directives, one
// optional namespace (block or file-scoped), type declarations with field,
// property, method and nested-type members. Member bodies are captured as
// balanced token slices.
func Parse(src string) (*Module, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseModule()
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) errf(format string, args ...any) error {
	line, col := 0, 0
	if t, ok := p.peekRaw(); ok {
		line, col = t.Line, t.Col
	} else if n := len(p.toks); n > 0 {
		line, col = p.toks[n-1].Line, p.toks[n-1].Col
	}
	return fmt.Errorf("syntax: %d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

func (p *parser) peekRaw() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

// peek returns the next structural token, skipping comments.
func (p *parser) peek() (Token, bool) {
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].Kind != KindComment {
			return p.toks[i], true
		}
	}
	return Token{}, false
}

func (p *parser) next() (Token, bool) {
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		p.pos++
		if t.Kind != KindComment {
			return t, true
		}
	}
	return Token{}, false
}

func (p *parser) accept(k Kind, text string) bool {
	if t, ok := p.peek(); ok && t.Is(k, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectPunct(text string) error {
	if !p.accept(KindPunct, text) {
		return p.errf("expected %q", text)
	}
	return nil
}

func (p *parser) parseModule() (*Module, error) {
	m := &Module{}
	for {
		t, ok := p.peek()
		if !ok {
			return m, nil
		}
		switch {
		case t.IsKeyword("using"):
			u, err := p.parseUsing()
			if err != nil {
				return nil, err
			}
			m.Usings = append(m.Usings, u)
		case t.IsKeyword("namespace"):
			if m.Namespace != "" {
				return nil, p.errf("multiple namespace declarations")
			}
			p.next()
			name, err := p.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			m.Namespace = name
			nt, ok := p.peek()
			if !ok {
				return nil, p.errf("unexpected end of namespace declaration")
			}
			if nt.IsPunct(";") {
				p.next()
				m.NamespaceStyle = NamespaceFile
				continue
			}
			if err := p.expectPunct("{"); err != nil {
				return nil, err
			}
			m.NamespaceStyle = NamespaceBlock
			for {
				t2, ok := p.peek()
				if !ok {
					return nil, p.errf("unterminated namespace block")
				}
				if t2.IsPunct("}") {
					p.next()
					break
				}
				td, err := p.parseTypeDecl()
				if err != nil {
					return nil, err
				}
				m.Types = append(m.Types, td)
			}
		default:
			td, err := p.parseTypeDecl()
			if err != nil {
				return nil, err
			}
			m.Types = append(m.Types, td)
		}
	}
}

func (p *parser) parseUsing() (Using, error) {
	p.next() // using
	u := Using{}
	if t, ok := p.peek(); ok && t.IsKeyword("static") {
		p.next()
		u.Static = true
	}
	name, err := p.parseQualifiedName()
	if err != nil {
		return u, err
	}
	if p.accept(KindPunct, "=") {
		u.Alias = name
		name, err = p.parseQualifiedName()
		if err != nil {
			return u, err
		}
	}
	u.Path = name
	if err := p.expectPunct(";"); err != nil {
		return u, err
	}
	return u, nil
}

func (p *parser) parseQualifiedName() (string, error) {
	var sb strings.Builder
	for {
		t, ok := p.next()
		if !ok || (t.Kind != KindIdent && t.Kind != KindKeyword) {
			return "", p.errf("expected identifier")
		}
		sb.WriteString(t.Text)
		if !p.accept(KindPunct, ".") {
			return sb.String(), nil
		}
		sb.WriteString(".")
	}
}

func (p *parser) parseAttrs() ([][]Token, error) {
	var attrs [][]Token
	for {
		t, ok := p.peek()
		if !ok || !t.IsPunct("[") {
			return attrs, nil
		}
		group, err := p.captureBalanced("[", "]")
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, group)
	}
}

func (p *parser) parseModifiers() []string {
	var mods []string
	for {
		t, ok := p.peek()
		if !ok || t.Kind != KindKeyword || !IsModifier(t.Text) {
			return mods
		}
		// "new" is only a modifier ahead of a declaration keyword or type.
		if t.Text == "new" {
			return mods
		}
		p.next()
		mods = append(mods, t.Text)
	}
}

func (p *parser) parseTypeDecl() (*TypeDecl, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	mods := p.parseModifiers()
	t, ok := p.next()
	if !ok || t.Kind != KindKeyword || (t.Text != "class" && t.Text != "struct" && t.Text != "interface") {
		return nil, p.errf("expected type declaration")
	}
	td := &TypeDecl{Attrs: attrs, Modifiers: mods, Keyword: t.Text}
	name, ok := p.next()
	if !ok || name.Kind != KindIdent {
		return nil, p.errf("expected type name")
	}
	td.Name = name.Text
	if tp, ok := p.peek(); ok && tp.IsPunct("<") {
		params, err := p.parseTypeParams()
		if err != nil {
			return nil, err
		}
		td.TypeParams = params
	}
	if p.accept(KindPunct, ":") {
		for {
			base, err := p.parseType()
			if err != nil {
				return nil, err
			}
			td.BaseList = append(td.BaseList, base)
			if !p.accept(KindPunct, ",") {
				break
			}
		}
	}
	// Constraint clauses on the type itself are not captured separately.
	for {
		w, ok := p.peek()
		if !ok || !w.IsKeyword("where") {
			break
		}
		if _, err := p.skipUntilPunct("{"); err != nil {
			return nil, err
		}
		break
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for {
		t2, ok := p.peek()
		if !ok {
			return nil, p.errf("unterminated type %s", td.Name)
		}
		if t2.IsPunct("}") {
			p.next()
			return td, nil
		}
		mem, err := p.parseMember(td.Name)
		if err != nil {
			return nil, err
		}
		td.Members = append(td.Members, mem)
	}
}

func (p *parser) parseTypeParams() ([]string, error) {
	if err := p.expectPunct("<"); err != nil {
		return nil, err
	}
	var params []string
	for {
		t, ok := p.next()
		if !ok || (t.Kind != KindIdent && t.Kind != KindKeyword) {
			return nil, p.errf("expected type parameter")
		}
		params = append(params, t.Text)
		if p.accept(KindPunct, ">") {
			return params, nil
		}
		if !p.accept(KindPunct, ",") {
			return nil, p.errf("expected ',' or '>' in type parameter list")
		}
	}
}

// parseType consumes a type reference and returns its canonical string form.
func (p *parser) parseType() (string, error) {
	var sb strings.Builder
	t, ok := p.next()
	if !ok {
		return "", p.errf("expected type")
	}
	switch {
	case t.Kind == KindIdent:
		sb.WriteString(t.Text)
	case t.Kind == KindKeyword && IsTypeKeyword(t.Text):
		sb.WriteString(t.Text)
	default:
		return "", p.errf("expected type, found %q", t.Text)
	}
	for p.accept(KindPunct, ".") {
		part, ok := p.next()
		if !ok || part.Kind != KindIdent {
			return "", p.errf("expected identifier after '.'")
		}
		sb.WriteString(".")
		sb.WriteString(part.Text)
	}
	if nt, ok := p.peek(); ok && nt.IsPunct("<") {
		p.next()
		sb.WriteString("<")
		for i := 0; ; i++ {
			arg, err := p.parseType()
			if err != nil {
				return "", err
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg)
			if p.accept(KindPunct, ">") {
				break
			}
			if !p.accept(KindPunct, ",") {
				return "", p.errf("expected ',' or '>' in type argument list")
			}
			sb.WriteString(", ")
			continue
		}
		sb.WriteString(">")
	}
	for {
		if nt, ok := p.peek(); ok && nt.IsPunct("[") {
			p.next()
			if err := p.expectPunct("]"); err != nil {
				return "", err
			}
			sb.WriteString("[]")
			continue
		}
		break
	}
	if nt, ok := p.peek(); ok && nt.IsPunct("?") {
		// Nullable suffix only when clearly part of a declaration type.
		if after, ok2 := p.peekAt(1); ok2 && (after.Kind == KindIdent || after.IsPunct(">") || after.IsPunct(",") || after.IsPunct(")") || after.IsPunct("[")) {
			p.next()
			sb.WriteString("?")
		}
	}
	return sb.String(), nil
}

// peekAt returns the n-th structural token ahead (0 = next).
func (p *parser) peekAt(n int) (Token, bool) {
	seen := 0
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].Kind == KindComment {
			continue
		}
		if seen == n {
			return p.toks[i], true
		}
		seen++
	}
	return Token{}, false
}

func (p *parser) parseMember(typeName string) (Member, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return Member{}, err
	}
	mods := p.parseModifiers()

	t, ok := p.peek()
	if !ok {
		return Member{}, p.errf("unexpected end of member")
	}
	if t.Kind == KindKeyword && (t.Text == "class" || t.Text == "struct" || t.Text == "interface") {
		// Nested type: re-run the type parser with the consumed prefix.
		nested, err := p.parseTypeDeclTail(attrs, mods)
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: NestedTypeMember, Nested: nested}, nil
	}
	if t.Kind == KindKeyword && (t.Text == "event" || t.Text == "delegate" || t.Text == "operator" || t.Text == "enum") {
		return Member{}, p.errf("unsupported member kind %q", t.Text)
	}

	// Constructor: the type name directly followed by a parameter list.
	if t.Kind == KindIdent && t.Text == typeName {
		if after, ok := p.peekAt(1); ok && after.IsPunct("(") {
			p.next()
			return p.parseMethodTail(attrs, mods, "", typeName)
		}
	}

	declType, err := p.parseType()
	if err != nil {
		return Member{}, err
	}
	name, ok := p.next()
	if !ok || name.Kind != KindIdent {
		return Member{}, p.errf("expected member name")
	}

	nt, ok := p.peek()
	if !ok {
		return Member{}, p.errf("unexpected end of member %s", name.Text)
	}
	switch {
	case nt.IsPunct("(") || nt.IsPunct("<"):
		return p.parseMethodTail(attrs, mods, declType, name.Text)
	case nt.IsPunct("{"):
		return p.parsePropertyTail(attrs, mods, declType, name.Text)
	case nt.IsPunct("=>"):
		// Expression-bodied property.
		p.next()
		body, err := p.captureUntilSemi()
		if err != nil {
			return Member{}, err
		}
		prop := &Property{Attrs: attrs, Modifiers: mods, Type: declType, Name: name.Text, Accessors: body, ExprBody: true}
		return Member{Kind: PropertyMember, Property: prop}, nil
	case nt.IsPunct("="):
		p.next()
		init, err := p.captureUntilSemi()
		if err != nil {
			return Member{}, err
		}
		f := &Field{Attrs: attrs, Modifiers: mods, Type: declType, Name: name.Text, Init: init}
		return Member{Kind: FieldMember, Field: f}, nil
	case nt.IsPunct(";"):
		p.next()
		f := &Field{Attrs: attrs, Modifiers: mods, Type: declType, Name: name.Text}
		return Member{Kind: FieldMember, Field: f}, nil
	default:
		return Member{}, p.errf("unexpected token %q in member %s", nt.Text, name.Text)
	}
}

func (p *parser) parseTypeDeclTail(attrs [][]Token, mods []string) (*TypeDecl, error) {
	// Rewind is unnecessary: parseTypeDecl re-reads modifiers, so emulate by
	// temporarily stitching. The keyword is still unconsumed here.
	td, err := p.parseTypeDecl()
	if err != nil {
		return nil, err
	}
	td.Attrs = append(attrs, td.Attrs...)
	td.Modifiers = append(mods, td.Modifiers...)
	return td, nil
}

func (p *parser) parseMethodTail(attrs [][]Token, mods []string, returnType, name string) (Member, error) {
	m := &Method{Attrs: attrs, Modifiers: mods, ReturnType: returnType, Name: name}
	if t, ok := p.peek(); ok && t.IsPunct("<") {
		params, err := p.parseTypeParams()
		if err != nil {
			return Member{}, err
		}
		m.TypeParams = params
	}
	if err := p.expectPunct("("); err != nil {
		return Member{}, err
	}
	for {
		t, ok := p.peek()
		if !ok {
			return Member{}, p.errf("unterminated parameter list of %s", name)
		}
		if t.IsPunct(")") {
			p.next()
			break
		}
		param, err := p.parseParam()
		if err != nil {
			return Member{}, err
		}
		m.Params = append(m.Params, param)
		if p.accept(KindPunct, ",") {
			continue
		}
	}
	for {
		t, ok := p.peek()
		if !ok {
			return Member{}, p.errf("unexpected end of method %s", name)
		}
		if t.IsKeyword("where") {
			start := p.pos
			if _, err := p.skipUntilAny("{", ";", "=>"); err != nil {
				return Member{}, err
			}
			m.Where = append(m.Where, structuralTokens(p.toks[start:p.pos])...)
			continue
		}
		break
	}
	t, _ := p.peek()
	switch {
	case t.IsPunct("{"):
		body, err := p.captureBalanced("{", "}")
		if err != nil {
			return Member{}, err
		}
		m.Body = body
		m.HasBody = true
	case t.IsPunct("=>"):
		p.next()
		body, err := p.captureUntilSemi()
		if err != nil {
			return Member{}, err
		}
		m.Body = body
		m.HasBody = true
		m.ExprBody = true
	case t.IsPunct(";"):
		p.next()
	default:
		return Member{}, p.errf("expected method body for %s", name)
	}
	return Member{Kind: MethodMember, Method: m}, nil
}

func (p *parser) parseParam() (Param, error) {
	var param Param
	for {
		t, ok := p.peek()
		if !ok {
			return param, p.errf("unexpected end of parameter")
		}
		if t.Kind == KindKeyword && (t.Text == "ref" || t.Text == "out" || t.Text == "in" || t.Text == "params" || t.Text == "this") {
			p.next()
			param.Modifiers = append(param.Modifiers, t.Text)
			continue
		}
		break
	}
	typ, err := p.parseType()
	if err != nil {
		return param, err
	}
	param.Type = typ
	name, ok := p.next()
	if !ok || name.Kind != KindIdent {
		return param, p.errf("expected parameter name")
	}
	param.Name = name.Text
	if p.accept(KindPunct, "=") {
		def, err := p.captureUntilParamEnd()
		if err != nil {
			return param, err
		}
		param.Default = def
	}
	return param, nil
}

func (p *parser) parsePropertyTail(attrs [][]Token, mods []string, declType, name string) (Member, error) {
	acc, err := p.captureBalanced("{", "}")
	if err != nil {
		return Member{}, err
	}
	prop := &Property{Attrs: attrs, Modifiers: mods, Type: declType, Name: name, Accessors: acc}
	if p.accept(KindPunct, "=") {
		init, err := p.captureUntilSemi()
		if err != nil {
			return Member{}, err
		}
		prop.Init = init
	}
	return Member{Kind: PropertyMember, Property: prop}, nil
}

// captureBalanced consumes an open token and returns the raw tokens up to
// its matching close, comments included, delimiters excluded.
func (p *parser) captureBalanced(open, close string) ([]Token, error) {
	if err := p.expectPunct(open); err != nil {
		return nil, err
	}
	depth := 1
	start := p.pos
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if t.Kind == KindPunct {
			switch t.Text {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					out := append([]Token(nil), p.toks[start:p.pos]...)
					p.pos++
					return out, nil
				}
			}
		}
		p.pos++
	}
	return nil, p.errf("missing %q", close)
}

// captureUntilSemi returns raw tokens up to a depth-0 semicolon, which is
// consumed but excluded.
func (p *parser) captureUntilSemi() ([]Token, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if t.Kind == KindPunct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ";":
				if depth == 0 {
					out := append([]Token(nil), p.toks[start:p.pos]...)
					p.pos++
					return out, nil
				}
			}
		}
		p.pos++
	}
	return nil, p.errf("missing ';'")
}

// captureUntilParamEnd captures a default-value expression up to a depth-0
// ',' or ')' without consuming the terminator.
func (p *parser) captureUntilParamEnd() ([]Token, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if t.Kind == KindPunct {
			switch t.Text {
			case "(", "[", "{", "<":
				depth++
			case ">":
				if depth > 0 {
					depth--
				}
			case ")", "]", "}":
				if depth == 0 {
					return append([]Token(nil), p.toks[start:p.pos]...), nil
				}
				depth--
			case ",":
				if depth == 0 {
					return append([]Token(nil), p.toks[start:p.pos]...), nil
				}
			}
		}
		p.pos++
	}
	return nil, p.errf("unterminated default value")
}

func (p *parser) skipUntilPunct(text string) (int, error) {
	for p.pos < len(p.toks) {
		if p.toks[p.pos].IsPunct(text) {
			return p.pos, nil
		}
		p.pos++
	}
	return 0, p.errf("missing %q", text)
}

func (p *parser) skipUntilAny(texts ...string) (int, error) {
	for p.pos < len(p.toks) {
		for _, text := range texts {
			if p.toks[p.pos].IsPunct(text) {
				return p.pos, nil
			}
		}
		p.pos++
	}
	return 0, p.errf("missing any of %v", texts)
}

func structuralTokens(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != KindComment {
			out = append(out, t)
		}
	}
	return out
}
