package resolve

import (
	"restruct/internal/syntax"
)

// Heuristic is the syntax-only strategy: one flat scan over body tokens, no
// scope tracking beyond parameter and local-declaration collection. It is
// the fallback used when no full symbol table is warranted.
type Heuristic struct{}

// Locals collects parameter names and every local declaration pattern found
// anywhere in the body, scope-insensitively.
func (Heuristic) Locals(m *syntax.Method) NameSet {
	out := NameSet{}
	for _, p := range m.Params {
		out.Add(p.Name)
	}
	collectDeclared(m.Body, func(name string) { out.Add(name) })
	return out
}

// collectDeclared scans tokens for declaration shapes: "var x", "T x =",
// "T x;", "foreach (var x in", "out var x", catch clauses and lambda
// parameters.
func collectDeclared(toks []syntax.Token, add func(string)) {
	toks = stripComments(toks)
	for i, t := range toks {
		if t.Kind != syntax.KindIdent {
			continue
		}
		if i > 0 {
			prev := toks[i-1]
			if prev.IsKeyword("var") {
				add(t.Text)
				continue
			}
		}
		if i+1 < len(toks) && isDeclTerminator(toks[i+1]) && declaredTypeBefore(toks, i) {
			add(t.Text)
		}
	}
	// Lambda parameters: "x =>" and "(a, b) =>".
	for i, t := range toks {
		if !t.IsPunct("=>") || i == 0 {
			continue
		}
		prev := toks[i-1]
		if prev.Kind == syntax.KindIdent {
			add(prev.Text)
			continue
		}
		if prev.IsPunct(")") {
			for j := i - 2; j >= 0; j-- {
				t2 := toks[j]
				if t2.IsPunct("(") {
					break
				}
				if t2.Kind == syntax.KindIdent && (j+1 >= i-1 || toks[j+1].IsPunct(",") || toks[j+1].IsPunct(")")) {
					add(t2.Text)
				}
			}
		}
	}
}

func isDeclTerminator(t syntax.Token) bool {
	return t.IsPunct("=") || t.IsPunct(";") || t.IsKeyword("in")
}

// declaredTypeBefore reports whether the tokens before index i form a type
// expression sitting at a statement or clause start, which makes toks[i] a
// declared name rather than an assignment target.
func declaredTypeBefore(toks []syntax.Token, i int) bool {
	j := i - 1
	depth := 0
	sawType := false
	for j >= 0 {
		t := toks[j]
		switch {
		case t.IsPunct(">") || t.IsPunct("]"):
			depth++
			j--
		case t.IsPunct("<") || (t.IsPunct("[") && depth > 0):
			depth--
			j--
		case depth > 0:
			j--
		case t.Kind == syntax.KindIdent || (t.Kind == syntax.KindKeyword && syntax.IsTypeKeyword(t.Text)):
			sawType = true
			j--
		case t.IsPunct(".") || t.IsPunct("?"):
			j--
		default:
			goto done
		}
	}
done:
	if !sawType {
		return false
	}
	if j < 0 {
		return true
	}
	head := toks[j]
	return head.IsPunct(";") || head.IsPunct("{") || head.IsPunct("}") || head.IsPunct("(")
}

// ResolveDeclaration binds a bare identifier by name-set membership only.
func (h Heuristic) ResolveDeclaration(mod *syntax.Module, site Site) (Symbol, bool) {
	td, _ := mod.FindType(site.Type)
	if td == nil {
		return Symbol{}, false
	}
	mem, idx := td.FindMember(site.Method)
	if idx < 0 || mem.Kind != syntax.MethodMember {
		return Symbol{}, false
	}
	body := mem.Method.Body
	if site.Index < 0 || site.Index >= len(body) {
		return Symbol{}, false
	}
	tok := body[site.Index]
	if tok.Kind != syntax.KindIdent {
		return Symbol{}, false
	}
	if h.Locals(mem.Method).Has(tok.Text) {
		return Symbol{}, false
	}
	if qualified(body, site.Index) {
		return Symbol{}, false
	}
	return lookupMember(td, tok.Text)
}

// FindAllReferences scans every method body for bare or this-qualified
// occurrences of the symbol name inside its declaring type, plus
// type-qualified occurrences elsewhere for static members.
func (h Heuristic) FindAllReferences(mod *syntax.Module, sym Symbol) []Site {
	return findReferences(mod, sym, h.Locals)
}

func findReferences(mod *syntax.Module, sym Symbol, locals func(*syntax.Method) NameSet) []Site {
	var out []Site
	for _, td := range mod.Types {
		for _, mem := range td.Members {
			if mem.Kind != syntax.MethodMember || !mem.Method.HasBody {
				continue
			}
			body := mem.Method.Body
			skip := locals(mem.Method)
			for i, t := range body {
				if t.Kind != syntax.KindIdent || t.Text != sym.Member {
					continue
				}
				switch {
				case td.Name == sym.Type && !qualified(body, i) && !skip.Has(t.Text):
					out = append(out, Site{Type: td.Name, Method: mem.Method.Name, Index: i})
				case qualifiedBy(body, i, "this") && td.Name == sym.Type:
					out = append(out, Site{Type: td.Name, Method: mem.Method.Name, Index: i})
				case sym.Static && qualifiedBy(body, i, sym.Type):
					out = append(out, Site{Type: td.Name, Method: mem.Method.Name, Index: i})
				}
			}
		}
	}
	return out
}

// qualified reports whether the identifier at i is preceded by a member
// access operator, comments ignored.
func qualified(body []syntax.Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		return t.IsPunct(".") || t.IsPunct("?.") || t.IsPunct("::")
	}
	return false
}

// qualifiedBy reports whether the identifier at i is written "<owner>.<id>".
func qualifiedBy(body []syntax.Token, i int, owner string) bool {
	dot := -1
	for j := i - 1; j >= 0; j-- {
		if body[j].Kind == syntax.KindComment {
			continue
		}
		if body[j].IsPunct(".") {
			dot = j
		}
		break
	}
	if dot < 0 {
		return false
	}
	for j := dot - 1; j >= 0; j-- {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		return t.Text == owner && (t.Kind == syntax.KindIdent || t.Kind == syntax.KindKeyword)
	}
	return false
}

func lookupMember(td *syntax.TypeDecl, name string) (Symbol, bool) {
	mem, idx := td.FindMember(name)
	if idx < 0 {
		return Symbol{}, false
	}
	sym := Symbol{Type: td.Name, Member: name, Kind: mem.Kind}
	switch mem.Kind {
	case syntax.FieldMember:
		sym.Static = hasMod(mem.Field.Modifiers, "static") || hasMod(mem.Field.Modifiers, "const")
	case syntax.PropertyMember:
		sym.Static = hasMod(mem.Property.Modifiers, "static")
	case syntax.MethodMember:
		sym.Static = mem.Method.IsStatic()
	}
	return sym, true
}
