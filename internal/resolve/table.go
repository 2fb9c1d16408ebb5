package resolve

import (
	"restruct/internal/syntax"
)

// Table is the full-fidelity strategy: it builds a positional scope table
// for each method body, so shadowing is decided per use site instead of by
// flat name membership. Externally it must agree with Heuristic on every
// engine scenario.
type Table struct{}

// scopedDecl is one local declaration with the token range it covers.
type scopedDecl struct {
	name  string
	from  int
	until int
}

// scopes computes local declarations with their visibility ranges. Block
// extents come from matching brace pairs; a declaration is visible from its
// site to the end of its enclosing block.
func scopes(m *syntax.Method) []scopedDecl {
	body := stripComments(m.Body)
	blockEnd := matchBraces(body)
	var decls []scopedDecl
	add := func(name string, at int) {
		end := len(body)
		// Innermost open block containing the declaration bounds it.
		depth := 0
		for j := at; j >= 0; j-- {
			t := body[j]
			if t.IsPunct("}") {
				depth++
			}
			if t.IsPunct("{") {
				if depth == 0 {
					if e, ok := blockEnd[j]; ok {
						end = e
					}
					break
				}
				depth--
			}
		}
		decls = append(decls, scopedDecl{name: name, from: at, until: end})
	}
	for i, t := range body {
		if t.Kind != syntax.KindIdent {
			continue
		}
		if i > 0 && body[i-1].IsKeyword("var") {
			add(t.Text, i)
			continue
		}
		if i+1 < len(body) && isDeclTerminator(body[i+1]) && declaredTypeBefore(body, i) {
			add(t.Text, i)
		}
	}
	for i, t := range body {
		if !t.IsPunct("=>") || i == 0 {
			continue
		}
		prev := body[i-1]
		if prev.Kind == syntax.KindIdent {
			add(prev.Text, i-1)
			continue
		}
		if prev.IsPunct(")") {
			for j := i - 2; j >= 0; j-- {
				t2 := body[j]
				if t2.IsPunct("(") {
					break
				}
				if t2.Kind == syntax.KindIdent && (toksNext(body, j).IsPunct(",") || toksNext(body, j).IsPunct(")")) {
					add(t2.Text, j)
				}
			}
		}
	}
	return decls
}

func toksNext(toks []syntax.Token, i int) syntax.Token {
	if i+1 < len(toks) {
		return toks[i+1]
	}
	return syntax.Token{}
}

func matchBraces(toks []syntax.Token) map[int]int {
	out := map[int]int{}
	var stack []int
	for i, t := range toks {
		if t.IsPunct("{") {
			stack = append(stack, i)
		}
		if t.IsPunct("}") && len(stack) > 0 {
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out[open] = i
		}
	}
	return out
}

// Locals returns the union of parameters and all scoped declarations. As a
// skip set this matches the heuristic; the positional precision is used by
// ResolveDeclaration.
func (Table) Locals(m *syntax.Method) NameSet {
	out := NameSet{}
	for _, p := range m.Params {
		out.Add(p.Name)
	}
	for _, d := range scopes(m) {
		out.Add(d.name)
	}
	return out
}

// ResolveDeclaration binds a use site, honoring positional shadowing: a
// local hides a member only from its declaration to the end of its block.
func (Table) ResolveDeclaration(mod *syntax.Module, site Site) (Symbol, bool) {
	td, _ := mod.FindType(site.Type)
	if td == nil {
		return Symbol{}, false
	}
	mem, idx := td.FindMember(site.Method)
	if idx < 0 || mem.Kind != syntax.MethodMember {
		return Symbol{}, false
	}
	m := mem.Method
	body := stripComments(m.Body)
	// Site indices address the raw body; map to the comment-free view.
	pos := rawToStripped(m.Body, site.Index)
	if pos < 0 || pos >= len(body) {
		return Symbol{}, false
	}
	tok := body[pos]
	if tok.Kind != syntax.KindIdent {
		return Symbol{}, false
	}
	for _, p := range m.Params {
		if p.Name == tok.Text {
			return Symbol{}, false
		}
	}
	for _, d := range scopes(m) {
		if d.name == tok.Text && d.from <= pos && pos <= d.until {
			return Symbol{}, false
		}
	}
	if qualified(body, pos) {
		return Symbol{}, false
	}
	return lookupMember(td, tok.Text)
}

func rawToStripped(raw []syntax.Token, i int) int {
	if i < 0 || i >= len(raw) {
		return -1
	}
	pos := 0
	for j := 0; j < i; j++ {
		if raw[j].Kind != syntax.KindComment {
			pos++
		}
	}
	if raw[i].Kind == syntax.KindComment {
		return -1
	}
	return pos
}

// FindAllReferences lists use sites with scope-accurate shadowing.
func (tb Table) FindAllReferences(mod *syntax.Module, sym Symbol) []Site {
	return findReferences(mod, sym, tb.Locals)
}

func stripComments(toks []syntax.Token) []syntax.Token {
	clean := true
	for _, t := range toks {
		if t.Kind == syntax.KindComment {
			clean = false
			break
		}
	}
	if clean {
		return toks
	}
	out := make([]syntax.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != syntax.KindComment {
			out = append(out, t)
		}
	}
	return out
}
