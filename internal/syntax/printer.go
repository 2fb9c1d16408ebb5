package syntax

import (
	"strings"
)

const indentUnit = "    "

// Format returns a normalized copy of the module. Normalization itself is
// carried by Render, which always emits canonical spacing, so Format is a
// structural copy and trivially idempotent.
func Format(m *Module) *Module {
	return m.Clone()
}

// Render pretty-prints the module in canonical form. Render(Format(Parse(x)))
// is a fixpoint: re-parsing rendered output and rendering again yields the
// same text.
func Render(m *Module) string {
	var sb strings.Builder
	for _, u := range m.Usings {
		sb.WriteString("using ")
		if u.Static {
			sb.WriteString("static ")
		}
		if u.Alias != "" {
			sb.WriteString(u.Alias)
			sb.WriteString(" = ")
		}
		sb.WriteString(u.Path)
		sb.WriteString(";\n")
	}
	if len(m.Usings) > 0 && (m.Namespace != "" || len(m.Types) > 0) {
		sb.WriteString("\n")
	}

	indent := 0
	switch m.NamespaceStyle {
	case NamespaceFile:
		sb.WriteString("namespace ")
		sb.WriteString(m.Namespace)
		sb.WriteString(";\n\n")
	case NamespaceBlock:
		sb.WriteString("namespace ")
		sb.WriteString(m.Namespace)
		sb.WriteString("\n{\n")
		indent = 1
	}

	for i, t := range m.Types {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderType(&sb, t, indent)
	}

	if m.NamespaceStyle == NamespaceBlock {
		sb.WriteString("}\n")
	}
	return sb.String()
}

func renderType(sb *strings.Builder, t *TypeDecl, indent int) {
	pad := strings.Repeat(indentUnit, indent)
	for _, a := range t.Attrs {
		sb.WriteString(pad)
		sb.WriteString("[")
		sb.WriteString(renderInline(a))
		sb.WriteString("]\n")
	}
	sb.WriteString(pad)
	for _, mod := range t.Modifiers {
		sb.WriteString(mod)
		sb.WriteString(" ")
	}
	sb.WriteString(t.Keyword)
	sb.WriteString(" ")
	sb.WriteString(t.Name)
	if len(t.TypeParams) > 0 {
		sb.WriteString("<")
		sb.WriteString(strings.Join(t.TypeParams, ", "))
		sb.WriteString(">")
	}
	if len(t.BaseList) > 0 {
		sb.WriteString(" : ")
		sb.WriteString(strings.Join(t.BaseList, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(pad)
	sb.WriteString("{\n")
	for i, mem := range t.Members {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderMember(sb, mem, indent+1)
	}
	sb.WriteString(pad)
	sb.WriteString("}\n")
}

func renderMember(sb *strings.Builder, mem Member, indent int) {
	pad := strings.Repeat(indentUnit, indent)
	switch mem.Kind {
	case FieldMember:
		f := mem.Field
		renderAttrs(sb, f.Attrs, pad)
		sb.WriteString(pad)
		for _, mod := range f.Modifiers {
			sb.WriteString(mod)
			sb.WriteString(" ")
		}
		sb.WriteString(f.Type)
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		if len(f.Init) > 0 {
			sb.WriteString(" = ")
			sb.WriteString(renderInline(f.Init))
		}
		sb.WriteString(";\n")

	case PropertyMember:
		p := mem.Property
		renderAttrs(sb, p.Attrs, pad)
		sb.WriteString(pad)
		for _, mod := range p.Modifiers {
			sb.WriteString(mod)
			sb.WriteString(" ")
		}
		sb.WriteString(p.Type)
		sb.WriteString(" ")
		sb.WriteString(p.Name)
		if p.ExprBody {
			sb.WriteString(" => ")
			sb.WriteString(renderInline(p.Accessors))
			sb.WriteString(";\n")
			return
		}
		if containsPunct(p.Accessors, "{") {
			sb.WriteString("\n")
			sb.WriteString(pad)
			sb.WriteString("{\n")
			renderBlock(sb, p.Accessors, indent+1)
			sb.WriteString(pad)
			sb.WriteString("}")
		} else {
			sb.WriteString(" { ")
			sb.WriteString(renderInline(p.Accessors))
			sb.WriteString(" }")
		}
		if len(p.Init) > 0 {
			sb.WriteString(" = ")
			sb.WriteString(renderInline(p.Init))
			sb.WriteString(";")
		}
		sb.WriteString("\n")

	case MethodMember:
		m := mem.Method
		renderAttrs(sb, m.Attrs, pad)
		sb.WriteString(pad)
		for _, mod := range m.Modifiers {
			sb.WriteString(mod)
			sb.WriteString(" ")
		}
		if m.ReturnType != "" {
			sb.WriteString(m.ReturnType)
			sb.WriteString(" ")
		}
		sb.WriteString(m.Name)
		if len(m.TypeParams) > 0 {
			sb.WriteString("<")
			sb.WriteString(strings.Join(m.TypeParams, ", "))
			sb.WriteString(">")
		}
		sb.WriteString("(")
		for i, p := range m.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			for _, mod := range p.Modifiers {
				sb.WriteString(mod)
				sb.WriteString(" ")
			}
			sb.WriteString(p.Type)
			sb.WriteString(" ")
			sb.WriteString(p.Name)
			if len(p.Default) > 0 {
				sb.WriteString(" = ")
				sb.WriteString(renderInline(p.Default))
			}
		}
		sb.WriteString(")")
		if len(m.Where) > 0 {
			sb.WriteString(" ")
			sb.WriteString(renderInline(m.Where))
		}
		switch {
		case !m.HasBody:
			sb.WriteString(";\n")
		case m.ExprBody:
			sb.WriteString(" => ")
			sb.WriteString(renderInline(m.Body))
			sb.WriteString(";\n")
		default:
			sb.WriteString("\n")
			sb.WriteString(pad)
			sb.WriteString("{\n")
			renderBlock(sb, m.Body, indent+1)
			sb.WriteString(pad)
			sb.WriteString("}\n")
		}

	case NestedTypeMember:
		renderType(sb, mem.Nested, indent)
	}
}

func renderAttrs(sb *strings.Builder, attrs [][]Token, pad string) {
	for _, a := range attrs {
		sb.WriteString(pad)
		sb.WriteString("[")
		sb.WriteString(renderInline(a))
		sb.WriteString("]\n")
	}
}

func containsPunct(toks []Token, text string) bool {
	for _, t := range toks {
		if t.IsPunct(text) {
			return true
		}
	}
	return false
}

// renderInline writes tokens on one line with canonical spacing.
func renderInline(toks []Token) string {
	var sb strings.Builder
	w := tokenWriter{sb: &sb, inline: true}
	w.write(toks, 0)
	return sb.String()
}

// renderBlock writes statement tokens with brace-driven indentation.
func renderBlock(sb *strings.Builder, toks []Token, indent int) {
	w := tokenWriter{sb: sb}
	w.write(toks, indent)
	if !w.atLineStart {
		sb.WriteString("\n")
	}
}

type tokenWriter struct {
	sb          *strings.Builder
	inline      bool
	atLineStart bool
	prev        Token
	prevPrev    Token
	havePrev    bool
	parenDepth  int
	tightUntil  int // index bound of the current generic-argument region
}

func (w *tokenWriter) newline(indent int) {
	w.sb.WriteString("\n")
	w.sb.WriteString(strings.Repeat(indentUnit, indent))
	w.atLineStart = true
}

func (w *tokenWriter) write(toks []Token, indent int) {
	w.atLineStart = true
	if !w.inline {
		w.sb.WriteString(strings.Repeat(indentUnit, indent))
	}
	for i, t := range toks {
		switch {
		case t.Kind == KindComment:
			if !w.atLineStart {
				w.sb.WriteString(" ")
			}
			w.sb.WriteString(t.Text)
			if !w.inline {
				w.newline(indent)
			}
			continue
		case t.IsPunct("{") && !w.inline:
			if !w.atLineStart {
				w.newline(indent)
			}
			w.sb.WriteString("{")
			indent++
			w.newline(indent)
			w.setPrev(t)
			continue
		case t.IsPunct("}") && !w.inline:
			if indent > 0 {
				indent--
			}
			if !w.atLineStart {
				w.newline(indent)
			} else {
				w.trimIndent(indent)
			}
			w.sb.WriteString("}")
			if i+1 < len(toks) && !toks[i+1].IsPunct(";") && !toks[i+1].IsPunct(",") && !toks[i+1].IsPunct(")") {
				w.newline(indent)
			}
			w.setPrev(t)
			continue
		}

		if t.IsPunct("(") {
			w.parenDepth++
		}
		if t.IsPunct(")") && w.parenDepth > 0 {
			w.parenDepth--
		}
		if t.IsPunct("<") && i > w.tightUntil {
			if end := genericEnd(toks, i); end > 0 {
				w.tightUntil = end
			}
		}

		if !w.atLineStart && w.needSpace(t, i) {
			w.sb.WriteString(" ")
		}
		w.sb.WriteString(t.Text)
		w.atLineStart = false
		w.setPrev(t)

		if t.IsPunct(";") && !w.inline && w.parenDepth == 0 && i+1 < len(toks) {
			w.newline(indent)
		}
	}
}

// trimIndent drops one indent unit already written at line start, so a
// closing brace lines up with its opener.
func (w *tokenWriter) trimIndent(indent int) {
	s := w.sb.String()
	want := strings.Repeat(indentUnit, indent)
	if strings.HasSuffix(s, want+indentUnit) {
		trimmed := s[:len(s)-len(indentUnit)]
		w.sb.Reset()
		w.sb.WriteString(trimmed)
	}
	w.atLineStart = true
}

func (w *tokenWriter) setPrev(t Token) {
	w.prevPrev = w.prev
	w.prev = t
	w.havePrev = true
}

var controlParenKeywords = map[string]struct{}{
	"if": {}, "for": {}, "foreach": {}, "while": {}, "switch": {},
	"catch": {}, "lock": {}, "using": {}, "fixed": {}, "when": {}, "return": {},
}

func (w *tokenWriter) needSpace(t Token, i int) bool {
	if !w.havePrev {
		return false
	}
	prev := w.prev
	inTight := w.tightUntil > 0 && i <= w.tightUntil

	if t.Kind == KindComment {
		return true
	}
	if t.Kind == KindPunct {
		switch t.Text {
		case ";", ",", ")", "]", ".", "?.", "::", "++", "--":
			return false
		case "(", "[":
			if prev.Kind == KindKeyword {
				_, ctrl := controlParenKeywords[prev.Text]
				return ctrl
			}
			if prev.Kind == KindPunct {
				switch prev.Text {
				case "(", "[", ".", "?.", "::", "!", "~", ")", "]", ">", "++", "--":
					return false
				}
				return true
			}
			return false
		case "<", ">":
			if inTight {
				return false
			}
		}
	}
	if prev.Kind == KindPunct {
		switch prev.Text {
		case "(", "[", ".", "?.", "::", "!", "~", "++", "--":
			return false
		case "<", ">":
			// Inside a generic-argument region angles bind tight; a close
			// angle ending the region spaces normally before what follows.
			if w.tightUntil > 0 && i-1 < w.tightUntil {
				return false
			}
		case "-", "+":
			// Unary sign: no space when the sign itself followed an opener
			// or operator.
			if w.prevPrev.Kind == KindPunct && w.prevPrev.Text != ")" && w.prevPrev.Text != "]" {
				return false
			}
			if w.prevPrev.Kind == KindKeyword && !w.prevPrev.IsKeyword("this") && !w.prevPrev.IsKeyword("base") {
				return false
			}
		}
	}
	return true
}

// genericEnd returns the index of the '>' matching a '<' at i when the
// bracketed run looks like a type-argument list, or -1 for comparison
// operators. The scan is bounded; anything unexpected rejects.
func genericEnd(toks []Token, i int) int {
	const maxScan = 64
	depth := 0
	for j := i; j < len(toks) && j-i <= maxScan; j++ {
		t := toks[j]
		switch {
		case t.IsPunct("<"):
			depth++
		case t.IsPunct(">"):
			depth--
			if depth == 0 {
				return j
			}
		case t.Kind == KindIdent:
		case t.Kind == KindKeyword && IsTypeKeyword(t.Text):
		case t.IsPunct(",") || t.IsPunct(".") || t.IsPunct("[") || t.IsPunct("]") || t.IsPunct("?"):
		default:
			return -1
		}
	}
	return -1
}
