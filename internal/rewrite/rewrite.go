// Package rewrite holds the total, side-effect-free substitution passes that
// keep references correct after a method changes type. Each pass is a pure
// function from a token slice to a fresh token slice, driven entirely by
// precomputed name sets; no pass resolves symbols on its own.
package rewrite

import (
	"fmt"

	"restruct/internal/resolve"
	"restruct/internal/syntax"
)

// QualifyMembers redirects bare instance-member references (fields and
// properties, not calls) through the receiver parameter:
// "member" becomes "receiver.member".
func QualifyMembers(body []syntax.Token, members, skip resolve.NameSet, receiver string) []syntax.Token {
	return qualify(body, func(i int, t syntax.Token) bool {
		return members.Has(t.Text) && !skip.Has(t.Text) && !CallShape(body, i)
	}, receiver)
}

// QualifyCalls redirects bare sibling and self calls through the receiver:
// "method(...)" becomes "receiver.method(...)".
func QualifyCalls(body []syntax.Token, methods, skip resolve.NameSet, receiver string) []syntax.Token {
	return qualify(body, func(i int, t syntax.Token) bool {
		return methods.Has(t.Text) && !skip.Has(t.Text) && CallShape(body, i)
	}, receiver)
}

// QualifyStatics prefixes bare references to static members with the type
// that keeps owning them: "field" becomes "Owner.field". Already-qualified
// references are left alone, so applying the pass twice never doubles the
// prefix.
func QualifyStatics(body []syntax.Token, statics, skip resolve.NameSet, owner string) []syntax.Token {
	return qualify(body, func(i int, t syntax.Token) bool {
		return statics.Has(t.Text) && !skip.Has(t.Text)
	}, owner)
}

// Rename substitutes bare identifiers per the given table, used when a
// private field read turns into an injected parameter.
func Rename(body []syntax.Token, table map[string]string) []syntax.Token {
	out := make([]syntax.Token, 0, len(body))
	for i, t := range body {
		if t.Kind == syntax.KindIdent {
			if to, ok := table[t.Text]; ok && bare(body, i) && !labelShape(body, i) {
				nt := t
				nt.Text = to
				out = append(out, nt)
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// qualify returns a new slice where every identifier matching the predicate
// gains a "prefix." qualification. Qualified identifiers, named-argument
// labels and declaration-type positions never match.
func qualify(body []syntax.Token, match func(int, syntax.Token) bool, prefix string) []syntax.Token {
	out := make([]syntax.Token, 0, len(body)+8)
	for i, t := range body {
		if t.Kind == syntax.KindIdent && bare(body, i) && !labelShape(body, i) && !typePosition(body, i) && match(i, t) {
			out = append(out,
				syntax.Token{Kind: syntax.KindIdent, Text: prefix, Line: t.Line, Col: t.Col},
				syntax.Token{Kind: syntax.KindPunct, Text: ".", Line: t.Line, Col: t.Col},
			)
		}
		out = append(out, t)
	}
	return out
}

// bare reports whether the identifier at i stands unqualified: the previous
// structural token is not a member access, scope operator or "new".
func bare(body []syntax.Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		if t.IsPunct(".") || t.IsPunct("?.") || t.IsPunct("::") || t.IsKeyword("new") {
			return false
		}
		return true
	}
	return true
}

// labelShape reports a named-argument or label position ("x: 1").
func labelShape(body []syntax.Token, i int) bool {
	for j := i + 1; j < len(body); j++ {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		return t.IsPunct(":")
	}
	return false
}

// typePosition reports an identifier used as a declared type ("Foo bar").
func typePosition(body []syntax.Token, i int) bool {
	for j := i + 1; j < len(body); j++ {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		return t.Kind == syntax.KindIdent
	}
	return false
}

// CallShape reports whether the identifier at i is invoked, directly or with
// explicit type arguments. A following "<" only counts when a bounded scan
// finds a plausible type-argument list closed by ">(" — a comparison like
// "x < 3" is not a call.
func CallShape(body []syntax.Token, i int) bool {
	j := i + 1
	for j < len(body) && body[j].Kind == syntax.KindComment {
		j++
	}
	if j >= len(body) {
		return false
	}
	if body[j].IsPunct("(") {
		return true
	}
	if body[j].IsPunct("<") {
		depth := 0
		for k := j; k < len(body) && k-j <= 64; k++ {
			t := body[k]
			switch {
			case t.IsPunct("<"):
				depth++
			case t.IsPunct(">"):
				depth--
				if depth == 0 {
					return k+1 < len(body) && body[k+1].IsPunct("(")
				}
			case t.Kind == syntax.KindIdent:
			case t.Kind == syntax.KindKeyword && syntax.IsTypeKeyword(t.Text):
			case t.IsPunct(",") || t.IsPunct(".") || t.IsPunct("[") || t.IsPunct("]") || t.IsPunct("?"):
			default:
				return false
			}
		}
	}
	return false
}

// ReplaceThis substitutes every "this" keyword with the receiver parameter.
// Once the method lives on another type, "this" no longer denotes the
// original instance.
func ReplaceThis(body []syntax.Token, receiver string) []syntax.Token {
	out := make([]syntax.Token, 0, len(body))
	for _, t := range body {
		if t.IsKeyword("this") {
			out = append(out, syntax.Token{Kind: syntax.KindIdent, Text: receiver, Line: t.Line, Col: t.Col})
			continue
		}
		out = append(out, t)
	}
	return out
}

// StripThisQualifier rewrites "this.<name>" to the mapped replacement for
// names in the table, used when an injected parameter supplants a private
// field.
func StripThisQualifier(body []syntax.Token, table map[string]string) []syntax.Token {
	out := make([]syntax.Token, 0, len(body))
	for i := 0; i < len(body); i++ {
		t := body[i]
		if t.IsKeyword("this") && i+2 < len(body) && body[i+1].IsPunct(".") && body[i+2].Kind == syntax.KindIdent {
			if to, ok := table[body[i+2].Text]; ok {
				out = append(out, syntax.Token{Kind: syntax.KindIdent, Text: to, Line: t.Line, Col: t.Col})
				i += 2
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// ReceiverName picks the reserved receiver-parameter name, extending it with
// a numeric suffix until it collides with nothing in the taken set.
func ReceiverName(taken resolve.NameSet) string {
	const base = "receiver"
	if !taken.Has(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		if !taken.Has(candidate) {
			return candidate
		}
	}
}
