package syntax

import (
	"testing"
)

func texts(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out
}

func TestLexKinds(t *testing.T) {
	toks, err := Lex("int x = 0; // note")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	want := []struct {
		kind Kind
		text string
	}{
		{KindKeyword, "int"},
		{KindIdent, "x"},
		{KindPunct, "="},
		{KindNumber, "0"},
		{KindPunct, ";"},
		{KindComment, "// note"},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), texts(toks))
	}
	for i, w := range want {
		if !toks[i].Is(w.kind, w.text) {
			t.Fatalf("token %d: expected (%d, %q), got (%d, %q)", i, w.kind, w.text, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestLexMaximalMunch(t *testing.T) {
	toks, err := Lex("a ??= b?.c => d == e")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	var ops []string
	for _, tok := range toks {
		if tok.Kind == KindPunct {
			ops = append(ops, tok.Text)
		}
	}
	want := []string{"??=", "?.", "=>", "=="}
	if len(ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d: expected %q, got %q", i, want[i], ops[i])
		}
	}
}

func TestLexStrings(t *testing.T) {
	cases := []struct {
		src  string
		text string
	}{
		{`"plain \" quote"`, `"plain \" quote"`},
		{`@"c:\dir\file ""x"""`, `@"c:\dir\file ""x"""`},
		{`$"total {n}"`, `$"total {n}"`},
		{`'\n'`, `'\n'`},
	}
	for _, c := range cases {
		toks, err := Lex(c.src)
		if err != nil {
			t.Fatalf("lex %q: %v", c.src, err)
		}
		if len(toks) != 1 {
			t.Fatalf("lex %q: expected 1 token, got %d", c.src, len(toks))
		}
		if toks[0].Text != c.text {
			t.Fatalf("lex %q: got token text %q", c.src, toks[0].Text)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks, err := Lex("0xFF_0 1_000 3.14f 2e10 42m")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	want := []string{"0xFF_0", "1_000", "3.14f", "2e10", "42m"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), texts(toks))
	}
	for i, w := range want {
		if toks[i].Kind != KindNumber || toks[i].Text != w {
			t.Fatalf("token %d: expected number %q, got (%d, %q)", i, w, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestLexPositions(t *testing.T) {
	toks, err := Lex("a\n  b")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if toks[0].Line != 1 || toks[0].Col != 1 {
		t.Fatalf("token a: expected 1:1, got %d:%d", toks[0].Line, toks[0].Col)
	}
	if toks[1].Line != 2 || toks[1].Col != 3 {
		t.Fatalf("token b: expected 2:3, got %d:%d", toks[1].Line, toks[1].Col)
	}
}

func TestLexErrors(t *testing.T) {
	for _, src := range []string{`"open`, "/* open", "'x"} {
		if _, err := Lex(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}
