package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// multiPunct lists multi-character operators, longest first within each
// leading byte. Order matters for maximal munch.
var multiPunct = []string{
	"??=", "<<=", ">>=", "...",
	"?.", "??", "=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "::", "->", "<<", ">>",
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// Lex splits source text into tokens. Comments are kept as tokens so that
// member bodies round-trip them; whitespace is discarded.
func Lex(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, col: 1}
	var out []Token
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tok)
	}
}

func (lx *lexer) errf(format string, args ...any) error {
	return fmt.Errorf("syntax: %d:%d: %s", lx.line, lx.col, fmt.Sprintf(format, args...))
}

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n && lx.pos < len(lx.src); i++ {
		if lx.src[lx.pos] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.pos++
	}
}

func (lx *lexer) next() (Token, bool, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			lx.advance(1)
			continue
		}
		break
	}
	if lx.pos >= len(lx.src) {
		return Token{}, false, nil
	}

	startLine, startCol := lx.line, lx.col
	mk := func(k Kind, text string) Token {
		return Token{Kind: k, Text: text, Line: startLine, Col: startCol}
	}

	c := lx.src[lx.pos]
	switch {
	case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
		start := lx.pos
		for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
			lx.advance(1)
		}
		return mk(KindComment, strings.TrimRight(lx.src[start:lx.pos], "\r")), true, nil

	case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
		start := lx.pos
		lx.advance(2)
		for {
			if lx.pos+1 >= len(lx.src) {
				return Token{}, false, lx.errf("unterminated block comment")
			}
			if lx.src[lx.pos] == '*' && lx.src[lx.pos+1] == '/' {
				lx.advance(2)
				break
			}
			lx.advance(1)
		}
		return mk(KindComment, lx.src[start:lx.pos]), true, nil

	case c == '"' || (c == '@' && lx.lookaheadIs(1, '"')) ||
		(c == '$' && lx.lookaheadIs(1, '"')) ||
		(c == '$' && lx.lookaheadIs(1, '@') && lx.lookaheadIs(2, '"')) ||
		(c == '@' && lx.lookaheadIs(1, '$') && lx.lookaheadIs(2, '"')):
		return lx.lexString(mk)

	case c == '\'':
		start := lx.pos
		lx.advance(1)
		for lx.pos < len(lx.src) && lx.src[lx.pos] != '\'' {
			if lx.src[lx.pos] == '\\' {
				lx.advance(1)
			}
			lx.advance(1)
		}
		if lx.pos >= len(lx.src) {
			return Token{}, false, lx.errf("unterminated character literal")
		}
		lx.advance(1)
		return mk(KindChar, lx.src[start:lx.pos]), true, nil

	case c >= '0' && c <= '9':
		return lx.lexNumber(mk), true, nil

	case c == '.' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] >= '0' && lx.src[lx.pos+1] <= '9':
		return lx.lexNumber(mk), true, nil

	case isIdentStart(rune(c)) || c == '@':
		start := lx.pos
		if c == '@' {
			lx.advance(1)
		}
		for lx.pos < len(lx.src) {
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if !isIdentPart(r) {
				break
			}
			lx.advance(size)
		}
		word := lx.src[start:lx.pos]
		if _, ok := keywords[word]; ok {
			return mk(KindKeyword, word), true, nil
		}
		return mk(KindIdent, word), true, nil

	default:
		for _, op := range multiPunct {
			if strings.HasPrefix(lx.src[lx.pos:], op) {
				lx.advance(len(op))
				return mk(KindPunct, op), true, nil
			}
		}
		if strings.ContainsRune("{}()[]<>;,.:?=+-*/%&|^!~#", rune(c)) {
			lx.advance(1)
			return mk(KindPunct, string(c)), true, nil
		}
		return Token{}, false, lx.errf("unexpected character %q", c)
	}
}

func (lx *lexer) lookaheadIs(n int, c byte) bool {
	return lx.pos+n < len(lx.src) && lx.src[lx.pos+n] == c
}

// lexString consumes ordinary, verbatim and interpolated string literals.
// The raw literal text, prefixes included, is kept in one token; the engine
// never rewrites inside string literals.
func (lx *lexer) lexString(mk func(Kind, string) Token) (Token, bool, error) {
	start := lx.pos
	verbatim := false
	for lx.pos < len(lx.src) && (lx.src[lx.pos] == '@' || lx.src[lx.pos] == '$') {
		if lx.src[lx.pos] == '@' {
			verbatim = true
		}
		lx.advance(1)
	}
	if lx.peekByte() != '"' {
		return Token{}, false, lx.errf("malformed string literal")
	}
	lx.advance(1)
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		if verbatim {
			if ch == '"' {
				if lx.lookaheadIs(1, '"') {
					lx.advance(2)
					continue
				}
				lx.advance(1)
				return mk(KindString, lx.src[start:lx.pos]), true, nil
			}
			lx.advance(1)
			continue
		}
		if ch == '\\' {
			lx.advance(2)
			continue
		}
		if ch == '"' {
			lx.advance(1)
			return mk(KindString, lx.src[start:lx.pos]), true, nil
		}
		if ch == '\n' {
			return Token{}, false, lx.errf("newline in string literal")
		}
		lx.advance(1)
	}
	return Token{}, false, lx.errf("unterminated string literal")
}

func (lx *lexer) lexNumber(mk func(Kind, string) Token) Token {
	start := lx.pos
	if strings.HasPrefix(lx.src[lx.pos:], "0x") || strings.HasPrefix(lx.src[lx.pos:], "0X") {
		lx.advance(2)
		for lx.pos < len(lx.src) && isHexDigit(lx.src[lx.pos]) {
			lx.advance(1)
		}
	} else {
		for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_' || lx.src[lx.pos] == '.') {
			if lx.src[lx.pos] == '.' && (lx.pos+1 >= len(lx.src) || !isDigit(lx.src[lx.pos+1])) {
				break
			}
			lx.advance(1)
		}
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
			lx.advance(1)
			if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
				lx.advance(1)
			}
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.advance(1)
			}
		}
	}
	for lx.pos < len(lx.src) && strings.ContainsRune("fFdDmMuUlL", rune(lx.src[lx.pos])) {
		lx.advance(1)
	}
	return mk(KindNumber, lx.src[start:lx.pos])
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') || c == '_' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
