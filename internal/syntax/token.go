package syntax

// Kind discriminates lexical token classes.
type Kind int

const (
	KindIdent Kind = iota
	KindKeyword
	KindNumber
	KindString
	KindChar
	KindPunct
	KindComment
)

// Token is one lexical unit of a source module. Member bodies are stored as
// token slices; every transformation the engine performs is a substitution
// over such slices, producing a fresh slice each time.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(k Kind, text string) bool { return t.Kind == k && t.Text == text }

// IsPunct reports whether the token is the given punctuation.
func (t Token) IsPunct(text string) bool { return t.Kind == KindPunct && t.Text == text }

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(text string) bool { return t.Kind == KindKeyword && t.Text == text }

var keywords = map[string]struct{}{
	"abstract": {}, "as": {}, "async": {}, "await": {}, "base": {}, "bool": {},
	"break": {}, "byte": {}, "case": {}, "catch": {}, "char": {}, "checked": {},
	"class": {}, "const": {}, "continue": {}, "decimal": {}, "default": {},
	"delegate": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "event": {},
	"explicit": {}, "extern": {}, "false": {}, "finally": {}, "fixed": {},
	"float": {}, "for": {}, "foreach": {}, "goto": {}, "if": {}, "implicit": {},
	"in": {}, "int": {}, "interface": {}, "internal": {}, "is": {}, "lock": {},
	"long": {}, "namespace": {}, "new": {}, "null": {}, "object": {},
	"operator": {}, "out": {}, "override": {}, "params": {}, "private": {},
	"protected": {}, "public": {}, "readonly": {}, "ref": {}, "return": {},
	"sbyte": {}, "sealed": {}, "short": {}, "sizeof": {}, "stackalloc": {},
	"static": {}, "string": {}, "struct": {}, "switch": {}, "this": {},
	"throw": {}, "true": {}, "try": {}, "typeof": {}, "uint": {}, "ulong": {},
	"unchecked": {}, "unsafe": {}, "ushort": {}, "using": {}, "var": {},
	"virtual": {}, "void": {}, "volatile": {}, "while": {}, "where": {},
	"when": {}, "yield": {}, "partial": {},
}

// typeKeywords are keywords that may start or form a type reference.
var typeKeywords = map[string]struct{}{
	"void": {}, "var": {}, "bool": {}, "byte": {}, "sbyte": {}, "char": {},
	"decimal": {}, "double": {}, "float": {}, "int": {}, "uint": {},
	"long": {}, "ulong": {}, "short": {}, "ushort": {}, "object": {},
	"string": {}, "dynamic": {},
}

// modifierWords are member/type modifiers in declaration order of interest.
var modifierWords = map[string]struct{}{
	"public": {}, "private": {}, "protected": {}, "internal": {},
	"static": {}, "async": {}, "abstract": {}, "virtual": {}, "override": {},
	"sealed": {}, "readonly": {}, "const": {}, "partial": {}, "unsafe": {},
	"extern": {}, "volatile": {}, "new": {},
}

// visibilityWords are the access modifiers replaced when a moved method is
// forced public.
var visibilityWords = map[string]struct{}{
	"public": {}, "private": {}, "protected": {}, "internal": {},
}

// IsTypeKeyword reports whether the word is a built-in type keyword.
func IsTypeKeyword(word string) bool {
	_, ok := typeKeywords[word]
	return ok
}

// IsModifier reports whether the word is a declaration modifier.
func IsModifier(word string) bool {
	_, ok := modifierWords[word]
	return ok
}

// IsVisibility reports whether the word is an access modifier.
func IsVisibility(word string) bool {
	_, ok := visibilityWords[word]
	return ok
}
