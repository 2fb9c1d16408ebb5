package syntax

// NamespaceStyle records how a module declares its namespace so rendering
// can reproduce the original shape.
type NamespaceStyle int

const (
	NamespaceNone NamespaceStyle = iota
	NamespaceBlock
	NamespaceFile
)

// Module is the immutable representation of one source unit. Transformations
// never mutate a Module; they build a new value via Clone and targeted
// replacement.
type Module struct {
	Usings         []Using
	Namespace      string
	NamespaceStyle NamespaceStyle
	Types          []*TypeDecl
}

// Using is a single using directive.
type Using struct {
	Path   string
	Static bool
	Alias  string
}

// TypeDecl is a named aggregate declaration with ordered members.
type TypeDecl struct {
	Attrs      [][]Token
	Modifiers  []string
	Keyword    string // class, struct or interface
	Name       string
	TypeParams []string
	BaseList   []string
	Members    []Member
}

// MemberKind tags the Member union.
type MemberKind int

const (
	FieldMember MemberKind = iota
	PropertyMember
	MethodMember
	NestedTypeMember
)

// Member is a tagged union over the member shapes a type declaration owns.
// Exactly one of the pointer fields is set, matching Kind.
type Member struct {
	Kind     MemberKind
	Field    *Field
	Property *Property
	Method   *Method
	Nested   *TypeDecl
}

// Field is a variable member with an optional initializer.
type Field struct {
	Attrs     [][]Token
	Modifiers []string
	Type      string
	Name      string
	Init      []Token
}

// Property is a member with an accessor block, stored as raw tokens. An
// expression-bodied property keeps its expression in Accessors with ExprBody
// set.
type Property struct {
	Attrs     [][]Token
	Modifiers []string
	Type      string
	Name      string
	Accessors []Token
	Init      []Token
	ExprBody  bool
}

// Param is one method parameter.
type Param struct {
	Modifiers []string // ref, out, in, params, this
	Type      string
	Name      string
	Default   []Token
}

// Method is a callable member. A nil-body method (HasBody false) is abstract
// or an interface member. ReturnType is empty for constructors.
type Method struct {
	Attrs      [][]Token
	Modifiers  []string
	ReturnType string
	Name       string
	TypeParams []string
	Params     []Param
	Where      []Token // raw constraint clauses
	Body       []Token
	HasBody    bool
	ExprBody   bool // declared with "=>"
}

// Name returns the member's declared name.
func (m Member) Name() string {
	switch m.Kind {
	case FieldMember:
		return m.Field.Name
	case PropertyMember:
		return m.Property.Name
	case MethodMember:
		return m.Method.Name
	case NestedTypeMember:
		return m.Nested.Name
	}
	return ""
}

func hasWord(words []string, w string) bool {
	for _, m := range words {
		if m == w {
			return true
		}
	}
	return false
}

// IsStatic reports whether the method carries the static modifier.
func (m *Method) IsStatic() bool { return hasWord(m.Modifiers, "static") }

// IsAsync reports whether the method carries the async modifier.
func (m *Method) IsAsync() bool { return hasWord(m.Modifiers, "async") }

// Visibility returns the method's access modifier, defaulting to private.
func (m *Method) Visibility() string {
	for _, w := range m.Modifiers {
		if IsVisibility(w) {
			return w
		}
	}
	return "private"
}

// IsStatic reports whether the type is declared static.
func (t *TypeDecl) IsStatic() bool { return hasWord(t.Modifiers, "static") }

// FindType returns the first top-level type with the given name.
func (m *Module) FindType(name string) (*TypeDecl, int) {
	for i, t := range m.Types {
		if t.Name == name {
			return t, i
		}
	}
	return nil, -1
}

// FindMember returns the first member with the given name, honoring the
// declaration order. Overloads are not disambiguated.
func (t *TypeDecl) FindMember(name string) (Member, int) {
	for i, mem := range t.Members {
		if mem.Name() == name {
			return mem, i
		}
	}
	return Member{}, -1
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	out := &Module{
		Usings:         append([]Using(nil), m.Usings...),
		Namespace:      m.Namespace,
		NamespaceStyle: m.NamespaceStyle,
	}
	for _, t := range m.Types {
		out.Types = append(out.Types, t.Clone())
	}
	return out
}

// Clone returns a deep copy of the type declaration.
func (t *TypeDecl) Clone() *TypeDecl {
	out := &TypeDecl{
		Attrs:      cloneAttrs(t.Attrs),
		Modifiers:  append([]string(nil), t.Modifiers...),
		Keyword:    t.Keyword,
		Name:       t.Name,
		TypeParams: append([]string(nil), t.TypeParams...),
		BaseList:   append([]string(nil), t.BaseList...),
	}
	for _, mem := range t.Members {
		out.Members = append(out.Members, mem.Clone())
	}
	return out
}

// Clone returns a deep copy of the member.
func (m Member) Clone() Member {
	switch m.Kind {
	case FieldMember:
		f := *m.Field
		f.Attrs = cloneAttrs(m.Field.Attrs)
		f.Modifiers = append([]string(nil), m.Field.Modifiers...)
		f.Init = append([]Token(nil), m.Field.Init...)
		return Member{Kind: FieldMember, Field: &f}
	case PropertyMember:
		p := *m.Property
		p.Attrs = cloneAttrs(m.Property.Attrs)
		p.Modifiers = append([]string(nil), m.Property.Modifiers...)
		p.Accessors = append([]Token(nil), m.Property.Accessors...)
		p.Init = append([]Token(nil), m.Property.Init...)
		return Member{Kind: PropertyMember, Property: &p}
	case MethodMember:
		return Member{Kind: MethodMember, Method: m.Method.Clone()}
	case NestedTypeMember:
		return Member{Kind: NestedTypeMember, Nested: m.Nested.Clone()}
	}
	return Member{}
}

// Clone returns a deep copy of the method.
func (m *Method) Clone() *Method {
	out := &Method{
		Attrs:      cloneAttrs(m.Attrs),
		Modifiers:  append([]string(nil), m.Modifiers...),
		ReturnType: m.ReturnType,
		Name:       m.Name,
		TypeParams: append([]string(nil), m.TypeParams...),
		Where:      append([]Token(nil), m.Where...),
		Body:       append([]Token(nil), m.Body...),
		HasBody:    m.HasBody,
		ExprBody:   m.ExprBody,
	}
	for _, p := range m.Params {
		cp := p
		cp.Modifiers = append([]string(nil), p.Modifiers...)
		cp.Default = append([]Token(nil), p.Default...)
		out.Params = append(out.Params, cp)
	}
	return out
}

func cloneAttrs(attrs [][]Token) [][]Token {
	if attrs == nil {
		return nil
	}
	out := make([][]Token, len(attrs))
	for i, a := range attrs {
		out[i] = append([]Token(nil), a...)
	}
	return out
}

// WithMember returns a copy of the type with the member at index i replaced.
func (t *TypeDecl) WithMember(i int, mem Member) *TypeDecl {
	out := t.Clone()
	out.Members[i] = mem
	return out
}

// AppendMember returns a copy of the type with the member appended.
func (t *TypeDecl) AppendMember(mem Member) *TypeDecl {
	out := t.Clone()
	out.Members = append(out.Members, mem)
	return out
}

// WithType returns a copy of the module with the type at index i replaced.
func (m *Module) WithType(i int, t *TypeDecl) *Module {
	out := m.Clone()
	out.Types[i] = t
	return out
}

// AppendType returns a copy of the module with the type appended.
func (m *Module) AppendType(t *TypeDecl) *Module {
	out := m.Clone()
	out.Types = append(out.Types, t)
	return out
}
