// Package resolve classifies identifiers inside member bodies against the
// declarations of the enclosing module. Two strategies exist: a full symbol
// table and a syntax-only heuristic. They must classify the engine's
// scenarios identically; the conformance test in this package holds them to
// that.
package resolve

import (
	"restruct/internal/syntax"
)

// NameSet is a set of identifier names.
type NameSet map[string]struct{}

// Has reports membership.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts a name.
func (s NameSet) Add(name string) { s[name] = struct{}{} }

// Union returns a new set with the contents of both.
func (s NameSet) Union(other NameSet) NameSet {
	out := make(NameSet, len(s)+len(other))
	for k := range s {
		out.Add(k)
	}
	for k := range other {
		out.Add(k)
	}
	return out
}

// MemberSets are the name sets of one type declaration, split the way the
// usage analyzer consumes them.
type MemberSets struct {
	InstanceFields  NameSet
	StaticFields    NameSet
	InstanceMethods NameSet
	StaticMethods   NameSet
	Properties      NameSet
	PrivateFields   NameSet
	FieldTypes      map[string]string
}

// InstanceMembers returns every name a bare identifier could bind to on the
// current instance, methods excluded.
func (ms MemberSets) InstanceMembers() NameSet {
	return ms.InstanceFields.Union(ms.Properties)
}

// Collect builds the member-name sets for a type declaration. Static
// properties count as static state alongside static fields.
func Collect(t *syntax.TypeDecl) MemberSets {
	ms := MemberSets{
		InstanceFields:  NameSet{},
		StaticFields:    NameSet{},
		InstanceMethods: NameSet{},
		StaticMethods:   NameSet{},
		Properties:      NameSet{},
		PrivateFields:   NameSet{},
		FieldTypes:      map[string]string{},
	}
	for _, mem := range t.Members {
		switch mem.Kind {
		case syntax.FieldMember:
			f := mem.Field
			ms.FieldTypes[f.Name] = f.Type
			if hasMod(f.Modifiers, "static") || hasMod(f.Modifiers, "const") {
				ms.StaticFields.Add(f.Name)
				continue
			}
			ms.InstanceFields.Add(f.Name)
			if fieldVisibility(f.Modifiers) == "private" {
				ms.PrivateFields.Add(f.Name)
			}
		case syntax.PropertyMember:
			p := mem.Property
			ms.FieldTypes[p.Name] = p.Type
			if hasMod(p.Modifiers, "static") {
				ms.StaticFields.Add(p.Name)
				continue
			}
			ms.Properties.Add(p.Name)
		case syntax.MethodMember:
			m := mem.Method
			if m.IsStatic() {
				ms.StaticMethods.Add(m.Name)
			} else {
				ms.InstanceMethods.Add(m.Name)
			}
		case syntax.NestedTypeMember:
			// Nested type names never qualify as member state.
		}
	}
	return ms
}

func hasMod(mods []string, w string) bool {
	for _, m := range mods {
		if m == w {
			return true
		}
	}
	return false
}

func fieldVisibility(mods []string) string {
	for _, m := range mods {
		if syntax.IsVisibility(m) {
			return m
		}
	}
	return "private"
}

// Symbol identifies one declared member.
type Symbol struct {
	Type   string
	Member string
	Kind   syntax.MemberKind
	Static bool
}

// Site is a use site inside a method body, addressed by token index.
type Site struct {
	Type   string
	Method string
	Index  int
}

// Resolver answers what a body identifier refers to.
type Resolver interface {
	// Locals returns parameter and local-variable names that shadow member
	// names inside the method body.
	Locals(m *syntax.Method) NameSet
	// ResolveDeclaration maps a use site to the member it binds to.
	ResolveDeclaration(mod *syntax.Module, site Site) (Symbol, bool)
	// FindAllReferences lists bare or this-qualified use sites of a symbol
	// across the module.
	FindAllReferences(mod *syntax.Module, sym Symbol) []Site
}
