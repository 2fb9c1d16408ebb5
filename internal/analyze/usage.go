// Package analyze classifies how a method body uses the state of its
// enclosing type. The result drives whether a relocated method needs an
// explicit receiver parameter, injected field parameters, or neither.
package analyze

import (
	"restruct/internal/resolve"
	"restruct/internal/syntax"
)

// Usage is the three-way classification of a method body.
type Usage struct {
	UsesInstanceMembers bool
	CallsSiblingMethods bool
	IsRecursive         bool
}

// NeedsReceiver reports whether any classification forces a receiver
// parameter on the moved method.
func (u Usage) NeedsReceiver() bool {
	return u.UsesInstanceMembers || u.CallsSiblingMethods || u.IsRecursive
}

// Report is the full analysis of one method ahead of a move.
type Report struct {
	Usage Usage
	// PrivateFieldReads lists private instance fields the body reads, in
	// first-use order, deduplicated. These are candidates for explicit
	// parameter injection.
	PrivateFieldReads []string
	// BeyondPrivateFields is set when the body touches instance state other
	// than private fields (properties, non-private fields), which rules out
	// pure field injection.
	BeyondPrivateFields bool
	// StaticFieldUses lists static fields of the enclosing type the body
	// references without qualification.
	StaticFieldUses []string
}

// Inspect classifies a method body against the enclosing type's member sets.
// Any well-formed body, including an empty one, yields a valid report; there
// are no error conditions.
func Inspect(m *syntax.Method, sets resolve.MemberSets, r resolve.Resolver) Report {
	var rep Report
	if !m.HasBody {
		return rep
	}
	skip := r.Locals(m)
	seenPrivate := map[string]bool{}
	seenStatic := map[string]bool{}

	body := m.Body
	for i, t := range body {
		if t.Kind != syntax.KindIdent || skip.Has(t.Text) {
			continue
		}
		if isQualified(body, i) {
			continue
		}
		if declarationSite(body, i) {
			continue
		}
		name := t.Text
		call := nextIsCallOpen(body, i)
		switch {
		case call && name == m.Name:
			rep.Usage.IsRecursive = true
		case call && sets.InstanceMethods.Has(name):
			rep.Usage.CallsSiblingMethods = true
		case !call && sets.InstanceFields.Has(name):
			rep.Usage.UsesInstanceMembers = true
			if sets.PrivateFields.Has(name) {
				if !seenPrivate[name] {
					seenPrivate[name] = true
					rep.PrivateFieldReads = append(rep.PrivateFieldReads, name)
				}
			} else {
				rep.BeyondPrivateFields = true
			}
		case !call && sets.Properties.Has(name):
			rep.Usage.UsesInstanceMembers = true
			rep.BeyondPrivateFields = true
		case !call && sets.StaticFields.Has(name):
			if !seenStatic[name] {
				seenStatic[name] = true
				rep.StaticFieldUses = append(rep.StaticFieldUses, name)
			}
		// Delegate-typed state reached through a call shape is still a
		// field read; a bare method name is a method-group reference.
		case call && sets.InstanceFields.Has(name):
			rep.Usage.UsesInstanceMembers = true
			if sets.PrivateFields.Has(name) {
				if !seenPrivate[name] {
					seenPrivate[name] = true
					rep.PrivateFieldReads = append(rep.PrivateFieldReads, name)
				}
			} else {
				rep.BeyondPrivateFields = true
			}
		case call && sets.Properties.Has(name):
			rep.Usage.UsesInstanceMembers = true
			rep.BeyondPrivateFields = true
		case !call && sets.InstanceMethods.Has(name):
			if name == m.Name {
				rep.Usage.IsRecursive = true
			} else {
				rep.Usage.CallsSiblingMethods = true
			}
		}
	}

	// "this.X" counts as instance-member use even though the identifier
	// itself is qualified.
	for i, t := range body {
		if t.IsKeyword("this") && nextIsDot(body, i) {
			if name, ok := identAfterDot(body, i); ok {
				if sets.InstanceFields.Has(name) || sets.Properties.Has(name) {
					rep.Usage.UsesInstanceMembers = true
					if !sets.PrivateFields.Has(name) {
						rep.BeyondPrivateFields = true
					} else if !seenPrivate[name] {
						seenPrivate[name] = true
						rep.PrivateFieldReads = append(rep.PrivateFieldReads, name)
					}
				}
				if sets.InstanceMethods.Has(name) {
					if name == m.Name {
						rep.Usage.IsRecursive = true
					} else {
						rep.Usage.CallsSiblingMethods = true
					}
				}
			}
		}
	}
	return rep
}

func isQualified(body []syntax.Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		return t.IsPunct(".") || t.IsPunct("?.") || t.IsPunct("::") || t.IsKeyword("new")
	}
	return false
}

// declarationSite reports whether the identifier is itself a declared name
// or a named-argument label, neither of which reads member state.
func declarationSite(body []syntax.Token, i int) bool {
	if i+1 < len(body) && body[i+1].IsPunct(":") {
		return true
	}
	// An identifier directly followed by another identifier is a type
	// position ("Foo bar"), not a member read.
	if i+1 < len(body) && body[i+1].Kind == syntax.KindIdent {
		return true
	}
	return false
}

func nextIsCallOpen(body []syntax.Token, i int) bool {
	for j := i + 1; j < len(body); j++ {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		if t.IsPunct("(") {
			return true
		}
		// A generic call like M<int>(x) keeps the call shape.
		if t.IsPunct("<") {
			if end := genericClose(body, j); end > 0 {
				return end+1 < len(body) && body[end+1].IsPunct("(")
			}
		}
		return false
	}
	return false
}

func genericClose(body []syntax.Token, i int) int {
	depth := 0
	for j := i; j < len(body) && j-i <= 64; j++ {
		t := body[j]
		switch {
		case t.IsPunct("<"):
			depth++
		case t.IsPunct(">"):
			depth--
			if depth == 0 {
				return j
			}
		case t.Kind == syntax.KindIdent:
		case t.Kind == syntax.KindKeyword && syntax.IsTypeKeyword(t.Text):
		case t.IsPunct(",") || t.IsPunct(".") || t.IsPunct("[") || t.IsPunct("]") || t.IsPunct("?"):
		default:
			return -1
		}
	}
	return -1
}

func nextIsDot(body []syntax.Token, i int) bool {
	for j := i + 1; j < len(body); j++ {
		if body[j].Kind == syntax.KindComment {
			continue
		}
		return body[j].IsPunct(".")
	}
	return false
}

func identAfterDot(body []syntax.Token, i int) (string, bool) {
	seenDot := false
	for j := i + 1; j < len(body); j++ {
		t := body[j]
		if t.Kind == syntax.KindComment {
			continue
		}
		if !seenDot {
			if !t.IsPunct(".") {
				return "", false
			}
			seenDot = true
			continue
		}
		if t.Kind == syntax.KindIdent {
			return t.Text, true
		}
		return "", false
	}
	return "", false
}
