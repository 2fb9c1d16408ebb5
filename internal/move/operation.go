// Package move implements the single-method relocation pipeline: locate,
// analyze, transform, stub. Merging into the destination tree lives in
// package merge; file effects live in the batch orchestrator.
package move

import "strings"

// AccessKind selects the shape of a generated access member.
type AccessKind int

const (
	// AccessAuto picks a field for underscore/lowercase names and a
	// property for exported-style names.
	AccessAuto AccessKind = iota
	AccessField
	AccessProperty
)

// Operation describes the intent to relocate one method. It is a pure value;
// nothing here touches trees or files.
type Operation struct {
	SourceType string
	Method     string
	TargetType string
	// AccessMember names the member on the source type that delegating
	// stubs route through. Empty derives "_<targetType>" in camel case.
	AccessMember string
	// AccessType is the declared type of the access member; empty means the
	// target type itself.
	AccessType string
	AccessKind AccessKind
	Static     bool
	// TargetPath is the destination module path; empty keeps the method in
	// the source module.
	TargetPath string
	// Namespace overrides the namespace of a newly created destination
	// module; empty inherits the source namespace.
	Namespace string
}

// Key is the batch-wide identity "Type.Method".
func (op Operation) Key() string { return op.SourceType + "." + op.Method }

// ResolvedAccessMember returns the access-member name, derived from the
// target type when unset.
func (op Operation) ResolvedAccessMember() string {
	if op.AccessMember != "" {
		return op.AccessMember
	}
	name := op.TargetType
	return "_" + strings.ToLower(name[:1]) + name[1:]
}

// ResolvedAccessType returns the access-member type, defaulting to the
// target type.
func (op Operation) ResolvedAccessType() string {
	if op.AccessType != "" {
		return op.AccessType
	}
	return op.TargetType
}
