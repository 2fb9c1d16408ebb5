package move

import "fmt"

// FailKind is the closed taxonomy of operation failures. Every kind
// surfaces identically at the operation boundary: one plain-text line,
// "<kind>: <message>".
type FailKind int

const (
	NotFound FailKind = iota
	WrongKind
	AlreadyExists
	StillReferenced
	InvalidRange
	Unsupported
)

var failNames = map[FailKind]string{
	NotFound:        "NotFound",
	WrongKind:       "WrongKind",
	AlreadyExists:   "AlreadyExists",
	StillReferenced: "StillReferenced",
	InvalidRange:    "InvalidRange",
	Unsupported:     "Unsupported",
}

// String returns the kind's report name.
func (k FailKind) String() string {
	if s, ok := failNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FailKind(%d)", int(k))
}

// Error is a classified operation failure.
type Error struct {
	Kind FailKind
	Msg  string
}

// Error implements the error interface in the boundary report form.
func (e *Error) Error() string { return e.Kind.String() + ": " + e.Msg }

// Errf builds a classified failure.
func Errf(kind FailKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind, defaulting to Unsupported for
// unclassified errors.
func KindOf(err error) FailKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Unsupported
}
