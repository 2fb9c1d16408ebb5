// Package merge lands a transformed method in its destination tree. The
// destination type may not exist yet; a public wrapper is synthesized inside
// the first namespace-like container, a caller-supplied namespace, or at top
// level. Using directives propagate from source to destination by set union.
package merge

import (
	"restruct/internal/move"
	"restruct/internal/syntax"
)

// Apply returns a new destination module containing the moved method. dst
// may be nil, meaning the destination file does not exist yet. src is the
// module the method came from; its using directives are merged in.
func Apply(dst, src *syntax.Module, op move.Operation, method *syntax.Method) (*syntax.Module, error) {
	out := newDestination(dst, src, op)

	td, ti := out.FindType(op.TargetType)
	if td == nil {
		out = out.AppendType(&syntax.TypeDecl{
			Modifiers: []string{"public"},
			Keyword:   "class",
			Name:      op.TargetType,
		})
		td, ti = out.FindType(op.TargetType)
	}
	if !op.Static && td.IsStatic() {
		return nil, move.Errf(move.Unsupported, "cannot move instance method %q into static type %q", method.Name, op.TargetType)
	}
	if _, idx := td.FindMember(method.Name); idx >= 0 {
		return nil, move.Errf(move.AlreadyExists, "type %q already declares a member %q", op.TargetType, method.Name)
	}

	newTd := td.AppendMember(syntax.Member{Kind: syntax.MethodMember, Method: method.Clone()})
	out = out.WithType(ti, newTd)
	out.Usings = UnionUsings(out.Usings, src.Usings)
	return out, nil
}

// newDestination clones the destination, creating an empty module with the
// right namespace when none exists. A caller-supplied namespace wins; an
// absent one inherits the source namespace.
func newDestination(dst, src *syntax.Module, op move.Operation) *syntax.Module {
	if dst != nil {
		out := dst.Clone()
		if out.Namespace == "" && op.Namespace != "" {
			out.Namespace = op.Namespace
			out.NamespaceStyle = syntax.NamespaceFile
		}
		return out
	}
	out := &syntax.Module{}
	switch {
	case op.Namespace != "":
		out.Namespace = op.Namespace
		out.NamespaceStyle = syntax.NamespaceFile
	case src.Namespace != "":
		out.Namespace = src.Namespace
		out.NamespaceStyle = src.NamespaceStyle
	}
	return out
}

// UnionUsings appends the directives of add that dst lacks. Existing
// directives keep their order and are never duplicated; identity is the
// fully qualified path plus the static flag and alias.
func UnionUsings(dst, add []syntax.Using) []syntax.Using {
	seen := map[syntax.Using]struct{}{}
	for _, u := range dst {
		seen[u] = struct{}{}
	}
	out := append([]syntax.Using(nil), dst...)
	for _, u := range add {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
