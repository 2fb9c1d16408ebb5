// Package plan linearizes a batch of move operations so methods with fewer
// intra-batch call dependencies move first. The ordering is a heuristic,
// not a topological sort: cycles are not detected, and cyclic members keep
// their original relative order.
package plan

import (
	"sort"

	"restruct/internal/move"
	"restruct/internal/rewrite"
	"restruct/internal/syntax"
)

// DependencyMap records, per batch member, which other batch members it
// calls. Keys are "Type.Method". It is rebuilt for every batch and never
// persisted.
type DependencyMap map[string]map[string]struct{}

// Count returns the intra-batch dependency count for a key.
func (dm DependencyMap) Count(key string) int { return len(dm[key]) }

// Build resolves each operation's method in the source module, collects the
// call-like identifiers in its body and intersects them with the other
// same-source-type operations of the batch. Operations whose method cannot
// be resolved contribute an empty entry; the mover reports the miss later.
func Build(mod *syntax.Module, ops []move.Operation) DependencyMap {
	inBatch := map[string]map[string]struct{}{}
	for _, op := range ops {
		if inBatch[op.SourceType] == nil {
			inBatch[op.SourceType] = map[string]struct{}{}
		}
		inBatch[op.SourceType][op.Method] = struct{}{}
	}

	dm := DependencyMap{}
	for _, op := range ops {
		deps := map[string]struct{}{}
		dm[op.Key()] = deps
		td, _ := mod.FindType(op.SourceType)
		if td == nil {
			continue
		}
		mem, idx := td.FindMember(op.Method)
		if idx < 0 || mem.Kind != syntax.MethodMember || !mem.Method.HasBody {
			continue
		}
		siblings := inBatch[op.SourceType]
		for _, callee := range calledNames(mem.Method.Body) {
			if callee == op.Method {
				continue // recursion is not a dependency on another move
			}
			if _, ok := siblings[callee]; ok {
				deps[op.SourceType+"."+callee] = struct{}{}
			}
		}
	}
	return dm
}

// calledNames collects identifiers in call shape, bare or this-qualified.
func calledNames(body []syntax.Token) []string {
	var out []string
	for i, t := range body {
		if t.Kind != syntax.KindIdent {
			continue
		}
		if !rewrite.CallShape(body, i) {
			continue
		}
		if bareOrThis(body, i) {
			out = append(out, t.Text)
		}
	}
	return out
}

func bareOrThis(body []syntax.Token, i int) bool {
	var prev, prev2 syntax.Token
	n := 0
	for j := i - 1; j >= 0 && n < 2; j-- {
		if body[j].Kind == syntax.KindComment {
			continue
		}
		if n == 0 {
			prev = body[j]
		} else {
			prev2 = body[j]
		}
		n++
	}
	if prev.IsPunct(".") || prev.IsPunct("?.") {
		return prev2.IsKeyword("this")
	}
	return !prev.IsKeyword("new")
}

// Order returns the batch sorted ascending by intra-batch dependency count.
// The sort is stable: ties keep their original submission order, which is
// also the fallback for cyclic call relationships.
func Order(mod *syntax.Module, ops []move.Operation) ([]move.Operation, DependencyMap) {
	dm := Build(mod, ops)
	out := append([]move.Operation(nil), ops...)
	sort.SliceStable(out, func(i, j int) bool {
		return dm.Count(out[i].Key()) < dm.Count(out[j].Key())
	})
	return out, dm
}
