package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"restruct/internal/resolve"
	"restruct/internal/syntax"
)

// --------------------- refs.find ---------------------

type refsFindTool struct{ host Host }

func newRefsFindTool(h Host) *refsFindTool { return &refsFindTool{host: h} }

func (t *refsFindTool) Spec() Spec {
	return Spec{
		Name:        "refs.find",
		Description: "Find bare and this-qualified references to a member inside a module.",
	}
}

type refsFindInput struct {
	File   string `json:"file"`
	Type   string `json:"type"`
	Member string `json:"member"`
}

type refsSite struct {
	Type   string `json:"type"`
	Method string `json:"method"`
	Index  int    `json:"index"`
}

type refsFindOutput struct {
	Static bool       `json:"static"`
	Sites  []refsSite `json:"sites"`
}

func (t *refsFindTool) Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in refsFindInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.File) == "" || strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Member) == "" {
		return nil, fmt.Errorf("refs.find: file, type and member are required")
	}
	text, _, err := t.host.Store.ReadText(in.File)
	if err != nil {
		return nil, fmt.Errorf("refs.find: read %s: %w", in.File, err)
	}
	mod, err := syntax.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("refs.find: parse %s: %w", in.File, err)
	}
	td, _ := mod.FindType(in.Type)
	if td == nil {
		return nil, fmt.Errorf("refs.find: type %s not found in %s", in.Type, in.File)
	}
	mem, idx := td.FindMember(in.Member)
	if idx < 0 {
		return nil, fmt.Errorf("refs.find: member %s.%s not found", in.Type, in.Member)
	}
	sym := resolve.Symbol{
		Type:   in.Type,
		Member: in.Member,
		Kind:   mem.Kind,
		Static: memberIsStatic(mem),
	}
	r := t.host.Opts.Resolver
	if r == nil {
		r = resolve.Heuristic{}
	}
	sites := r.FindAllReferences(mod, sym)
	out := refsFindOutput{Static: sym.Static, Sites: make([]refsSite, 0, len(sites))}
	for _, s := range sites {
		out.Sites = append(out.Sites, refsSite(s))
	}
	return json.Marshal(out)
}

func memberIsStatic(mem syntax.Member) bool {
	switch mem.Kind {
	case syntax.FieldMember:
		return hasWord(mem.Field.Modifiers, "static") || hasWord(mem.Field.Modifiers, "const")
	case syntax.PropertyMember:
		return hasWord(mem.Property.Modifiers, "static")
	case syntax.MethodMember:
		return mem.Method.IsStatic()
	}
	return false
}

func hasWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
