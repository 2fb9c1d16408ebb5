package ops

import (
	"context"
	"encoding/json"
	"fmt"
)

// --------------------- type.list ---------------------

type typeListTool struct{ host Host }

func newTypeListTool(h Host) *typeListTool { return &typeListTool{host: h} }

func (t *typeListTool) Spec() Spec {
	return Spec{
		Name:        "type.list",
		Description: "List the types declared under the project root, with their members.",
	}
}

type typeListInput struct {
	// Name filters the listing to one type name; empty lists everything.
	Name string `json:"name,omitempty"`
}

type typeListEntry struct {
	Path      string   `json:"path"`
	Namespace string   `json:"namespace,omitempty"`
	Name      string   `json:"name"`
	Members   []string `json:"members,omitempty"`
}

type typeListOutput struct {
	Types  []typeListEntry   `json:"types"`
	Broken map[string]string `json:"broken,omitempty"`
}

func (t *typeListTool) Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in typeListInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, err
		}
	}
	if t.host.Cache == nil {
		return nil, fmt.Errorf("type.list: no index cache configured")
	}
	project, err := t.host.Cache.GetOrLoad(ctx, t.host.Store)
	if err != nil {
		return nil, fmt.Errorf("type.list: %w", err)
	}
	entries := project.Types
	if in.Name != "" {
		entries = project.TypesByName(in.Name)
	}
	out := typeListOutput{Types: make([]typeListEntry, 0, len(entries))}
	for _, e := range entries {
		out.Types = append(out.Types, typeListEntry(e))
	}
	if len(project.Broken) > 0 {
		out.Broken = project.Broken
	}
	return json.Marshal(out)
}
