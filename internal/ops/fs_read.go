package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- fs.read ---------------------

type fsReadTool struct{ host Host }

func newFSReadTool(h Host) *fsReadTool { return &fsReadTool{host: h} }

func (t *fsReadTool) Spec() Spec {
	return Spec{
		Name:        "fs.read",
		Description: "Read a source module (or a slice of it) from the project root.",
	}
}

type fsReadInput struct {
	Path   string `json:"path"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

type fsReadOutput struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

func (t *fsReadTool) Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in fsReadInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Path) == "" {
		return nil, fmt.Errorf("fs.read: path required")
	}
	if in.Length <= 0 {
		in.Length = 65536
	}
	text, enc, err := t.host.Store.ReadText(in.Path)
	if err != nil {
		return nil, err
	}
	if in.Start < 0 {
		in.Start = 0
	}
	if in.Start > len(text) {
		in.Start = len(text)
	}
	end := in.Start + in.Length
	if end > len(text) {
		end = len(text)
	}
	out := fsReadOutput{Path: in.Path, Encoding: enc.String(), Content: text[in.Start:end]}
	return json.Marshal(out)
}
