package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"restruct/internal/move"
	"restruct/internal/syntax"
)

// --------------------- method.move ---------------------

type moveMethodTool struct{ host Host }

func newMoveMethodTool(h Host) *moveMethodTool { return &moveMethodTool{host: h} }

func (t *moveMethodTool) Spec() Spec {
	return Spec{
		Name:        "method.move",
		Description: "Relocate one method to another type, leaving a delegating stub.",
	}
}

// moveSpec is the wire form of one relocation, shared by the single and
// batch tools.
type moveSpec struct {
	SourceType   string `json:"source_type,omitempty"`
	Method       string `json:"method"`
	TargetType   string `json:"target_type"`
	TargetFile   string `json:"target_file,omitempty"`
	AccessMember string `json:"access_member,omitempty"`
	AccessType   string `json:"access_type,omitempty"`
	AccessKind   string `json:"access_kind,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
	Static       bool   `json:"static,omitempty"`
}

type moveMethodInput struct {
	File    string `json:"file"`
	BatchID string `json:"batch_id,omitempty"`
	moveSpec
}

type moveOutput struct {
	Reports []string `json:"reports"`
}

func (t *moveMethodTool) Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in moveMethodInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.File) == "" {
		return nil, fmt.Errorf("method.move: file is required")
	}
	op, err := operationFrom(t.host, in.File, in.moveSpec)
	if err != nil {
		return nil, err
	}
	rep, err := t.host.orchestrator(in.BatchID).MoveMethod(ctx, in.File, op)
	if !rep.OK && err != nil && rep.Text == err.Error() {
		// The batch never started (unreadable or unparsable module); the
		// classified failure is the whole story.
		return nil, err
	}
	return json.Marshal(moveOutput{Reports: []string{rep.Text}})
}

// operationFrom validates a wire spec and fills in the declaring type when
// the caller left it out.
func operationFrom(h Host, file string, spec moveSpec) (move.Operation, error) {
	if strings.TrimSpace(spec.Method) == "" || strings.TrimSpace(spec.TargetType) == "" {
		return move.Operation{}, fmt.Errorf("ops: method and target_type are required")
	}
	op := move.Operation{
		SourceType:   spec.SourceType,
		Method:       spec.Method,
		TargetType:   spec.TargetType,
		AccessMember: spec.AccessMember,
		AccessType:   spec.AccessType,
		Static:       spec.Static,
		TargetPath:   spec.TargetFile,
		Namespace:    spec.Namespace,
	}
	switch spec.AccessKind {
	case "", "auto":
		op.AccessKind = move.AccessAuto
	case "field":
		op.AccessKind = move.AccessField
	case "property":
		op.AccessKind = move.AccessProperty
	default:
		return move.Operation{}, fmt.Errorf("ops: unknown access_kind %q", spec.AccessKind)
	}
	if op.SourceType == "" {
		declaring, err := declaringType(h, file, op.Method)
		if err != nil {
			return move.Operation{}, err
		}
		op.SourceType = declaring
	}
	return op, nil
}

// declaringType scans a module for the type that declares the named method.
func declaringType(h Host, file, method string) (string, error) {
	text, _, err := h.Store.ReadText(file)
	if err != nil {
		return "", fmt.Errorf("ops: read %s: %w", file, err)
	}
	mod, err := syntax.Parse(text)
	if err != nil {
		return "", fmt.Errorf("ops: parse %s: %w", file, err)
	}
	var found []string
	for _, td := range mod.Types {
		if mem, idx := td.FindMember(method); idx >= 0 && mem.Kind == syntax.MethodMember {
			found = append(found, td.Name)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("ops: no type in %s declares method %s", file, method)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("ops: method %s is declared by %s; pass source_type", method, strings.Join(found, ", "))
	}
}
