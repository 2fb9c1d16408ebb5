package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"restruct/internal/move"
)

// --------------------- method.move-batch ---------------------

type moveMethodsTool struct{ host Host }

func newMoveMethodsTool(h Host) *moveMethodsTool { return &moveMethodsTool{host: h} }

func (t *moveMethodsTool) Spec() Spec {
	return Spec{
		Name:        "method.move-batch",
		Description: "Relocate several methods from one module in dependency order.",
	}
}

type moveMethodsInput struct {
	File    string     `json:"file"`
	BatchID string     `json:"batch_id,omitempty"`
	Moves   []moveSpec `json:"moves"`
}

func (t *moveMethodsTool) Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in moveMethodsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.File) == "" {
		return nil, fmt.Errorf("method.move-batch: file is required")
	}
	if len(in.Moves) == 0 {
		return nil, fmt.Errorf("method.move-batch: moves is empty")
	}
	ops := make([]move.Operation, 0, len(in.Moves))
	for i, spec := range in.Moves {
		op, err := operationFrom(t.host, in.File, spec)
		if err != nil {
			return nil, fmt.Errorf("method.move-batch: move %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	reports, err := t.host.orchestrator(in.BatchID).MoveMethods(ctx, in.File, ops)
	if len(reports) == 0 && err != nil {
		// Nothing ran at all; per-operation failures travel as report lines.
		return nil, err
	}
	out := moveOutput{Reports: make([]string, 0, len(reports))}
	for _, rep := range reports {
		out.Reports = append(out.Reports, rep.Text)
	}
	return json.Marshal(out)
}
