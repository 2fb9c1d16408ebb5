// Package ops is the remote operation surface: an in-process registry of
// JSON tools served over HTTP. Reports leave the surface as plain text,
// successes and classified failures alike.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Spec documents one tool's contract.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tool is a registered operation.
type Tool interface {
	Spec() Spec
	Run(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Registry holds tool registrations and dispatches calls by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool by its spec name.
func (r *Registry) Register(t Tool) {
	if r == nil || t == nil {
		return
	}
	name := t.Spec().Name
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tools == nil {
		r.tools = map[string]Tool{}
	}
	r.tools[name] = t
}

// Dispatch invokes a registered tool.
func (r *Registry) Dispatch(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	if r == nil {
		return nil, fmt.Errorf("ops: registry is nil")
	}
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ops: unknown tool %q", name)
	}
	return t.Run(ctx, input)
}

// Specs lists the registered tool specs.
func (r *Registry) Specs() []Spec {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Spec())
	}
	return out
}
