package ops

import (
	"restruct/internal/batch"
	"restruct/internal/index"
	"restruct/internal/move"
	"restruct/internal/storage"
)

// Host wires the collaborators tools need: the file store, the project
// index cache and the engine options. It is built once by the composition
// root.
type Host struct {
	Store *storage.FS
	Cache *index.Cache
	Opts  move.Options
	// Stream receives per-operation report lines for subscribed clients.
	Stream *Hub
}

// RegisterDefaultTools installs the default tool set into a registry.
func RegisterDefaultTools(r *Registry, h Host) {
	if r == nil {
		return
	}
	r.Register(newMoveMethodTool(h))
	r.Register(newMoveMethodsTool(h))
	r.Register(newTypeListTool(h))
	r.Register(newRefsFindTool(h))
	r.Register(newFSReadTool(h))
}

// orchestrator builds a batch runner bound to the host, streaming reports
// to subscribers of the given batch id.
func (h Host) orchestrator(batchID string) *batch.Orchestrator {
	o := &batch.Orchestrator{
		Store: h.Store,
		Cache: h.Cache,
		Opts:  h.Opts,
		// Index-aware call paths commit per operation; the batch-end path
		// in the CLI produces the same files.
		CommitEach: h.Cache != nil,
	}
	if h.Stream != nil && batchID != "" {
		o.Notify = func(rep batch.Report) { h.Stream.Publish(batchID, rep.Text) }
	}
	return o
}
