// Package batch sequences planned move operations across destination files
// and commits the results. One in-memory working tree exists per destination
// path, so several operations landing in the same file merge incrementally;
// each distinct path is written exactly once per commit. The first failing
// operation aborts the remainder of the batch; whatever was already
// committed stays on disk.
package batch

import (
	"context"
	"fmt"
	"path"

	"restruct/internal/index"
	"restruct/internal/merge"
	"restruct/internal/move"
	"restruct/internal/plan"
	"restruct/internal/storage"
	"restruct/internal/syntax"
)

// Report is the plain-text outcome of one operation.
type Report struct {
	Op   move.Operation
	OK   bool
	Text string
}

// Orchestrator runs batches against one file store. It owns no global
// state; the index cache, when present, is invalidated after commits.
type Orchestrator struct {
	Store *storage.FS
	Cache *index.Cache
	Opts  move.Options
	// CommitEach writes after every operation instead of once at batch
	// end. Both modes yield the same on-disk result.
	CommitEach bool
	// Notify, when set, receives each report as it is produced.
	Notify func(Report)
}

type workingFile struct {
	mod   *syntax.Module
	enc   storage.Encoding
	dirty bool
}

// MoveMethod runs a single-operation batch.
func (o *Orchestrator) MoveMethod(ctx context.Context, sourcePath string, op move.Operation) (Report, error) {
	reports, err := o.MoveMethods(ctx, sourcePath, []move.Operation{op})
	if len(reports) == 0 {
		return Report{Op: op, OK: false, Text: errText(err)}, err
	}
	return reports[0], err
}

// MoveMethods plans and executes a batch. Operations run strictly in
// planned order against the successively rewritten source tree; two
// operations never run concurrently against the same module.
func (o *Orchestrator) MoveMethods(ctx context.Context, sourcePath string, ops []move.Operation) ([]Report, error) {
	sourcePath = path.Clean(sourcePath)

	text, enc, err := o.Store.ReadText(sourcePath)
	if err != nil {
		return nil, move.Errf(move.NotFound, "read %s: %v", sourcePath, err)
	}
	mod, err := syntax.Parse(text)
	if err != nil {
		return nil, move.Errf(move.InvalidRange, "parse %s: %v", sourcePath, err)
	}

	planned, _ := plan.Order(mod, ops)
	working := map[string]*workingFile{
		sourcePath: {mod: mod, enc: enc},
	}

	var reports []Report
	var firstErr error
	for _, op := range planned {
		if err := ctx.Err(); err != nil {
			firstErr = err
			break
		}
		rep, err := o.applyOne(working, sourcePath, op)
		reports = append(reports, rep)
		if o.Notify != nil {
			o.Notify(rep)
		}
		if err != nil {
			firstErr = err
			break
		}
		if o.CommitEach {
			if err := o.flush(working); err != nil {
				firstErr = err
				break
			}
		}
	}

	// The successful prefix stays durable even when a later operation
	// failed; only the remainder of the batch is abandoned.
	if err := o.flush(working); err != nil && firstErr == nil {
		firstErr = err
	}
	o.invalidate()
	return reports, firstErr
}

func (o *Orchestrator) applyOne(working map[string]*workingFile, sourcePath string, op move.Operation) (Report, error) {
	src := working[sourcePath]
	res, err := move.Run(src.mod, op, o.Opts)
	if err != nil {
		return failure(op, err), err
	}

	destPath := sourcePath
	if op.TargetPath != "" {
		destPath = path.Clean(op.TargetPath)
	}

	// Working trees are only updated once the whole Located-through-Merged
	// pipeline has succeeded, so a failed operation changes nothing.
	if destPath == sourcePath {
		merged, err := merge.Apply(res.Source, res.Source, op, res.Moved)
		if err != nil {
			return failure(op, err), err
		}
		src.mod = merged
		src.dirty = true
		return success(op, destPath), nil
	}

	dst, ok := working[destPath]
	if !ok {
		dst = &workingFile{enc: src.enc}
		if o.Store.Exists(destPath) {
			text, denc, err := o.Store.ReadText(destPath)
			if err != nil {
				ferr := move.Errf(move.NotFound, "read %s: %v", destPath, err)
				return failure(op, ferr), ferr
			}
			dmod, err := syntax.Parse(text)
			if err != nil {
				ferr := move.Errf(move.InvalidRange, "parse %s: %v", destPath, err)
				return failure(op, ferr), ferr
			}
			dst.mod = dmod
			dst.enc = denc
		}
		working[destPath] = dst
	}
	merged, err := merge.Apply(dst.mod, res.Source, op, res.Moved)
	if err != nil {
		return failure(op, err), err
	}
	src.mod = res.Source
	src.dirty = true
	dst.mod = merged
	dst.dirty = true
	return success(op, destPath), nil
}

// flush writes every dirty working tree once and marks it clean.
func (o *Orchestrator) flush(working map[string]*workingFile) error {
	for p, wf := range working {
		if !wf.dirty || wf.mod == nil {
			continue
		}
		text := syntax.Render(syntax.Format(wf.mod))
		if err := o.Store.WriteText(p, text, wf.enc); err != nil {
			return fmt.Errorf("batch: write %s: %w", p, err)
		}
		wf.dirty = false
	}
	return nil
}

func (o *Orchestrator) invalidate() {
	if o.Cache != nil {
		o.Cache.Invalidate(o.Store.Root())
	}
}

func success(op move.Operation, destPath string) Report {
	return Report{
		Op: op,
		OK: true,
		Text: fmt.Sprintf("moved %s.%s to %s (%s)",
			op.SourceType, op.Method, op.TargetType, destPath),
	}
}

func failure(op move.Operation, err error) Report {
	return Report{Op: op, OK: false, Text: fmt.Sprintf("move %s.%s failed: %s", op.SourceType, op.Method, errText(err))}
}

func errText(err error) string {
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}
