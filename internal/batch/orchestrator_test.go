package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"restruct/internal/index"
	"restruct/internal/move"
	"restruct/internal/resolve"
	"restruct/internal/storage"
	"restruct/internal/syntax"
)

const orderSrc = `namespace Shop;

public class Order
{
    public int Tax(int amount)
    {
        return amount / 10;
    }

    public int Total(int amount)
    {
        return amount + Tax(amount);
    }
}
`

func newStore(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
	store, err := storage.New(dir)
	require.NoError(t, err)
	return store
}

func newOrchestrator(store *storage.FS) *Orchestrator {
	return &Orchestrator{
		Store: store,
		Opts:  move.Options{InjectFields: true, Resolver: resolve.Heuristic{}},
	}
}

func readModule(t *testing.T, store *storage.FS, path string) *syntax.Module {
	t.Helper()
	text, _, err := store.ReadText(path)
	require.NoError(t, err)
	mod, err := syntax.Parse(text)
	require.NoError(t, err, "reparse %s", path)
	return mod
}

func TestMoveMethodSameFile(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)

	rep, err := o.MoveMethod(context.Background(), "Order.cs", move.Operation{
		SourceType: "Order", Method: "Tax", TargetType: "Pricing",
	})
	require.NoError(t, err)
	require.True(t, rep.OK)
	require.Equal(t, "moved Order.Tax to Pricing (Order.cs)", rep.Text)

	mod := readModule(t, store, "Order.cs")
	pricing, _ := mod.FindType("Pricing")
	require.NotNil(t, pricing, "destination type created in place")
	_, idx := pricing.FindMember("Tax")
	require.GreaterOrEqual(t, idx, 0, "method landed on Pricing")

	order, _ := mod.FindType("Order")
	stub, sidx := order.FindMember("Tax")
	require.GreaterOrEqual(t, sidx, 0, "stub left behind")
	require.True(t, stub.Method.HasBody)
}

func TestMoveMethodCrossFileCreatesDestination(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)

	rep, err := o.MoveMethod(context.Background(), "Order.cs", move.Operation{
		SourceType: "Order", Method: "Tax", TargetType: "Pricing", TargetPath: "billing/Pricing.cs",
	})
	require.NoError(t, err)
	require.Equal(t, "moved Order.Tax to Pricing (billing/Pricing.cs)", rep.Text)

	dst := readModule(t, store, "billing/Pricing.cs")
	require.Equal(t, "Shop", dst.Namespace, "destination inherits source namespace")
	pricing, _ := dst.FindType("Pricing")
	require.NotNil(t, pricing)

	src := readModule(t, store, "Order.cs")
	leak, _ := src.FindType("Pricing")
	require.Nil(t, leak, "source file must not grow the destination type")
}

func TestMoveMethodsDependencyOrder(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)

	// Total calls Tax, so Tax must move first regardless of submission order.
	reports, err := o.MoveMethods(context.Background(), "Order.cs", []move.Operation{
		{SourceType: "Order", Method: "Total", TargetType: "Pricing"},
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, "Order.Tax", reports[0].Op.Key())
	require.Equal(t, "Order.Total", reports[1].Op.Key())
	for _, rep := range reports {
		require.True(t, rep.OK, rep.Text)
	}
}

func TestMoveMethodsFailureKeepsPrefixDurable(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)

	reports, err := o.MoveMethods(context.Background(), "Order.cs", []move.Operation{
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
		{SourceType: "Order", Method: "Missing", TargetType: "Pricing"},
	})
	require.Error(t, err)
	require.Equal(t, move.NotFound, move.KindOf(err))
	require.Len(t, reports, 2)
	require.True(t, reports[0].OK)
	require.False(t, reports[1].OK)
	require.Contains(t, reports[1].Text, "move Order.Missing failed: NotFound")

	// The successful first move is on disk even though the batch failed.
	mod := readModule(t, store, "Order.cs")
	pricing, _ := mod.FindType("Pricing")
	require.NotNil(t, pricing)
}

func TestMoveMethodsCommitEachMatchesBatchEnd(t *testing.T) {
	ops := func() []move.Operation {
		return []move.Operation{
			{SourceType: "Order", Method: "Tax", TargetType: "Pricing", TargetPath: "Pricing.cs"},
			{SourceType: "Order", Method: "Total", TargetType: "Pricing", TargetPath: "Pricing.cs"},
		}
	}

	batchStore := newStore(t, map[string]string{"Order.cs": orderSrc})
	batchO := newOrchestrator(batchStore)
	_, err := batchO.MoveMethods(context.Background(), "Order.cs", ops())
	require.NoError(t, err)

	eachStore := newStore(t, map[string]string{"Order.cs": orderSrc})
	eachO := newOrchestrator(eachStore)
	eachO.CommitEach = true
	_, err = eachO.MoveMethods(context.Background(), "Order.cs", ops())
	require.NoError(t, err)

	for _, name := range []string{"Order.cs", "Pricing.cs"} {
		batchText, _, err := batchStore.ReadText(name)
		require.NoError(t, err)
		eachText, _, err := eachStore.ReadText(name)
		require.NoError(t, err)
		require.Equal(t, batchText, eachText, "commit modes diverged on %s", name)
	}
}

func TestMoveMethodsPreservesEncoding(t *testing.T) {
	raw, err := storage.EncodeText(orderSrc, storage.UTF8BOM)
	require.NoError(t, err)
	store := newStore(t, map[string]string{"Order.cs": string(raw)})
	o := newOrchestrator(store)

	_, err = o.MoveMethod(context.Background(), "Order.cs", move.Operation{
		SourceType: "Order", Method: "Tax", TargetType: "Pricing",
	})
	require.NoError(t, err)

	_, enc, err := store.ReadText("Order.cs")
	require.NoError(t, err)
	require.Equal(t, storage.UTF8BOM, enc)
}

func TestMoveMethodsRejectsMissingFile(t *testing.T) {
	store := newStore(t, nil)
	o := newOrchestrator(store)
	_, err := o.MoveMethods(context.Background(), "Nope.cs", []move.Operation{
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
	})
	require.Equal(t, move.NotFound, move.KindOf(err))
}

func TestMoveMethodsRejectsUnparsableFile(t *testing.T) {
	store := newStore(t, map[string]string{"Broken.cs": "public class {"})
	o := newOrchestrator(store)
	_, err := o.MoveMethods(context.Background(), "Broken.cs", []move.Operation{
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
	})
	require.Equal(t, move.InvalidRange, move.KindOf(err))
}

func TestMoveMethodsNotify(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)
	var seen []Report
	o.Notify = func(r Report) { seen = append(seen, r) }

	reports, err := o.MoveMethods(context.Background(), "Order.cs", []move.Operation{
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
	})
	require.NoError(t, err)
	require.Equal(t, reports, seen)
}

func TestMoveMethodsInvalidatesIndex(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	cache, err := index.NewCache(index.DefaultConfig())
	require.NoError(t, err)
	o := newOrchestrator(store)
	o.Cache = cache

	before, err := cache.GetOrLoad(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, before.TypesByName("Pricing"), 0)

	_, err = o.MoveMethod(context.Background(), "Order.cs", move.Operation{
		SourceType: "Order", Method: "Tax", TargetType: "Pricing",
	})
	require.NoError(t, err)

	_, ok := cache.Get(store.Root())
	require.False(t, ok, "index must be dropped after commit")

	after, err := cache.GetOrLoad(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, after.TypesByName("Pricing"), 1)
}

func TestMoveMethodsContextCancelled(t *testing.T) {
	store := newStore(t, map[string]string{"Order.cs": orderSrc})
	o := newOrchestrator(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := o.MoveMethods(ctx, "Order.cs", []move.Operation{
		{SourceType: "Order", Method: "Tax", TargetType: "Pricing"},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, reports)
}
