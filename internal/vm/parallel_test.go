package vm

import (
	"context"
	"testing"

	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/types"
)

func batchStores(n int) []*interp.Store {
	stores := make([]*interp.Store, n)
	for i := range stores {
		s := interp.NewStore()
		s.Set("n", types.Int(int64(i)))
		stores[i] = s
	}
	return stores
}

func TestBatchExecutor_Run(t *testing.T) {
	_, compiled := compileSource(t, "sq = n * n; sq + 1", true)
	stores := batchStores(50)

	be := NewBatchExecutor(compiled, ParallelConfig{NumWorkers: 4})
	results := be.Run(context.Background(), stores)

	if len(results) != len(stores) {
		t.Fatalf("got %d results, want %d", len(results), len(stores))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("store %d: %v", i, r.Err)
			continue
		}
		want := int64(i*i + 1)
		if r.Value.AsInt() != want {
			t.Errorf("store %d: value %d, want %d", i, r.Value.AsInt(), want)
		}
		if v, _ := stores[i].Get("sq"); v.AsInt() != int64(i*i) {
			t.Errorf("store %d: sq = %d, want %d", i, v.AsInt(), i*i)
		}
	}
}

func TestBatchExecutor_Errors(t *testing.T) {
	_, compiled := compileSource(t, "r = 10 / n", false)
	results := NewBatchExecutor(compiled, ParallelConfig{NumWorkers: 2}).Run(context.Background(), batchStores(3))

	if _, ok := results[0].Err.(*interp.DivisionError); !ok {
		t.Errorf("store 0: expected *DivisionError, got %v", results[0].Err)
	}
	for _, r := range results[1:] {
		if r.Err != nil {
			t.Errorf("store %d: unexpected error %v", r.Index, r.Err)
		}
	}
	if results[2].Value.AsInt() != 5 {
		t.Errorf("store 2: value %s, want 5", results[2].Value)
	}
}

func TestBatchExecutor_CancelContext(t *testing.T) {
	_, compiled := compileSource(t, "n + 1", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchExecutor(compiled, ParallelConfig{NumWorkers: 2}).Run(ctx, batchStores(20))
	if len(results) != 20 {
		t.Fatalf("got %d results, want 20", len(results))
	}
	cancelled := 0
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Err == context.Canceled {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("expected cancelled results")
	}
}

func TestBatchExecutor_Empty(t *testing.T) {
	_, compiled := compileSource(t, "1", false)
	results := NewBatchExecutor(compiled, ParallelConfig{}).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestDefaultParallelConfig(t *testing.T) {
	cfg := DefaultParallelConfig()
	if cfg.NumWorkers < 1 || cfg.MaxBufferedJobs != cfg.NumWorkers*2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func BenchmarkBatchExecutor(b *testing.B) {
	_, compiled := compileSource(b, "s = 0; s += n * 2; s += n * 3; s", true)
	be := NewBatchExecutor(compiled, DefaultParallelConfig())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		be.Run(context.Background(), batchStores(256))
	}
}
