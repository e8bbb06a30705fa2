// This file implements batch execution: one compiled program run against
// many independent stores by a pool of workers.

package vm

import (
	"context"
	"runtime"
	"sync"

	"github.com/kolkov/cexpr/internal/compiler"
	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/types"
)

// ParallelConfig holds configuration for batch execution.
type ParallelConfig struct {
	// NumWorkers is the number of worker goroutines.
	// Default: runtime.NumCPU()
	NumWorkers int

	// MaxBufferedJobs limits how many stores wait for a free worker.
	// Default: NumWorkers * 2
	MaxBufferedJobs int
}

// DefaultParallelConfig returns sensible defaults for batch execution.
func DefaultParallelConfig() ParallelConfig {
	numCPU := runtime.NumCPU()
	return ParallelConfig{
		NumWorkers:      numCPU,
		MaxBufferedJobs: numCPU * 2,
	}
}

// BatchResult is the outcome of running the program against one store.
type BatchResult struct {
	Index int         // Position of the store in the batch
	Value types.Value // Value of the last statement
	Err   error       // Runtime error, or the context's error if cancelled
}

// BatchExecutor runs one program against many stores in parallel. Each
// store is used by exactly one worker, so stores must not be shared
// between entries of a batch.
type BatchExecutor struct {
	program *compiler.Program
	config  ParallelConfig
}

// NewBatchExecutor creates a batch executor for the given program.
func NewBatchExecutor(prog *compiler.Program, config ParallelConfig) *BatchExecutor {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if config.MaxBufferedJobs <= 0 {
		config.MaxBufferedJobs = config.NumWorkers * 2
	}
	return &BatchExecutor{program: prog, config: config}
}

// job is one store waiting for a worker.
type job struct {
	index int
	store *interp.Store
}

// Run executes the program against every store and returns one result
// per store, in store order. Once ctx is done, stores not yet started
// get ctx.Err() as their error; a store already running finishes.
func (be *BatchExecutor) Run(ctx context.Context, stores []*interp.Store) []BatchResult {
	jobs := make(chan job, be.config.MaxBufferedJobs)
	results := make(chan BatchResult, be.config.MaxBufferedJobs)
	var wg sync.WaitGroup

	workers := min(be.config.NumWorkers, len(stores))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			be.worker(ctx, jobs, results)
		}()
	}

	// Feed jobs
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, store := range stores {
			select {
			case jobs <- job{index: i, store: store}:
			case <-ctx.Done():
				for j := i; j < len(stores); j++ {
					results <- BatchResult{Index: j, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	// Close results once the feeder and workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	return collectResults(results, len(stores))
}

// worker runs jobs with a fresh VM per store.
func (be *BatchExecutor) worker(ctx context.Context, jobs <-chan job, results chan<- BatchResult) {
	for j := range jobs {
		select {
		case <-ctx.Done():
			results <- BatchResult{Index: j.index, Err: ctx.Err()}
			continue
		default:
		}

		v, err := New(be.program, j.store).Run(nil)
		results <- BatchResult{Index: j.index, Value: v, Err: err}
	}
}

// collectResults gathers n results and orders them by store index.
func collectResults(results <-chan BatchResult, n int) []BatchResult {
	all := make([]BatchResult, 0, n)
	for r := range results {
		all = append(all, r)
	}
	sortByIndex(all)
	return all
}

// sortByIndex sorts results by store index using insertion sort
// (results arrive nearly in order).
func sortByIndex(results []BatchResult) {
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].Index > results[j].Index {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
}
