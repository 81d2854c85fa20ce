// Package executor is the Scheduler/Executor: it drives the Dependency
// Graph's topological walk, decides skip vs. execute per task via the
// Dependency Tracker, bounds concurrent dispatch with a weighted semaphore,
// and terminates when the walk completes or a task fails.
package executor

import (
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/Miosp/Tessy/internal/depstracker"
	"github.com/Miosp/Tessy/internal/graph"
	"github.com/Miosp/Tessy/internal/task"
)

// defaultWorkerThreads is used when the runtime cannot determine hardware
// parallelism.
const defaultWorkerThreads = 1

// workerCount returns detected hardware parallelism, floored at 1.
func workerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return defaultWorkerThreads
	}
	return n
}

// Result is what a completed run reports back to the caller: the
// arrival-ordered list of task ids considered complete, split out by whether
// they were skipped as up to date or actually dispatched to the worker pool.
type Result struct {
	// Completed is every task id the run visited and ran to completion or
	// skipped, in arrival order.
	Completed []task.ID
	// Skipped is the subset of Completed that were up to date and never
	// reached the worker pool.
	Skipped map[task.ID]bool
}

// Executor runs one target to completion against a catalog, a precomputed
// Dependency Graph, and a Dependency Tracker.
type Executor struct {
	catalog task.Catalog
	graph   *graph.Graph
	tracker *depstracker.Tracker
	root    string
	logger  hclog.Logger
}

// New constructs an Executor. catalog, g, and tracker are shared by
// reference and treated as read-only for the run's duration.
func New(catalog task.Catalog, g *graph.Graph, tracker *depstracker.Tracker, root string, logger hclog.Logger) *Executor {
	return &Executor{
		catalog: catalog,
		graph:   g,
		tracker: tracker,
		root:    root,
		logger:  logger.Named("executor"),
	}
}

// Execute drives the Dependency Graph's walk to completion: every task id
// in the target's closure is visited once the walk has completed its
// dependencies, gated to workerCount() concurrent in-flight executions by a
// weighted semaphore the same way the graph's own teacher gates its walk
// with a semaphore in its task-execution engine. A task failing stops new
// dispatches from starting; tasks already running are left to finish rather
// than actively canceled.
func (e *Executor) Execute(target task.ID) (*Result, error) {
	sema := semaphore.NewWeighted(int64(workerCount()))
	ctx, abort := context.WithCancel(context.Background())
	defer abort()

	var mu sync.Mutex
	var completed []task.ID
	skipped := make(map[task.ID]bool)
	var fatal error

	fail := func(err error) error {
		mu.Lock()
		if fatal == nil {
			fatal = err
		}
		mu.Unlock()
		abort()
		return err
	}

	e.graph.Walk(func(id task.ID) error {
		if ctx.Err() != nil {
			return nil
		}

		t, ok := e.catalog.Get(id)
		if !ok {
			e.logger.Debug("walk visited unknown task id", "id", id)
			return nil
		}

		if e.tracker.IsUpToDate(t, e.root) {
			e.logger.Info("task is up to date, skipping", "task", id)
			mu.Lock()
			skipped[id] = true
			completed = append(completed, id)
			mu.Unlock()
			return nil
		}

		if err := sema.Acquire(ctx, 1); err != nil {
			return fail(&DispatchError{TaskID: id, Cause: err})
		}
		defer sema.Release(1)

		e.logger.Debug("task is not up to date, executing", "task", id)
		if _, err := t.Run(); err != nil {
			return fail(&TaskExecutionError{TaskID: id, Cause: err})
		}

		mu.Lock()
		completed = append(completed, id)
		mu.Unlock()
		e.logger.Debug("task completed", "task", id)
		return nil
	})

	if fatal != nil {
		return nil, fatal
	}

	e.logger.Info("reached target, execution complete", "target", target)
	return &Result{Completed: completed, Skipped: skipped}, nil
}
