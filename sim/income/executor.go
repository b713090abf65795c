// Package income runs data-parallel per-agent updates, the income drift being
// the standard one.
package income

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task is one independent unit of work. A task may read shared read-only
// tables but must write only state no other task touches.
type Task func() error

// Executor dispatches tasks to a bounded pool of goroutines. Tasks run in no
// particular order.
type Executor struct {
	workers int
}

// NewExecutor creates an Executor running at most workers tasks at once.
// workers <= 0 selects GOMAXPROCS.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{workers: workers}
}

// Workers returns the pool size.
func (e *Executor) Workers() int { return e.workers }

// Execute runs every task and waits for all of them. It returns the first
// error any task returned; the remaining tasks still run.
func (e *Executor) Execute(tasks []Task) error {
	var g errgroup.Group
	g.SetLimit(e.workers)
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

// ForEach runs fn once per item on e. Each task captures exactly one item.
func ForEach[T any](e *Executor, items []T, fn func(T) error) error {
	tasks := make([]Task, len(items))
	for i, item := range items {
		item := item
		tasks[i] = func() error { return fn(item) }
	}
	return e.Execute(tasks)
}
