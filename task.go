package parpat

import (
	"errors"
)

var (
	// ErrInvalidParameter is returned when a task is configured with a
	// dataset size or value bound it cannot work with.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound is returned when a task's input directory does not
	// exist, or when no task is registered under a name.
	ErrNotFound = errors.New("not found")
)

/*
A Task owns a dataset and computes one metric over it under thirteen
strategies. All strategies of a task return the same metric for the
same dataset, except where a task documents otherwise.

Setup regenerates or validates the dataset and must be called before
the first strategy. Only one strategy may run against a task at a time.
*/
type Task interface {
	// Name returns a human-readable description of the task and its
	// dataset.
	Name() string

	// Setup prepares the dataset.
	Setup() error

	// Sequential scans the dataset on the calling goroutine.
	Sequential() (int, error)

	// FixedWorkers splits the dataset into one part per logical CPU and
	// processes each part on a dedicated worker thread.
	FixedWorkers() (int, error)

	// ParallelFor processes the dataset with a divide-and-conquer loop
	// whose batches are scheduled by the runtime.
	ParallelFor() (int, error)

	// ParallelQuery processes the dataset as a declarative parallel
	// pipeline.
	ParallelQuery() (int, error)

	// LockedCounter processes the dataset with a parallel loop that
	// updates one mutex-guarded accumulator per match.
	LockedCounter() (int, error)

	// ForkJoin processes one part per logical CPU as forked actions and
	// joins them.
	ForkJoin() (int, error)

	// ConcurrentSet collects matches in a concurrent bag.
	ConcurrentSet() (int, error)

	// LocalLists collects matches in per-batch lists that are appended
	// to a shared list under a lock.
	LocalLists() (int, error)

	// ListProcessing filters the dataset into a list, drops missing
	// values, and sorts it.
	ListProcessing() (int, error)

	// TaskLists runs one pooled task per part, each returning a local
	// list.
	TaskLists() (int, error)

	// PooledBuffers collects matches in per-batch buffers rented from a
	// pool.
	PooledBuffers() (int, error)

	// LimitedQuery is ParallelQuery with a bounded degree of
	// parallelism.
	LimitedQuery() (int, error)

	// RangePartitioner lets one worker per logical CPU pull ranges from
	// a shared partitioner.
	RangePartitioner() (int, error)
}

// A Strategy is one named strategy method of a task.
type Strategy struct {
	Name string
	Run  func() (int, error)
}

// Strategies returns the strategies of task in their canonical order,
// with Sequential first.
func Strategies(task Task) []Strategy {
	return []Strategy{
		{"Sequential", task.Sequential},
		{"FixedWorkers", task.FixedWorkers},
		{"ParallelFor", task.ParallelFor},
		{"ParallelQuery", task.ParallelQuery},
		{"LockedCounter", task.LockedCounter},
		{"ForkJoin", task.ForkJoin},
		{"ConcurrentSet", task.ConcurrentSet},
		{"LocalLists", task.LocalLists},
		{"ListProcessing", task.ListProcessing},
		{"TaskLists", task.TaskLists},
		{"PooledBuffers", task.PooledBuffers},
		{"LimitedQuery", task.LimitedQuery},
		{"RangePartitioner", task.RangePartitioner},
	}
}
