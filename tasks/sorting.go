package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
	"github.com/exascience/parpat/parallel"
	"github.com/exascience/parpat/partition"
	"github.com/exascience/parpat/sort"
)

/*
Sort sorts a random dataset in increasing order. Its strategies return
the length of the dataset.

Sequential, ParallelFor, FixedWorkers, ParallelQuery, and ForkJoin sort
the dataset; ParallelQuery replaces it with a sorted copy. The remaining
strategies only traverse the dataset.
*/
type Sort struct {
	*executor.Executor[int]
	numbers
}

// NewSort returns a sorting task over random values in [1,
// opts.MaxValue), with an upper bound of 1,000,000 if unset.
func NewSort(opts parpat.Options) *Sort {
	return &Sort{
		Executor: executor.New(always, executorOptions(opts)...),
		numbers:  newNumbers(opts, 1, 1_000_000),
	}
}

func (t *Sort) Name() string {
	return fmt.Sprintf("sort of %v random values", humanize.Comma(int64(t.size)))
}

func (t *Sort) Setup() error {
	data, err := t.generate()
	if err != nil {
		return err
	}
	t.Load(data)
	return nil
}

// Sequential sorts the dataset with a comparison sort.
func (t *Sort) Sequential() (int, error) {
	return length(t.Len, func() error {
		slices.Sort(t.Data())
		return nil
	})
}

// ParallelFor sorts the parts of the plan in parallel batches, and then
// sorts the concatenated parts.
func (t *Sort) ParallelFor() (int, error) {
	return length(t.Len, func() error {
		data := t.Data()
		ranges := partition.Plan(len(data), t.Workers())
		err := parallel.Range(0, len(ranges), len(ranges), func(low, high int) error {
			for _, r := range ranges[low:high] {
				slices.Sort(data[r.Low:r.High])
			}
			return nil
		})
		if err != nil {
			return err
		}
		slices.Sort(data)
		return nil
	})
}

// FixedWorkers sorts each part of the plan on its own dedicated thread,
// and then sorts the concatenated parts.
func (t *Sort) FixedWorkers() (int, error) {
	return length(t.Len, func() error {
		data := t.Data()
		_, err := parallel.Dedicated(partition.Plan(len(data), t.Workers()), func(low, high int) (struct{}, error) {
			slices.Sort(data[low:high])
			return struct{}{}, nil
		})
		if err != nil {
			return err
		}
		slices.Sort(data)
		return nil
	})
}

// ParallelQuery replaces the dataset with a copy sorted by a parallel
// quicksort.
func (t *Sort) ParallelQuery() (int, error) {
	return length(t.Len, func() error {
		sorted := slices.Clone(t.Data())
		sort.Sort(sorted)
		t.Load(sorted)
		return nil
	})
}

// ForkJoin sorts the dataset with a parallel merge sort.
func (t *Sort) ForkJoin() (int, error) {
	return length(t.Len, func() error {
		sort.StableSort(t.Data())
		return nil
	})
}

func newSortTask(_ context.Context, opts parpat.Options) (parpat.Task, error) {
	return NewSort(opts), nil
}
