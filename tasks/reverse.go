package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/parallel"
	"github.com/exascience/parpat/partition"
	"github.com/exascience/parpat/pipeline"
)

/*
Reverse reverses a random dataset. Its strategies return the length of
the dataset.

Sequential, ParallelFor, ForkJoin, and ParallelQuery reverse the whole
dataset; ParallelQuery replaces it with a reversed copy. FixedWorkers
reverses each of its parts independently, so that the dataset is only
reversed as a whole if there is a single worker. The remaining
strategies only traverse the dataset.
*/
type Reverse struct {
	*executor.Executor[int]
	numbers
}

// NewReverse returns a reversal task over random values in [1,
// opts.MaxValue), with an upper bound of 1,000,000 if unset.
func NewReverse(opts parpat.Options) *Reverse {
	return &Reverse{
		Executor: executor.New(always, executorOptions(opts)...),
		numbers:  newNumbers(opts, 1, 1_000_000),
	}
}

func (t *Reverse) Name() string {
	return fmt.Sprintf("reversal of %v random values", humanize.Comma(int64(t.size)))
}

func (t *Reverse) Setup() error {
	data, err := t.generate()
	if err != nil {
		return err
	}
	t.Load(data)
	return nil
}

// length runs f and returns the length of the dataset afterwards.
func length(data func() int, f func() error) (int, error) {
	if err := internal.Catch(f); err != nil {
		return 0, err
	}
	return data(), nil
}

func (t *Reverse) swap(low, high int) {
	data := t.Data()
	n := len(data)
	for i := low; i < high; i++ {
		data[i], data[n-1-i] = data[n-1-i], data[i]
	}
}

// Sequential reverses the dataset in place.
func (t *Reverse) Sequential() (int, error) {
	return length(t.Len, func() error {
		slices.Reverse(t.Data())
		return nil
	})
}

// ParallelFor swaps the pairs (i, n-1-i) for i in [0, n/2) in parallel
// batches.
func (t *Reverse) ParallelFor() (int, error) {
	return length(t.Len, func() error {
		return parallel.Range(0, t.Len()/2, 0, func(low, high int) error {
			t.swap(low, high)
			return nil
		})
	})
}

// ForkJoin swaps the pairs (i, n-1-i) for i in [0, n/2), with one forked
// action per part of [0, n/2).
func (t *Reverse) ForkJoin() (int, error) {
	return length(t.Len, func() error {
		ranges := partition.Plan(t.Len()/2, t.Workers())
		actions := make([]func() error, len(ranges))
		for i, r := range ranges {
			actions[i] = func() error {
				t.swap(r.Low, r.High)
				return nil
			}
		}
		return parallel.Do(actions...)
	})
}

// ParallelQuery reverses each batch in parallel, gathers the batches in
// encounter order, and replaces the dataset with their concatenation in
// reverse order.
func (t *Reverse) ParallelQuery() (int, error) {
	return length(t.Len, func() error {
		data := t.Data()
		var parts [][]int
		var p pipeline.Pipeline[int]
		p.Source(pipeline.SliceSource(data))
		p.Add(
			pipeline.Par(pipeline.Receive(func(_ int, batch []int) []int {
				reversed := slices.Clone(batch)
				slices.Reverse(reversed)
				return reversed
			})),
			pipeline.Ord(pipeline.ReceiveAndFinalize(
				func(_ int, batch []int) []int {
					parts = append(parts, batch)
					return batch
				},
				func() {
					reversed := make([]int, 0, len(data))
					for i := len(parts) - 1; i >= 0; i-- {
						reversed = append(reversed, parts[i]...)
					}
					t.Load(reversed)
				},
			)),
		)
		return p.Run()
	})
}

// FixedWorkers reverses each part of the plan on its own dedicated
// thread. Parts are not exchanged with each other.
func (t *Reverse) FixedWorkers() (int, error) {
	return length(t.Len, func() error {
		data := t.Data()
		_, err := parallel.Dedicated(partition.Plan(len(data), t.Workers()), func(low, high int) (struct{}, error) {
			slices.Reverse(data[low:high])
			return struct{}{}, nil
		})
		return err
	})
}

func newReverseTask(_ context.Context, opts parpat.Options) (parpat.Task, error) {
	return NewReverse(opts), nil
}
