package tasks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

// Extremum counts the strict local minima and maxima of a random
// dataset. The first and last elements are never extrema.
type Extremum struct {
	*executor.Executor[int]
	numbers
}

// NewExtremum returns a local extremum task over random values in [1,
// opts.MaxValue), with an upper bound of 1,000,000 if unset.
func NewExtremum(opts parpat.Options) *Extremum {
	return &Extremum{
		Executor: executor.New(always, executorOptions(opts)...),
		numbers:  newNumbers(opts, 1, 1_000_000),
	}
}

func (t *Extremum) Name() string {
	return fmt.Sprintf("local extrema in %v random values", humanize.Comma(int64(t.size)))
}

func (t *Extremum) Setup() error {
	data, err := t.generate()
	if err != nil {
		return err
	}
	t.Load(data)
	return nil
}

// Load replaces the dataset. Datasets with fewer than three elements
// have no extrema.
func (t *Extremum) Load(data []int) {
	t.LoadIndexed(data, 1, len(data)-1, func(i int) bool {
		prev, x, next := data[i-1], data[i], data[i+1]
		return (x > prev && x > next) || (x < prev && x < next)
	})
}

func newExtremumTask(_ context.Context, opts parpat.Options) (parpat.Task, error) {
	return NewExtremum(opts), nil
}
