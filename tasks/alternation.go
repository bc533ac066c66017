package tasks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

func always(int) bool { return true }

// Alternation counts the positions of a random dataset whose element
// differs in parity from its predecessor.
type Alternation struct {
	*executor.Executor[int]
	numbers
}

// NewAlternation returns a parity alternation task over random values in
// [1, opts.MaxValue), with an upper bound of 1,000,000 if unset.
func NewAlternation(opts parpat.Options) *Alternation {
	return &Alternation{
		Executor: executor.New(always, executorOptions(opts)...),
		numbers:  newNumbers(opts, 1, 1_000_000),
	}
}

func (t *Alternation) Name() string {
	return fmt.Sprintf("parity alternations in %v random values", humanize.Comma(int64(t.size)))
}

func (t *Alternation) Setup() error {
	data, err := t.generate()
	if err != nil {
		return err
	}
	t.Load(data)
	return nil
}

// Load replaces the dataset. Datasets with fewer than two elements have
// no alternations.
func (t *Alternation) Load(data []int) {
	t.LoadIndexed(data, 1, len(data), func(i int) bool {
		return data[i]%2 != data[i-1]%2
	})
}

func newAlternationTask(_ context.Context, opts parpat.Options) (parpat.Task, error) {
	return NewAlternation(opts), nil
}
