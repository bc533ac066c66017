package tasks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

// IsPrime reports whether n is prime, by trial division up to its square
// root.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Prime counts the prime numbers in a random dataset.
type Prime struct {
	*executor.Executor[int]
	numbers
}

// NewPrime returns a prime counting task over random values in [2,
// opts.MaxValue), with an upper bound of 10,000,000 if unset.
func NewPrime(opts parpat.Options) *Prime {
	return &Prime{
		Executor: executor.New(IsPrime, executorOptions(opts)...),
		numbers:  newNumbers(opts, 2, 10_000_000),
	}
}

func (t *Prime) Name() string {
	return fmt.Sprintf("primes among %v random values below %v", humanize.Comma(int64(t.size)), humanize.Comma(int64(t.max)))
}

func (t *Prime) Setup() error {
	data, err := t.generate()
	if err != nil {
		return err
	}
	t.Load(data)
	return nil
}

func newPrimeTask(_ context.Context, opts parpat.Options) (parpat.Task, error) {
	return NewPrime(opts), nil
}
