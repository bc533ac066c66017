package tasks

import (
	"fmt"
	"math/rand"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

// Seed is the seed of every generated dataset, so that all strategies
// and all rounds see identical input.
const Seed = 12345

// RandomInts returns n pseudo-random integers in [min, max) generated
// from Seed. All values are min if max <= min. It returns nil if n <= 0.
func RandomInts(n, min, max int) []int {
	if n <= 0 {
		return nil
	}
	data := make([]int, n)
	if max <= min {
		for i := range data {
			data[i] = min
		}
		return data
	}
	rnd := rand.New(rand.NewSource(Seed))
	for i := range data {
		data[i] = min + rnd.Intn(max-min)
	}
	return data
}

// numbers is the dataset of the numeric tasks.
type numbers struct {
	size, min, max int
}

func newNumbers(opts parpat.Options, min, defaultMax int) numbers {
	max := opts.MaxValue
	if max == 0 {
		max = defaultMax
	}
	return numbers{size: opts.Size, min: min, max: max}
}

func executorOptions(opts parpat.Options) []executor.Option {
	return []executor.Option{executor.WithWorkers(opts.Workers)}
}

func (n numbers) generate() ([]int, error) {
	if n.size <= 0 {
		return nil, fmt.Errorf("dataset size %v: %w", n.size, parpat.ErrInvalidParameter)
	}
	if n.max < 2 {
		return nil, fmt.Errorf("upper bound %v: %w", n.max, parpat.ErrInvalidParameter)
	}
	return RandomInts(n.size, n.min, n.max), nil
}
