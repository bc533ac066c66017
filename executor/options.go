package executor

import (
	"github.com/exascience/parpat/internal"
)

// InitialBufferSize is the capacity of the first buffer a PooledBuffers
// worker rents.
const InitialBufferSize = 1024

type config struct {
	workers int
	degree  int
	buffer  int
}

func defaultConfig() config {
	cores := internal.LogicalCores()
	return config{
		workers: cores,
		degree:  max(2, cores-1),
		buffer:  InitialBufferSize,
	}
}

// An Option configures an Executor or a Tally.
type Option func(*config)

// WithWorkers sets the number of parts and workers of the fixed-partition
// strategies. The default is the number of logical CPUs. Values < 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithDegree sets the maximum number of goroutines of LimitedQuery. The
// default is one less than the number of logical CPUs, but at least 2.
// Values < 1 are ignored.
func WithDegree(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.degree = n
		}
	}
}

// WithInitialBuffer sets the capacity of the first buffer rented by each
// PooledBuffers worker. Values < 1 are ignored.
func WithInitialBuffer(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.buffer = n
		}
	}
}

func newConfig(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
