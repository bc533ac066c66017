package parpat

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/viant/afs"

	"github.com/exascience/parpat/internal/logger"
)

// Options configure the construction of a task. Numeric tasks use Size
// and MaxValue; file-backed tasks read the *.txt files in Dir through
// FS. Workers sets the number of parts of the fixed-partition
// strategies; 0 selects the number of logical CPUs.
type Options struct {
	Size     int
	MaxValue int
	Dir      string
	Workers  int
	FS       afs.Service
	Logger   logger.Logger
}

// A Factory creates a task from options.
type Factory func(ctx context.Context, opts Options) (Task, error)

var (
	registryMutex sync.RWMutex
	registry      = make(map[string]Factory)
)

// Register makes a task factory available under name. It panics if
// factory is nil or if Register is called twice with the same name.
func Register(name string, factory Factory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if factory == nil {
		panic("parpat: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("parpat: Register called twice for task " + name)
	}
	registry[name] = factory
}

// Names returns the names of all registered tasks in sorted order.
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the task registered under name. Missing FS and Logger
// options are replaced by defaults.
func New(ctx context.Context, name string, opts Options) (Task, error) {
	registryMutex.RLock()
	factory, ok := registry[name]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, ErrNotFound)
	}
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoopLogger()
	}
	return factory(ctx, opts)
}
