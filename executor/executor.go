/*
Package executor implements the thirteen strategies of a parpat.Task
once, generically.

An Executor counts the elements of a dataset that satisfy a predicate.
A Tally reduces a dataset of keys to either its number of distinct keys
or the highest number of occurrences of any key. Task variants embed an
Executor or a Tally and override the strategies whose work differs from
counting.

All strategies block until every worker has terminated. Panics and
errors of workers are collected, and a failing strategy returns 0
together with all collected errors.
*/
package executor

import (
	"cmp"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/parallel"
	"github.com/exascience/parpat/partition"
	"github.com/exascience/parpat/pipeline"
	"github.com/exascience/parpat/sort"
	psync "github.com/exascience/parpat/sync"
)

/*
An Executor counts matches in a dataset under thirteen strategies.

By default an element matches if the check function returns true for
it, and the index domain is [0, len(data)). LoadIndexed instead sets an
index domain and an index predicate, for metrics that compare an element
with its neighbours. Strategies that collect matches collect the
elements at the matching indices.

Only one strategy may run at a time.
*/
type Executor[T comparable] struct {
	data      []T
	check     func(T) bool
	match     func(i int) bool
	low, high int
	compare   func(a, b T) int
	missing   func(T) bool
	pool      *psync.Pool[T]
	config    config
}

// New returns an executor for ordered element types that counts the
// elements for which check returns true.
func New[T cmp.Ordered](check func(T) bool, opts ...Option) *Executor[T] {
	return NewFunc(check, cmp.Compare[T], opts...)
}

// NewFunc returns an executor that counts the elements for which check
// returns true, and that orders elements with compare where a strategy
// needs sorting.
func NewFunc[T comparable](check func(T) bool, compare func(a, b T) int, opts ...Option) *Executor[T] {
	return &Executor[T]{
		check:   check,
		compare: compare,
		pool:    psync.NewPool[T](),
		config:  newConfig(opts),
	}
}

// Load replaces the dataset. The index domain becomes [0, len(data)) and
// elements are matched with the check function.
func (e *Executor[T]) Load(data []T) {
	e.data = data
	e.match = nil
	e.low, e.high = 0, len(data)
}

// LoadIndexed replaces the dataset, and matches the indices in [low,
// high) for which match returns true. An empty domain is used if high <
// low.
func (e *Executor[T]) LoadIndexed(data []T, low, high int, match func(i int) bool) {
	e.data = data
	e.match = match
	e.low, e.high = low, max(low, high)
}

// DropMissing sets the predicate for elements that ListProcessing drops
// after filtering. By default no element is missing.
func (e *Executor[T]) DropMissing(missing func(T) bool) *Executor[T] {
	e.missing = missing
	return e
}

// Data returns the current dataset.
func (e *Executor[T]) Data() []T {
	return e.data
}

// Len returns the number of elements in the dataset.
func (e *Executor[T]) Len() int {
	return len(e.data)
}

// Check applies the check function to item.
func (e *Executor[T]) Check(item T) bool {
	return e.check(item)
}

// Workers returns the number of parts of the fixed-partition strategies.
func (e *Executor[T]) Workers() int {
	return e.config.workers
}

// BuffersOutstanding returns the number of pooled buffers that are
// currently rented by PooledBuffers workers.
func (e *Executor[T]) BuffersOutstanding() int64 {
	return e.pool.Outstanding()
}

func (e *Executor[T]) matches(i int) bool {
	if e.match != nil {
		return e.match(i)
	}
	return e.check(e.data[i])
}

func (e *Executor[T]) count(low, high int) (n int) {
	for i := low; i < high; i++ {
		if e.matches(i) {
			n++
		}
	}
	return
}

func (e *Executor[T]) collect(low, high int) (list []T) {
	for i := low; i < high; i++ {
		if e.matches(i) {
			list = append(list, e.data[i])
		}
	}
	return
}

func (e *Executor[T]) plan() []partition.Range {
	return partition.PlanRange(e.low, e.high, e.config.workers)
}

func result(n int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Sequential scans the domain on the calling goroutine.
func (e *Executor[T]) Sequential() (n int, err error) {
	err = internal.Catch(func() error {
		n = e.count(e.low, e.high)
		return nil
	})
	return result(n, err)
}

// FixedWorkers counts each part of the plan on its own dedicated thread
// and sums the local counts.
func (e *Executor[T]) FixedWorkers() (int, error) {
	counts, err := parallel.Dedicated(e.plan(), func(low, high int) (int, error) {
		return e.count(low, high), nil
	})
	if err != nil {
		return 0, err
	}
	var n int
	for _, c := range counts {
		n += c
	}
	return n, nil
}

// ParallelFor counts batches chosen by the runtime and adds each local
// count atomically.
func (e *Executor[T]) ParallelFor() (int, error) {
	var n atomic.Int64
	err := parallel.Range(e.low, e.high, 0, func(low, high int) error {
		n.Add(int64(e.count(low, high)))
		return nil
	})
	return result(int(n.Load()), err)
}

func countQuery[E any](src pipeline.Source[E], match func(E) bool, node func(...pipeline.Filter[E]) pipeline.Node[E]) (int, error) {
	var p pipeline.Pipeline[E]
	p.Source(src)
	var n int
	p.Add(node(pipeline.Where(match), pipeline.Count[E](&n)))
	return result(n, p.Run())
}

func (e *Executor[T]) query(nodeT func(...pipeline.Filter[T]) pipeline.Node[T], nodeIndex func(...pipeline.Filter[int]) pipeline.Node[int]) (int, error) {
	if e.match != nil {
		return countQuery(pipeline.RangeSource(e.low, e.high), e.match, nodeIndex)
	}
	return countQuery(pipeline.SliceSource(e.data), e.check, nodeT)
}

// ParallelQuery counts matches with a parallel pipeline.
func (e *Executor[T]) ParallelQuery() (int, error) {
	return e.query(pipeline.Par[T], pipeline.Par[int])
}

// LockedCounter increments one mutex-guarded counter per match.
func (e *Executor[T]) LockedCounter() (int, error) {
	var m sync.Mutex
	var n int
	err := parallel.Range(e.low, e.high, 0, func(low, high int) error {
		for i := low; i < high; i++ {
			if e.matches(i) {
				m.Lock()
				n++
				m.Unlock()
			}
		}
		return nil
	})
	return result(n, err)
}

// ForkJoin forks one action per part of the plan, each adding its local
// count atomically, and joins them.
func (e *Executor[T]) ForkJoin() (int, error) {
	var n atomic.Int64
	ranges := e.plan()
	actions := make([]func() error, len(ranges))
	for i, r := range ranges {
		actions[i] = func() error {
			n.Add(int64(e.count(r.Low, r.High)))
			return nil
		}
	}
	err := parallel.Do(actions...)
	return result(int(n.Load()), err)
}

// ConcurrentSet adds every match to a concurrent bag and returns the
// number of occurrences in the bag.
func (e *Executor[T]) ConcurrentSet() (int, error) {
	bag := psync.NewBag[T](0, nil)
	err := parallel.Range(e.low, e.high, 0, func(low, high int) error {
		for i := low; i < high; i++ {
			if e.matches(i) {
				bag.Add(e.data[i])
			}
		}
		return nil
	})
	return result(bag.Len(), err)
}

// LocalLists collects matches in per-batch lists, which are appended to
// a shared list under a lock.
func (e *Executor[T]) LocalLists() (int, error) {
	var m sync.Mutex
	var shared []T
	err := parallel.Range(e.low, e.high, 0, func(low, high int) error {
		local := e.collect(low, high)
		m.Lock()
		shared = append(shared, local...)
		m.Unlock()
		return nil
	})
	return result(len(shared), err)
}

// ListProcessing filters the domain into a list in encounter order,
// drops missing elements, and sorts the remainder in parallel.
func (e *Executor[T]) ListProcessing() (int, error) {
	list, err := parallel.RangeReduce(e.low, e.high, 0,
		func(low, high int) ([]T, error) {
			return e.collect(low, high), nil
		},
		func(x, y []T) []T {
			return append(x, y...)
		},
	)
	if err != nil {
		return 0, err
	}
	err = internal.Catch(func() error {
		if e.missing != nil {
			kept := list[:0]
			for _, x := range list {
				if !e.missing(x) {
					kept = append(kept, x)
				}
			}
			list = kept
		}
		sort.SortFunc(list, e.compare)
		return nil
	})
	return result(len(list), err)
}

// TaskLists runs one pooled task per part of the plan, each returning a
// local list, and sums the lengths of the lists.
func (e *Executor[T]) TaskLists() (int, error) {
	p := pool.NewWithResults[[]T]().WithErrors().WithMaxGoroutines(e.config.workers)
	for _, r := range e.plan() {
		p.Go(func() (list []T, err error) {
			err = internal.Catch(func() error {
				list = e.collect(r.Low, r.High)
				return nil
			})
			return
		})
	}
	lists, err := p.Wait()
	if err != nil {
		return 0, err
	}
	var n int
	for _, list := range lists {
		n += len(list)
	}
	return n, nil
}

// PooledBuffers collects the matches of each batch in a buffer rented
// from the executor's pool, adds the buffer length atomically, and
// returns the buffer on every exit path.
func (e *Executor[T]) PooledBuffers() (int, error) {
	var n atomic.Int64
	err := parallel.Range(e.low, e.high, 0, func(low, high int) error {
		return e.pool.With(e.config.buffer, func(b *psync.Buffer[T]) error {
			for i := low; i < high; i++ {
				if e.matches(i) {
					b.Append(e.data[i])
				}
			}
			n.Add(int64(b.Len()))
			return nil
		})
	})
	return result(int(n.Load()), err)
}

// LimitedQuery is ParallelQuery with at most the configured degree of
// goroutines.
func (e *Executor[T]) LimitedQuery() (int, error) {
	degree := e.config.degree
	return e.query(
		func(filters ...pipeline.Filter[T]) pipeline.Node[T] {
			return pipeline.LimitedPar(degree, filters...)
		},
		func(filters ...pipeline.Filter[int]) pipeline.Node[int] {
			return pipeline.LimitedPar(degree, filters...)
		},
	)
}

// RangePartitioner starts one worker per configured part. The workers
// pull ranges from a shared partitioner until it is exhausted and add
// their local counts atomically.
func (e *Executor[T]) RangePartitioner() (int, error) {
	var n atomic.Int64
	part := partition.NewPartitioner(e.low, e.high, 0)
	p := pool.New().WithErrors().WithMaxGoroutines(e.config.workers)
	for w := 0; w < e.config.workers; w++ {
		p.Go(func() error {
			return internal.Catch(func() error {
				var local int
				for r, ok := part.Next(); ok; r, ok = part.Next() {
					local += e.count(r.Low, r.High)
				}
				n.Add(int64(local))
				return nil
			})
		})
	}
	err := p.Wait()
	return result(int(n.Load()), err)
}
