package executor

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/maps/hashmap"
	"github.com/sourcegraph/conc/pool"

	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/parallel"
	"github.com/exascience/parpat/partition"
	"github.com/exascience/parpat/pipeline"
	"github.com/exascience/parpat/sort"
	psync "github.com/exascience/parpat/sync"
)

// A Mode selects the metric of a Tally.
type Mode int

const (
	// Distinct counts the number of distinct keys.
	Distinct Mode = iota

	// Frequency finds the highest number of occurrences of any key.
	Frequency
)

func (m Mode) String() string {
	switch m {
	case Distinct:
		return "distinct"
	case Frequency:
		return "frequency"
	default:
		return "unknown"
	}
}

type counts[K comparable] map[K]int

// merge adds the counts of other to c, and returns the merged map. The
// larger of the two maps is reused.
func merge[K comparable](c, other counts[K]) counts[K] {
	if len(c) < len(other) {
		c, other = other, c
	}
	if c == nil {
		c = make(counts[K])
	}
	for k, n := range other {
		c[k] += n
	}
	return c
}

/*
A Tally reduces a dataset of keys under thirteen strategies, to its
number of distinct keys in Distinct mode, or to the highest number of
occurrences of any key in Frequency mode. An empty dataset yields 0 in
both modes.

Only one strategy may run at a time.
*/
type Tally[K cmp.Ordered] struct {
	keys    []K
	mode    Mode
	missing func(K) bool
	pool    *psync.Pool[K]
	config  config
}

// NewTally returns an empty tally in the given mode.
func NewTally[K cmp.Ordered](mode Mode, opts ...Option) *Tally[K] {
	return &Tally[K]{
		mode:   mode,
		pool:   psync.NewPool[K](),
		config: newConfig(opts),
	}
}

// Load replaces the dataset.
func (t *Tally[K]) Load(keys []K) {
	t.keys = keys
}

// DropMissing sets the predicate for keys that ListProcessing drops. By
// default no key is missing.
func (t *Tally[K]) DropMissing(missing func(K) bool) *Tally[K] {
	t.missing = missing
	return t
}

// Keys returns the current dataset.
func (t *Tally[K]) Keys() []K {
	return t.keys
}

// Len returns the number of keys in the dataset.
func (t *Tally[K]) Len() int {
	return len(t.keys)
}

// Mode returns the mode of the tally.
func (t *Tally[K]) Mode() Mode {
	return t.mode
}

// BuffersOutstanding returns the number of pooled buffers that are
// currently rented by PooledBuffers workers.
func (t *Tally[K]) BuffersOutstanding() int64 {
	return t.pool.Outstanding()
}

func (t *Tally[K]) local(low, high int) counts[K] {
	return countKeys(t.keys[low:high])
}

func countKeys[K comparable](keys []K) counts[K] {
	c := make(counts[K])
	for _, k := range keys {
		c[k]++
	}
	return c
}

func (t *Tally[K]) summarize(c counts[K]) int {
	if t.mode == Distinct {
		return len(c)
	}
	var best int
	for _, n := range c {
		best = max(best, n)
	}
	return best
}

// summarizeMap visits the splits of m in parallel in Frequency mode.
func (t *Tally[K]) summarizeMap(m *psync.Map[K, int]) (int, error) {
	if t.mode == Distinct {
		return m.Len(), nil
	}
	var best atomic.Int64
	err := m.ParallelRange(func(_ K, n int) bool {
		for old := best.Load(); int64(n) > old; old = best.Load() {
			if best.CompareAndSwap(old, int64(n)) {
				break
			}
		}
		return true
	})
	return result(int(best.Load()), err)
}

// summarizeRuns reduces a sorted slice by its runs of equal keys.
func summarizeRuns[K comparable](sorted []K) (runs, longest int) {
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		runs++
		longest = max(longest, j-i)
		i = j
	}
	return
}

func (t *Tally[K]) plan() []partition.Range {
	return partition.Plan(len(t.keys), t.config.workers)
}

func addTo[K comparable](m *psync.Map[K, int], c counts[K]) {
	for k, n := range c {
		m.Modify(k, func(value int, _ bool) (int, bool) {
			return value + n, true
		})
	}
}

// Sequential counts all keys on the calling goroutine.
func (t *Tally[K]) Sequential() (n int, err error) {
	err = internal.Catch(func() error {
		n = t.summarize(t.local(0, len(t.keys)))
		return nil
	})
	return result(n, err)
}

// FixedWorkers counts each part of the plan on its own dedicated thread
// and merges the local maps.
func (t *Tally[K]) FixedWorkers() (int, error) {
	locals, err := parallel.Dedicated(t.plan(), func(low, high int) (counts[K], error) {
		return t.local(low, high), nil
	})
	if err != nil {
		return 0, err
	}
	var merged counts[K]
	for _, c := range locals {
		merged = merge(merged, c)
	}
	return t.summarize(merged), nil
}

// ParallelFor counts batches chosen by the runtime and merges the local
// maps pairwise.
func (t *Tally[K]) ParallelFor() (int, error) {
	merged, err := parallel.RangeReduce(0, len(t.keys), 0,
		func(low, high int) (counts[K], error) {
			return t.local(low, high), nil
		},
		merge[K],
	)
	if err != nil {
		return 0, err
	}
	return t.summarize(merged), nil
}

func (t *Tally[K]) query(node func(...pipeline.Filter[K]) pipeline.Node[K]) (int, error) {
	shared := psync.NewMap[K, int](0, nil)
	var p pipeline.Pipeline[K]
	p.Source(pipeline.SliceSource(t.keys))
	p.Add(node(pipeline.Receive(func(_ int, data []K) []K {
		addTo(shared, countKeys(data))
		return data
	})))
	if err := p.Run(); err != nil {
		return 0, err
	}
	return t.summarizeMap(shared)
}

// ParallelQuery counts batches in a parallel pipeline and adds the local
// counts to a concurrent map.
func (t *Tally[K]) ParallelQuery() (int, error) {
	return t.query(pipeline.Par[K])
}

// LockedCounter updates one mutex-guarded map per key.
func (t *Tally[K]) LockedCounter() (int, error) {
	var m sync.Mutex
	shared := make(counts[K])
	err := parallel.Range(0, len(t.keys), 0, func(low, high int) error {
		for _, k := range t.keys[low:high] {
			m.Lock()
			shared[k]++
			m.Unlock()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return t.summarize(shared), nil
}

// ForkJoin forks one action per part of the plan and merges their local
// maps after the join.
func (t *Tally[K]) ForkJoin() (int, error) {
	ranges := t.plan()
	locals := make([]counts[K], len(ranges))
	actions := make([]func() error, len(ranges))
	for i, r := range ranges {
		actions[i] = func() error {
			locals[i] = t.local(r.Low, r.High)
			return nil
		}
	}
	if err := parallel.Do(actions...); err != nil {
		return 0, err
	}
	var merged counts[K]
	for _, c := range locals {
		merged = merge(merged, c)
	}
	return t.summarize(merged), nil
}

// ConcurrentSet adds every key to a concurrent bag.
func (t *Tally[K]) ConcurrentSet() (int, error) {
	bag := psync.NewBag[K](0, nil)
	err := parallel.Range(0, len(t.keys), 0, func(low, high int) error {
		for _, k := range t.keys[low:high] {
			bag.Add(k)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if t.mode == Distinct {
		return bag.Distinct(), nil
	}
	return bag.MaxCount(), nil
}

// LocalLists copies batches into local lists, which are appended to a
// shared list under a lock and counted afterwards.
func (t *Tally[K]) LocalLists() (int, error) {
	var m sync.Mutex
	var shared []K
	err := parallel.Range(0, len(t.keys), 0, func(low, high int) error {
		local := slices.Clone(t.keys[low:high])
		m.Lock()
		shared = append(shared, local...)
		m.Unlock()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return t.summarize(countKeys(shared)), nil
}

// ListProcessing copies the keys into a list, drops missing keys, sorts
// the list in parallel, and reduces its runs of equal keys.
func (t *Tally[K]) ListProcessing() (n int, err error) {
	err = internal.Catch(func() error {
		list := make([]K, 0, len(t.keys))
		for _, k := range t.keys {
			if t.missing == nil || !t.missing(k) {
				list = append(list, k)
			}
		}
		sort.Sort(list)
		runs, longest := summarizeRuns(list)
		if t.mode == Distinct {
			n = runs
		} else {
			n = longest
		}
		return nil
	})
	return result(n, err)
}

// TaskLists runs one pooled task per part of the plan, each returning a
// local map, and merges the maps into a hash map.
func (t *Tally[K]) TaskLists() (int, error) {
	p := pool.NewWithResults[counts[K]]().WithErrors().WithMaxGoroutines(t.config.workers)
	for _, r := range t.plan() {
		p.Go(func() (c counts[K], err error) {
			err = internal.Catch(func() error {
				c = t.local(r.Low, r.High)
				return nil
			})
			return
		})
	}
	locals, err := p.Wait()
	if err != nil {
		return 0, err
	}
	merged := hashmap.New()
	for _, c := range locals {
		for k, n := range c {
			if old, found := merged.Get(k); found {
				n += old.(int)
			}
			merged.Put(k, n)
		}
	}
	if t.mode == Distinct {
		return merged.Size(), nil
	}
	var best int
	for _, v := range merged.Values() {
		best = max(best, v.(int))
	}
	return best, nil
}

// PooledBuffers copies each batch into a buffer rented from the tally's
// pool, sorts it, and adds its runs to a shared map under a lock. The
// buffer is returned on every exit path.
func (t *Tally[K]) PooledBuffers() (int, error) {
	var m sync.Mutex
	shared := make(counts[K])
	err := parallel.Range(0, len(t.keys), 0, func(low, high int) error {
		return t.pool.With(t.config.buffer, func(b *psync.Buffer[K]) error {
			for _, k := range t.keys[low:high] {
				b.Append(k)
			}
			items := b.Items()
			slices.Sort(items)
			m.Lock()
			defer m.Unlock()
			for i := 0; i < len(items); {
				j := i + 1
				for j < len(items) && items[j] == items[i] {
					j++
				}
				shared[items[i]] += j - i
				i = j
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return t.summarize(shared), nil
}

// LimitedQuery is ParallelQuery with at most the configured degree of
// goroutines.
func (t *Tally[K]) LimitedQuery() (int, error) {
	degree := t.config.degree
	return t.query(func(filters ...pipeline.Filter[K]) pipeline.Node[K] {
		return pipeline.LimitedPar(degree, filters...)
	})
}

// RangePartitioner starts one worker per configured part. The workers
// pull ranges from a shared partitioner and add their local maps to a
// concurrent map when it is exhausted.
func (t *Tally[K]) RangePartitioner() (int, error) {
	shared := psync.NewMap[K, int](0, nil)
	part := partition.NewPartitioner(0, len(t.keys), 0)
	p := pool.New().WithErrors().WithMaxGoroutines(t.config.workers)
	for w := 0; w < t.config.workers; w++ {
		p.Go(func() error {
			return internal.Catch(func() error {
				local := make(counts[K])
				for r, ok := part.Next(); ok; r, ok = part.Next() {
					for _, k := range t.keys[r.Low:r.High] {
						local[k]++
					}
				}
				addTo(shared, local)
				return nil
			})
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}
	return t.summarizeMap(shared)
}
