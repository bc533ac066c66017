// Package partition divides index ranges among workers.
//
// Plan computes a fixed, up-front division of a range into contiguous
// pieces, one per worker. A Partitioner instead hands out pieces on demand,
// so that faster workers take more of them.
package partition

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// A Range is the half-open interval of indices from Low to High,
// including Low but excluding High.
type Range struct {
	Low, High int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.High - r.Low
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Low, r.High)
}

/*
Plan divides the half-open interval [0,n) into w contiguous ranges.

Every range except the last has size n/w (rounded down); the last range
extends to n and absorbs the remainder. The ranges are pairwise disjoint and
their union is exactly [0,n). If n < w, the leading ranges are empty.

Plan panics if n < 0 or w < 1.
*/
func Plan(n, w int) []Range {
	return PlanRange(0, n, w)
}

// PlanRange is like Plan, but divides the half-open interval [low,high).
func PlanRange(low, high, w int) []Range {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if w < 1 {
		panic(fmt.Sprintf("invalid number of workers: %v", w))
	}
	chunk := (high - low) / w
	ranges := make([]Range, w)
	for i := range ranges {
		ranges[i].Low = low + i*chunk
		ranges[i].High = low + (i+1)*chunk
	}
	ranges[w-1].High = high
	return ranges
}

/*
ChunkSize determines the size of the ranges handed out by a Partitioner.

If threshold is > 0, the return value is ceiling((high - low) / (threshold *
runtime.GOMAXPROCS(0))), but at least 1.

If threshold is == 0, the return value is 1.

If threshold is < 0, the return value is abs(threshold).
*/
func ChunkSize(low, high, threshold int) int {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if threshold > 0 {
		threshold = ((high - low - 1) / (threshold * runtime.GOMAXPROCS(0))) + 1
	} else if threshold < 0 {
		return -1 * threshold
	}
	if threshold <= 0 {
		threshold = 1
	}
	return threshold
}

// DefaultThreshold is the threshold that NewPartitioner passes to ChunkSize
// when no chunk size is given.
const DefaultThreshold = 3

/*
A Partitioner hands out consecutive ranges of a fixed chunk size to
workers on demand. It is safe for concurrent use.

The ranges returned by all calls to Next are pairwise disjoint, and once
Next reports false, their union is the partitioned interval.
*/
type Partitioner struct {
	next  atomic.Int64
	high  int
	chunk int
}

// NewPartitioner returns a partitioner for [low,high). If chunk <= 0,
// ChunkSize(low, high, DefaultThreshold) is used.
func NewPartitioner(low, high, chunk int) *Partitioner {
	if chunk <= 0 {
		chunk = ChunkSize(low, high, DefaultThreshold)
	} else if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	p := &Partitioner{high: high, chunk: chunk}
	p.next.Store(int64(low))
	return p
}

// Next returns the next range to process. The ok result is false when the
// interval is exhausted.
func (p *Partitioner) Next() (r Range, ok bool) {
	low := int(p.next.Add(int64(p.chunk))) - p.chunk
	if low >= p.high {
		return Range{}, false
	}
	high := low + p.chunk
	if high > p.high {
		high = p.high
	}
	return Range{low, high}, true
}

// Chunk returns the size of the ranges handed out by Next.
func (p *Partitioner) Chunk() int {
	return p.chunk
}
