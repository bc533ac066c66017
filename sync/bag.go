package sync

import (
	"sync/atomic"
)

/*
A Bag is an unordered concurrent collection that may hold the same
element several times. It is safe for concurrent use.

Elements are kept as multiplicities in a split Map, so that Bag can
report both its total size and its number of distinct elements.
*/
type Bag[T comparable] struct {
	counts *Map[T, int]
	size   atomic.Int64
}

// NewBag returns an empty bag whose Map has the given number of splits.
// See NewMap for the meaning of size and hash.
func NewBag[T comparable](size int, hash func(T) uint64) *Bag[T] {
	return &Bag[T]{counts: NewMap[T, int](size, hash)}
}

// Add adds one occurrence of x.
func (b *Bag[T]) Add(x T) {
	b.AddN(x, 1)
}

// AddN adds n occurrences of x.
func (b *Bag[T]) AddN(x T, n int) {
	b.counts.Modify(x, func(value int, _ bool) (int, bool) {
		return value + n, true
	})
	b.size.Add(int64(n))
}

// Len returns the number of occurrences of all elements.
func (b *Bag[T]) Len() int {
	return int(b.size.Load())
}

// Distinct returns the number of distinct elements.
func (b *Bag[T]) Distinct() int {
	return b.counts.Len()
}

// Count returns the number of occurrences of x.
func (b *Bag[T]) Count(x T) int {
	n, _ := b.counts.Load(x)
	return n
}

// MaxCount returns the highest multiplicity of any element, or 0 if the
// bag is empty.
func (b *Bag[T]) MaxCount() (max int) {
	b.counts.Range(func(_ T, n int) bool {
		if n > max {
			max = n
		}
		return true
	})
	return
}

// Range calls f sequentially for each distinct element and its
// multiplicity, with the same guarantees as Map.Range.
func (b *Bag[T]) Range(f func(x T, n int) bool) {
	b.counts.Range(f)
}
