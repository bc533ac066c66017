package sync

import (
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
)

const maxSizeClass = 48

/*
A Pool is a pool of element buffers, bucketed by power-of-two
capacities. It is safe for concurrent use.

Buffers are checked out with Get and must be returned exactly once with
Put. With combines both steps and guarantees that the buffer is returned
on every exit path, including panics. Outstanding reports how many
backing arrays are currently checked out, which is 0 whenever all
buffers have been returned.

The zero Pool is ready to use.
*/
type Pool[T any] struct {
	classes     [maxSizeClass]sync.Pool
	outstanding atomic.Int64
}

// NewPool returns an empty pool.
func NewPool[T any]() *Pool[T] {
	return new(Pool[T])
}

func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func (p *Pool[T]) rent(n int) []T {
	class := sizeClass(n)
	if class >= maxSizeClass {
		panic(fmt.Sprintf("buffer size too large: %v", n))
	}
	p.outstanding.Add(1)
	if v := p.classes[class].Get(); v != nil {
		return (*v.(*[]T))[:0]
	}
	return make([]T, 0, 1<<class)
}

func (p *Pool[T]) giveBack(s []T) {
	p.outstanding.Add(-1)
	c := cap(s)
	if c == 0 {
		return
	}
	class := bits.Len(uint(c)) - 1
	if (c != 1<<class) || (class >= maxSizeClass) {
		return
	}
	s = s[:0]
	p.classes[class].Put(&s)
}

// Outstanding returns the number of backing arrays that are currently
// checked out of the pool.
func (p *Pool[T]) Outstanding() int64 {
	return p.outstanding.Load()
}

/*
A Buffer is a growable sequence of elements whose storage is checked out
of a Pool. A Buffer is owned by a single goroutine.
*/
type Buffer[T any] struct {
	pool  *Pool[T]
	items []T
}

// Get checks out a buffer with a capacity of at least minCap elements.
func (p *Pool[T]) Get(minCap int) *Buffer[T] {
	return &Buffer[T]{pool: p, items: p.rent(minCap)}
}

// Put returns the storage of b to the pool. Calling Put more than once
// for the same buffer has no effect.
func (p *Pool[T]) Put(b *Buffer[T]) {
	if b.items == nil {
		return
	}
	p.giveBack(b.items)
	b.items = nil
}

// With checks out a buffer with a capacity of at least minCap elements,
// passes it to f, and returns it to the pool when f returns or panics.
// f must not retain the buffer.
func (p *Pool[T]) With(minCap int, f func(b *Buffer[T]) error) error {
	b := p.Get(minCap)
	defer p.Put(b)
	return f(b)
}

// Append adds x to the end of the buffer. When the buffer is full, its
// storage is replaced by a pooled array of twice the capacity, and the
// old array is returned to the pool.
func (b *Buffer[T]) Append(x T) {
	if len(b.items) == cap(b.items) {
		b.grow()
	}
	b.items = append(b.items, x)
}

func (b *Buffer[T]) grow() {
	n := 2 * cap(b.items)
	if n == 0 {
		n = 1
	}
	bigger := b.pool.rent(n)
	bigger = append(bigger, b.items...)
	b.pool.giveBack(b.items)
	b.items = bigger
}

// Len returns the number of elements in the buffer.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Cap returns the capacity of the buffer's current storage.
func (b *Buffer[T]) Cap() int {
	return cap(b.items)
}

// Items returns the elements in the buffer. The slice is only valid until
// the next call to Append or until the buffer is returned to its pool.
func (b *Buffer[T]) Items() []T {
	return b.items
}
