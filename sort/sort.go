/*
Package sort provides parallel sorting algorithms for slices.

Sort and SortFunc use a parallel quicksort. StableSort and
StableSortFunc use a parallel merge sort that needs a temporary copy of
the slice. IsSorted and IsSortedFunc check sortedness in parallel and stop
early when they find elements out of order.

A panic in a comparison function is re-raised in the calling goroutine,
with stack trace information attached, after all goroutines of the sort
have terminated.
*/
package sort

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/exascience/parpat/parallel"
)

const serialCutoff = 10

// do runs the thunks in parallel and re-panics with the combined
// recovered panics.
func do(thunks ...func()) {
	fs := make([]func() error, len(thunks))
	for i, thunk := range thunks {
		fs[i] = func() error {
			thunk()
			return nil
		}
	}
	if err := parallel.Do(fs...); err != nil {
		panic(err)
	}
}

// IsSorted determines in parallel whether s is sorted in increasing
// order.
func IsSorted[E cmp.Ordered](s []E) bool {
	return IsSortedFunc(s, cmp.Compare[E])
}

/*
IsSortedFunc determines in parallel whether s is sorted according to
cmp. Batches stop early once any batch has found elements out of order,
but IsSortedFunc only returns after all batches have terminated, so s
may be modified as soon as it returns.
*/
func IsSortedFunc[E any](s []E, cmp func(a, b E) int) bool {
	size := len(s)
	if size < qsortGrainSize {
		return slices.IsSortedFunc(s, cmp)
	}
	for i := 1; i < serialCutoff; i++ {
		if cmp(s[i], s[i-1]) < 0 {
			return false
		}
	}
	var unsorted atomic.Bool
	sorted, err := parallel.RangeAnd(serialCutoff, size, 0, func(low, high int) (bool, error) {
		for i := low; i < high; i++ {
			if ((i % 1024) == 0) && unsorted.Load() {
				return false, nil
			}
			if cmp(s[i], s[i-1]) < 0 {
				unsorted.Store(true)
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		panic(err)
	}
	return sorted
}
