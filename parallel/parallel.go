// Package parallel provides functions for expressing parallel
// algorithms.
//
// All functions in this package block until every goroutine they started
// has terminated. Errors returned by the invoked functions are combined
// with go.uber.org/multierr, so that no error is lost when several workers
// fail. Panics in invoked functions are recovered and returned as errors
// that carry the stack trace of the panicking goroutine.
package parallel

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"

	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/partition"
)

func spawn(wg *sync.WaitGroup, err *error, f func() error) {
	go func() {
		defer wg.Done()
		*err = internal.Catch(f)
	}()
}

// Do receives zero or more thunks and executes them in parallel.
//
// Each thunk is invoked in its own goroutine, and Do returns only
// when all thunks have terminated, returning the combination of all error
// values that are different from nil, in left-to-right order.
func Do(thunks ...func() error) error {
	switch len(thunks) {
	case 0:
		return nil
	case 1:
		return internal.Catch(thunks[0])
	}
	var err1 error
	var wg sync.WaitGroup
	wg.Add(1)
	half := len(thunks) / 2
	spawn(&wg, &err1, func() error { return Do(thunks[half:]...) })
	err0 := Do(thunks[:half]...)
	wg.Wait()
	return multierr.Append(err0, err1)
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The range is specified by a low and high integer, with low <=
// high. The batches are determined by dividing up the size of the
// range (high - low) by n. If n is 0, a reasonable default is used
// that takes runtime.GOMAXPROCS(0) into account.
//
// The range function is invoked for each batch in its own goroutine,
// with 0 <= low <= high, and Range returns only when all range
// functions have terminated, returning the combination of all error
// values that are different from nil.
//
// Range panics if high < low, or if n < 0.
func Range(
	low, high, n int,
	f func(low, high int) error,
) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) error {
		switch {
		case n == 1:
			return internal.Catch(func() error { return f(low, high) })
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return internal.Catch(func() error { return f(low, high) })
			}
			var err1 error
			var wg sync.WaitGroup
			wg.Add(1)
			spawn(&wg, &err1, func() error { return recur(mid, high, n-half) })
			err0 := recur(low, mid, half)
			wg.Wait()
			return multierr.Append(err0, err1)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

// RangeReduce receives a range, a batch count, a range reducer reduce,
// and a pair reducer pair, divides the range into batches, and
// invokes the range reducer for each of these batches in parallel,
// covering the half-open interval from low to high, including low but
// excluding high. The results of the range reducer invocations are
// then combined by repeated invocations of the pair reducer.
//
// The pair reducer must be associative. It is only invoked on results of
// range reducers that succeeded; if any range reducer fails, RangeReduce
// returns the zero value of R and the combined errors.
//
// RangeReduce panics if high < low, or if n < 0.
func RangeReduce[R any](
	low, high, n int,
	reduce func(low, high int) (R, error),
	pair func(x, y R) R,
) (result R, err error) {
	var recur func(int, int, int) (R, error)
	recur = func(low, high, n int) (result R, err error) {
		leaf := func() error {
			var err error
			result, err = reduce(low, high)
			return err
		}
		switch {
		case n == 1:
			err = internal.Catch(leaf)
			return
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				err = internal.Catch(leaf)
				return
			}
			var left, right R
			var err0, err1 error
			var wg sync.WaitGroup
			wg.Add(1)
			spawn(&wg, &err1, func() (err error) {
				right, err = recur(mid, high, n-half)
				return
			})
			left, err0 = recur(low, mid, half)
			wg.Wait()
			if err = multierr.Append(err0, err1); err != nil {
				return
			}
			err = internal.Catch(func() error {
				result = pair(left, right)
				return nil
			})
			return
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	result, err = recur(low, high, internal.ComputeNofBatches(low, high, n))
	if err != nil {
		var zero R
		result = zero
	}
	return
}

// RangeAnd receives a range, a batch count n, and a range predicate
// function f, divides the range into batches, and invokes the range
// predicate for each of these batches in parallel, combining all return
// values with the && operator.
//
// RangeAnd panics if high < low, or if n < 0.
func RangeAnd(
	low, high, n int,
	f func(low, high int) (bool, error),
) (bool, error) {
	return RangeReduce(low, high, n, f, func(x, y bool) bool { return x && y })
}

// Dedicated invokes f once for each of the given ranges, each in its own
// goroutine that is locked to its own operating system thread for the
// whole invocation, so that the workers do not compete with other
// goroutines for a shared thread. It is meant for few, long-running
// units of work, such as one range per logical CPU.
//
// Dedicated returns the results of f in the order of the ranges, or nil
// and the combined errors if any invocation failed.
func Dedicated[R any](
	ranges []partition.Range,
	f func(low, high int) (R, error),
) ([]R, error) {
	results := make([]R, len(ranges))
	errs := make([]error, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			errs[i] = internal.Catch(func() (err error) {
				results[i], err = f(r.Low, r.High)
				return
			})
		}()
	}
	wg.Wait()
	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
