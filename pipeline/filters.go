package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// NewNode creates a node of the given kind, with the given filters. It
// is often more convenient to use one of Ord, Seq, or Par.
func NewNode[T any](kind NodeKind, filters ...Filter[T]) Node[T] {
	switch kind {
	case Ordered, Sequential:
		return &seqnode[T]{kind: kind, filters: filters}
	case Parallel:
		return &parnode[T]{filters: filters}
	default:
		panic(fmt.Sprintf("invalid node kind in pipeline.NewNode: %v", kind))
	}
}

// Receive creates a Filter that returns the given receiver and a nil
// finalizer.
func Receive[T any](receive Receiver[T]) Filter[T] {
	return func(_ *Pipeline[T], _ NodeKind, _ *int) (Receiver[T], Finalizer) {
		return receive, nil
	}
}

// Finalize creates a filter that returns a nil receiver and the given
// finalizer.
func Finalize[T any](finalize Finalizer) Filter[T] {
	return func(_ *Pipeline[T], _ NodeKind, _ *int) (Receiver[T], Finalizer) {
		return nil, finalize
	}
}

// ReceiveAndFinalize creates a filter that returns the given receiver and
// finalizer.
func ReceiveAndFinalize[T any](receive Receiver[T], finalize Finalizer) Filter[T] {
	return func(_ *Pipeline[T], _ NodeKind, _ *int) (Receiver[T], Finalizer) {
		return receive, finalize
	}
}

/*
Slice creates a filter that appends all the data batches it sees to
result. In an ordered node, the batches are appended in encounter order;
in other nodes, in arbitrary order.
*/
func Slice[T any](result *[]T) Filter[T] {
	return func(_ *Pipeline[T], kind NodeKind, _ *int) (receiver Receiver[T], _ Finalizer) {
		switch kind {
		case Parallel:
			var m sync.Mutex
			receiver = func(_ int, data []T) []T {
				m.Lock()
				*result = append(*result, data...)
				m.Unlock()
				return data
			}
		default:
			receiver = func(_ int, data []T) []T {
				*result = append(*result, data...)
				return data
			}
		}
		return
	}
}

// Count creates a filter that sets result to the total size of all data
// batches it sees.
func Count[T any](result *int) Filter[T] {
	return func(_ *Pipeline[T], kind NodeKind, size *int) (receiver Receiver[T], finalizer Finalizer) {
		switch {
		case *size >= 0:
			*result = *size
		case kind == Parallel:
			var res atomic.Int64
			receiver = func(_ int, data []T) []T {
				res.Add(int64(len(data)))
				return data
			}
			finalizer = func() {
				*result = int(res.Load())
			}
		default:
			*result = 0
			receiver = func(_ int, data []T) []T {
				*result += len(data)
				return data
			}
		}
		return
	}
}

/*
Where creates a filter that keeps only the elements of each batch for
which predicate returns true. The total size for subsequent filters
becomes unknown. The kept elements are copied into a fresh slice, so the
source data is never modified.
*/
func Where[T any](predicate func(T) bool) Filter[T] {
	return func(_ *Pipeline[T], _ NodeKind, size *int) (receiver Receiver[T], _ Finalizer) {
		*size = -1
		receiver = func(_ int, data []T) (result []T) {
			for _, x := range data {
				if predicate(x) {
					result = append(result, x)
				}
			}
			return
		}
		return
	}
}
