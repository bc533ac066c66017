package internal

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
)

// ComputeNofBatches divides the size of the range (high - low) by n. If n is 0,
// a default is used that takes runtime.GOMAXPROCS(0) into account.
func ComputeNofBatches(low, high, n int) (batches int) {
	switch size := high - low; {
	case size > 0:
		switch {
		case n == 0:
			batches = 2 * runtime.GOMAXPROCS(0)
		case n > 0:
			batches = n
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
		if batches > size {
			batches = size
		}
	case size == 0:
		batches = 1
	default:
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	return
}

// LogicalCores is the number of workers used by fixed-partition strategies.
func LogicalCores() int {
	return runtime.GOMAXPROCS(0)
}

// A PanicError is a recovered panic turned into an error value. It keeps the
// original panic value and the stack of the goroutine that panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type runtimeError struct{ *PanicError }

func (runtimeError) RuntimeError() {}

// WrapPanic turns a recovered panic into an error that carries stack trace
// information. It returns nil if p is nil.
func WrapPanic(p interface{}) error {
	if p == nil {
		return nil
	}
	pe := &PanicError{Value: p, Stack: debug.Stack()}
	if _, isRuntimeError := p.(runtime.Error); isRuntimeError {
		return runtimeError{pe}
	}
	return pe
}

// Catch invokes f and converts a panic raised by f into an error.
func Catch(f func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = WrapPanic(p)
		}
	}()
	return f()
}

// IsPanic reports whether err, or any error it wraps, is a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	if errors.As(err, &pe) {
		return true
	}
	var re runtimeError
	return errors.As(err, &re)
}
