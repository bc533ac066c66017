package pipeline

import (
	"bufio"
	"context"
	"errors"
	"io"
)

var errNoSource = errors.New("pipeline has no source")

// A Source represents an object that can generate data batches for
// pipelines.
type Source[T any] interface {
	// Err returns an error value or nil.
	Err() error

	// Prepare receives a pipeline context and returns the total expected
	// size of all data batches, or -1 if the size is unknown.
	Prepare(ctx context.Context) (size int)

	// Fetch gets a data batch of the requested size from the source and
	// returns the size of the batch it actually fetched. It returns 0 if
	// there is no more data.
	Fetch(size int) (fetched int)

	// Data returns the last fetched data batch.
	Data() []T
}

type sliceSource[T any] struct {
	slice []T
	index int
	data  []T
}

// SliceSource returns a source that hands out consecutive subslices of
// s. The batches share storage with s.
func SliceSource[T any](s []T) Source[T] {
	return &sliceSource[T]{slice: s}
}

func (src *sliceSource[T]) Err() error {
	return nil
}

func (src *sliceSource[T]) Prepare(_ context.Context) int {
	return len(src.slice)
}

func (src *sliceSource[T]) Fetch(n int) (fetched int) {
	low := src.index
	high := min(low+n, len(src.slice))
	if low >= high {
		src.data = nil
		return 0
	}
	src.data = src.slice[low:high:high]
	src.index = high
	return high - low
}

func (src *sliceSource[T]) Data() []T {
	return src.data
}

type rangeSource struct {
	next, high int
	data       []int
}

// RangeSource returns a source of the integers in [low, high), in
// ascending order. It panics if high < low.
func RangeSource(low, high int) Source[int] {
	if high < low {
		panic("invalid range in pipeline.RangeSource")
	}
	return &rangeSource{next: low, high: high}
}

func (src *rangeSource) Err() error {
	return nil
}

func (src *rangeSource) Prepare(_ context.Context) int {
	return src.high - src.next
}

func (src *rangeSource) Fetch(n int) (fetched int) {
	low := src.next
	high := min(low+n, src.high)
	if low >= high {
		src.data = nil
		return 0
	}
	data := make([]int, high-low)
	for i := range data {
		data[i] = low + i
	}
	src.data = data
	src.next = high
	return len(data)
}

func (src *rangeSource) Data() []int {
	return src.data
}

// Scanner is a wrapper around bufio.Scanner so it can act as a data
// source for pipelines.
type Scanner struct {
	*bufio.Scanner
	data []string
}

// NewScanner returns a new Scanner to read from r. The split function
// defaults to bufio.ScanLines.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{Scanner: bufio.NewScanner(r)}
}

// Prepare implements the Prepare method of the Source interface.
func (src *Scanner) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the Fetch method of the Source interface.
func (src *Scanner) Fetch(n int) (fetched int) {
	var data []string
	for fetched = 0; fetched < n; fetched++ {
		if src.Scan() {
			data = append(data, src.Text())
		} else {
			break
		}
	}
	src.data = data
	return
}

// Data implements the Data method of the Source interface.
func (src *Scanner) Data() []string {
	return src.data
}
