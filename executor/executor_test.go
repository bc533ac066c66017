package executor_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"github.com/exascience/parpat/executor"
	"github.com/exascience/parpat/internal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type strategies interface {
	Sequential() (int, error)
	FixedWorkers() (int, error)
	ParallelFor() (int, error)
	ParallelQuery() (int, error)
	LockedCounter() (int, error)
	ForkJoin() (int, error)
	ConcurrentSet() (int, error)
	LocalLists() (int, error)
	ListProcessing() (int, error)
	TaskLists() (int, error)
	PooledBuffers() (int, error)
	LimitedQuery() (int, error)
	RangePartitioner() (int, error)
}

type namedStrategy struct {
	name string
	run  func() (int, error)
}

func all(s strategies) []namedStrategy {
	return []namedStrategy{
		{"Sequential", s.Sequential},
		{"FixedWorkers", s.FixedWorkers},
		{"ParallelFor", s.ParallelFor},
		{"ParallelQuery", s.ParallelQuery},
		{"LockedCounter", s.LockedCounter},
		{"ForkJoin", s.ForkJoin},
		{"ConcurrentSet", s.ConcurrentSet},
		{"LocalLists", s.LocalLists},
		{"ListProcessing", s.ListProcessing},
		{"TaskLists", s.TaskLists},
		{"PooledBuffers", s.PooledBuffers},
		{"LimitedQuery", s.LimitedQuery},
		{"RangePartitioner", s.RangePartitioner},
	}
}

func requireAll(t *testing.T, s strategies, expected int) {
	t.Helper()
	for _, strategy := range all(s) {
		n, err := strategy.run()
		require.NoError(t, err, strategy.name)
		require.Equal(t, expected, n, strategy.name)
	}
}

func even(x int) bool { return x%2 == 0 }

func TestExecutorEquivalence(t *testing.T) {
	for _, size := range []int{0, 1, 7, 100, 5000} {
		for _, workers := range []int{1, 3, 8} {
			t.Run(fmt.Sprintf("size=%v,workers=%v", size, workers), func(t *testing.T) {
				data := make([]int, size)
				expected := 0
				for i := range data {
					data[i] = (i * 7919) % 1013
					if even(data[i]) {
						expected++
					}
				}
				e := executor.New(even, executor.WithWorkers(workers), executor.WithDegree(2), executor.WithInitialBuffer(4))
				e.Load(data)
				requireAll(t, e, expected)
				require.EqualValues(t, 0, e.BuffersOutstanding())
			})
		}
	}
}

func TestExecutorSlowPredicate(t *testing.T) {
	data := make([]int, 2000)
	for i := range data {
		data[i] = i
	}
	slowEven := func(x int) bool {
		time.Sleep(10 * time.Microsecond)
		return even(x)
	}
	for _, workers := range []int{2, 4} {
		t.Run(fmt.Sprintf("workers=%v", workers), func(t *testing.T) {
			e := executor.New(slowEven, executor.WithWorkers(workers), executor.WithDegree(2))
			e.Load(data)
			requireAll(t, e, 1000)

			// even indices from 2 on
			e.LoadIndexed(data, 1, len(data), func(i int) bool {
				return slowEven(data[i]) && !even(data[i-1])
			})
			requireAll(t, e, 999)
			require.EqualValues(t, 0, e.BuffersOutstanding())
		})
	}
}

func TestExecutorIndexed(t *testing.T) {
	data := []int{1, 2, 2, 3, 4, 4, 5}
	e := executor.New(func(int) bool { return true })
	e.LoadIndexed(data, 1, len(data), func(i int) bool {
		return data[i]%2 != data[i-1]%2
	})
	// 1->2, 2->3, 3->4, 4->5
	requireAll(t, e, 4)

	e.LoadIndexed(nil, 1, 0, func(int) bool { return true })
	requireAll(t, e, 0)
}

func TestExecutorDropMissing(t *testing.T) {
	e := executor.New(func(s string) bool { return len(s) < 3 }).DropMissing(func(s string) bool { return s == "" })
	e.Load([]string{"a", "", "abc", "bb", ""})
	n, err := e.ListProcessing()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = e.Sequential()
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestExecutorPanicsBecomeErrors(t *testing.T) {
	data := make([]int, 10000)
	for i := range data {
		data[i] = i
	}
	e := executor.New(func(x int) bool {
		if x == 4321 {
			panic(fmt.Sprintf("bad element %v", x))
		}
		return true
	}, executor.WithWorkers(4))
	e.Load(data)
	for _, strategy := range all(e) {
		n, err := strategy.run()
		require.Error(t, err, strategy.name)
		require.Zero(t, n, strategy.name)
		require.True(t, internal.IsPanic(err), strategy.name)
		require.Contains(t, err.Error(), "bad element 4321", strategy.name)
	}
	require.EqualValues(t, 0, e.BuffersOutstanding())
}

func TestExecutorAggregatesAllFailures(t *testing.T) {
	data := make([]int, 64)
	e := executor.New(func(int) bool { panic("worker failure") }, executor.WithWorkers(4))
	e.Load(data)
	_, err := e.ForkJoin()
	require.Len(t, multierr.Errors(err), 4)
	_, err = e.FixedWorkers()
	require.Len(t, multierr.Errors(err), 4)
}

func ExampleExecutor() {
	isPrime := func(n int) bool {
		if n < 2 {
			return false
		}
		for d := 2; d*d <= n; d++ {
			if n%d == 0 {
				return false
			}
		}
		return true
	}
	e := executor.New(isPrime)
	e.Load([]int{5, 3, 3, 1, 4, 4, 4})
	n, err := e.ParallelFor()
	fmt.Println(n, err)
	// Output: 3 <nil>
}
