package tasks_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/tasks"
)

func requireAll(t *testing.T, task parpat.Task, expected int) {
	t.Helper()
	for _, strategy := range parpat.Strategies(task) {
		n, err := strategy.Run()
		require.NoError(t, err, strategy.Name)
		require.Equal(t, expected, n, strategy.Name)
	}
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"alternation", "dedup", "extremum", "frequency", "prime", "reverse", "sort"}, parpat.Names())

	_, err := parpat.New(context.Background(), "unknown", parpat.Options{})
	require.ErrorIs(t, err, parpat.ErrNotFound)

	task, err := parpat.New(context.Background(), "prime", parpat.Options{Size: 100, MaxValue: 50})
	require.NoError(t, err)
	require.NoError(t, task.Setup())
	require.Contains(t, task.Name(), "primes")
}

func TestRandomInts(t *testing.T) {
	a := tasks.RandomInts(1000, 1, 10)
	require.Equal(t, a, tasks.RandomInts(1000, 1, 10))
	for _, x := range a {
		require.GreaterOrEqual(t, x, 1)
		require.Less(t, x, 10)
	}
	require.Nil(t, tasks.RandomInts(0, 1, 10))
	require.Equal(t, []int{2, 2}, tasks.RandomInts(2, 2, 2))
}

func TestSetupValidation(t *testing.T) {
	for _, opts := range []parpat.Options{
		{Size: 0, MaxValue: 100},
		{Size: -5, MaxValue: 100},
		{Size: 10, MaxValue: 1},
		{Size: 10, MaxValue: -3},
	} {
		for _, name := range []string{"prime", "alternation", "extremum", "reverse", "sort"} {
			task, err := parpat.New(context.Background(), name, opts)
			require.NoError(t, err)
			require.ErrorIs(t, task.Setup(), parpat.ErrInvalidParameter, "%v %+v", name, opts)
		}
	}
}

func TestIsPrime(t *testing.T) {
	var primes []int
	for n := -3; n < 30; n++ {
		if tasks.IsPrime(n) {
			primes = append(primes, n)
		}
	}
	require.Equal(t, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes)
}

func TestPrime(t *testing.T) {
	task := tasks.NewPrime(parpat.Options{Size: 7})
	task.Load([]int{5, 3, 3, 1, 4, 4, 4})
	requireAll(t, task, 3)

	task = tasks.NewPrime(parpat.Options{Size: 20000, MaxValue: 5000, Workers: 3})
	require.NoError(t, task.Setup())
	expected := 0
	for _, x := range task.Data() {
		if tasks.IsPrime(x) {
			expected++
		}
	}
	require.NotZero(t, expected)
	requireAll(t, task, expected)
}

func TestAlternation(t *testing.T) {
	task := tasks.NewAlternation(parpat.Options{Size: 5})
	task.Load([]int{1, 2, 4, 5, 7, 8})
	// 1->2, 4->5, 7->8
	requireAll(t, task, 3)

	task.Load(nil)
	requireAll(t, task, 0)
	task.Load([]int{7})
	requireAll(t, task, 0)

	task = tasks.NewAlternation(parpat.Options{Size: 10000, MaxValue: 100})
	require.NoError(t, task.Setup())
	data := task.Data()
	expected := 0
	for i := 1; i < len(data); i++ {
		if data[i]%2 != data[i-1]%2 {
			expected++
		}
	}
	requireAll(t, task, expected)
}

func TestExtremum(t *testing.T) {
	task := tasks.NewExtremum(parpat.Options{Size: 5})
	task.Load([]int{1, 3, 2, 4, 1})
	requireAll(t, task, 3)

	task.Load([]int{5, 5, 5})
	requireAll(t, task, 0)
	task.Load([]int{1, 2})
	requireAll(t, task, 0)
	task.Load(nil)
	requireAll(t, task, 0)
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func TestReverseInvolution(t *testing.T) {
	for _, size := range []int{0, 1, 2, 7, 10000} {
		task := tasks.NewReverse(parpat.Options{Size: size, Workers: 4})
		original := sequence(size)
		expected := slices.Clone(original)
		slices.Reverse(expected)
		for _, strategy := range []struct {
			name string
			run  func() (int, error)
		}{
			{"Sequential", task.Sequential},
			{"ParallelFor", task.ParallelFor},
			{"ForkJoin", task.ForkJoin},
			{"ParallelQuery", task.ParallelQuery},
		} {
			task.Load(slices.Clone(original))
			n, err := strategy.run()
			require.NoError(t, err, strategy.name)
			require.Equal(t, size, n, strategy.name)
			require.Equal(t, expected, task.Data(), strategy.name)
			_, err = strategy.run()
			require.NoError(t, err, strategy.name)
			require.Equal(t, original, task.Data(), strategy.name)
		}
	}
}

func TestReverseFixedWorkersIsSegmentLocal(t *testing.T) {
	task := tasks.NewReverse(parpat.Options{Workers: 2})
	task.Load([]int{1, 2, 3, 4, 5, 6})
	n, err := task.FixedWorkers()
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []int{3, 2, 1, 6, 5, 4}, task.Data())

	task = tasks.NewReverse(parpat.Options{Workers: 1})
	task.Load([]int{1, 2, 3})
	_, err = task.FixedWorkers()
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1}, task.Data())
}

func TestReverseTraversals(t *testing.T) {
	task := tasks.NewReverse(parpat.Options{Size: 1000, MaxValue: 100})
	require.NoError(t, task.Setup())
	original := slices.Clone(task.Data())
	for _, run := range []func() (int, error){
		task.LockedCounter, task.ConcurrentSet, task.LocalLists, task.ListProcessing,
		task.TaskLists, task.PooledBuffers, task.LimitedQuery, task.RangePartitioner,
	} {
		n, err := run()
		require.NoError(t, err)
		require.Equal(t, 1000, n)
	}
	require.Equal(t, original, task.Data())
}

func TestSort(t *testing.T) {
	task := tasks.NewSort(parpat.Options{Size: 50000, MaxValue: 1000, Workers: 3})
	for _, strategy := range []struct {
		name string
		run  func() (int, error)
	}{
		{"Sequential", task.Sequential},
		{"ParallelFor", task.ParallelFor},
		{"FixedWorkers", task.FixedWorkers},
		{"ParallelQuery", task.ParallelQuery},
		{"ForkJoin", task.ForkJoin},
	} {
		require.NoError(t, task.Setup())
		expected := slices.Sorted(slices.Values(task.Data()))
		n, err := strategy.run()
		require.NoError(t, err, strategy.name)
		require.Equal(t, 50000, n, strategy.name)
		require.Equal(t, expected, task.Data(), strategy.name)
	}

	require.NoError(t, task.Setup())
	n, err := task.PooledBuffers()
	require.NoError(t, err)
	require.Equal(t, 50000, n)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDedup(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt":     "1\n1\n2\n",
		"b.txt":     " 3\nnot a number\n3\r\n3\n",
		"other.csv": "4\n5\n",
	})
	task, err := parpat.New(context.Background(), "dedup", parpat.Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, task.Setup())
	requireAll(t, task, 3)
	require.Equal(t, []int{1, 1, 2, 3, 3, 3}, task.(*tasks.Dedup).Keys())
}

func TestFrequency(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"1.txt": "a\nB \n\n",
		"2.txt": "  A\nc\na\n   \n",
	})
	task, err := tasks.NewFrequency(context.Background(), parpat.Options{Dir: dir})
	require.NoError(t, err)
	requireAll(t, task, 3)
	value, count := task.MostFrequent()
	require.Equal(t, "a", value)
	require.Equal(t, 3, count)
}

func TestReadLinesKeepsOrder(t *testing.T) {
	var expected []string
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		line := fmt.Sprintf("line %v", i)
		expected = append(expected, line)
		b.WriteString(line + "\n")
	}
	expected = append(expected, "last", "")
	dir := writeFiles(t, map[string]string{
		"a.txt": b.String(),
		"b.txt": "last\n\n",
	})
	lines, err := tasks.ReadLines(context.Background(), afs.New(), dir)
	require.NoError(t, err)
	require.Equal(t, expected, lines)
}

func TestEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dedup", "frequency"} {
		task, err := parpat.New(context.Background(), name, parpat.Options{Dir: dir})
		require.NoError(t, err)
		requireAll(t, task, 0)
	}
}

func TestMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	for _, name := range []string{"dedup", "frequency"} {
		_, err := parpat.New(context.Background(), name, parpat.Options{Dir: dir})
		require.ErrorIs(t, err, parpat.ErrNotFound)
	}
}

func TestNormalizeAndParse(t *testing.T) {
	require.Equal(t, []string{"a", "b c"}, tasks.NormalizeLines([]string{" A ", "", "\t", "B C"}))
	values, skipped := tasks.ParseInts([]string{"1", " -2 ", "x", "", "3.5"})
	require.Equal(t, []int{1, -2}, values)
	require.Equal(t, 3, skipped)
}
