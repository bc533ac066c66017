package executor_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exascience/parpat/executor"
)

func TestTallyDistinct(t *testing.T) {
	tally := executor.NewTally[int](executor.Distinct, executor.WithWorkers(3), executor.WithInitialBuffer(2))
	tally.Load([]int{1, 1, 2, 3, 3, 3})
	requireAll(t, tally, 3)

	tally.Load(nil)
	requireAll(t, tally, 0)

	tally.Load([]int{42})
	requireAll(t, tally, 1)
	require.EqualValues(t, 0, tally.BuffersOutstanding())
}

func TestTallyFrequency(t *testing.T) {
	tally := executor.NewTally[string](executor.Frequency, executor.WithWorkers(2))
	tally.Load([]string{"a", "b", "a", "a", "c"})
	requireAll(t, tally, 3)

	tally.Load(nil)
	requireAll(t, tally, 0)
}

func TestTallyLarge(t *testing.T) {
	keys := make([]string, 20000)
	for i := range keys {
		keys[i] = fmt.Sprintf("user%v", i%97)
	}
	distinct := executor.NewTally[string](executor.Distinct, executor.WithWorkers(5))
	distinct.Load(keys)
	requireAll(t, distinct, 97)

	frequency := executor.NewTally[string](executor.Frequency, executor.WithWorkers(5))
	frequency.Load(keys)
	// 20000 = 97*206 + 18, so the first 18 keys occur 207 times.
	requireAll(t, frequency, 207)
}

func TestTallySignedZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	keys := []float64{0, negZero, 0, negZero, 1}
	distinct := executor.NewTally[float64](executor.Distinct, executor.WithWorkers(4))
	distinct.Load(keys)
	requireAll(t, distinct, 2)

	frequency := executor.NewTally[float64](executor.Frequency, executor.WithWorkers(4))
	frequency.Load(keys)
	requireAll(t, frequency, 4)
}

func TestModeString(t *testing.T) {
	require.Equal(t, "distinct", executor.Distinct.String())
	require.Equal(t, "frequency", executor.Frequency.String())
	require.Equal(t, "unknown", executor.Mode(7).String())
}

func ExampleTally() {
	tally := executor.NewTally[string](executor.Frequency)
	tally.Load([]string{"a", "b", "a", "a", "c"})
	n, err := tally.ConcurrentSet()
	fmt.Println(n, err)
	// Output: 3 <nil>
}
