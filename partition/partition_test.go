package partition

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func checkCoverage(t *testing.T, ranges []Range, low, high int) {
	t.Helper()
	seen := make([]int, high-low)
	for _, r := range ranges {
		require.LessOrEqual(t, r.Low, r.High, "range %v is inverted", r)
		for i := r.Low; i < r.High; i++ {
			require.GreaterOrEqual(t, i, low)
			require.Less(t, i, high)
			seen[i-low]++
		}
	}
	for i, n := range seen {
		require.Equal(t, 1, n, "index %d covered %d times", i+low, n)
	}
}

func TestPlanExample(t *testing.T) {
	want := []Range{{0, 3}, {3, 6}, {6, 10}}
	if diff := cmp.Diff(want, Plan(10, 3)); diff != "" {
		t.Errorf("Plan(10, 3) mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanCoverage(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for w := 1; w <= 12; w++ {
			t.Run(fmt.Sprintf("n=%d/w=%d", n, w), func(t *testing.T) {
				ranges := Plan(n, w)
				require.Len(t, ranges, w)
				checkCoverage(t, ranges, 0, n)
				for i := 1; i < len(ranges); i++ {
					require.Equal(t, ranges[i-1].High, ranges[i].Low, "ranges must be contiguous")
				}
				require.Equal(t, n, ranges[w-1].High)
			})
		}
	}
}

func TestPlanFewerElementsThanWorkers(t *testing.T) {
	ranges := Plan(2, 5)
	want := []Range{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 2}}
	if diff := cmp.Diff(want, ranges); diff != "" {
		t.Errorf("Plan(2, 5) mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRange(t *testing.T) {
	ranges := PlanRange(5, 15, 4)
	checkCoverage(t, ranges, 5, 15)
	require.Equal(t, Range{5, 7}, ranges[0])
	require.Equal(t, Range{11, 15}, ranges[3])
}

func TestPlanPanics(t *testing.T) {
	require.Panics(t, func() { Plan(-1, 2) })
	require.Panics(t, func() { Plan(10, 0) })
}

func TestChunkSize(t *testing.T) {
	require.Equal(t, 1, ChunkSize(0, 100, 0))
	require.Equal(t, 7, ChunkSize(0, 100, -7))
	require.Equal(t, 1, ChunkSize(0, 0, 3))
	require.GreaterOrEqual(t, ChunkSize(0, 1000, 3), 1)
}

func TestPartitionerConcurrent(t *testing.T) {
	for _, chunk := range []int{0, 1, 3, 64, 5000} {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			p := NewPartitioner(0, 1000, chunk)
			var (
				m      sync.Mutex
				ranges []Range
				wg     sync.WaitGroup
			)
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for r, ok := p.Next(); ok; r, ok = p.Next() {
						m.Lock()
						ranges = append(ranges, r)
						m.Unlock()
					}
				}()
			}
			wg.Wait()
			sort.Slice(ranges, func(i, j int) bool { return ranges[i].Low < ranges[j].Low })
			checkCoverage(t, ranges, 0, 1000)
		})
	}
}

func TestPartitionerEmpty(t *testing.T) {
	p := NewPartitioner(4, 4, 0)
	_, ok := p.Next()
	require.False(t, ok)
}

func ExamplePlan() {
	fmt.Println(Plan(10, 3))

	// Output:
	// [[0,3) [3,6) [6,10)]
}
