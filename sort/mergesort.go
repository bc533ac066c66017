package sort

import (
	"cmp"
	"slices"
)

const msortGrainSize = 0x3000

// binarySearchEq returns the first index in t[p:r+1] whose element is
// not less than t[x].
func binarySearchEq[E any](x int, t []E, p, r int, cmp func(a, b E) int) int {
	low, high := p, r+1
	if low > high {
		return low
	}
	for low < high {
		mid := (low + high) / 2
		if cmp(t[mid], t[x]) >= 0 {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return high
}

// binarySearchNeq returns the first index in t[p:r+1] whose element is
// greater than t[x].
func binarySearchNeq[E any](x int, t []E, p, r int, cmp func(a, b E) int) int {
	low, high := p, r+1
	if low > high {
		return low
	}
	for low < high {
		mid := (low + high) / 2
		if cmp(t[x], t[mid]) < 0 {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return high
}

// sMerge merges t[p1:r1+1] and t[p2:r2+1] into a[p3:].
func sMerge[E any](t []E, p1, r1, p2, r2 int, a []E, p3 int, cmp func(a, b E) int) {
	for {
		if p2 > r2 {
			copy(a[p3:], t[p1:r1+1])
			return
		}

		q1 := p1
		for (p1 <= r1) && (cmp(t[p2], t[p1]) >= 0) {
			p1++
		}
		p3 += copy(a[p3:], t[q1:p1])

		if p1 > r1 {
			copy(a[p3:], t[p2:r2+1])
			return
		}

		q2 := p2
		for (p2 <= r2) && (cmp(t[p2], t[p1]) < 0) {
			p2++
		}
		p3 += copy(a[p3:], t[q2:p2])
	}
}

func pMerge[E any](t []E, p1, r1, p2, r2 int, a []E, p3 int, cmp func(a, b E) int) {
	n1 := r1 - p1 + 1
	n2 := r2 - p2 + 1
	if (n1 + n2) < msortGrainSize {
		sMerge(t, p1, r1, p2, r2, a, p3, cmp)
		return
	}
	if n1 > n2 {
		q1 := (p1 + r1) / 2
		q2 := binarySearchEq(q1, t, p2, r2, cmp)
		q3 := p3 + (q1 - p1) + (q2 - p2)
		a[q3] = t[q1]
		do(
			func() { pMerge(t, p1, q1-1, p2, q2-1, a, p3, cmp) },
			func() { pMerge(t, q1+1, r1, q2, r2, a, q3+1, cmp) },
		)
	} else {
		if n2 == 0 {
			return
		}
		q2 := (p2 + r2) / 2
		q1 := binarySearchNeq(q2, t, p1, r1, cmp)
		q3 := p3 + (q1 - p1) + (q2 - p2)
		a[q3] = t[q2]
		do(
			func() { pMerge(t, p1, q1-1, p2, q2-1, a, p3, cmp) },
			func() { pMerge(t, q1, r1, q2+1, r2, a, q3+1, cmp) },
		)
	}
}

// StableSort sorts s in increasing order with a parallel merge sort,
// keeping the original order of equal elements.
func StableSort[E cmp.Ordered](s []E) {
	StableSortFunc(s, cmp.Compare[E])
}

/*
StableSortFunc sorts s according to cmp with a parallel merge sort, also
known as cilksort, keeping the original order of equal elements.

It is good for large core counts and large slices, but needs a
temporary copy of s.
*/
func StableSortFunc[E any](s []E, cmp func(a, b E) int) {
	// See https://en.wikipedia.org/wiki/Introduction_to_Algorithms and
	// https://www.clear.rice.edu/comp422/lecture-notes/ for details on the algorithm.
	size := len(s)
	if size < msortGrainSize {
		slices.SortStableFunc(s, cmp)
		return
	}
	temp := make([]E, size)
	var pSort func(int, int)
	pSort = func(index, size int) {
		if size < msortGrainSize {
			slices.SortStableFunc(s[index:index+size], cmp)
			return
		}
		q1 := size / 4
		q2 := q1 + q1
		q3 := q2 + q1
		do(
			func() { pSort(index, q1) },
			func() { pSort(index+q1, q1) },
			func() { pSort(index+q2, q1) },
			func() { pSort(index+q3, size-q3) },
		)
		do(
			func() { pMerge(s, index, index+q1-1, index+q1, index+q2-1, temp, index, cmp) },
			func() { pMerge(s, index+q2, index+q3-1, index+q3, index+size-1, temp, index+q2, cmp) },
		)
		pMerge(temp, index, index+q2-1, index+q2, index+size-1, s, index, cmp)
	}
	pSort(0, size)
}
