package sort

import (
	"cmp"
	"slices"
)

const qsortGrainSize = 0x500

func medianOfThree(less func(i, j int) bool, l, m, r int) int {
	if less(l, m) {
		if less(m, r) {
			return m
		} else if less(l, r) {
			return r
		}
	} else if less(r, m) {
		return m
	} else if less(r, l) {
		return r
	}
	return l
}

func pseudoMedianOfNine(less func(i, j int) bool, index, size int) int {
	offset := size / 8
	return medianOfThree(less,
		medianOfThree(less, index, index+offset, index+offset*2),
		medianOfThree(less, index+offset*3, index+offset*4, index+offset*5),
		medianOfThree(less, index+offset*6, index+offset*7, index+size-1),
	)
}

// Sort sorts s in increasing order with a parallel quicksort.
func Sort[E cmp.Ordered](s []E) {
	SortFunc(s, cmp.Compare[E])
}

/*
SortFunc sorts s according to cmp with a parallel quicksort. The sort is
not stable.

It is good for small core counts and small slices.
*/
func SortFunc[E any](s []E, cmp func(a, b E) int) {
	size := len(s)
	if size < qsortGrainSize {
		slices.SortFunc(s, cmp)
		return
	}
	less := func(i, j int) bool { return cmp(s[i], s[j]) < 0 }
	var pSort func(int, int)
	pSort = func(index, size int) {
		if size < qsortGrainSize {
			slices.SortFunc(s[index:index+size], cmp)
			return
		}
		m := pseudoMedianOfNine(less, index, size)
		if m > index {
			s[index], s[m] = s[m], s[index]
		}
		i, j := index, index+size
	outer:
		for {
			for {
				j--
				if !less(index, j) {
					break
				}
			}
			for {
				if i == j {
					break outer
				}
				i++
				if !less(i, index) {
					break
				}
			}
			if i == j {
				break outer
			}
			s[i], s[j] = s[j], s[i]
		}
		s[j], s[index] = s[index], s[j]
		i = j + 1
		do(
			func() { pSort(index, j-index) },
			func() { pSort(i, index+size-i) },
		)
	}
	if !IsSortedFunc(s, cmp) {
		pSort(0, size)
	}
}
