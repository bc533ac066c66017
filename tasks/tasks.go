/*
Package tasks implements the task variants of parpat and registers them
under the following names:

	prime        prime numbers among random values
	alternation  parity changes between neighbouring random values
	extremum     strict local minima and maxima among random values
	reverse      reversal of random values
	sort         sort of random values
	dedup        distinct integers in the *.txt files of a directory
	frequency    highest line frequency in the *.txt files of a directory

Numeric tasks generate their datasets with a fixed seed, so that every
strategy and every round sees the same input.
*/
package tasks

import (
	"github.com/exascience/parpat"
)

var (
	_ parpat.Task = (*Prime)(nil)
	_ parpat.Task = (*Alternation)(nil)
	_ parpat.Task = (*Extremum)(nil)
	_ parpat.Task = (*Reverse)(nil)
	_ parpat.Task = (*Sort)(nil)
	_ parpat.Task = (*Dedup)(nil)
	_ parpat.Task = (*Frequency)(nil)
)

func init() {
	parpat.Register("prime", newPrimeTask)
	parpat.Register("alternation", newAlternationTask)
	parpat.Register("extremum", newExtremumTask)
	parpat.Register("reverse", newReverseTask)
	parpat.Register("sort", newSortTask)
	parpat.Register("dedup", newDedupTask)
	parpat.Register("frequency", newFrequencyTask)
}
