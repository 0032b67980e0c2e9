package subset

import (
	"fmt"
	"io"
	"math"
	"slices"
)

// Greedy builds a subset by forward selection. Each step tries every unused
// dimension below amountDim on top of the already fixed ones and permanently
// adds the candidate with the lowest error, ties resolving to the lowest
// index. Earlier choices are never reconsidered, so the error can stagnate
// even when a better subset of the same size exists.
//
// One line per step is written; the selected indices are returned in
// selection order.
func Greedy(w io.Writer, samples []PairSample, amountDim int) []int {
	fmt.Fprintln(w, "subset_size;indices;amount_false")

	fixed := make([]int, 0, amountDim)
	for len(fixed) < amountDim {
		bestIdx := -1
		bestFalse := math.MaxInt

		trial := make([]int, len(fixed)+1)
		copy(trial, fixed)
		for idx := 0; idx < amountDim; idx++ {
			if slices.Contains(fixed, idx) {
				continue
			}
			trial[len(trial)-1] = idx
			af := Collect(samples, trial).Search().Matrix.AmountFalse()
			if af < bestFalse {
				bestFalse = af
				bestIdx = idx
			}
		}

		fixed = append(fixed, bestIdx)
		fmt.Fprintf(w, "%d;%v;%d\n", len(fixed), fixed, bestFalse)
	}
	return fixed
}
