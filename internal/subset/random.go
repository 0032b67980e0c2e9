package subset

import (
	"fmt"
	"io"
	"math/rand"
)

// Random evaluates repeated random subsets of the requested size. Every
// trial draws fresh indices from [0, fullDim) and is reported as-is; no best
// trial is tracked across trials.
func Random(w io.Writer, rng *rand.Rand, samples []PairSample, fullDim, size, trials int) {
	fmt.Fprintln(w, "amount_dimensions;indices;optimal_threshold_used;fp;fn")
	randomTrials(w, rng, samples, fullDim, size, trials)
}

// RandomFull runs the random trials for every subset size from fullDim down
// to one.
func RandomFull(w io.Writer, rng *rand.Rand, samples []PairSample, fullDim, trials int) {
	fmt.Fprintln(w, "amount_dimensions;indices;optimal_threshold_used;fp;fn")
	for size := fullDim; size >= 1; size-- {
		randomTrials(w, rng, samples, fullDim, size, trials)
	}
}

func randomTrials(w io.Writer, rng *rand.Rand, samples []PairSample, fullDim, size, trials int) {
	for t := 0; t < trials; t++ {
		indices := Range(fullDim)
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		indices = indices[:size]

		res := Collect(samples, indices).Search()
		fmt.Fprintf(w, "%d;%v;%s\n", size, indices, res.Report())
	}
}
