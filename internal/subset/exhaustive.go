package subset

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/embeval/facedim/internal/progress"
)

// Exhaustive enumerates every dimension combination for each subset size
// below amountDim and reports the best combination per size. The number of
// combinations doubles with every extra dimension, so this is only practical
// for small amountDim.
func Exhaustive(w io.Writer, samples []PairSample, amountDim int, showProgress bool) {
	fmt.Fprintln(w, "subset_size;indices;amount_false")

	for k := 0; k < amountDim; k++ {
		var (
			bestDims  []int
			bestFalse = math.MaxInt
		)

		step := func() {}
		if showProgress {
			bar := progress.New(binomial(amountDim, k), fmt.Sprintf("Evaluating %d-element subsets", k), "subsets")
			step = func() { bar.Add(1) }
		}

		combinations(amountDim, k, func(dims []int) {
			step()
			af := Collect(samples, dims).Search().Matrix.AmountFalse()
			if af < bestFalse {
				bestFalse = af
				bestDims = append([]int(nil), dims...)
			}
		})
		if showProgress {
			fmt.Fprintln(os.Stderr) // New line after progress bar
		}

		fmt.Fprintf(w, "%d;%v;%d\n", k, bestDims, bestFalse)
	}
}

// combinations calls fn with every k-element combination of [0, n) in
// lexicographic order. The slice is reused between calls; fn must copy it to
// retain it.
func combinations(n, k int, fn func(dims []int)) {
	if k < 0 || k > n {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// binomial returns n choose k.
func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
