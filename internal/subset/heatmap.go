package subset

import (
	"fmt"
	"io"
)

// Heatmap scores every dimension below amountDim by how it splits matching
// from non-matching pairs: squared differences on same-person pairs lower
// the score, on different-person pairs they raise it. Scores are min-max
// normalized to [0, 1], so 1 marks the most discriminative dimension.
func Heatmap(samples []PairSample, amountDim int) []float64 {
	impact := make([]float64, amountDim)
	for _, s := range samples {
		for i := 0; i < amountDim; i++ {
			d := float64(s.A[i]) - float64(s.B[i])
			if s.Same {
				impact[i] -= d * d
			} else {
				impact[i] += d * d
			}
		}
	}
	if len(impact) == 0 {
		return impact
	}

	lo, hi := impact[0], impact[0]
	for _, v := range impact[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for i := range impact {
		impact[i] = (impact[i] - lo) / (hi - lo)
	}
	return impact
}

// WriteHeatmap renders the scores as "idx;neg_impact" lines.
func WriteHeatmap(w io.Writer, impact []float64) {
	fmt.Fprintln(w, "idx;neg_impact")
	for i, v := range impact {
		fmt.Fprintf(w, "%d;%g\n", i, v)
	}
}
