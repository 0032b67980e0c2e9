// Package subset searches for low-dimensional index subsets of face
// embeddings that keep the verification error low.
package subset

import (
	"fmt"
	"io"

	"github.com/embeval/facedim/internal/verify"
)

// PairSample is one labelled comparison: the embeddings of two face images
// together with the ground truth of whether they show the same person.
type PairSample struct {
	Same bool
	A, B []float32
}

// Distance returns the squared euclidean distance between a and b over the
// given dimension subset. A nil subset means every dimension of a. Both
// embeddings must cover all requested indices.
func Distance(a, b []float32, dims []int) float64 {
	var sum float64
	if dims == nil {
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return sum
	}
	for _, i := range dims {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Collect computes the distance of every sample over the dimension subset.
func Collect(samples []PairSample, dims []int) *verify.Distances {
	d := &verify.Distances{}
	for _, s := range samples {
		d.Add(s.Same, Distance(s.A, s.B, dims))
	}
	return d
}

// Range returns the dimension indices [0, n).
func Range(n int) []int {
	dims := make([]int, n)
	for i := range dims {
		dims[i] = i
	}
	return dims
}

// Truncate evaluates embedding prefixes from fullDim down to a single
// dimension, one report line per prefix length. With relative set the lines
// carry error rates instead of absolute counts.
func Truncate(w io.Writer, samples []PairSample, fullDim int, relative bool) {
	if relative {
		fmt.Fprintln(w, "embedding_dimensions;optimal_threshold_used;false_discovery_rate;false_omission_rate")
	} else {
		fmt.Fprintln(w, "embedding_dimensions;optimal_threshold_used;fp;fn")
	}

	dims := Range(fullDim)
	for i := fullDim; i >= 1; i-- {
		res := Collect(samples, dims[:i]).Search()
		if relative {
			fmt.Fprintf(w, "%d;%s\n", i, res.RelativeReport())
		} else {
			fmt.Fprintf(w, "%d;%s\n", i, res.Report())
		}
	}
}
