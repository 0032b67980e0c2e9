// Package quantize evaluates integer-quantized face embeddings.
package quantize

import (
	"fmt"
	"io"
	"math"

	"github.com/embeval/facedim/internal/subset"
	"github.com/embeval/facedim/internal/verify"
)

// Int8 scales the embedding and truncates every component to int8,
// saturating at the type bounds. NaN maps to zero.
func Int8(emb []float32, scale float32) []int8 {
	out := make([]int8, len(emb))
	for i, v := range emb {
		out[i] = sat8(v * scale)
	}
	return out
}

// Int32 scales the embedding and truncates every component to int32,
// saturating at the type bounds. NaN maps to zero.
func Int32(emb []float32, scale float32) []int32 {
	out := make([]int32, len(emb))
	for i, v := range emb {
		out[i] = sat32(v * scale)
	}
	return out
}

// Gather returns the components of emb at the given indices, in index order.
func Gather(emb []int8, indices []int) []int8 {
	out := make([]int8, len(indices))
	for i, idx := range indices {
		out[i] = emb[idx]
	}
	return out
}

// Sweep quantizes every embedding to int32 at each scale in [1, maxScale)
// and reports the verification error together with the quantized component
// range per scale. A full-precision baseline line precedes the header.
func Sweep(w io.Writer, samples []subset.PairSample, maxScale int) {
	base := subset.Collect(samples, nil).Search()
	fmt.Fprintf(w, "original_f32;%s\n", base.Report())

	fmt.Fprintln(w, "scale;min-value;max-value;threshold;fp;fn")
	for scale := 1; scale < maxScale; scale++ {
		lo, hi := int32(math.MaxInt32), int32(math.MinInt32)
		d := &verify.Distances{}

		for _, s := range samples {
			qa := Int32(s.A, float32(scale))
			qb := Int32(s.B, float32(scale))
			lo, hi = componentRange(qa, lo, hi)
			lo, hi = componentRange(qb, lo, hi)

			var dist int64
			for i := range qa {
				dv := int64(qa[i]) - int64(qb[i])
				dist += dv * dv
			}
			d.Add(s.Same, float64(dist))
		}

		res := d.Search()
		fmt.Fprintf(w, "%d;%d;%d;%s\n", scale, lo, hi, res.Report())
	}
}

// FixedSubset quantizes every embedding to int8 at the given scale and
// evaluates the verification error over the fixed index subset.
func FixedSubset(samples []subset.PairSample, indices []int, scale float32) verify.SearchResult {
	d := &verify.Distances{}
	for _, s := range samples {
		qa := Int8(s.A, scale)
		qb := Int8(s.B, scale)

		var dist int64
		for _, idx := range indices {
			dv := int64(qa[idx]) - int64(qb[idx])
			dist += dv * dv
		}
		d.Add(s.Same, float64(dist))
	}
	return d.Search()
}

func componentRange(emb []int32, lo, hi int32) (int32, int32) {
	for _, v := range emb {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func sat8(v float32) int8 {
	switch {
	case v != v: // NaN
		return 0
	case v >= math.MaxInt8:
		return math.MaxInt8
	case v <= math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}

func sat32(v float32) int32 {
	switch {
	case v != v: // NaN
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}
