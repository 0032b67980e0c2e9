package verify

import (
	"fmt"
	"math"
	"sort"
)

// Distances collects squared embedding distances for labelled image pairs,
// split by whether both images show the same person.
type Distances struct {
	Same []float64
	Diff []float64
}

// Add records one pair distance under its ground-truth label.
func (d *Distances) Add(same bool, dist float64) {
	if same {
		d.Same = append(d.Same, dist)
	} else {
		d.Diff = append(d.Diff, dist)
	}
}

// Len returns the total number of recorded pairs.
func (d *Distances) Len() int {
	return len(d.Same) + len(d.Diff)
}

// ConfusionMatrix holds the four outcome counts of a verification run at a
// fixed distance threshold. A pair whose distance is at or below the
// threshold is classified as showing the same person.
type ConfusionMatrix struct {
	TruePositives  int
	FalseNegatives int
	TrueNegatives  int
	FalsePositives int
}

// NewConfusionMatrix classifies every recorded distance at the given threshold.
func NewConfusionMatrix(threshold float64, d *Distances) ConfusionMatrix {
	var m ConfusionMatrix
	for _, v := range d.Same {
		if v <= threshold {
			m.TruePositives++
		}
	}
	m.FalseNegatives = len(d.Same) - m.TruePositives
	for _, v := range d.Diff {
		if v > threshold {
			m.TrueNegatives++
		}
	}
	m.FalsePositives = len(d.Diff) - m.TrueNegatives
	return m
}

// AmountFalse is the number of misclassified pairs.
func (m ConfusionMatrix) AmountFalse() int {
	return m.FalseNegatives + m.FalsePositives
}

// AmountCorrect is the number of correctly classified pairs.
func (m ConfusionMatrix) AmountCorrect() int {
	return m.TruePositives + m.TrueNegatives
}

// FalseDiscoveryRate returns fp / (fp + tp). It is NaN when no pair was
// accepted at the threshold.
func (m ConfusionMatrix) FalseDiscoveryRate() float64 {
	accepted := m.FalsePositives + m.TruePositives
	if accepted == 0 {
		return math.NaN()
	}
	return float64(m.FalsePositives) / float64(accepted)
}

// FalseOmissionRate returns fn / (fn + tn). It is NaN when no pair was
// rejected at the threshold.
func (m ConfusionMatrix) FalseOmissionRate() float64 {
	rejected := m.FalseNegatives + m.TrueNegatives
	if rejected == 0 {
		return math.NaN()
	}
	return float64(m.FalseNegatives) / float64(rejected)
}

// SearchResult is the outcome of a threshold search.
type SearchResult struct {
	Threshold float64
	Matrix    ConfusionMatrix
}

// Report renders the result as "threshold;falsePositives;falseNegatives".
func (r SearchResult) Report() string {
	return fmt.Sprintf("%g;%d;%d", r.Threshold, r.Matrix.FalsePositives, r.Matrix.FalseNegatives)
}

// RelativeReport renders the result as
// "threshold;falseDiscoveryRate;falseOmissionRate".
func (r SearchResult) RelativeReport() string {
	return fmt.Sprintf("%g;%g;%g", r.Threshold, r.Matrix.FalseDiscoveryRate(), r.Matrix.FalseOmissionRate())
}

// Search finds the threshold with the fewest misclassified pairs. Only the
// observed distances are candidates: between two neighbouring observations
// every threshold splits the pairs identically. Ties resolve to the smallest
// candidate. With no recorded pairs the zero result is returned.
//
// The sweep keeps running counts over the sorted distances instead of
// reclassifying all pairs per candidate, which makes it O(n log n).
func (d *Distances) Search() SearchResult {
	if d.Len() == 0 {
		return SearchResult{}
	}

	same := append([]float64(nil), d.Same...)
	diff := append([]float64(nil), d.Diff...)
	sort.Float64s(same)
	sort.Float64s(diff)

	candidates := make([]float64, 0, len(same)+len(diff))
	candidates = append(candidates, same...)
	candidates = append(candidates, diff...)
	sort.Float64s(candidates)

	var (
		bestThreshold float64
		bestFalse     = math.MaxInt
		iSame, iDiff  int
	)
	for i, t := range candidates {
		if i > 0 && t == candidates[i-1] {
			continue // duplicate candidate, identical split
		}
		for iSame < len(same) && same[iSame] <= t {
			iSame++
		}
		for iDiff < len(diff) && diff[iDiff] <= t {
			iDiff++
		}
		// iSame pairs are true positives here, iDiff are false positives.
		falseCount := (len(same) - iSame) + iDiff
		if falseCount < bestFalse {
			bestFalse = falseCount
			bestThreshold = t
		}
	}

	return SearchResult{
		Threshold: bestThreshold,
		Matrix:    NewConfusionMatrix(bestThreshold, d),
	}
}
