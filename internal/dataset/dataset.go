// Package dataset parses the labelled image-pair benchmarks used for
// verification experiments. Exactly two benchmark kinds exist; both resolve
// to the same surface of ordered image paths and labelled pairs.
package dataset

import (
	"fmt"

	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/subset"
)

// Default pair-file locations, relative to the working directory.
const (
	DefaultLFWPairsFile   = "data/lfw-pairs.txt"
	DefaultCPLFWPairsFile = "data/pairs_CPLFW.txt"
)

// Kind tags the two supported benchmark formats.
type Kind string

const (
	KindLFW   Kind = "lfw"   // frontal pairs, 3/4-field pairs file
	KindCPLFW Kind = "cplfw" // cross-pose pairs, alternating-line pairs file
)

// Pair is one labelled image pair.
type Pair struct {
	Same  bool
	PathA string
	PathB string
}

// Dataset is a parsed benchmark. The two kinds differ only in how their
// pairs file is parsed; everything downstream treats them identically.
type Dataset struct {
	kind  Kind
	pairs []Pair
}

// New loads the benchmark for a difficulty level. The easy level maps to
// LFW, the hard one to CPLFW. An empty pairsFile selects the default
// location for the level.
func New(difficulty, basePath, pairsFile string) (*Dataset, error) {
	switch difficulty {
	case "easy":
		if pairsFile == "" {
			pairsFile = DefaultLFWPairsFile
		}
		return LoadLFW(pairsFile, basePath)
	case "hard":
		if pairsFile == "" {
			pairsFile = DefaultCPLFWPairsFile
		}
		return LoadCPLFW(pairsFile, basePath)
	default:
		return nil, fmt.Errorf("unknown dataset %q, possible values: easy, hard", difficulty)
	}
}

// Kind returns the benchmark kind tag.
func (d *Dataset) Kind() Kind {
	return d.kind
}

// Name returns the benchmark name, also used to derive cache file names.
func (d *Dataset) Name() string {
	return string(d.kind)
}

// CacheFile returns the default embedding cache location for this benchmark.
func (d *Dataset) CacheFile() string {
	return fmt.Sprintf("data/cache-%s.json", d.kind)
}

// Images returns every image path referenced by the pairs file, in file
// order. Paths repeat when an image participates in several pairs.
func (d *Dataset) Images() []string {
	images := make([]string, 0, 2*len(d.pairs))
	for _, p := range d.pairs {
		images = append(images, p.PathA, p.PathB)
	}
	return images
}

// AllPairs returns the labelled path pairs in file order.
func (d *Dataset) AllPairs() []Pair {
	pairs := make([]Pair, len(d.pairs))
	copy(pairs, d.pairs)
	return pairs
}

// Pairs resolves the path pairs against the cache. Pairs with at least one
// image missing from the cache are dropped.
func (d *Dataset) Pairs(cache *embcache.Cache) []subset.PairSample {
	samples := make([]subset.PairSample, 0, len(d.pairs))
	for _, p := range d.pairs {
		a, ok := cache.Get(p.PathA)
		if !ok {
			continue
		}
		b, ok := cache.Get(p.PathB)
		if !ok {
			continue
		}
		samples = append(samples, subset.PairSample{Same: p.Same, A: a, B: b})
	}
	return samples
}
