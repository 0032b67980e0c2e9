package dataset

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/embeval/facedim/internal/embcache"
)

// Stats summarizes a benchmark against the current cache state.
type Stats struct {
	Kind        Kind `json:"kind"`
	Pairs       int  `json:"pairs"`
	SamePairs   int  `json:"same_pairs"`
	DiffPairs   int  `json:"diff_pairs"`
	Images      int  `json:"images"`
	People      int  `json:"people"`
	Cached      int  `json:"cached"`
	UsablePairs int  `json:"usable_pairs"`
}

// Stats counts pairs, distinct images and people, and how much of the
// benchmark the cache already covers. A nil cache reports zero coverage.
func (d *Dataset) Stats(cache *embcache.Cache) Stats {
	st := Stats{Kind: d.kind, Pairs: len(d.pairs)}

	images := make(map[string]bool)
	people := make(map[string]bool)
	for _, p := range d.pairs {
		if p.Same {
			st.SamePairs++
		} else {
			st.DiffPairs++
		}
		images[p.PathA] = true
		images[p.PathB] = true
		people[PersonName(p.PathA)] = true
		people[PersonName(p.PathB)] = true

		if cache == nil {
			continue
		}
		_, okA := cache.Get(p.PathA)
		_, okB := cache.Get(p.PathB)
		if okA && okB {
			st.UsablePairs++
		}
	}
	st.Images = len(images)
	st.People = len(people)

	if cache != nil {
		for path := range images {
			if _, ok := cache.Get(path); ok {
				st.Cached++
			}
		}
	}
	return st
}

// PersonName derives a person identifier from an image path: the base name
// without extension and trailing image number, with diacritics removed so
// names from different sources compare equal.
func PersonName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(name, "_"); i > 0 && isDigits(name[i+1:]) {
		name = name[:i]
	}
	return removeDiacritics(name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
