package embcache

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/embeval/facedim/internal/subset"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// Neighbor is one nearest-neighbour search hit.
type Neighbor struct {
	Path     string  `json:"path"`
	Distance float64 `json:"distance"`
}

// Index answers approximate nearest-neighbour queries over cached
// embeddings. Reported distances are exact squared euclidean distances,
// recomputed from the embeddings; only the candidate selection is
// approximate.
type Index struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[string]
	byPath map[string]Embedding
}

// NewIndex builds an index over the given embeddings. Entries are inserted
// in sorted path order so repeated builds behave identically.
func NewIndex(entries map[string]Embedding) *Index {
	ix := &Index{byPath: make(map[string]Embedding, len(entries))}
	if len(entries) == 0 {
		return ix
	}

	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		emb := entries[path]
		if len(emb) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(path, emb))
		ix.byPath[path] = emb
	}

	ix.graph = g
	return ix
}

// Len returns the number of indexed embeddings.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byPath)
}

// Nearest returns the k nearest cached embeddings to the query.
func (ix *Index) Nearest(query Embedding, k int) ([]Neighbor, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, fmt.Errorf("index is empty")
	}

	nodes := ix.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		emb, ok := ix.byPath[n.Key]
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Path:     n.Key,
			Distance: subset.Distance(query, emb, nil),
		})
	}
	return neighbors, nil
}

// Save persists the index graph to the given path.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		os.Remove(path)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	if err := ix.graph.Export(f); err != nil {
		return fmt.Errorf("failed to export index: %w", err)
	}
	return nil
}

// LoadIndex restores an index persisted with Save. Exact distances are not
// part of the graph file, so the embeddings must be supplied again.
func LoadIndex(path string, entries map[string]Embedding) (*Index, error) {
	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load index %s: %w", path, err)
	}

	ix := &Index{
		graph:  saved.Graph,
		byPath: make(map[string]Embedding, len(entries)),
	}
	for p, emb := range entries {
		ix.byPath[p] = emb
	}
	return ix, nil
}
