// Package embcache caches face embeddings keyed by image path, so the
// expensive pipeline runs at most once per image.
package embcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/faceapi"
)

// Embedding is a face embedding vector.
type Embedding = []float32

// ErrMalformedCache reports persisted cache data that exists but cannot be
// decoded. It is distinct from a missing cache, which simply starts empty.
var ErrMalformedCache = errors.New("malformed embedding cache")

// Store persists the full path-to-embedding mapping.
type Store interface {
	// Load returns all persisted entries. A store with nothing persisted
	// yet returns an empty map, not an error.
	Load(ctx context.Context) (map[string]Embedding, error)
	// Save persists the complete mapping, replacing earlier state.
	Save(ctx context.Context, entries map[string]Embedding) error
}

// IncrementalStore is implemented by stores that can persist a single entry
// without rewriting the whole mapping. The cache prefers it over Save.
type IncrementalStore interface {
	Store
	Insert(ctx context.Context, path string, emb Embedding) error
}

// Cache maps image paths to face embeddings. Every addition is persisted
// through the configured store. All methods are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Embedding
	store   Store
}

// Open loads all persisted entries. A nil store yields a purely in-memory
// cache.
func Open(ctx context.Context, store Store) (*Cache, error) {
	c := &Cache{entries: make(map[string]Embedding), store: store}
	if store != nil {
		entries, err := store.Load(ctx)
		if err != nil {
			return nil, err
		}
		if entries != nil {
			c.entries = entries
		}
	}
	return c, nil
}

// Get returns the cached embedding for an image path.
func (c *Cache) Get(path string) (Embedding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	emb, ok := c.entries[path]
	return emb, ok
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Paths returns all cached image paths, sorted.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.entries))
	for path := range c.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns a copy of the full mapping. The embeddings themselves are
// shared and must not be mutated.
func (c *Cache) Snapshot() map[string]Embedding {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make(map[string]Embedding, len(c.entries))
	for path, emb := range c.entries {
		entries[path] = emb
	}
	return entries
}

// Add stores the embedding and persists it. The store call happens under
// the cache lock, serializing concurrent writers.
func (c *Cache) Add(ctx context.Context, path string, emb Embedding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = emb
	if c.store == nil {
		return nil
	}

	var err error
	if inc, ok := c.store.(IncrementalStore); ok {
		err = inc.Insert(ctx, path, emb)
	} else {
		err = c.store.Save(ctx, c.entries)
	}
	if err != nil {
		return fmt.Errorf("failed to persist embedding cache: %w", err)
	}
	return nil
}

// Ensure computes and stores the embedding for the image unless it is
// already cached. When the picture contains several faces, the one whose
// nose lies closest to the image center is used. Images without any face
// are skipped with a diagnostic; that is not an error.
func (c *Cache) Ensure(ctx context.Context, path string, pipe faceapi.Pipeline) error {
	if _, ok := c.Get(path); ok {
		return nil
	}

	data, width, height, err := faceapi.LoadImage(path, constants.MaxSubmitSize)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	faces, err := pipe.Detect(ctx, data)
	if err != nil {
		return fmt.Errorf("detect faces in %s: %w", path, err)
	}
	best := faceapi.ClosestToCenter(faces, width, height)
	if best < 0 {
		log.Printf("ignored %s: no faces detected", path)
		return nil
	}

	crop, err := pipe.Align(ctx, data, faces[best].Landmarks)
	if err != nil {
		return fmt.Errorf("align face in %s: %w", path, err)
	}

	emb, err := pipe.Embed(ctx, crop)
	if err != nil {
		return fmt.Errorf("embed face in %s: %w", path, err)
	}

	return c.Add(ctx, path, emb)
}
