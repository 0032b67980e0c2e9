package embcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileStore persists the cache as a single JSON object mapping image paths
// to embedding arrays.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted mapping. Any unreadable file (most commonly one
// that does not exist yet) yields an empty mapping; data that exists but
// does not decode yields ErrMalformedCache.
func (s *FileStore) Load(_ context.Context) (map[string]Embedding, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]Embedding{}, nil
	}

	var entries map[string]Embedding
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCache, s.path, err)
	}
	if entries == nil {
		entries = map[string]Embedding{}
	}
	return entries, nil
}

// Save writes the complete mapping, replacing the previous file contents.
// The data is staged in a temporary file and renamed into place so readers
// never observe a partial write.
func (s *FileStore) Save(_ context.Context, entries map[string]Embedding) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode embedding cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ Store = (*FileStore)(nil)
