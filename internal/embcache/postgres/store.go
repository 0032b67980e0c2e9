package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/embcache"
)

// Store provides PostgreSQL-backed embedding cache storage.
type Store struct {
	pool *Pool
}

// NewStore creates a store on top of an existing pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to the database, applies pending migrations and returns a
// ready-to-use store.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewStore(pool), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Load retrieves the full path-to-embedding mapping.
func (s *Store) Load(ctx context.Context) (map[string]embcache.Embedding, error) {
	rows, err := s.pool.Query(ctx, "SELECT image_path, embedding FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]embcache.Embedding)
	for rows.Next() {
		var path string
		var vec pgvector.Vector
		if err := rows.Scan(&path, &vec); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		entries[path] = vec.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return entries, nil
}

// Insert stores a single embedding (upsert).
func (s *Store) Insert(ctx context.Context, path string, emb embcache.Embedding) error {
	query := `
		INSERT INTO embeddings (image_path, embedding, dim)
		VALUES ($1, $2::vector, $3)
		ON CONFLICT (image_path) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			created_at = NOW()
	`

	vec := pgvector.NewVector(emb)
	if _, err := s.pool.Exec(ctx, query, path, vec, len(emb)); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// Save replaces the stored mapping with the given one in a single
// transaction.
func (s *Store) Save(ctx context.Context, entries map[string]embcache.Embedding) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (image_path, embedding, dim)
		VALUES ($1, $2::vector, $3)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for path, emb := range entries {
		vec := pgvector.NewVector(emb)
		if _, err := stmt.ExecContext(ctx, path, vec, len(emb)); err != nil {
			return fmt.Errorf("insert embedding %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Count returns the total number of embeddings stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// Verify interface compliance
var _ embcache.Store = (*Store)(nil)
var _ embcache.IncrementalStore = (*Store)(nil)
