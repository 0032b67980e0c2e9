package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/dataset"
	"github.com/embeval/facedim/internal/embcache"
	pgstore "github.com/embeval/facedim/internal/embcache/postgres"
	"github.com/embeval/facedim/internal/subset"
)

// loadDataset resolves the dataset from the persistent flags, falling back
// to environment configuration for the image directory and pairs file.
func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if flagData == "" {
		return nil, errors.New("--data is required, possible values: easy, hard")
	}

	basePath := flagBasePath
	if basePath == "" {
		basePath = cfg.Dataset.BasePath
	}
	if basePath == "" {
		return nil, errors.New("--base-path or DATASET_BASE_PATH is required")
	}

	pairsFile := flagPairsFile
	if pairsFile == "" {
		pairsFile = cfg.Dataset.PairsFile
	}

	return dataset.New(flagData, basePath, pairsFile)
}

// openCache opens the embedding cache for the dataset. With DATABASE_URL set
// the cache lives in PostgreSQL, otherwise in a JSON file next to the data.
// The returned func releases the underlying store.
func openCache(ctx context.Context, cfg *config.Config, ds *dataset.Dataset) (*embcache.Cache, func(), error) {
	if cfg.Database.URL != "" {
		store, err := pgstore.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database cache: %w", err)
		}
		cache, err := embcache.Open(ctx, store)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return cache, func() { store.Close() }, nil
	}

	path := flagCache
	if path == "" {
		path = cfg.Dataset.CachePath
	}
	if path == "" {
		path = ds.CacheFile()
	}
	cache, err := embcache.Open(ctx, embcache.NewFileStore(path))
	if err != nil {
		return nil, nil, err
	}
	return cache, func() {}, nil
}

// loadSamples loads every dataset pair whose two images are both cached.
// Evaluation actions cannot run on an empty cache.
func loadSamples(ctx context.Context, cfg *config.Config) ([]subset.PairSample, error) {
	ds, err := loadDataset(cfg)
	if err != nil {
		return nil, err
	}

	cache, closeCache, err := openCache(ctx, cfg, ds)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	samples := ds.Pairs(cache)
	if len(samples) == 0 {
		return nil, errors.New("no cached pairs available, run the cache action first")
	}
	return samples, nil
}

// requireAmount reads the --amount flag shared by the subset search actions.
func requireAmount(cmd *cobra.Command) (int, error) {
	amount := mustGetInt(cmd, "amount")
	if amount <= 0 {
		return 0, errors.New("expected a number of dimensions to consider: --amount <number>")
	}
	return amount, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
