package cmd

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/faceapi"
	"github.com/embeval/facedim/internal/progress"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Compute and cache embeddings for all dataset images",
	Long: `Compute a face embedding for every image referenced by the dataset
pairs file and persist it in the embedding cache. Images whose embedding is
already cached are skipped, so the process can be stopped and resumed.

When a picture contains several faces, the face closest to the image center
is used. Images without any detectable face are skipped.

Examples:
  # Cache embeddings for the LFW dataset
  facedim cache --data easy --base-path data/lfw

  # Use four parallel pipeline workers
  facedim cache --data hard --base-path data/cplfw --concurrency 4

  # Only process the first 100 missing images
  facedim cache --data easy --base-path data/lfw --limit 100`,
	RunE: runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.Flags().Int("concurrency", constants.DefaultCacheWorkers, "Number of parallel workers")
	cacheCmd.Flags().Int("limit", 0, "Limit number of images to process (0 = no limit)")
}

func runCache(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	limit := mustGetInt(cmd, "limit")
	if concurrency < 1 {
		concurrency = 1
	}

	ctx := context.Background()
	cfg := config.Load()

	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	cache, closeCache, err := openCache(ctx, cfg, ds)
	if err != nil {
		return err
	}
	defer closeCache()

	pipe := faceapi.NewClient(cfg.Pipeline.URL)

	// Collect the images that still need an embedding. The pairs file lists
	// images once per pair, so duplicates are dropped first.
	seen := make(map[string]struct{})
	var toProcess []string
	for _, img := range ds.Images() {
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		if _, ok := cache.Get(img); ok {
			continue
		}
		toProcess = append(toProcess, img)
	}

	fmt.Printf("Images in dataset: %d\n", len(seen))
	fmt.Printf("Embeddings cached: %d\n", cache.Len())

	if len(toProcess) == 0 {
		fmt.Println("All images already cached!")
		return nil
	}

	if limit > 0 && len(toProcess) > limit {
		toProcess = toProcess[:limit]
	}

	fmt.Printf("Images to process: %d\n\n", len(toProcess))

	bar := progress.New(len(toProcess), "Computing embeddings", "images")

	// Process images with concurrency
	var successCount, errorCount int
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, img := range toProcess {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := cache.Ensure(ctx, path, pipe); err != nil {
				log.Printf("failed to cache %s: %v", path, err)
				mu.Lock()
				errorCount++
				mu.Unlock()
				bar.Add(1)
				return
			}

			mu.Lock()
			successCount++
			mu.Unlock()
			bar.Add(1)
		}(img)
	}

	wg.Wait()
	fmt.Println()

	fmt.Printf("\nCompleted: %d successful, %d errors\n", successCount, errorCount)
	fmt.Printf("Total embeddings cached: %d\n", cache.Len())

	if successCount == 0 && errorCount > 0 {
		return fmt.Errorf("all %d images failed", errorCount)
	}
	return nil
}
