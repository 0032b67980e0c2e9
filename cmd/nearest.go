package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/faceapi"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <image-path>",
	Short: "Find the cached images most similar to a face",
	Long: `Find the cached embeddings closest to the face on the given image.
The query image is embedded through the pipeline unless it is already
cached. Candidates come from an HNSW index over the cache; reported
distances are exact squared euclidean distances.

With HNSW_INDEX_PATH set the index is persisted between runs, otherwise
it is rebuilt in memory on every invocation.

Examples:
  # Ten nearest faces on LFW
  facedim nearest data/lfw/Aaron_Peirsol/Aaron_Peirsol_0001.jpg --data easy --base-path data/lfw

  # JSON output with more results
  facedim nearest query.jpg --data easy --base-path data/lfw --limit 25 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)

	nearestCmd.Flags().Int("limit", constants.DefaultNearestLimit, "Maximum number of results")
	nearestCmd.Flags().Bool("json", false, "Output as JSON")
}

func runNearest(cmd *cobra.Command, args []string) error {
	queryPath := args[0]
	limit := mustGetInt(cmd, "limit")
	jsonOutput := mustGetBool(cmd, "json")

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

	if cache.Len() == 0 {
		return fmt.Errorf("the embedding cache is empty, run the cache action first")
	}

	query, ok := cache.Get(queryPath)
	if !ok {
		pipe := faceapi.NewClient(cfg.Pipeline.URL)
		if err := cache.Ensure(ctx, queryPath, pipe); err != nil {
			return err
		}
		query, ok = cache.Get(queryPath)
		if !ok {
			return fmt.Errorf("no face detected in %s", queryPath)
		}
	}

	index, err := openIndex(cfg, cache, jsonOutput)
	if err != nil {
		return err
	}

	// The query image may be cached itself; ask for one extra hit so the
	// self match can be dropped.
	neighbors, err := index.Nearest(query, limit+1)
	if err != nil {
		return err
	}
	results := make([]embcache.Neighbor, 0, limit)
	for _, n := range neighbors {
		if n.Path == queryPath {
			continue
		}
		results = append(results, n)
		if len(results) == limit {
			break
		}
	}

	if jsonOutput {
		return outputJSON(results)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tDISTANCE")
	fmt.Fprintln(w, "-----\t--------")
	for _, n := range results {
		fmt.Fprintf(w, "%s\t%.4f\n", n.Path, n.Distance)
	}
	return w.Flush()
}

// openIndex loads the persisted HNSW index when HNSW_INDEX_PATH is set and
// the file exists, otherwise builds the index from the cache. A fresh build
// is persisted when a path is configured.
func openIndex(cfg *config.Config, cache *embcache.Cache, quiet bool) (*embcache.Index, error) {
	entries := cache.Snapshot()

	path := cfg.Database.HNSWIndexPath
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if !quiet {
				fmt.Printf("Loading HNSW index from %s...\n", path)
			}
			return embcache.LoadIndex(path, entries)
		}
	}

	if !quiet {
		fmt.Printf("Building HNSW index over %d embeddings...\n", len(entries))
	}
	index := embcache.NewIndex(entries)
	if path != "" {
		if err := index.Save(path); err != nil {
			return nil, err
		}
		if !quiet {
			fmt.Printf("HNSW index saved to %s\n", path)
		}
	}
	return index, nil
}
