package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset and cache statistics",
	Long: `Show how many pairs, images and people the dataset contains and how
much of it is covered by the embedding cache.

Examples:
  facedim stats --data easy --base-path data/lfw
  facedim stats --data hard --base-path data/cplfw --json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	s := ds.Stats(cache)
	if jsonOutput {
		return outputJSON(s)
	}

	fmt.Printf("Dataset:      %s\n", s.Kind)
	fmt.Printf("Pairs:        %d (%d same, %d diff)\n", s.Pairs, s.SamePairs, s.DiffPairs)
	fmt.Printf("Images:       %d\n", s.Images)
	fmt.Printf("People:       %d\n", s.People)
	fmt.Printf("Cached:       %d\n", s.Cached)
	fmt.Printf("Usable pairs: %d\n", s.UsablePairs)
	return nil
}
