package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/subset"
)

var truncateCmd = &cobra.Command{
	Use:   "truncate-embedding-size",
	Short: "Evaluate every embedding prefix length",
	Long: `Evaluate the verification error of truncated embeddings, from the full
dimension count down to a single dimension. Each line reports the prefix
length, the optimal distance threshold and the absolute number of false
positives and false negatives at that threshold.

Examples:
  # Sweep prefix lengths on LFW
  facedim truncate-embedding-size --data easy --base-path data/lfw > truncate.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTruncate(false)
	},
}

var truncateRelativeCmd = &cobra.Command{
	Use:   "truncate-embedding-size-relative",
	Short: "Evaluate every embedding prefix length with relative error rates",
	Long: `Evaluate the verification error of truncated embeddings like
truncate-embedding-size, but report the false discovery rate and false
omission rate instead of absolute counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTruncate(true)
	},
}

func init() {
	rootCmd.AddCommand(truncateCmd)
	rootCmd.AddCommand(truncateRelativeCmd)
}

func runTruncate(relative bool) error {
	ctx := context.Background()
	cfg := config.Load()

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}

	subset.Truncate(os.Stdout, samples, len(samples[0].A), relative)
	return nil
}
