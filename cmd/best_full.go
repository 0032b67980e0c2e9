package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/subset"
)

var bestElementsFullCmd = &cobra.Command{
	Use:   "best-elements-full",
	Short: "Exhaustively search dimension subsets for the lowest error",
	Long: `Evaluate every subset of the first --amount embedding dimensions and
report the best subset per size. The combination count grows exponentially
with --amount, so this is only feasible for small values.

Examples:
  # All subsets of the first 15 dimensions
  facedim best-elements-full --data easy --base-path data/lfw --amount 15`,
	RunE: runBestElementsFull,
}

func init() {
	rootCmd.AddCommand(bestElementsFullCmd)

	bestElementsFullCmd.Flags().Int("amount", 0, "Number of leading dimensions to search")
}

func runBestElementsFull(cmd *cobra.Command, args []string) error {
	amount, err := requireAmount(cmd)
	if err != nil {
		return err
	}
	if amount > constants.ExhaustiveWarnDims {
		fmt.Fprintf(os.Stderr, "warning: searching 2^%d subsets, this will take very long\n", amount)
	}

	ctx := context.Background()
	cfg := config.Load()

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}
	if amount > len(samples[0].A) {
		return fmt.Errorf("--amount %d exceeds the embedding dimension %d", amount, len(samples[0].A))
	}

	subset.Exhaustive(os.Stdout, samples, amount, true)
	return nil
}
