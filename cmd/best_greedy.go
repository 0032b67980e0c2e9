package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/subset"
)

var bestElementsGreedyCmd = &cobra.Command{
	Use:   "best-elements-greedy",
	Short: "Greedily build a dimension subset with low error",
	Long: `Build a dimension subset by forward selection: each step adds the
single dimension that lowers the verification error the most, until
--amount dimensions are fixed. One line per step reports the subset so
far and its error. Much cheaper than best-elements-full, but earlier
choices are never revisited.

Examples:
  # Greedily pick from the first 70 dimensions
  facedim best-elements-greedy --data easy --base-path data/lfw --amount 70`,
	RunE: runBestElementsGreedy,
}

func init() {
	rootCmd.AddCommand(bestElementsGreedyCmd)

	bestElementsGreedyCmd.Flags().Int("amount", 0, "Number of leading dimensions to search")
}

func runBestElementsGreedy(cmd *cobra.Command, args []string) error {
	amount, err := requireAmount(cmd)
	if err != nil {
		return err
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

	subset.Greedy(os.Stdout, samples, amount)
	return nil
}
