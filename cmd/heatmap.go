package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/subset"
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Score every dimension by how well it separates the pair classes",
	Long: `Score the first --amount embedding dimensions by how strongly each one
separates same-person from different-person pairs. Scores are normalized
to [0, 1]; a score near 1 marks a dimension worth keeping.

Examples:
  # Score all 512 dimensions on LFW
  facedim heatmap --data easy --base-path data/lfw --amount 512 > heatmap.csv`,
	RunE: runHeatmap,
}

func init() {
	rootCmd.AddCommand(heatmapCmd)

	heatmapCmd.Flags().Int("amount", 0, "Number of leading dimensions to score")
}

func runHeatmap(cmd *cobra.Command, args []string) error {
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

	subset.WriteHeatmap(os.Stdout, subset.Heatmap(samples, amount))
	return nil
}
