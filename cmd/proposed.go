package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/quantize"
)

var proposedCmd = &cobra.Command{
	Use:   "proposed-fixed-subset",
	Short: "Evaluate the proposed fixed quantized subset",
	Long: `Evaluate the shipped 70-element embedding subset, quantized to int8,
against the dataset. Prints a single threshold;fp;fn line. A different
subset can be supplied as a YAML file with "scale" and "indices" keys.

Examples:
  # The built-in subset
  facedim proposed-fixed-subset --data easy --base-path data/lfw

  # A custom subset definition
  facedim proposed-fixed-subset --data easy --base-path data/lfw --subset-file my-subset.yaml`,
	RunE: runProposed,
}

func init() {
	rootCmd.AddCommand(proposedCmd)

	proposedCmd.Flags().String("subset-file", "", "YAML file overriding the built-in subset")
}

func runProposed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	sub := cfg.Subset
	if path := mustGetString(cmd, "subset-file"); path != "" {
		var err error
		sub, err = config.LoadSubsetFile(path)
		if err != nil {
			return err
		}
	}

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}

	for _, idx := range sub.Indices {
		if idx < 0 || idx >= len(samples[0].A) {
			return fmt.Errorf("subset index %d is outside the embedding dimension %d", idx, len(samples[0].A))
		}
	}

	res := quantize.FixedSubset(samples, sub.Indices, sub.Scale)
	fmt.Println(res.Report())
	return nil
}
