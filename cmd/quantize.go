package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/quantize"
)

var quantizeCmd = &cobra.Command{
	Use:   "quantize",
	Short: "Sweep integer quantization scales over the full embedding",
	Long: `Quantize every embedding to integers at increasing scale factors and
report the verification error per scale, together with the range the
quantized components cover. The first line carries the full-precision
baseline for comparison.

Examples:
  facedim quantize --data easy --base-path data/lfw > quantize.csv`,
	RunE: runQuantize,
}

func init() {
	rootCmd.AddCommand(quantizeCmd)
}

func runQuantize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}

	quantize.Sweep(os.Stdout, samples, constants.QuantMaxScale)
	return nil
}
