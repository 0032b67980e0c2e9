package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/subset"
)

var randomDimensionsCmd = &cobra.Command{
	Use:   "random-dimensions",
	Short: "Evaluate randomly drawn dimension subsets of one size",
	Long: `Draw random dimension subsets of the requested size and report the
verification error of each draw. Every trial is reported on its own line,
so the spread between lucky and unlucky subsets stays visible.

Examples:
  # 100 random 70-dimensional subsets on LFW
  facedim random-dimensions --data easy --base-path data/lfw --amount 70

  # A reproducible run
  facedim random-dimensions --data easy --base-path data/lfw --amount 70 --seed 42`,
	RunE: runRandomDimensions,
}

var randomDimensionsFullCmd = &cobra.Command{
	Use:   "random-dimensions-full",
	Short: "Evaluate random dimension subsets of every size",
	Long: `Run the random subset trials for every subset size, from the full
dimension count down to one. This produces trials x dimensions report
lines and takes correspondingly long.`,
	RunE: runRandomDimensionsFull,
}

func init() {
	rootCmd.AddCommand(randomDimensionsCmd)
	rootCmd.AddCommand(randomDimensionsFullCmd)

	randomDimensionsCmd.Flags().Int("amount", 0, "Subset size to draw")
	for _, cmd := range []*cobra.Command{randomDimensionsCmd, randomDimensionsFullCmd} {
		cmd.Flags().Int("trials", constants.DefaultRandomTrials, "Number of random draws per subset size")
		cmd.Flags().Int64("seed", 0, "Random seed (defaults to the current time)")
	}
}

// newRand builds the random source for the subset draws. Without an explicit
// --seed the current time is used and the seed is printed, so an interesting
// run can be reproduced later.
func newRand(cmd *cobra.Command) *rand.Rand {
	seed := mustGetInt64(cmd, "seed")
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
		fmt.Fprintf(os.Stderr, "using random seed %d\n", seed)
	}
	return rand.New(rand.NewSource(seed))
}

func runRandomDimensions(cmd *cobra.Command, args []string) error {
	amount, err := requireAmount(cmd)
	if err != nil {
		return err
	}
	trials := mustGetInt(cmd, "trials")
	rng := newRand(cmd)

	ctx := context.Background()
	cfg := config.Load()

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}

	fullDim := len(samples[0].A)
	if amount > fullDim {
		return fmt.Errorf("--amount %d exceeds the embedding dimension %d", amount, fullDim)
	}

	subset.Random(os.Stdout, rng, samples, fullDim, amount, trials)
	return nil
}

func runRandomDimensionsFull(cmd *cobra.Command, args []string) error {
	trials := mustGetInt(cmd, "trials")
	rng := newRand(cmd)

	ctx := context.Background()
	cfg := config.Load()

	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return err
	}

	subset.RandomFull(os.Stdout, rng, samples, len(samples[0].A), trials)
	return nil
}
