package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Persistent dataset selection flags, shared by every action.
var (
	flagData      string
	flagBasePath  string
	flagPairsFile string
	flagCache     string
)

var rootCmd = &cobra.Command{
	Use:   "facedim",
	Short: "A CLI tool for evaluating face embedding dimensionality",
	Long: `Facedim measures how much a face embedding can be shrunk before
verification accuracy collapses. It caches embeddings for labelled image
pair datasets (LFW, CPLFW) and evaluates truncated, randomly sampled,
greedily selected and quantized dimension subsets against the full
512-dimensional baseline.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Dataset difficulty: easy (LFW) or hard (CPLFW)")
	rootCmd.PersistentFlags().StringVar(&flagBasePath, "base-path", "", "Directory containing the dataset images")
	rootCmd.PersistentFlags().StringVar(&flagPairsFile, "pairs-file", "", "Pairs file path (defaults to the dataset's standard file)")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "Embedding cache file path (defaults to data/cache-<dataset>.json)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
