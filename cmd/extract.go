package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/quantize"
)

var extractCmd = &cobra.Command{
	Use:   "extract-embeddings",
	Short: "Export pair samples for offline experiments",
	Long: `Export every cached pair sample to two JSON files: one with the
full-precision embeddings and one with the embeddings quantized to int8
and reduced to the proposed fixed subset. The files land in --out-dir as
embeddings_full.json and embeddings_<subset size>.json.

Examples:
  facedim extract-embeddings --data easy --base-path data/lfw --out-dir data`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("out-dir", ".", "Directory for the exported files")
	extractCmd.Flags().String("subset-file", "", "YAML file overriding the built-in subset")
}

// pairRecord is one exported full-precision pair sample.
type pairRecord struct {
	Same bool      `json:"same"`
	A    []float32 `json:"a"`
	B    []float32 `json:"b"`
}

// quantRecord is one exported pair sample, quantized and subset-reduced.
type quantRecord struct {
	Same bool   `json:"same"`
	A    []int8 `json:"a"`
	B    []int8 `json:"b"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	outDir := mustGetString(cmd, "out-dir")

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

	full := make([]pairRecord, 0, len(samples))
	comp := make([]quantRecord, 0, len(samples))
	for _, s := range samples {
		full = append(full, pairRecord{Same: s.Same, A: s.A, B: s.B})
		comp = append(comp, quantRecord{
			Same: s.Same,
			A:    quantize.Gather(quantize.Int8(s.A, sub.Scale), sub.Indices),
			B:    quantize.Gather(quantize.Int8(s.B, sub.Scale), sub.Indices),
		})
	}

	fullPath := filepath.Join(outDir, "embeddings_full.json")
	if err := writeJSONFile(fullPath, full); err != nil {
		return err
	}
	fmt.Printf("Wrote %d full-precision pair samples to %s\n", len(full), fullPath)

	compPath := filepath.Join(outDir, fmt.Sprintf("embeddings_%d.json", len(sub.Indices)))
	if err := writeJSONFile(compPath, comp); err != nil {
		return err
	}
	fmt.Printf("Wrote %d quantized pair samples to %s\n", len(comp), compPath)

	return nil
}

func writeJSONFile(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
