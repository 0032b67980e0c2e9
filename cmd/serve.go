package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/embeval/facedim/internal/config"
	"github.com/embeval/facedim/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the evaluation web server",
	Long: `Start the facedim web server. It exposes the dataset statistics,
dimension heatmap, threshold search and nearest-neighbour lookups over a
JSON API, plus async jobs for the long-running sweeps.

The dataset flags select which dataset and cache the server works on.

Examples:
  facedim serve --data easy --base-path data/lfw
  facedim serve --data hard --base-path data/cplfw --port 9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Embeddings cached: %d\n", cache.Len())

	index, err := openIndex(cfg, cache, false)
	if err != nil {
		return err
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, ds, cache, index)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if path := cfg.Database.HNSWIndexPath; path != "" {
			if err := index.Save(path); err != nil {
				fmt.Printf("Warning: failed to save HNSW index: %v\n", err)
			} else {
				fmt.Println("HNSW index saved to disk")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting facedim API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
