package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/embeval/facedim/internal/dataset"
	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/web/handlers"
)

func (s *Server) setupRoutes(ds *dataset.Dataset, cache *embcache.Cache, index *embcache.Index) {
	// Create handlers
	samples := ds.Pairs(cache)
	evalHandler := handlers.NewEvalHandler(ds.Stats(cache), samples, cache, index)
	jobsHandler := handlers.NewJobsHandler(s.jobManager, samples)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", evalHandler.Stats)
		r.Get("/heatmap", evalHandler.Heatmap)
		r.Get("/threshold", evalHandler.Threshold)
		r.Get("/neighbors", evalHandler.Neighbors)

		// Sweeps (long-running operations)
		r.Post("/jobs/truncate", jobsHandler.StartTruncate)
		r.Get("/jobs", jobsHandler.List)
		r.Get("/jobs/{jobId}", jobsHandler.Status)
	})
}
