package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/embeval/facedim/internal/constants"
	"github.com/embeval/facedim/internal/dataset"
	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/subset"
)

// errNoPairs is the shared error message for requests that need pair samples.
const errNoPairs = "no cached pairs available, run the cache action first"

// EvalHandler serves the synchronous evaluation endpoints over a fixed
// sample set. The samples are collected once at server startup.
type EvalHandler struct {
	stats   dataset.Stats
	samples []subset.PairSample
	cache   *embcache.Cache
	index   *embcache.Index
}

// NewEvalHandler creates a new eval handler.
func NewEvalHandler(stats dataset.Stats, samples []subset.PairSample, cache *embcache.Cache, index *embcache.Index) *EvalHandler {
	return &EvalHandler{
		stats:   stats,
		samples: samples,
		cache:   cache,
		index:   index,
	}
}

// Stats returns the dataset and cache statistics.
func (h *EvalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats)
}

func (h *EvalHandler) fullDim() int {
	if len(h.samples) == 0 {
		return 0
	}
	return len(h.samples[0].A)
}

// parseDims reads the dims query parameter. It defaults to the full
// embedding dimension when absent.
func (h *EvalHandler) parseDims(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("dims")
	if raw == "" {
		return h.fullDim(), nil
	}
	dims, err := strconv.Atoi(raw)
	if err != nil || dims < 1 {
		return 0, fmt.Errorf("invalid dims parameter %q", raw)
	}
	if dims > h.fullDim() {
		return 0, fmt.Errorf("dims %d exceeds the embedding dimension %d", dims, h.fullDim())
	}
	return dims, nil
}

// HeatmapResponse carries the per-dimension separation scores.
type HeatmapResponse struct {
	Dimensions int       `json:"dimensions"`
	Scores     []float64 `json:"scores"`
}

// Heatmap scores the leading dimensions by class separation.
func (h *EvalHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	if len(h.samples) == 0 {
		respondError(w, http.StatusConflict, errNoPairs)
		return
	}
	dims, err := h.parseDims(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, HeatmapResponse{
		Dimensions: dims,
		Scores:     subset.Heatmap(h.samples, dims),
	})
}

// ThresholdResponse is the outcome of a threshold search over a prefix of
// the embedding dimensions. The rates are null when their denominator is
// zero.
type ThresholdResponse struct {
	Dimensions         int      `json:"dimensions"`
	Pairs              int      `json:"pairs"`
	Threshold          float64  `json:"threshold"`
	TruePositives      int      `json:"true_positives"`
	FalsePositives     int      `json:"false_positives"`
	TrueNegatives      int      `json:"true_negatives"`
	FalseNegatives     int      `json:"false_negatives"`
	AmountFalse        int      `json:"amount_false"`
	FalseDiscoveryRate *float64 `json:"false_discovery_rate"`
	FalseOmissionRate  *float64 `json:"false_omission_rate"`
}

// Threshold searches the optimal verification threshold over the leading
// dimensions.
func (h *EvalHandler) Threshold(w http.ResponseWriter, r *http.Request) {
	if len(h.samples) == 0 {
		respondError(w, http.StatusConflict, errNoPairs)
		return
	}
	dims, err := h.parseDims(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := subset.Collect(h.samples, subset.Range(dims)).Search()
	respondJSON(w, http.StatusOK, ThresholdResponse{
		Dimensions:         dims,
		Pairs:              len(h.samples),
		Threshold:          res.Threshold,
		TruePositives:      res.Matrix.TruePositives,
		FalsePositives:     res.Matrix.FalsePositives,
		TrueNegatives:      res.Matrix.TrueNegatives,
		FalseNegatives:     res.Matrix.FalseNegatives,
		AmountFalse:        res.Matrix.AmountFalse(),
		FalseDiscoveryRate: rateOrNil(res.Matrix.FalseDiscoveryRate()),
		FalseOmissionRate:  rateOrNil(res.Matrix.FalseOmissionRate()),
	})
}

// rateOrNil hides NaN rates from the JSON encoder, which cannot represent
// them.
func rateOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// NeighborsResponse lists the cached images closest to the query image.
type NeighborsResponse struct {
	Query   string              `json:"query"`
	Results []embcache.Neighbor `json:"results"`
	Count   int                 `json:"count"`
}

// Neighbors returns the nearest cached embeddings to a cached image.
func (h *EvalHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "path parameter is required")
		return
	}

	limit := constants.DefaultNearestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit parameter %q", raw))
			return
		}
	}

	query, ok := h.cache.Get(path)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("image %s is not cached", path))
		return
	}

	// Ask for one extra hit so the query's own cache entry can be dropped.
	neighbors, err := h.index.Nearest(query, limit+1)
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	results := make([]embcache.Neighbor, 0, limit)
	for _, n := range neighbors {
		if n.Path == path {
			continue
		}
		results = append(results, n)
		if len(results) == limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, NeighborsResponse{
		Query:   path,
		Results: results,
		Count:   len(results),
	})
}
