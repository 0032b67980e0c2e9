package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/embeval/facedim/internal/dataset"
	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/subset"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var body map[string]string
	parseJSONResponse(t, recorder, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestEvalHandler_Stats(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	recorder := httptest.NewRecorder()

	handler.Stats(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var stats dataset.Stats
	parseJSONResponse(t, recorder, &stats)
	if stats != testStats() {
		t.Errorf("expected %+v, got %+v", testStats(), stats)
	}
}

func TestEvalHandler_Threshold(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/threshold", nil)
	recorder := httptest.NewRecorder()

	handler.Threshold(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res ThresholdResponse
	parseJSONResponse(t, recorder, &res)
	if res.Dimensions != 2 {
		t.Errorf("expected dimensions 2, got %d", res.Dimensions)
	}
	if res.Threshold != 9 {
		t.Errorf("expected threshold 9, got %g", res.Threshold)
	}
	if res.AmountFalse != 0 {
		t.Errorf("expected no misclassified pairs, got %d", res.AmountFalse)
	}
	if res.FalseDiscoveryRate == nil || *res.FalseDiscoveryRate != 0 {
		t.Errorf("expected false discovery rate 0, got %v", res.FalseDiscoveryRate)
	}
}

func TestEvalHandler_ThresholdPrefix(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/threshold?dims=1", nil)
	recorder := httptest.NewRecorder()

	handler.Threshold(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res ThresholdResponse
	parseJSONResponse(t, recorder, &res)
	if res.Dimensions != 1 {
		t.Errorf("expected dimensions 1, got %d", res.Dimensions)
	}
	if res.AmountFalse != 1 {
		t.Errorf("expected one misclassified pair, got %d", res.AmountFalse)
	}
}

func TestEvalHandler_ThresholdBadDims(t *testing.T) {
	handler := newEvalHandler(t)

	for _, dims := range []string{"abc", "0", "-1", "3"} {
		t.Run(dims, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/threshold?dims="+dims, nil)
			recorder := httptest.NewRecorder()

			handler.Threshold(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
		})
	}
}

func TestEvalHandler_ThresholdNoSamples(t *testing.T) {
	handler := NewEvalHandler(dataset.Stats{}, nil, nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/threshold", nil)
	recorder := httptest.NewRecorder()

	handler.Threshold(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "no cached pairs available, run the cache action first")
}

func TestEvalHandler_Heatmap(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/heatmap", nil)
	recorder := httptest.NewRecorder()

	handler.Heatmap(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res HeatmapResponse
	parseJSONResponse(t, recorder, &res)
	if res.Dimensions != 2 {
		t.Errorf("expected dimensions 2, got %d", res.Dimensions)
	}
	if len(res.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(res.Scores))
	}
	// The second dimension separates the classes better.
	if res.Scores[0] != 0 || res.Scores[1] != 1 {
		t.Errorf("expected scores [0 1], got %v", res.Scores)
	}
}

func TestEvalHandler_Neighbors(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/neighbors?path=lfw/Alice/Alice_0001.jpg", nil)
	recorder := httptest.NewRecorder()

	handler.Neighbors(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res NeighborsResponse
	parseJSONResponse(t, recorder, &res)
	if res.Count != 2 {
		t.Fatalf("expected 2 results, got %d", res.Count)
	}
	for _, n := range res.Results {
		if n.Path == "lfw/Alice/Alice_0001.jpg" {
			t.Errorf("query image must not match itself")
		}
	}
	if res.Results[0].Path != "lfw/Alice/Alice_0002.jpg" {
		t.Errorf("expected the other Alice image first, got %s", res.Results[0].Path)
	}
	if res.Results[0].Distance != 1 {
		t.Errorf("expected distance 1, got %g", res.Results[0].Distance)
	}
}

func TestEvalHandler_NeighborsLimit(t *testing.T) {
	handler := newEvalHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/neighbors?path=lfw/Alice/Alice_0001.jpg&limit=1", nil)
	recorder := httptest.NewRecorder()

	handler.Neighbors(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res NeighborsResponse
	parseJSONResponse(t, recorder, &res)
	if res.Count != 1 {
		t.Fatalf("expected 1 result, got %d", res.Count)
	}
}

func TestEvalHandler_NeighborsErrors(t *testing.T) {
	handler := newEvalHandler(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing path", "/api/v1/neighbors", http.StatusBadRequest},
		{"uncached image", "/api/v1/neighbors?path=lfw/Eve/Eve_0001.jpg", http.StatusNotFound},
		{"invalid limit", "/api/v1/neighbors?path=lfw/Alice/Alice_0001.jpg&limit=x", http.StatusBadRequest},
		{"zero limit", "/api/v1/neighbors?path=lfw/Alice/Alice_0001.jpg&limit=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			recorder := httptest.NewRecorder()

			handler.Neighbors(recorder, req)

			assertStatusCode(t, recorder, tt.status)
		})
	}
}

func TestEvalHandler_NeighborsEmptyIndex(t *testing.T) {
	ctx := context.Background()
	cache, _ := embcache.Open(ctx, nil)
	_ = cache.Add(ctx, "x.jpg", embcache.Embedding{1, 2})
	handler := NewEvalHandler(dataset.Stats{}, []subset.PairSample{}, cache, embcache.NewIndex(nil))

	req := httptest.NewRequest("GET", "/api/v1/neighbors?path=x.jpg", nil)
	recorder := httptest.NewRecorder()

	handler.Neighbors(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)
}
