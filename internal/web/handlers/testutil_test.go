package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/embeval/facedim/internal/dataset"
	"github.com/embeval/facedim/internal/embcache"
	"github.com/embeval/facedim/internal/subset"
)

// testSamples builds a small two-dimensional sample set. The first dimension
// separates the classes poorly, both dimensions together separate them
// perfectly: the best full threshold is 9 with no misclassified pairs, the
// best first-dimension threshold still misclassifies one pair.
func testSamples() []subset.PairSample {
	return []subset.PairSample{
		{Same: true, A: []float32{0, 0}, B: []float32{3, 0}},
		{Same: true, A: []float32{1, 0}, B: []float32{1, 0}},
		{Same: false, A: []float32{0, 0}, B: []float32{0, 4}},
		{Same: false, A: []float32{0, 0}, B: []float32{4, 4}},
	}
}

// testStats creates dataset statistics matching testSamples.
func testStats() dataset.Stats {
	return dataset.Stats{
		Kind:        "lfw",
		Pairs:       4,
		SamePairs:   2,
		DiffPairs:   2,
		Images:      8,
		People:      6,
		Cached:      8,
		UsablePairs: 4,
	}
}

// testCacheEntries returns cache contents for the neighbor tests. Alice's
// two images are close to each other and far from Bob's.
func testCacheEntries() map[string]embcache.Embedding {
	return map[string]embcache.Embedding{
		"lfw/Alice/Alice_0001.jpg": {0, 0},
		"lfw/Alice/Alice_0002.jpg": {1, 0},
		"lfw/Bob/Bob_0001.jpg":     {10, 10},
	}
}

// newEvalHandler creates an eval handler over the shared test fixtures.
func newEvalHandler(t *testing.T) *EvalHandler {
	t.Helper()

	cache, err := embcache.Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	for path, emb := range testCacheEntries() {
		if err := cache.Add(context.Background(), path, emb); err != nil {
			t.Fatalf("failed to fill cache: %v", err)
		}
	}

	index := embcache.NewIndex(cache.Snapshot())
	return NewEvalHandler(testStats(), testSamples(), cache, index)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
