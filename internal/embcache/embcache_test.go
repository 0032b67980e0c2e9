package embcache

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/embeval/facedim/internal/faceapi"
)

// fakePipeline counts stage calls and returns canned responses.
type fakePipeline struct {
	mu        sync.Mutex
	detects   int
	aligns    int
	embeds    int
	faces     []faceapi.Face
	embedding []float32
	alignedLm faceapi.Landmarks
	detectErr error
	embedErr  error
}

func (p *fakePipeline) Detect(_ context.Context, _ []byte) ([]faceapi.Face, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detects++
	return p.faces, p.detectErr
}

func (p *fakePipeline) Align(_ context.Context, _ []byte, lm faceapi.Landmarks) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aligns++
	p.alignedLm = lm
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func (p *fakePipeline) Embed(_ context.Context, _ []byte) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embeds++
	return p.embedding, p.embedErr
}

func faceAt(noseX, noseY float64) faceapi.Face {
	return faceapi.Face{Landmarks: faceapi.Landmarks{Nose: faceapi.Point{X: noseX, Y: noseY}}}
}

// writeTestJPEG writes a small white image and returns its path.
func writeTestJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 250, 250))
	for x := 0; x < 250; x++ {
		for y := 0; y < 250; y++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	path := filepath.Join(t.TempDir(), "face.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestOpenWithoutStore(t *testing.T) {
	c, err := Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("new cache Len() = %d, want 0", c.Len())
	}
}

func TestCacheAddGet(t *testing.T) {
	c, _ := Open(context.Background(), nil)

	if err := c.Add(context.Background(), "b.jpg", Embedding{1, 2}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := c.Add(context.Background(), "a.jpg", Embedding{3, 4}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	emb, ok := c.Get("a.jpg")
	if !ok || emb[0] != 3 {
		t.Errorf("Get(a.jpg) = %v, %v", emb, ok)
	}
	if _, ok := c.Get("missing.jpg"); ok {
		t.Error("Get on missing path reported ok")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	paths := c.Paths()
	if len(paths) != 2 || paths[0] != "a.jpg" || paths[1] != "b.jpg" {
		t.Errorf("Paths() = %v, want sorted [a.jpg b.jpg]", paths)
	}

	snap := c.Snapshot()
	delete(snap, "a.jpg")
	if _, ok := c.Get("a.jpg"); !ok {
		t.Error("mutating a snapshot changed the cache")
	}
}

func TestEnsureCachesOnce(t *testing.T) {
	path := writeTestJPEG(t)
	pipe := &fakePipeline{
		faces:     []faceapi.Face{faceAt(125, 125)},
		embedding: []float32{0.1, 0.2, 0.3},
	}

	c, _ := Open(context.Background(), nil)
	if err := c.Ensure(context.Background(), path, pipe); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := c.Ensure(context.Background(), path, pipe); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	if pipe.detects != 1 || pipe.aligns != 1 || pipe.embeds != 1 {
		t.Errorf("pipeline calls = %d/%d/%d, want 1/1/1", pipe.detects, pipe.aligns, pipe.embeds)
	}
	emb, ok := c.Get(path)
	if !ok || len(emb) != 3 {
		t.Errorf("Get() = %v, %v after Ensure", emb, ok)
	}
}

func TestEnsureSelectsCenterFace(t *testing.T) {
	path := writeTestJPEG(t)
	pipe := &fakePipeline{
		faces: []faceapi.Face{
			faceAt(10, 10),
			faceAt(120, 130),
			faceAt(240, 240),
		},
		embedding: []float32{1},
	}

	c, _ := Open(context.Background(), nil)
	if err := c.Ensure(context.Background(), path, pipe); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if pipe.alignedLm.Nose.X != 120 || pipe.alignedLm.Nose.Y != 130 {
		t.Errorf("aligned face nose = %+v, want the centered one (120, 130)", pipe.alignedLm.Nose)
	}
}

func TestEnsureSkipsFacelessImage(t *testing.T) {
	path := writeTestJPEG(t)
	pipe := &fakePipeline{faces: nil, embedding: []float32{1}}

	c, _ := Open(context.Background(), nil)
	if err := c.Ensure(context.Background(), path, pipe); err != nil {
		t.Fatalf("Ensure returned error for faceless image: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("cache Len() = %d after faceless image, want 0", c.Len())
	}
	if pipe.aligns != 0 || pipe.embeds != 0 {
		t.Errorf("align/embed ran on faceless image: %d/%d", pipe.aligns, pipe.embeds)
	}
}

func TestEnsurePropagatesPipelineError(t *testing.T) {
	path := writeTestJPEG(t)
	wantErr := errors.New("detector offline")
	pipe := &fakePipeline{detectErr: wantErr}

	c, _ := Open(context.Background(), nil)
	err := c.Ensure(context.Background(), path, pipe)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Ensure error = %v, want wrapped %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Errorf("cache Len() = %d after failed Ensure, want 0", c.Len())
	}
}

func TestEnsureMissingImage(t *testing.T) {
	pipe := &fakePipeline{}
	c, _ := Open(context.Background(), nil)

	err := c.Ensure(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), pipe)
	if err == nil {
		t.Fatal("expected error for missing image")
	}
	if pipe.detects != 0 {
		t.Error("detect ran for unreadable image")
	}
}

// recordingStore counts which persistence path the cache takes.
type recordingStore struct {
	inserts int
	saves   int
}

func (s *recordingStore) Load(context.Context) (map[string]Embedding, error) {
	return map[string]Embedding{}, nil
}

func (s *recordingStore) Save(context.Context, map[string]Embedding) error {
	s.saves++
	return nil
}

func (s *recordingStore) Insert(context.Context, string, Embedding) error {
	s.inserts++
	return nil
}

func TestAddPrefersIncrementalStore(t *testing.T) {
	store := &recordingStore{}
	c, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := c.Add(context.Background(), "a.jpg", Embedding{1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := c.Add(context.Background(), "b.jpg", Embedding{2}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if store.inserts != 2 {
		t.Errorf("Insert calls = %d, want 2", store.inserts)
	}
	if store.saves != 0 {
		t.Errorf("Save calls = %d, want 0 when the store supports inserts", store.saves)
	}
}

func TestEnsurePersistsThroughStore(t *testing.T) {
	imgPath := writeTestJPEG(t)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	pipe := &fakePipeline{
		faces:     []faceapi.Face{faceAt(125, 125)},
		embedding: []float32{0.5, -0.5},
	}

	c, err := Open(context.Background(), NewFileStore(cachePath))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := c.Ensure(context.Background(), imgPath, pipe); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	reopened, err := Open(context.Background(), NewFileStore(cachePath))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	emb, ok := reopened.Get(imgPath)
	if !ok {
		t.Fatal("embedding not present after reopening the cache")
	}
	if emb[0] != 0.5 || emb[1] != -0.5 {
		t.Errorf("reopened embedding = %v, want [0.5 -0.5]", emb)
	}
}
