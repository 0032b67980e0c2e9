package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientDetect(t *testing.T) {
	facesJSON := `{
		"faces_count": 2,
		"faces": [
			{
				"face_index": 0,
				"bbox": [10, 10, 50, 50],
				"landmarks": {
					"left_eye": {"x": 20, "y": 25},
					"right_eye": {"x": 40, "y": 25},
					"nose": {"x": 30, "y": 35},
					"mouth_left": {"x": 22, "y": 45},
					"mouth_right": {"x": 38, "y": 45}
				},
				"det_score": 0.99
			},
			{
				"face_index": 1,
				"bbox": [100, 10, 140, 50],
				"landmarks": {
					"left_eye": {"x": 110, "y": 25},
					"right_eye": {"x": 130, "y": 25},
					"nose": {"x": 120, "y": 35},
					"mouth_left": {"x": 112, "y": 45},
					"mouth_right": {"x": 128, "y": 45}
				},
				"det_score": 0.87
			}
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("file part content type = %q, want image/jpeg", header.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(facesJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	faces, err := client.Detect(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(faces) != 2 {
		t.Fatalf("Detect returned %d faces, want 2", len(faces))
	}
	if faces[0].Landmarks.Nose.X != 30 || faces[0].Landmarks.Nose.Y != 35 {
		t.Errorf("first nose = %+v, want (30, 35)", faces[0].Landmarks.Nose)
	}
	if faces[1].DetScore != 0.87 {
		t.Errorf("second det score = %v, want 0.87", faces[1].DetScore)
	}
}

func TestClientAlign(t *testing.T) {
	crop := []byte{0xFF, 0xD8, 0xFF, 0xDB, 1, 2, 3}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/align" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		var lm Landmarks
		if err := json.Unmarshal([]byte(r.FormValue("landmarks")), &lm); err != nil {
			http.Error(w, "bad landmarks", http.StatusBadRequest)
			return
		}
		if lm.Nose.X != 30 {
			t.Errorf("landmarks nose x = %v, want 30", lm.Nose.X)
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(crop)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.Align(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, Landmarks{
		Nose: Point{X: 30, Y: 35},
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if !bytes.Equal(got, crop) {
		t.Errorf("Align returned %v, want %v", got, crop)
	}
}

func TestClientEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dim": 3, "embedding": [0.1, 0.2, 0.3]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	emb, err := client.Embed(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(emb) != 3 || emb[1] != 0.2 {
		t.Errorf("Embed returned %v, want [0.1 0.2 0.3]", emb)
	}
}

func TestClientEmbedEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dim": 0, "embedding": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Embed(context.Background(), []byte{1, 2, 3, 4, 5, 6, 7, 8}); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Detect(context.Background(), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention the status code", err)
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, expected: "image/jpeg"},
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, expected: "image/png"},
		{name: "gif", data: []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, expected: "image/gif"},
		{name: "webp", data: []byte{0x52, 0x49, 0x46, 0x46, 0, 0, 0, 0, 0x57, 0x45, 0x42, 0x50}, expected: "image/webp"},
		{name: "unknown", data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, expected: "application/octet-stream"},
		{name: "too short", data: []byte{0xFF, 0xD8}, expected: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType() = %q, want %q", got, tt.expected)
			}
		})
	}
}
