// Package faceapi talks to the face pipeline service that detects, aligns
// and embeds faces.
package faceapi

import (
	"context"
	"math"
)

// Point is a pixel coordinate in the submitted image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks are the five facial keypoints reported by the detector.
type Landmarks struct {
	LeftEye    Point `json:"left_eye"`
	RightEye   Point `json:"right_eye"`
	Nose       Point `json:"nose"`
	MouthLeft  Point `json:"mouth_left"`
	MouthRight Point `json:"mouth_right"`
}

// Face is one detected face.
type Face struct {
	FaceIndex int       `json:"face_index"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	Landmarks Landmarks `json:"landmarks"`
	DetScore  float64   `json:"det_score"`
}

// Pipeline runs the three face processing stages. Implementations must be
// safe for concurrent use.
type Pipeline interface {
	// Detect returns all faces found in the image.
	Detect(ctx context.Context, image []byte) ([]Face, error)
	// Align crops and warps the image to the face described by the landmarks.
	Align(ctx context.Context, image []byte, lm Landmarks) ([]byte, error)
	// Embed computes the embedding of an aligned face crop.
	Embed(ctx context.Context, aligned []byte) ([]float32, error)
}

// ClosestToCenter returns the index of the face whose nose landmark lies
// nearest to the image center by Manhattan distance. Ties resolve to the
// lowest index. Returns -1 when no faces are given.
func ClosestToCenter(faces []Face, width, height int) int {
	best := -1
	bestDist := math.Inf(1)
	cx := float64(width) / 2
	cy := float64(height) / 2

	for i, f := range faces {
		d := math.Abs(cx-f.Landmarks.Nose.X) + math.Abs(cy-f.Landmarks.Nose.Y)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
