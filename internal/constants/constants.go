// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Embedding constants
const (
	// DefaultEmbeddingDim is the embedding length produced by the face pipeline
	DefaultEmbeddingDim = 512

	// MaxSubmitSize is the maximum dimension (width or height) for images
	// submitted to the face pipeline
	MaxSubmitSize = 1024
)

// Evaluation constants
const (
	// DefaultRandomTrials is the number of random subset draws per size
	DefaultRandomTrials = 100

	// QuantMaxScale bounds the quantization scale sweep (exclusive)
	QuantMaxScale = 200

	// ExhaustiveWarnDims is the dimension count above which the exhaustive
	// search prints a runtime warning before starting
	ExhaustiveWarnDims = 25
)

// Processing constants
const (
	// DefaultCacheWorkers is the default number of parallel workers for the
	// cache action
	DefaultCacheWorkers = 1

	// DefaultNearestLimit is the default number of neighbours returned by
	// similarity searches
	DefaultNearestLimit = 10
)
