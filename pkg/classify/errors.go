package classify

import "errors"

// Sentinel errors for model loading and inference.
var (
	// ErrModelMissing is returned when a model artifact file does not exist.
	ErrModelMissing = errors.New("classify: model file missing")

	// ErrBadMetadata is returned when the label metadata cannot be parsed.
	ErrBadMetadata = errors.New("classify: malformed metadata")

	// ErrNoLabels is returned when the metadata lists no labels.
	ErrNoLabels = errors.New("classify: metadata has no labels")

	// ErrEmptyNetwork is returned when OpenCV could not build a network
	// from the topology and weights.
	ErrEmptyNetwork = errors.New("classify: network is empty")

	// ErrEmptyImage is returned by Classify for an empty matrix.
	ErrEmptyImage = errors.New("classify: empty image")

	// ErrClosed is returned by Classify after Close.
	ErrClosed = errors.New("classify: classifier closed")

	// ErrNoOutput is returned when the network produced no scores.
	ErrNoOutput = errors.New("classify: network produced no output")
)
