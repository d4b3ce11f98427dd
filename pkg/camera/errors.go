package camera

import (
	"errors"
	"fmt"
)

// Sentinel errors for capture sources.
var (
	// ErrDecode is returned when frame bytes do not decode to an image.
	ErrDecode = errors.New("camera: decode failed")

	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("camera: source closed")

	// ErrUnknownKind is returned by Open for an unsupported source kind.
	ErrUnknownKind = errors.New("camera: unknown source kind")
)

// StatusError is returned when the stream endpoint answers with a status
// other than 200.
type StatusError struct {
	// URL is the stream endpoint.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("camera: HTTP %d from %s", e.StatusCode, e.URL)
}
