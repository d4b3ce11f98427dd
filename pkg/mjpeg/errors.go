package mjpeg

import "errors"

// Sentinel errors for stream extraction.
var (
	// ErrBufferOverflow is returned when a partial frame grows past the
	// configured buffer cap. The buffer is cleared and extraction resumes
	// with the next start marker.
	ErrBufferOverflow = errors.New("mjpeg: buffer overflow")
)
