package mjpeg

import (
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize matches the read size the camera scripts always used.
const DefaultChunkSize = 1024

// Reader pulls chunks from an upstream reader and hands out complete frames
// one at a time.
type Reader struct {
	r     io.Reader
	ex    *Extractor
	chunk []byte

	pending    [][]byte
	pendingErr error
	err        error
	bytesRead  int64
}

// NewReader wraps r. A chunkSize of zero or less uses DefaultChunkSize.
func NewReader(r io.Reader, chunkSize int, opts ...Option) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{
		r:     r,
		ex:    NewExtractor(opts...),
		chunk: make([]byte, chunkSize),
	}
}

// Next blocks until the next complete frame is available.
//
// It returns io.EOF once upstream has ended and every complete frame has been
// delivered; a trailing partial frame is dropped silently. Other upstream
// errors are returned wrapped and are sticky. ErrBufferOverflow is reported
// once and reading may continue.
func (r *Reader) Next() ([]byte, error) {
	for len(r.pending) == 0 {
		if r.pendingErr != nil {
			err := r.pendingErr
			r.pendingErr = nil
			return nil, err
		}
		if r.err != nil {
			return nil, r.err
		}

		n, err := r.r.Read(r.chunk)
		if n > 0 {
			r.bytesRead += int64(n)
			frames, ferr := r.ex.Feed(r.chunk[:n])
			r.pending = append(r.pending, frames...)
			if ferr != nil {
				r.pendingErr = ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.err = io.EOF
			} else {
				r.err = fmt.Errorf("mjpeg: read stream: %w", err)
			}
		}
	}

	frame := r.pending[0]
	r.pending[0] = nil
	r.pending = r.pending[1:]
	return frame, nil
}

// Buffered returns the bytes held for a frame that is not complete yet.
func (r *Reader) Buffered() int {
	return r.ex.Buffered()
}

// BytesRead returns the total bytes read from upstream.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}
