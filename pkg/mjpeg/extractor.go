// Package mjpeg recovers JPEG images from a raw MJPEG byte stream.
//
// Frame boundaries come purely from the JPEG start-of-image (FF D8) and
// end-of-image (FF D9) markers. Multipart headers, boundaries and any other
// bytes between images are ignored, so the same code works for
// multipart/x-mixed-replace responses and bare concatenated JPEGs.
package mjpeg

import "bytes"

var (
	startMarker = []byte{0xFF, 0xD8}
	endMarker   = []byte{0xFF, 0xD9}
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxBuffer caps the bytes held for one partial frame. Zero means no cap.
func WithMaxBuffer(n int) Option {
	return func(e *Extractor) {
		e.maxBuffer = n
	}
}

// Extractor accumulates stream bytes and cuts complete JPEG frames out of
// them. One Extractor belongs to one connection; it is not safe for
// concurrent use.
//
// After every Feed the buffer holds only bytes that follow the last emitted
// end marker. A frame whose end marker has not arrived yet is kept whole.
type Extractor struct {
	buf []byte

	// scanFrom is where the next end-marker search starts when buf begins
	// with a start marker. Bytes before it are known not to hold one.
	scanFrom int

	maxBuffer int
}

// NewExtractor creates an empty extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Feed appends chunk to the buffer and returns every frame completed by it,
// in stream order. Returned frames are copies and stay valid after later
// calls. The error is non-nil only when the buffer cap was exceeded; frames
// completed before that point are still returned.
func (e *Extractor) Feed(chunk []byte) ([][]byte, error) {
	e.buf = append(e.buf, chunk...)

	var frames [][]byte
	for {
		start := bytes.Index(e.buf, startMarker)
		if start < 0 {
			e.dropGarbage()
			break
		}
		if start > 0 {
			e.consume(start)
		}

		from := e.scanFrom
		if from < len(startMarker) {
			from = len(startMarker)
		}
		idx := bytes.Index(e.buf[from:], endMarker)
		if idx < 0 {
			// The last byte may be the first half of an end marker.
			e.scanFrom = len(e.buf) - 1
			break
		}

		end := from + idx + len(endMarker)
		frames = append(frames, bytes.Clone(e.buf[:end]))
		e.consume(end)
	}

	if e.maxBuffer > 0 && len(e.buf) > e.maxBuffer {
		e.Reset()
		return frames, ErrBufferOverflow
	}
	return frames, nil
}

// Buffered returns the number of bytes held for the next frame.
func (e *Extractor) Buffered() int {
	return len(e.buf)
}

// Reset drops all buffered bytes, e.g. when a new connection starts.
func (e *Extractor) Reset() {
	e.buf = e.buf[:0]
	e.scanFrom = 0
}

// consume removes the first n bytes, keeping the backing array.
func (e *Extractor) consume(n int) {
	e.buf = e.buf[:copy(e.buf, e.buf[n:])]
	e.scanFrom = 0
}

// dropGarbage discards a buffer holding no start marker. A trailing 0xFF is
// kept since the next chunk may complete it into one.
func (e *Extractor) dropGarbage() {
	if n := len(e.buf); n > 0 && e.buf[n-1] == startMarker[0] {
		e.buf[0] = startMarker[0]
		e.buf = e.buf[:1]
	} else {
		e.buf = e.buf[:0]
	}
	e.scanFrom = 0
}
