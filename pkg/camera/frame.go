package camera

import (
	"bytes"
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Frame is one decoded camera image.
type Frame struct {
	// Seq counts delivered frames from 1 within one source.
	Seq uint64

	// CapturedAt is when the frame was read from the source.
	CapturedAt time.Time

	// JPEG holds the bytes as received for HTTP sources; nil for devices.
	JPEG []byte

	// Image is the decoded BGR matrix. Owned by the frame; release it
	// with Close.
	Image gocv.Mat
}

// Width returns the image width in pixels.
func (f *Frame) Width() int {
	return f.Image.Cols()
}

// Height returns the image height in pixels.
func (f *Frame) Height() int {
	return f.Image.Rows()
}

// Close releases the decoded image.
func (f *Frame) Close() error {
	return f.Image.Close()
}

// Decode turns JPEG bytes into a 3-channel BGR matrix.
// Errors wrap ErrDecode; the returned matrix is only valid when err is nil.
func Decode(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, ErrDecode
	}
	return img, nil
}

// EncodeJPEG encodes img at the given quality (1-100).
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("camera: encode jpeg: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// IsJPEG reports whether b starts with a start-of-image marker and ends with
// an end-of-image marker. It does not validate the content.
func IsJPEG(b []byte) bool {
	return len(b) >= 4 &&
		b[0] == 0xFF && b[1] == 0xD8 &&
		b[len(b)-2] == 0xFF && b[len(b)-1] == 0xD9
}
