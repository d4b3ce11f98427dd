// Package display shows frames in a desktop window and polls the keyboard.
package display

import (
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// DefaultTitle is the window title used when none is configured.
const DefaultTitle = "ESP32-S3 Pose Detection"

// Key is a recognized keypress.
type Key int

// Keys.
const (
	KeyNone Key = iota
	KeyQuit
	KeyToggleLED
)

func (k Key) String() string {
	switch k {
	case KeyQuit:
		return "quit"
	case KeyToggleLED:
		return "toggle-led"
	default:
		return "none"
	}
}

// ParseKey maps a raw key code from WaitKey to a Key. Only the low byte
// is significant.
func ParseKey(code int) Key {
	if code < 0 {
		return KeyNone
	}
	switch code & 0xFF {
	case 'q', 'Q':
		return KeyQuit
	case 'l', 'L':
		return KeyToggleLED
	default:
		return KeyNone
	}
}

// Display renders frames and reports keypresses.
type Display interface {
	Show(img gocv.Mat) error
	PollKey(wait time.Duration) Key
	Close() error
}

// Window is a HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultTitle
	}
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws img in the window.
func (w *Window) Show(img gocv.Mat) error {
	w.win.IMShow(img)
	return nil
}

// PollKey waits up to wait for a keypress. Waits below one millisecond are
// rounded up since WaitKey(0) blocks forever.
func (w *Window) PollKey(wait time.Duration) Key {
	ms := int(wait / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return ParseKey(w.win.WaitKey(ms))
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless discards frames. Use it when no desktop is available and the
// web dashboard or re-stream is the only output.
type Headless struct{}

// Show does nothing.
func (Headless) Show(gocv.Mat) error { return nil }

// PollKey sleeps for wait and never reports a key.
func (Headless) PollKey(wait time.Duration) Key {
	if wait > 0 {
		time.Sleep(wait)
	}
	return KeyNone
}

// Close does nothing.
func (Headless) Close() error { return nil }

var overlayColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// Annotate draws text in the top-left corner of img.
func Annotate(img *gocv.Mat, text string) {
	gocv.PutText(img, text, image.Pt(20, 40), gocv.FontHersheySimplex, 1, overlayColor, 2)
}
