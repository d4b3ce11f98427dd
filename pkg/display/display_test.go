package display

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		code int
		want Key
	}{
		{-1, KeyNone},
		{'q', KeyQuit},
		{'Q', KeyQuit},
		{'l', KeyToggleLED},
		{'L', KeyToggleLED},
		{'x', KeyNone},
		{' ', KeyNone},
		{0x100 | 'q', KeyQuit}, // modifier bits above the low byte
	}

	for _, tc := range tests {
		if got := ParseKey(tc.code); got != tc.want {
			t.Errorf("ParseKey(%d) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestHeadless(t *testing.T) {
	var d Display = Headless{}

	img := gocv.NewMat()
	defer img.Close()

	if err := d.Show(img); err != nil {
		t.Errorf("Show: %v", err)
	}
	start := time.Now()
	if k := d.PollKey(5 * time.Millisecond); k != KeyNone {
		t.Errorf("PollKey = %s, want none", k)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("PollKey should wait")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestAnnotate(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	Annotate(&img, "Terlentang (92.4%)")

	// Text is drawn in pure green starting near (20,40).
	found := false
	for y := 15; y < 45 && !found; y++ {
		for x := 20; x < 300; x++ {
			v := img.GetVecbAt(y, x)
			if v[0] == 0 && v[1] == 255 && v[2] == 0 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected green overlay pixels")
	}
}
