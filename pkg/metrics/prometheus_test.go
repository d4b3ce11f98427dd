package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.StreamRead(10)
	m.FrameExtracted()
	m.BufferOverflow()
	m.Decoded(true)
	m.Classified("Terlentang", time.Millisecond)
	m.LEDRequest(true, nil)
	m.SessionStarted()
	m.SessionEnded()
	m.FrameShown()
}

func TestNewRegistersOnSeparateRegistries(t *testing.T) {
	// Two instances must not collide, each owns its registry.
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.FrameExtracted()
	if got := testutil.ToFloat64(a.FramesExtracted); got != 1 {
		t.Errorf("a.FramesExtracted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.FramesExtracted); got != 0 {
		t.Errorf("b.FramesExtracted = %v, want 0", got)
	}
}

func TestRecording(t *testing.T) {
	m := New(nil)

	m.StreamRead(1024)
	m.StreamRead(0)
	m.Decoded(true)
	m.Decoded(false)
	m.Decoded(false)
	m.Classified("Tengkurap", 10*time.Millisecond)
	m.Classified("", 10*time.Millisecond)
	m.LEDRequest(true, nil)
	m.LEDRequest(false, errors.New("timeout"))
	m.SessionStarted()

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"stream bytes", m.StreamBytes, 1024},
		{"decoded", m.FramesDecoded, 1},
		{"decode errors", m.DecodeErrors, 2},
		{"classify errors", m.ClassifyErrors, 1},
		{"predictions", m.Predictions.WithLabelValues("Tengkurap"), 1},
		{"led on ok", m.LEDRequests.WithLabelValues("on", "ok"), 1},
		{"led off error", m.LEDRequests.WithLabelValues("off", "error"), 1},
		{"session active", m.SessionActive, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tc.c); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	m.SessionEnded()
	if got := testutil.ToFloat64(m.SessionActive); got != 0 {
		t.Errorf("SessionActive after end = %v, want 0", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.FrameExtracted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bobobee_stream_frames_extracted_total 1") {
		t.Errorf("exposition missing frames counter:\n%s", rec.Body.String())
	}
}
