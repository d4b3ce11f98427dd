// Package metrics exposes Prometheus metrics for the camera monitor.
//
// All recording methods accept a nil receiver so components can run
// without metrics wired in.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bobobee"

// Metrics contains all Prometheus metrics for one monitor process.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Stream metrics
	StreamBytes     prometheus.Counter
	FramesExtracted prometheus.Counter
	BufferOverflows prometheus.Counter

	// Decode metrics
	FramesDecoded prometheus.Counter
	DecodeErrors  prometheus.Counter

	// Classifier metrics
	Predictions      *prometheus.CounterVec
	ClassifyErrors   prometheus.Counter
	ClassifyDuration prometheus.Histogram

	// LED metrics
	LEDRequests *prometheus.CounterVec

	// Session metrics
	SessionActive prometheus.Gauge
	FramesShown   prometheus.Counter
}

// New creates and registers all metrics on reg.
// A nil reg gets a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		StreamBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total bytes read from the camera stream",
		}),
		FramesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "frames_extracted_total",
			Help:      "Total JPEG frames cut out of the stream",
		}),
		BufferOverflows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "buffer_overflows_total",
			Help:      "Partial frames dropped for exceeding the buffer cap",
		}),

		FramesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "frames_total",
			Help:      "Total frames decoded successfully",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "errors_total",
			Help:      "Total frames skipped because they did not decode",
		}),

		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "predictions_total",
			Help:      "Total predictions, by label",
		}, []string{"label"}),
		ClassifyErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "errors_total",
			Help:      "Total classifier failures",
		}),
		ClassifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "duration_seconds",
			Help:      "Time spent classifying one frame",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		LEDRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "led",
			Name:      "requests_total",
			Help:      "LED control requests, by state and result",
		}, []string{"state", "result"}),

		SessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "1 while a capture session is running",
		}),
		FramesShown: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_shown_total",
			Help:      "Total frames handed to the display and sinks",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer returns the registry backing these metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// StreamRead records bytes pulled from the camera.
func (m *Metrics) StreamRead(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StreamBytes.Add(float64(n))
}

// FrameExtracted records one frame cut out of the stream.
func (m *Metrics) FrameExtracted() {
	if m == nil {
		return
	}
	m.FramesExtracted.Inc()
}

// BufferOverflow records a dropped partial frame.
func (m *Metrics) BufferOverflow() {
	if m == nil {
		return
	}
	m.BufferOverflows.Inc()
}

// Decoded records the outcome of one decode.
func (m *Metrics) Decoded(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.FramesDecoded.Inc()
	} else {
		m.DecodeErrors.Inc()
	}
}

// Classified records one classifier run. An empty label marks a failure.
func (m *Metrics) Classified(label string, took time.Duration) {
	if m == nil {
		return
	}
	m.ClassifyDuration.Observe(took.Seconds())
	if label == "" {
		m.ClassifyErrors.Inc()
		return
	}
	m.Predictions.WithLabelValues(label).Inc()
}

// LEDRequest records one LED control call.
func (m *Metrics) LEDRequest(on bool, err error) {
	if m == nil {
		return
	}
	state := "off"
	if on {
		state = "on"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LEDRequests.WithLabelValues(state, result).Inc()
}

// SessionStarted marks a capture session as running.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionActive.Set(1)
}

// SessionEnded marks the capture session as stopped.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.SessionActive.Set(0)
}

// FrameShown records a frame handed to the display and sinks.
func (m *Metrics) FrameShown() {
	if m == nil {
		return
	}
	m.FramesShown.Inc()
}
