package camera

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AgilHD/MKBEEE/internal/httpc"
	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
)

// Source produces decoded frames.
type Source interface {
	// Next blocks until the next decodable frame. It returns io.EOF when
	// the upstream ends normally. Frames that fail to decode are skipped
	// internally and never returned.
	Next(ctx context.Context) (*Frame, error)

	// Close releases the connection or device. Safe to call more than once.
	Close() error
}

// Option configures a source.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *http.Client
}

// WithLogger sets the logger used for skipped frames and stream events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records stream and decode metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithHTTPClient overrides the streaming HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

func buildOptions(cfg Config, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.With("component", "camera")
	}
	if o.client == nil {
		o.client = httpc.NewStreamClient(cfg.HeaderTimeout)
	}
	return o
}

// Open creates the source selected by cfg.Kind.
func Open(ctx context.Context, cfg Config, opts ...Option) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}

	switch cfg.Kind {
	case KindHTTP:
		return OpenHTTP(ctx, cfg, opts...)
	case KindDevice:
		return OpenDevice(cfg, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
