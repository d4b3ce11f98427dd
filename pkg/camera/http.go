package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AgilHD/MKBEEE/pkg/metrics"
	"github.com/AgilHD/MKBEEE/pkg/mjpeg"
)

// HTTPSource pulls an MJPEG stream over HTTP and decodes the JPEG frames
// found in it. One HTTPSource is one connection; open a new one to
// reconnect.
type HTTPSource struct {
	url string

	resp   *http.Response
	cancel context.CancelFunc
	reader *mjpeg.Reader

	log     *slog.Logger
	metrics *metrics.Metrics

	seq       uint64
	skipped   uint64
	lastBytes int64

	closed    atomic.Bool
	closeOnce sync.Once
}

// OpenHTTP connects to the stream endpoint. A connection failure or any
// status other than 200 is returned immediately; nothing is retried.
//
// The connection stays bound to ctx: cancelling it aborts a blocked read.
func OpenHTTP(ctx context.Context, cfg Config, opts ...Option) (*HTTPSource, error) {
	o := buildOptions(cfg, opts)

	reqCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("camera: build stream request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("camera: open stream %s: %w", cfg.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, &StatusError{URL: cfg.URL, StatusCode: resp.StatusCode}
	}

	var readerOpts []mjpeg.Option
	if cfg.MaxFrameBytes > 0 {
		readerOpts = append(readerOpts, mjpeg.WithMaxBuffer(cfg.MaxFrameBytes))
	}

	o.logger.Info("stream connected",
		"url", cfg.URL,
		"content_type", resp.Header.Get("Content-Type"))

	return &HTTPSource{
		url:     cfg.URL,
		resp:    resp,
		cancel:  cancel,
		reader:  mjpeg.NewReader(resp.Body, cfg.ChunkSize, readerOpts...),
		log:     o.logger,
		metrics: o.metrics,
	}, nil
}

// Next returns the next frame that decodes. Undecodable frames are logged,
// counted and skipped. io.EOF means the camera closed the stream.
func (s *HTTPSource) Next(ctx context.Context) (*Frame, error) {
	// Cancelling ctx tears the connection down so a blocked read returns.
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	for {
		if s.closed.Load() {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.reader.Next()
		s.recordBytes()
		if err != nil {
			if errors.Is(err, mjpeg.ErrBufferOverflow) {
				s.metrics.BufferOverflow()
				s.log.Warn("dropping oversized partial frame", "url", s.url)
				continue
			}
			if s.closed.Load() {
				return nil, ErrClosed
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		s.metrics.FrameExtracted()

		img, err := Decode(data)
		if err != nil {
			s.skipped++
			s.metrics.Decoded(false)
			s.log.Debug("skipping undecodable frame", "bytes", len(data), "error", err)
			continue
		}
		s.metrics.Decoded(true)

		s.seq++
		return &Frame{
			Seq:        s.seq,
			CapturedAt: time.Now(),
			JPEG:       data,
			Image:      img,
		}, nil
	}
}

// Skipped returns how many extracted frames failed to decode.
func (s *HTTPSource) Skipped() uint64 {
	return s.skipped
}

// URL returns the stream endpoint.
func (s *HTTPSource) URL() string {
	return s.url
}

// Close aborts the request and releases the response body.
func (s *HTTPSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.cancel()
		err = s.resp.Body.Close()
		s.log.Info("stream closed", "url", s.url, "frames", s.seq, "skipped", s.skipped)
	})
	return err
}

func (s *HTTPSource) recordBytes() {
	n := s.reader.BytesRead()
	s.metrics.StreamRead(int(n - s.lastBytes))
	s.lastBytes = n
}
