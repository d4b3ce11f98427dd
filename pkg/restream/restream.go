// Package restream re-serves annotated frames as an MJPEG stream so any
// browser or video player can watch the monitor's output.
package restream

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hybridgroup/mjpeg"

	"github.com/AgilHD/MKBEEE/internal/log"
)

// Path is where the stream is served.
const Path = "/stream"

// Server serves the latest published frame to every connected viewer.
type Server struct {
	addr   string
	stream *mjpeg.Stream
	srv    *http.Server
	log    *slog.Logger

	published atomic.Uint64
}

// New creates a re-stream server for addr, e.g. ":8081".
func New(addr string) *Server {
	stream := mjpeg.NewStream()

	mux := http.NewServeMux()
	mux.Handle(Path, stream)

	return &Server{
		addr:   addr,
		stream: stream,
		log:    log.With("component", "restream"),
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("MJPEG re-stream listening", "addr", ln.Addr().String(), "path", Path)
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Publish replaces the current frame. Viewers that are still sending the
// previous frame skip this one.
func (s *Server) Publish(jpeg []byte) {
	if len(jpeg) == 0 {
		return
	}
	s.stream.UpdateJPEG(jpeg)
	s.published.Add(1)
}

// Published returns how many frames were handed to the stream.
func (s *Server) Published() uint64 {
	return s.published.Load()
}

// Shutdown stops accepting viewers. Open streams never go idle, so once ctx
// expires the remaining connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return s.srv.Close()
	}
	return err
}
