// Package web serves the monitoring dashboard: session status, LED control,
// the latest annotated frame, Prometheus metrics and live websocket feeds.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/hub"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
)

//go:embed static
var staticFiles embed.FS

// LEDSwitch is the LED control the dashboard exposes. *led.Switch
// satisfies it.
type LEDSwitch interface {
	State() bool
	Toggle(ctx context.Context) (bool, error)
	Set(ctx context.Context, on bool) error
}

// Options configures the server. Only Addr is required.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// LED enables the LED endpoints. Nil answers them with 503.
	LED LEDSwitch

	// Metrics is exposed on /metrics when set.
	Metrics *metrics.Metrics

	// Status returns a live status snapshot for /api/status. Without it
	// the last published status is served.
	Status func() any

	// AccessLog enables per-request logging.
	AccessLog bool
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	opts Options
	log  *slog.Logger

	frameMu    sync.RWMutex
	frame      []byte
	frameAt    time.Time
	lastStatus []byte

	statusHub *hub.Hub
	cameraHub *hub.Hub

	hubCtx context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web dashboard server
func NewServer(opts Options) *Server {
	s := &Server{
		opts:      opts,
		log:       log.With("component", "web"),
		statusHub: hub.New("status"),
		cameraHub: hub.New("camera"),
	}
	s.hubCtx, s.cancel = context.WithCancel(context.Background())

	app := fiber.New(fiber.Config{
		AppName:               "BoboBee Monitor",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/metrics" || c.Path() == "/api/frame"
			},
		}))
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/frame", s.handleFrame)
	api.Get("/led", s.handleGetLED)
	api.Put("/led", s.handleSetLED)
	api.Post("/led/toggle", s.handleToggleLED)

	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))

	root, _ := fs.Sub(staticFiles, "static")
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(root),
		Index: "index.html",
	}))

	s.app = app
	return s
}

// Start runs the hubs and serves on Addr until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until Shutdown. Cancelling ctx
// stops the hubs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	context.AfterFunc(ctx, s.cancel)
	go s.statusHub.Run(s.hubCtx)
	go s.cameraHub.Run(s.hubCtx)

	s.log.Info("web dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.log.Error("web server stopped", "error", err)
		}
	}()
}

// Publish records the latest annotated frame and status and pushes both to
// websocket clients. The frame is copied.
func (s *Server) Publish(jpeg []byte, status any) {
	data, err := json.Marshal(status)
	if err != nil {
		s.log.Warn("encode status", "error", err)
	}

	s.frameMu.Lock()
	if jpeg != nil {
		s.frame = append(s.frame[:0], jpeg...)
		s.frameAt = time.Now()
	}
	if err == nil {
		s.lastStatus = data
	}
	s.frameMu.Unlock()

	if jpeg != nil && s.cameraHub.ClientCount() > 0 {
		s.cameraHub.BroadcastBinary(append([]byte(nil), jpeg...))
	}
	if err == nil && s.statusHub.ClientCount() > 0 {
		s.statusHub.Broadcast(hub.NewJSONMessage(data))
	}
}

// Shutdown stops the hubs and the HTTP server.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := hub.NewClient(h, c)
		if client == nil {
			return
		}
		client.Run()
	}
}
