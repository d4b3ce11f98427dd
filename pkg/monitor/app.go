// Package monitor wires the camera source, classifier, LED switch, display
// and outputs into one session and manages their lifecycle.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/camera"
	"github.com/AgilHD/MKBEEE/pkg/classify"
	"github.com/AgilHD/MKBEEE/pkg/display"
	"github.com/AgilHD/MKBEEE/pkg/led"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
	"github.com/AgilHD/MKBEEE/pkg/restream"
	"github.com/AgilHD/MKBEEE/pkg/web"
)

// SourceOpener opens a frame source. camera.Open is the default.
type SourceOpener func(ctx context.Context, cfg camera.Config, opts ...camera.Option) (camera.Source, error)

// Option customizes an App. Used by tests to swap in fakes.
type Option func(*App)

// WithSourceOpener replaces camera.Open.
func WithSourceOpener(open SourceOpener) Option {
	return func(a *App) { a.openSource = open }
}

// WithDisplay replaces the display chosen from the config.
func WithDisplay(d display.Display) Option {
	return func(a *App) { a.display = d }
}

// WithLEDController replaces the HTTP LED controller.
func WithLEDController(c led.Controller) Option {
	return func(a *App) { a.ledCtrl = c }
}

// WithClassifier replaces model loading.
func WithClassifier(c classify.Classifier) Option {
	return func(a *App) { a.classifier = c }
}

// App is the monitor application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	log    *slog.Logger

	openSource SourceOpener
	ledCtrl    led.Controller

	metrics    *metrics.Metrics
	ledSwitch  *led.Switch
	classifier classify.Classifier
	display    display.Display
	source     camera.Source

	webServer *web.Server
	restream  *restream.Server

	session *Session
}

// New creates a new monitor application with the given configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}

	app := &App{
		config:     cfg,
		log:        log.With("component", "monitor"),
		openSource: camera.Open,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// Init initializes all components.
// Call this after New() and before Run(). On error everything opened so
// far is released.
func (a *App) Init(ctx context.Context) (err error) {
	fmt.Println("📷 BoboBee Camera Monitor")
	fmt.Println("=========================")

	defer func() {
		if err != nil {
			a.release()
		}
	}()

	a.metrics = metrics.New(nil)

	if a.config.LED.Enabled {
		if a.ledCtrl == nil {
			a.ledCtrl = led.NewHTTPController(a.config.LED.URL)
		}
		a.ledSwitch = led.NewSwitch(a.ledCtrl, a.metrics)
		fmt.Printf("💡 LED control: %s (press 'l' to toggle)\n", a.config.LED.URL)
	}

	a.initClassifier()

	fmt.Print("📹 Connecting to camera... ")
	a.source, err = a.openSource(ctx, a.config.Camera,
		camera.WithMetrics(a.metrics),
		camera.WithLogger(log.With("component", "camera")))
	if err != nil {
		fmt.Println("❌")
		return fmt.Errorf("open camera: %w", err)
	}
	fmt.Println("✅")

	if a.display == nil {
		if a.config.Display.Enabled {
			a.display = display.NewWindow(a.config.Display.Title)
		} else {
			a.display = display.Headless{}
		}
	}

	var sinks []Sink
	if a.config.Web.Enabled {
		a.webServer = web.NewServer(web.Options{
			Addr:      a.config.Web.Addr,
			LED:       a.webLED(),
			Metrics:   a.metrics,
			Status:    func() any { return a.Status() },
			AccessLog: a.config.Web.AccessLog,
		})
		sinks = append(sinks, SinkFunc(func(jpeg []byte, st Status) {
			a.webServer.Publish(jpeg, st)
		}))
	}
	if a.config.Restream.Enabled {
		a.restream = restream.New(a.config.Restream.Addr)
		sinks = append(sinks, SinkFunc(func(jpeg []byte, _ Status) {
			a.restream.Publish(jpeg)
		}))
	}

	a.session = NewSession(a.source, SessionOptions{
		Classifier:  a.classifier,
		LED:         a.ledSwitch,
		Display:     a.display,
		Sinks:       sinks,
		Metrics:     a.metrics,
		Logger:      log.L(),
		KeyWait:     a.config.Display.KeyWait,
		JPEGQuality: a.config.Web.JPEGQuality,
		SourceName:  a.sourceName(),
	})
	return nil
}

// initClassifier loads the model. A missing or broken model degrades to
// passthrough instead of failing startup.
func (a *App) initClassifier() {
	if a.classifier != nil {
		return
	}
	if !a.config.Model.Enabled() {
		fmt.Println("🧠 Classifier: disabled (passthrough)")
		return
	}

	fmt.Print("🧠 Loading model... ")
	c, err := classify.Load(a.config.Model)
	if err != nil {
		fmt.Printf("⚠️  %v\n", err)
		fmt.Println("   Continuing without classification")
		a.log.Warn("model load failed, running passthrough", "dir", a.config.Model.Dir, "error", err)
		return
	}
	a.classifier = c
	fmt.Printf("✅ (%d labels: %s)\n", len(c.Labels()), strings.Join(c.Labels(), ", "))
}

// Run starts the outputs and processes frames until the session ends.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil {
		return fmt.Errorf("monitor: Run called before Init")
	}

	if a.webServer != nil {
		a.webServer.StartAsync(ctx)
		fmt.Printf("🌐 Web dashboard: http://localhost%s\n", a.config.Web.Addr)
	}
	if a.restream != nil {
		go func() {
			if err := a.restream.Start(); err != nil {
				a.log.Error("re-stream stopped", "error", err)
			}
		}()
		fmt.Printf("📡 MJPEG re-stream: http://localhost%s%s\n", a.config.Restream.Addr, restream.Path)
	}

	fmt.Println("\n👀 Watching camera. Press 'q' in the window (or Ctrl+C) to quit.")
	return a.session.Run(ctx)
}

// Status returns the session status, or an idle status before Init.
func (a *App) Status() Status {
	if a.session == nil {
		return Status{}
	}
	return a.session.Status()
}

// Metrics returns the metrics registry created by Init.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Shutdown stops the outputs and releases every component.
func (a *App) Shutdown() {
	fmt.Println("\n👋 Goodbye!")

	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.log.Warn("web shutdown", "error", err)
		}
	}
	if a.restream != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.restream.Shutdown(ctx); err != nil {
			a.log.Warn("re-stream shutdown", "error", err)
		}
		cancel()
	}
	a.release()
}

// release closes the session, or the components directly when Init did
// not get as far as creating one.
func (a *App) release() {
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.log.Warn("release session", "error", err)
		}
		return
	}
	if a.source != nil {
		a.source.Close()
	}
	if a.classifier != nil {
		a.classifier.Close()
	}
	if a.display != nil {
		a.display.Close()
	}
}

func (a *App) sourceName() string {
	if a.config.Camera.Kind == camera.KindDevice {
		return "device:" + a.config.Camera.Device
	}
	return a.config.Camera.URL
}

// webLED avoids handing the dashboard a typed nil.
func (a *App) webLED() web.LEDSwitch {
	if a.ledSwitch == nil {
		return nil
	}
	return a.ledSwitch
}
