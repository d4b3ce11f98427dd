// Package led switches the camera board's LED over HTTP.
package led

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/AgilHD/MKBEEE/internal/httpc"
	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
)

// ErrNoController is returned when LED control is not configured.
var ErrNoController = errors.New("led: no controller")

// StatusError is returned when the LED endpoint answers with a status
// other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("led: HTTP %d from %s", e.StatusCode, e.URL)
}

// Controller sets the LED state.
type Controller interface {
	Set(ctx context.Context, on bool) error
}

// HTTPController drives the LED endpoint with GET <URL>?state=on|off.
type HTTPController struct {
	URL    string
	Client *http.Client
}

// NewHTTPController creates a controller for the given LED endpoint using
// the short control timeout.
func NewHTTPController(endpoint string) *HTTPController {
	return &HTTPController{
		URL:    endpoint,
		Client: httpc.NewClient(httpc.ControlTimeout),
	}
}

// Set sends the requested state. Only HTTP 200 counts as success.
func (c *HTTPController) Set(ctx context.Context, on bool) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("led: parse url: %w", err)
	}
	q := u.Query()
	q.Set("state", StateString(on))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("led: build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("led: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: c.URL, StatusCode: resp.StatusCode}
	}
	return nil
}

// StateString renders a state as the endpoint's query value.
func StateString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// ParseState parses "on" or "off".
func ParseState(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("led: invalid state %q", s)
	}
}

// Switch owns the LED state and pushes changes to a Controller. It is safe
// for concurrent use.
type Switch struct {
	ctrl    Controller
	log     *slog.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
	on bool
}

// NewSwitch creates a switch that starts in the off state.
// m may be nil.
func NewSwitch(ctrl Controller, m *metrics.Metrics) *Switch {
	return &Switch{
		ctrl:    ctrl,
		log:     log.With("component", "led"),
		metrics: m,
	}
}

// State returns the last requested state.
func (s *Switch) State() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// Toggle flips the state and sends it. The local state flips even when the
// request fails; the error is logged and returned for the caller to report.
func (s *Switch) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.on = !s.on
	return s.on, s.send(ctx, s.on)
}

// Set records and sends an explicit state.
func (s *Switch) Set(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.on = on
	return s.send(ctx, on)
}

func (s *Switch) send(ctx context.Context, on bool) error {
	if s.ctrl == nil {
		return ErrNoController
	}
	err := s.ctrl.Set(ctx, on)
	s.metrics.LEDRequest(on, err)
	if err != nil {
		s.log.Warn("LED request failed", "state", StateString(on), "error", err)
		return err
	}
	s.log.Info("LED switched", "state", StateString(on))
	return nil
}
