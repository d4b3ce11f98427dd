package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/camera"
	"github.com/AgilHD/MKBEEE/pkg/classify"
	"github.com/AgilHD/MKBEEE/pkg/display"
	"github.com/AgilHD/MKBEEE/pkg/led"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
)

// SessionOptions holds the optional collaborators of a session.
type SessionOptions struct {
	// Classifier labels frames. Nil runs in passthrough mode.
	Classifier classify.Classifier

	// LED is toggled by the LED key. Nil ignores the key.
	LED *led.Switch

	// Display shows frames. Nil runs headless.
	Display display.Display

	// Sinks receive processed frames.
	Sinks []Sink

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// KeyWait is the keypress poll timeout per frame.
	KeyWait time.Duration

	// JPEGQuality is used when a frame must be re-encoded for sinks.
	JPEGQuality int

	// SourceName labels the source in the status, e.g. the stream URL.
	SourceName string
}

// Session owns everything one monitoring run needs: the frame source,
// optional classifier, LED switch and display. Close releases all of them.
type Session struct {
	id   string
	opts SessionOptions

	source     camera.Source
	classifier classify.Classifier
	display    display.Display
	log        *slog.Logger

	mu     sync.RWMutex
	status Status

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a session reading from src.
func NewSession(src camera.Source, opts SessionOptions) *Session {
	id := uuid.NewString()

	if opts.Display == nil {
		opts.Display = display.Headless{}
	}
	if opts.Logger == nil {
		opts.Logger = log.L()
	}
	if opts.KeyWait <= 0 {
		opts.KeyWait = time.Millisecond
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 80
	}

	return &Session{
		id:         id,
		opts:       opts,
		source:     src,
		classifier: opts.Classifier,
		display:    opts.Display,
		log:        opts.Logger.With("component", "session", "session", id),
		status: Status{
			SessionID:  id,
			Source:     opts.SourceName,
			Classifier: opts.Classifier != nil,
		},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()

	if s.opts.LED != nil {
		on := s.opts.LED.State()
		st.LED = &on
	}
	return st
}

// Run processes frames until the quit key, ctx cancellation or the end of
// the stream, all of which return nil. Any other error from the source or
// the display is returned. Resources are released before Run returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	s.mu.Lock()
	s.status.Running = true
	s.status.StartedAt = time.Now()
	s.mu.Unlock()
	s.opts.Metrics.SessionStarted()

	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
		s.opts.Metrics.SessionEnded()
	}()

	s.log.Info("session started", "source", s.opts.SourceName, "classifier", s.classifier != nil)

	for {
		quit, err := s.safeStep(ctx)
		switch {
		case err == nil && quit:
			s.log.Info("quit requested")
			return nil
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			s.log.Info("stream ended", "frames", s.Status().Frames)
			return nil
		case ctx.Err() != nil:
			s.log.Info("session cancelled")
			return nil
		default:
			s.log.Error("session failed", "error", err)
			return err
		}
	}
}

// safeStep runs Step and turns a panic in a collaborator into an error.
func (s *Session) safeStep(ctx context.Context) (quit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor: panic in frame loop: %v", r)
		}
	}()
	return s.Step(ctx)
}

// Step runs one iteration: read a frame, classify and annotate it when a
// classifier is present, publish it, show it and poll the keyboard.
// It reports whether the quit key was pressed.
func (s *Session) Step(ctx context.Context) (bool, error) {
	frame, err := s.source.Next(ctx)
	if err != nil {
		return false, err
	}
	defer frame.Close()

	annotated := s.classifyFrame(frame)
	s.publish(frame, annotated)

	if err := s.display.Show(frame.Image); err != nil {
		return false, fmt.Errorf("monitor: show frame: %w", err)
	}
	s.opts.Metrics.FrameShown()

	switch s.display.PollKey(s.opts.KeyWait) {
	case display.KeyQuit:
		return true, nil
	case display.KeyToggleLED:
		s.toggleLED(ctx)
	}
	return false, nil
}

// classifyFrame labels the frame and draws the label on it. A failure is
// logged and the frame stays unannotated. It reports whether the image was
// modified.
func (s *Session) classifyFrame(frame *camera.Frame) bool {
	s.mu.Lock()
	s.status.Frames++
	s.status.LastFrameAt = frame.CapturedAt
	s.mu.Unlock()

	if s.classifier == nil {
		return false
	}

	start := time.Now()
	pred, err := s.classifier.Classify(frame.Image)
	took := time.Since(start)
	if err != nil {
		s.opts.Metrics.Classified("", took)
		s.log.Warn("classification failed", "frame", frame.Seq, "error", err)
		s.mu.Lock()
		s.status.ClassifyErrors++
		s.mu.Unlock()
		return false
	}
	s.opts.Metrics.Classified(pred.Label, took)

	posture := classify.MapPosture(pred.Scores)
	s.mu.Lock()
	s.status.Prediction = &pred
	s.status.Posture = &posture
	s.mu.Unlock()

	display.Annotate(&frame.Image, pred.String())
	s.log.Debug("frame classified", "frame", frame.Seq, "label", pred.Label,
		"confidence", pred.Confidence, "posture", posture.Posture, "took", took)
	return true
}

func (s *Session) publish(frame *camera.Frame, annotated bool) {
	if len(s.opts.Sinks) == 0 {
		return
	}

	data := frame.JPEG
	if annotated || data == nil {
		enc, err := camera.EncodeJPEG(frame.Image, s.opts.JPEGQuality)
		if err != nil {
			s.log.Warn("encode frame for sinks", "frame", frame.Seq, "error", err)
			return
		}
		data = enc
	}

	st := s.Status()
	for _, sink := range s.opts.Sinks {
		sink.Publish(data, st)
	}
}

func (s *Session) toggleLED(ctx context.Context) {
	if s.opts.LED == nil {
		s.log.Debug("LED key ignored, LED control not configured")
		return
	}
	// Failures are logged by the switch and never stop the session.
	on, _ := s.opts.LED.Toggle(ctx)
	fmt.Printf("💡 LED %s\n", led.StateString(on))
}

// Close releases the source, the classifier and the display. Safe to call
// more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close source: %w", err))
		}
		if s.classifier != nil {
			if err := s.classifier.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close classifier: %w", err))
			}
		}
		if err := s.display.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
