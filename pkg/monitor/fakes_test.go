package monitor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/AgilHD/MKBEEE/pkg/camera"
	"github.com/AgilHD/MKBEEE/pkg/classify"
	"github.com/AgilHD/MKBEEE/pkg/display"
)

// fakeSource yields n blank frames and then err (io.EOF by default).
type fakeSource struct {
	mu     sync.Mutex
	n      int
	seq    uint64
	err    error
	block  bool // block until ctx is done once frames run out
	closed int
}

func (f *fakeSource) Next(ctx context.Context) (*camera.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.n == 0 {
		if f.block {
			f.mu.Unlock()
			<-ctx.Done()
			f.mu.Lock()
			return nil, ctx.Err()
		}
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	f.n--
	f.seq++
	return &camera.Frame{
		Seq:        f.seq,
		CapturedAt: time.Now(),
		Image:      gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3),
	}, nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// fakeClassifier returns a fixed prediction, an error, or panics.
type fakeClassifier struct {
	pred   classify.Prediction
	err    error
	panics bool
	calls  int
	closed int
}

func (f *fakeClassifier) Classify(img gocv.Mat) (classify.Prediction, error) {
	f.calls++
	if f.panics {
		panic("model exploded")
	}
	return f.pred, f.err
}

func (f *fakeClassifier) Labels() []string { return []string{"Terlentang", "Tengkurap"} }

func (f *fakeClassifier) Close() error {
	f.closed++
	return nil
}

// fakeDisplay plays back keys, one per PollKey.
type fakeDisplay struct {
	keys    []display.Key
	shown   int
	showErr error
	closed  int
}

func (f *fakeDisplay) Show(img gocv.Mat) error {
	if f.showErr != nil {
		return f.showErr
	}
	f.shown++
	return nil
}

func (f *fakeDisplay) PollKey(wait time.Duration) display.Key {
	if len(f.keys) == 0 {
		return display.KeyNone
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k
}

func (f *fakeDisplay) Close() error {
	f.closed++
	return nil
}

// fakeLED records LED requests.
type fakeLED struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

func (f *fakeLED) Set(ctx context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, on)
	return f.err
}

// recordingSink keeps what it was given.
type recordingSink struct {
	mu       sync.Mutex
	frames   [][]byte
	statuses []Status
}

func (r *recordingSink) Publish(jpeg []byte, st Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, append([]byte(nil), jpeg...))
	r.statuses = append(r.statuses, st)
}

var errUpstream = errors.New("connection reset")
