package monitor

import (
	"time"

	"github.com/AgilHD/MKBEEE/pkg/classify"
)

// Status is a snapshot of a running session.
type Status struct {
	SessionID string    `json:"session_id"`
	Source    string    `json:"source"`
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at"`

	Frames         uint64    `json:"frames"`
	ClassifyErrors uint64    `json:"classify_errors"`
	LastFrameAt    time.Time `json:"last_frame_at"`

	Classifier bool                    `json:"classifier"`
	Prediction *classify.Prediction    `json:"prediction,omitempty"`
	Posture    *classify.PostureResult `json:"posture,omitempty"`

	// LED is nil when LED control is not configured.
	LED *bool `json:"led,omitempty"`
}

// Sink receives every processed frame as JPEG together with the status
// after that frame. Implementations must not retain jpeg.
type Sink interface {
	Publish(jpeg []byte, status Status)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(jpeg []byte, status Status)

// Publish calls f.
func (f SinkFunc) Publish(jpeg []byte, status Status) {
	f(jpeg, status)
}
