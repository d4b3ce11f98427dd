// Package camera provides frame sources for the monitor: an HTTP MJPEG
// puller for ESP32-S3 camera firmware and a generic OpenCV video capture.
// Both produce decoded frames behind the Source interface.
package camera

import (
	"net/url"
	"time"

	"github.com/AgilHD/MKBEEE/internal/config"
	"github.com/AgilHD/MKBEEE/pkg/mjpeg"
)

// Source kinds.
const (
	KindHTTP   = "http"
	KindDevice = "device"
)

// Config holds capture source configuration.
type Config struct {
	// Kind selects the source: "http" or "device".
	Kind string `yaml:"kind" json:"kind" env:"CAMERA_KIND"`

	// === HTTP MJPEG ===

	// URL is the MJPEG stream endpoint, e.g. http://10.47.136.243/stream.
	URL string `yaml:"url" json:"url" env:"CAMERA_URL"`

	// ChunkSize is the read size for the response body.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size" env:"CAMERA_CHUNK_SIZE"`

	// HeaderTimeout bounds the wait for the stream response headers.
	HeaderTimeout time.Duration `yaml:"header_timeout" json:"header_timeout" env:"CAMERA_HEADER_TIMEOUT"`

	// MaxFrameBytes caps one partial frame. Zero keeps every partial frame.
	MaxFrameBytes int `yaml:"max_frame_bytes" json:"max_frame_bytes" env:"CAMERA_MAX_FRAME_BYTES"`

	// === Device ===

	// Device is an OpenCV capture target: a device index ("0"), a file
	// path or a network URL understood by the capture backend.
	Device string `yaml:"device" json:"device" env:"CAMERA_DEVICE"`

	// Width and Height request a capture size from the device. Zero keeps
	// the device default.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// DefaultConfig returns the configuration for the stock ESP32-S3 firmware
// on its default address.
func DefaultConfig() Config {
	return Config{
		Kind:          KindHTTP,
		URL:           config.StreamURL(config.DefaultCameraIP, config.DefaultStreamPort),
		ChunkSize:     mjpeg.DefaultChunkSize,
		HeaderTimeout: 10 * time.Second,
		Device:        "0",
	}
}

// Validate checks if the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Kind {
	case KindHTTP:
		u, err := url.Parse(c.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, "url must be an absolute http(s) URL")
		}
		if c.ChunkSize < 1 || c.ChunkSize > 1<<20 {
			errors = append(errors, "chunk_size must be between 1 and 1048576")
		}
		if c.HeaderTimeout < 0 {
			errors = append(errors, "header_timeout must not be negative")
		}
		if c.MaxFrameBytes < 0 {
			errors = append(errors, "max_frame_bytes must not be negative")
		}
	case KindDevice:
		if c.Device == "" {
			errors = append(errors, "device must be set for device sources")
		}
		if c.Width < 0 || c.Height < 0 {
			errors = append(errors, "width and height must not be negative")
		}
	default:
		errors = append(errors, "kind must be http or device")
	}

	return errors
}
