package camera

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/AgilHD/MKBEEE/pkg/metrics"
	"gocv.io/x/gocv"
)

// DeviceSource reads frames through OpenCV's VideoCapture: a local camera,
// a video file or any URL the capture backend understands.
type DeviceSource struct {
	device  string
	capture *gocv.VideoCapture

	log     *slog.Logger
	metrics *metrics.Metrics

	seq       uint64
	closeOnce sync.Once
}

// OpenDevice opens cfg.Device. Numeric devices are treated as camera indexes.
func OpenDevice(cfg Config, opts ...Option) (*DeviceSource, error) {
	o := buildOptions(cfg, opts)

	capture, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %s: %w", cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera: device %s did not open", cfg.Device)
	}

	if cfg.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	o.logger.Info("device opened", "device", cfg.Device)

	return &DeviceSource{
		device:  cfg.Device,
		capture: capture,
		log:     o.logger,
		metrics: o.metrics,
	}, nil
}

// Next reads the next non-empty frame. io.EOF means the device or file
// stopped producing frames.
func (d *DeviceSource) Next(ctx context.Context) (*Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img := gocv.NewMat()
		if ok := d.capture.Read(&img); !ok {
			img.Close()
			return nil, io.EOF
		}
		if img.Empty() {
			img.Close()
			d.metrics.Decoded(false)
			continue
		}
		d.metrics.Decoded(true)

		d.seq++
		return &Frame{
			Seq:        d.seq,
			CapturedAt: time.Now(),
			Image:      img,
		}, nil
	}
}

// Close releases the capture device.
func (d *DeviceSource) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = d.capture.Close()
		d.log.Info("device closed", "device", d.device, "frames", d.seq)
	})
	return err
}
