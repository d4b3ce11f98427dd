// Package classify runs an image classification network over camera frames
// and maps its output to sleeping postures.
package classify

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// Classifier labels a single frame.
type Classifier interface {
	Classify(img gocv.Mat) (Prediction, error)
	Labels() []string
	Close() error
}

// NetClassifier runs a network through OpenCV's dnn module.
type NetClassifier struct {
	net    gocv.Net
	labels []string
	config ModelConfig
	mu     sync.Mutex // Protects inference and closed
	closed bool
}

// Load reads the model artifact described by cfg. Any missing or
// malformed file is an error; nothing is partially loaded.
func Load(cfg ModelConfig) (*NetClassifier, error) {
	paths := []string{cfg.WeightsPath(), cfg.MetadataPath()}
	if p := cfg.TopologyPath(); p != "" {
		paths = append(paths, p)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrModelMissing, p)
			}
			return nil, fmt.Errorf("classify: stat %s: %w", p, err)
		}
	}

	labels, err := LoadLabels(cfg.MetadataPath())
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(cfg.WeightsPath(), cfg.TopologyPath())
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyNetwork, cfg.WeightsPath())
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &NetClassifier{
		net:    net,
		labels: labels,
		config: cfg,
	}, nil
}

// Classify resizes img to the network input, runs a forward pass and
// returns the most likely class.
func (c *NetClassifier) Classify(img gocv.Mat) (Prediction, error) {
	if img.Empty() {
		return Prediction{}, ErrEmptyImage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Prediction{}, ErrClosed
	}

	mean := gocv.NewScalar(c.config.Mean, c.config.Mean, c.config.Mean, 0)
	blob := gocv.BlobFromImage(img, c.config.Scale,
		image.Pt(c.config.InputWidth, c.config.InputHeight),
		mean, c.config.SwapRB, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return Prediction{}, fmt.Errorf("classify: read output: %w", err)
	}

	raw := make([]float64, len(data))
	for i, v := range data {
		raw[i] = float64(v)
	}
	return NewPrediction(raw, c.labels)
}

// Labels returns the class labels in network output order.
func (c *NetClassifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Close releases the network. Later calls are no-ops.
func (c *NetClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.net.Close()
}
