package classify

import (
	"path/filepath"
)

// ModelConfig describes a model artifact: network topology, weights and
// label metadata, plus the preprocessing the network expects.
type ModelConfig struct {
	// Dir holds the artifact files. Empty disables classification.
	Dir string `yaml:"dir" json:"dir" env:"MODEL_DIR"`

	// Topology, Weights and Metadata are file names relative to Dir
	// (absolute paths are used as is). Topology may be empty for formats
	// that carry it inside the weights file, such as ONNX.
	Topology string `yaml:"topology" json:"topology" env:"MODEL_TOPOLOGY"`
	Weights  string `yaml:"weights" json:"weights" env:"MODEL_WEIGHTS"`
	Metadata string `yaml:"metadata" json:"metadata" env:"MODEL_METADATA"`

	// InputWidth and InputHeight are the network input size.
	InputWidth  int `yaml:"input_width" json:"input_width"`
	InputHeight int `yaml:"input_height" json:"input_height"`

	// Scale multiplies pixel values after Mean is subtracted.
	Scale float64 `yaml:"scale" json:"scale"`

	// Mean is subtracted from every channel before scaling.
	Mean float64 `yaml:"mean" json:"mean"`

	// SwapRB converts the BGR frame to RGB before inference.
	SwapRB bool `yaml:"swap_rb" json:"swap_rb"`
}

// DefaultModelConfig returns defaults for an image classifier exported at
// 224x224 with inputs in 0..1.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Topology:    "model.pbtxt",
		Weights:     "model.pb",
		Metadata:    "metadata.json",
		InputWidth:  224,
		InputHeight: 224,
		Scale:       1.0 / 255.0,
		SwapRB:      true,
	}
}

// Enabled reports whether a model directory is configured.
func (c ModelConfig) Enabled() bool {
	return c.Dir != ""
}

// TopologyPath returns the resolved topology path, or "" when unset.
func (c ModelConfig) TopologyPath() string {
	if c.Topology == "" {
		return ""
	}
	return c.resolve(c.Topology)
}

// WeightsPath returns the resolved weights path.
func (c ModelConfig) WeightsPath() string {
	return c.resolve(c.Weights)
}

// MetadataPath returns the resolved metadata path.
func (c ModelConfig) MetadataPath() string {
	return c.resolve(c.Metadata)
}

func (c ModelConfig) resolve(name string) string {
	if filepath.IsAbs(name) || c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// Validate checks if the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *ModelConfig) Validate() []string {
	if !c.Enabled() {
		return nil
	}

	var errors []string
	if c.Weights == "" {
		errors = append(errors, "weights file name must be set")
	}
	if c.Metadata == "" {
		errors = append(errors, "metadata file name must be set")
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		errors = append(errors, "input size must be positive")
	}
	if c.Scale <= 0 {
		errors = append(errors, "scale must be positive")
	}
	return errors
}
