package monitor

import (
	"os"
	"time"

	"github.com/AgilHD/MKBEEE/internal/config"
	"github.com/AgilHD/MKBEEE/pkg/camera"
	"github.com/AgilHD/MKBEEE/pkg/classify"
	"github.com/AgilHD/MKBEEE/pkg/display"
)

// Config holds all configuration for the monitor.
// Flag parsing is done in cmd/monitor/main.go; this struct is data only.
type Config struct {
	Camera   camera.Config        `yaml:"camera"`
	Model    classify.ModelConfig `yaml:"model"`
	LED      LEDConfig            `yaml:"led"`
	Display  DisplayConfig        `yaml:"display"`
	Web      WebConfig            `yaml:"web"`
	Restream RestreamConfig       `yaml:"restream"`
	Log      LogConfig            `yaml:"log"`
}

// LEDConfig configures remote LED control.
type LEDConfig struct {
	Enabled bool   `yaml:"enabled" env:"LED_ENABLED"`
	URL     string `yaml:"url" env:"LED_URL"`
}

// DisplayConfig configures the local window.
type DisplayConfig struct {
	// Enabled opens a desktop window. Disabled runs headless.
	Enabled bool   `yaml:"enabled" env:"DISPLAY_ENABLED"`
	Title   string `yaml:"title" env:"DISPLAY_TITLE"`

	// KeyWait is how long each iteration waits for a keypress.
	KeyWait time.Duration `yaml:"key_wait" env:"DISPLAY_KEY_WAIT"`
}

// WebConfig configures the dashboard.
type WebConfig struct {
	Enabled   bool   `yaml:"enabled" env:"WEB_ENABLED"`
	Addr      string `yaml:"addr" env:"WEB_ADDR"`
	AccessLog bool   `yaml:"access_log" env:"WEB_ACCESS_LOG"`

	// JPEGQuality is used when annotated frames are re-encoded for the
	// dashboard and the re-stream.
	JPEGQuality int `yaml:"jpeg_quality" env:"WEB_JPEG_QUALITY"`
}

// RestreamConfig configures the MJPEG re-stream of annotated frames.
type RestreamConfig struct {
	Enabled bool   `yaml:"enabled" env:"RESTREAM_ENABLED"`
	Addr    string `yaml:"addr" env:"RESTREAM_ADDR"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// DefaultConfig returns the configuration for the stock camera firmware
// with a local window and no classifier.
func DefaultConfig() Config {
	return Config{
		Camera: camera.DefaultConfig(),
		Model:  classify.DefaultModelConfig(),
		LED: LEDConfig{
			Enabled: true,
			URL:     config.LEDURL(config.DefaultCameraIP),
		},
		Display: DisplayConfig{
			Enabled: true,
			Title:   display.DefaultTitle,
			KeyWait: time.Millisecond,
		},
		Web: WebConfig{
			Addr:        ":8080",
			JPEGQuality: 80,
		},
		Restream: RestreamConfig{
			Addr: ":8081",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig layers defaults, the YAML file at path (optional) and the
// environment. CAMERA_IP sets the stream and LED endpoints unless
// CAMERA_URL or LED_URL are given explicitly.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.Load(path, &cfg); err != nil {
		return cfg, err
	}

	if ip := os.Getenv("CAMERA_IP"); ip != "" {
		if os.Getenv("CAMERA_URL") == "" {
			cfg.Camera.URL = config.StreamURL(ip, config.DefaultStreamPort)
		}
		if os.Getenv("LED_URL") == "" {
			cfg.LED.URL = config.LEDURL(ip)
		}
	}
	return cfg, nil
}

// Validate checks every section. Returns a list of validation errors, or
// nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	for _, e := range c.Camera.Validate() {
		errors = append(errors, "camera: "+e)
	}
	for _, e := range c.Model.Validate() {
		errors = append(errors, "model: "+e)
	}

	if c.LED.Enabled && c.LED.URL == "" {
		errors = append(errors, "led: url must be set when enabled")
	}
	if c.Display.KeyWait < 0 {
		errors = append(errors, "display: key_wait must not be negative")
	}
	if c.Web.Enabled && c.Web.Addr == "" {
		errors = append(errors, "web: addr must be set when enabled")
	}
	if (c.Web.Enabled || c.Restream.Enabled) && (c.Web.JPEGQuality < 1 || c.Web.JPEGQuality > 100) {
		errors = append(errors, "web: jpeg_quality must be between 1 and 100")
	}
	if c.Restream.Enabled && c.Restream.Addr == "" {
		errors = append(errors, "restream: addr must be set when enabled")
	}

	return errors
}
