package camera

import (
	"sort"

	"github.com/AgilHD/MKBEEE/internal/config"
)

// Preset names for the camera setups used so far.
const (
	// PresetESP32 is the stock firmware: stream on the main server, port 80.
	PresetESP32 = "esp32"

	// PresetESP32Alt is the add-on firmware that runs its own stream
	// server on port 81.
	PresetESP32Alt = "esp32-81"

	// PresetWebcam reads the first local capture device.
	PresetWebcam = "webcam"
)

// Presets returns all available preset configurations for the given
// camera host. The host is ignored by device presets.
func Presets(host string) map[string]Config {
	esp32 := DefaultConfig()
	esp32.URL = config.StreamURL(host, 80)

	alt := DefaultConfig()
	alt.URL = config.StreamURL(host, 81)

	webcam := DefaultConfig()
	webcam.Kind = KindDevice
	webcam.URL = ""
	webcam.Device = "0"

	return map[string]Config{
		PresetESP32:    esp32,
		PresetESP32Alt: alt,
		PresetWebcam:   webcam,
	}
}

// PresetNames returns the sorted list of available preset names.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for name := range Presets("") {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name, host string) *Config {
	if cfg, ok := Presets(host)[name]; ok {
		return &cfg
	}
	return nil
}
