// Package config provides configuration helpers for the camera monitor commands.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Default camera endpoint configuration.
const (
	DefaultCameraIP   = "10.47.136.243"
	DefaultStreamPort = 80
	DefaultStreamPath = "/stream"
	DefaultLEDPath    = "/led"
)

// CameraIP returns the camera IP from CAMERA_IP env var.
// Falls back to the provided default if not set.
func CameraIP(defaultIP string) string {
	if ip := os.Getenv("CAMERA_IP"); ip != "" {
		return ip
	}
	return defaultIP
}

// BaseURL returns the camera HTTP base URL for the given host and port.
// Port 80 is left implicit.
func BaseURL(host string, port int) string {
	if port == 0 || port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// StreamURL returns the MJPEG stream URL served by the camera firmware.
func StreamURL(host string, port int) string {
	return BaseURL(host, port) + DefaultStreamPath
}

// LEDURL returns the LED control endpoint. The firmware serves it on the
// main HTTP server, which is always port 80.
func LEDURL(host string) string {
	return BaseURL(host, 80) + DefaultLEDPath
}

// Getenv returns the trimmed value of key or def when unset.
func Getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
