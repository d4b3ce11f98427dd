// BoboBee camera monitor - watches an ESP32-S3 MJPEG stream, classifies the
// baby's sleeping posture and shows the annotated frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AgilHD/MKBEEE/internal/config"
	ilog "github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/camera"
	"github.com/AgilHD/MKBEEE/pkg/monitor"
)

func main() {
	cfg := parseFlags()

	ilog.Init(cfg.Log.Level, cfg.Log.Format)

	app, err := monitor.New(cfg)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		log.Fatalf("❌ Initialization failed: %v", err)
	}
	defer app.Shutdown()

	if err := app.Run(ctx); err != nil {
		log.Printf("❌ Runtime error: %v", err)
		app.Shutdown()
		os.Exit(1)
	}
}

// parseFlags loads the config file and environment, then applies the flags
// that were set explicitly on top.
func parseFlags() monitor.Config {
	configPath := flag.String("config", "", "YAML config file")
	cameraIP := flag.String("camera-ip", "", "Camera IP address (overrides CAMERA_IP env var)")
	preset := flag.String("preset", "", "Camera preset: "+strings.Join(camera.PresetNames(), ", "))
	url := flag.String("url", "", "MJPEG stream URL (overrides preset and camera IP)")
	device := flag.String("device", "", "Read from an OpenCV capture device or file instead of HTTP")
	chunk := flag.Int("chunk-size", 0, "Stream read size in bytes")
	modelDir := flag.String("model", "", "Model directory (topology, weights, metadata.json)")
	ledURL := flag.String("led-url", "", "LED endpoint URL")
	noLED := flag.Bool("no-led", false, "Disable LED control")
	headless := flag.Bool("headless", false, "Do not open a window")
	webAddr := flag.String("web", "", "Serve the web dashboard on this address, e.g. :8080")
	accessLog := flag.Bool("access-log", false, "Log web requests")
	restreamAddr := flag.String("restream", "", "Serve annotated MJPEG on this address, e.g. :8081")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	debug := flag.Bool("debug", false, "Shorthand for -log-level debug")
	listPresets := flag.Bool("list-presets", false, "List camera presets and exit")
	flag.Parse()

	if *listPresets {
		host := config.CameraIP(config.DefaultCameraIP)
		for _, name := range camera.PresetNames() {
			p := camera.GetPreset(name, host)
			target := p.URL
			if p.Kind == camera.KindDevice {
				target = "device " + p.Device
			}
			fmt.Printf("  %-10s %s\n", name, target)
		}
		os.Exit(0)
	}

	cfg, err := monitor.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	host := ""
	if *cameraIP != "" {
		host = *cameraIP
		cfg.Camera.URL = config.StreamURL(host, config.DefaultStreamPort)
		cfg.LED.URL = config.LEDURL(host)
	}
	if *preset != "" {
		if host == "" {
			host = config.CameraIP(config.DefaultCameraIP)
		}
		p := camera.GetPreset(*preset, host)
		if p == nil {
			log.Fatalf("❌ Unknown preset %q (available: %s)", *preset, strings.Join(camera.PresetNames(), ", "))
		}
		p.ChunkSize = cfg.Camera.ChunkSize
		p.MaxFrameBytes = cfg.Camera.MaxFrameBytes
		cfg.Camera = *p
	}
	if *url != "" {
		cfg.Camera.Kind = camera.KindHTTP
		cfg.Camera.URL = *url
	}
	if *device != "" {
		cfg.Camera.Kind = camera.KindDevice
		cfg.Camera.Device = *device
	}
	if *chunk > 0 {
		cfg.Camera.ChunkSize = *chunk
	}
	if *modelDir != "" {
		cfg.Model.Dir = *modelDir
	}
	if *ledURL != "" {
		cfg.LED.Enabled = true
		cfg.LED.URL = *ledURL
	}
	if *noLED {
		cfg.LED.Enabled = false
	}
	if *headless {
		cfg.Display.Enabled = false
	}
	if *webAddr != "" {
		cfg.Web.Enabled = true
		cfg.Web.Addr = *webAddr
	}
	if *accessLog {
		cfg.Web.AccessLog = true
	}
	if *restreamAddr != "" {
		cfg.Restream.Enabled = true
		cfg.Restream.Addr = *restreamAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	return cfg
}
