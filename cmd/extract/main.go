// extract pulls JPEG frames out of an MJPEG stream, URL or file, and writes
// them to a directory. Handy for collecting training images from the camera.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AgilHD/MKBEEE/internal/config"
	"github.com/AgilHD/MKBEEE/internal/httpc"
	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/mjpeg"
)

func main() {
	defaultURL := config.StreamURL(config.CameraIP(config.DefaultCameraIP), config.DefaultStreamPort)

	input := flag.String("in", defaultURL, "Stream URL, file path, or - for stdin")
	outDir := flag.String("out", "frames", "Output directory")
	maxFrames := flag.Int("max", 0, "Stop after this many frames (0 = unlimited)")
	every := flag.Int("every", 1, "Keep every Nth frame")
	chunk := flag.Int("chunk-size", mjpeg.DefaultChunkSize, "Read size in bytes")
	maxFrame := flag.Int("max-frame-bytes", 0, "Drop partial frames larger than this (0 = no limit)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel, "")

	if *every < 1 {
		*every = 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := openInput(ctx, *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "❌ create output dir: %v\n", err)
		os.Exit(1)
	}

	var opts []mjpeg.Option
	if *maxFrame > 0 {
		opts = append(opts, mjpeg.WithMaxBuffer(*maxFrame))
	}
	reader := mjpeg.NewReader(src, *chunk, opts...)

	fmt.Printf("📥 Extracting frames from %s into %s\n", *input, *outDir)
	start := time.Now()
	seen, saved := 0, 0

	for *maxFrames == 0 || saved < *maxFrames {
		frame, err := reader.Next()
		if errors.Is(err, mjpeg.ErrBufferOverflow) {
			log.Warn("dropped oversized partial frame", "limit", *maxFrame)
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
			break
		}

		seen++
		if (seen-1)%*every != 0 {
			continue
		}

		name := filepath.Join(*outDir, fmt.Sprintf("frame_%06d.jpg", seen))
		if err := os.WriteFile(name, frame, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "❌ write %s: %v\n", name, err)
			os.Exit(1)
		}
		saved++
		log.Debug("frame saved", "file", name, "bytes", len(frame))
	}

	elapsed := time.Since(start)
	fmt.Printf("✅ %d frames seen, %d saved, %d bytes read in %s\n",
		seen, saved, reader.BytesRead(), elapsed.Round(time.Millisecond))
}

// openInput opens an HTTP stream, stdin or a file.
func openInput(ctx context.Context, in string) (io.ReadCloser, error) {
	switch {
	case in == "-":
		return io.NopCloser(os.Stdin), nil

	case strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, in, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpc.NewStreamClient(10 * time.Second).Do(req)
		if err != nil {
			return nil, fmt.Errorf("open stream %s: %w", in, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, in)
		}
		return resp.Body, nil

	default:
		return os.Open(in)
	}
}
