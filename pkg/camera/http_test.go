package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AgilHD/MKBEEE/internal/log"
	"github.com/AgilHD/MKBEEE/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestJPEG renders a solid image with the standard library encoder.
func encodeTestJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

// mjpegHandler writes parts the way the ESP32 firmware does.
func mjpegHandler(parts [][]byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace;boundary=123456789000000000000987654321")
		w.WriteHeader(http.StatusOK)
		for _, p := range parts {
			fmt.Fprintf(w, "\r\n--123456789000000000000987654321\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(p))
			w.Write(p)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.HeaderTimeout = 2 * time.Second
	return cfg
}

func TestHTTPSource_DecodesAndSkips(t *testing.T) {
	good1 := encodeTestJPEG(t, 32, 24, color.RGBA{255, 0, 0, 255})
	bad := []byte{0xFF, 0xD8, 0x00, 0x11, 0x22, 0xFF, 0xD9}
	good2 := encodeTestJPEG(t, 64, 48, color.RGBA{0, 0, 255, 255})

	srv := httptest.NewServer(mjpegHandler([][]byte{good1, bad, good2}))
	defer srv.Close()

	m := metrics.New(nil)
	src, err := OpenHTTP(context.Background(), testConfig(srv.URL),
		WithLogger(log.Discard()), WithMetrics(m))
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()

	f1, err := src.Next(ctx)
	require.NoError(t, err)
	defer f1.Close()
	assert.Equal(t, uint64(1), f1.Seq)
	assert.Equal(t, 32, f1.Width())
	assert.Equal(t, 24, f1.Height())
	assert.Equal(t, good1, f1.JPEG)

	f2, err := src.Next(ctx)
	require.NoError(t, err)
	defer f2.Close()
	assert.Equal(t, uint64(2), f2.Seq)
	assert.Equal(t, 64, f2.Width())

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, uint64(1), src.Skipped())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FramesExtracted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors))
}

func TestHTTPSource_SmallChunks(t *testing.T) {
	frames := [][]byte{
		encodeTestJPEG(t, 16, 16, color.White),
		encodeTestJPEG(t, 16, 16, color.Black),
	}
	srv := httptest.NewServer(mjpegHandler(frames))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ChunkSize = 7
	src, err := OpenHTTP(context.Background(), cfg, WithLogger(log.Discard()))
	require.NoError(t, err)
	defer src.Close()

	for i := range frames {
		f, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, frames[i], f.JPEG)
		f.Close()
	}
}

func TestOpenHTTP_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := OpenHTTP(context.Background(), testConfig(srv.URL), WithLogger(log.Discard()))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}

func TestOpenHTTP_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := OpenHTTP(context.Background(), testConfig(url), WithLogger(log.Discard()))
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestHTTPSource_CloseUnblocksNext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace;boundary=x")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	src, err := OpenHTTP(context.Background(), testConfig(srv.URL), WithLogger(log.Discard()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := src.Next(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, src.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after Close")
	}

	assert.NoError(t, src.Close(), "second Close")
}

func TestHTTPSource_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	src, err := OpenHTTP(context.Background(), testConfig(srv.URL), WithLogger(log.Discard()))
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = "rtsp"
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_EncodeRoundTrip(t *testing.T) {
	img, err := Decode(encodeTestJPEG(t, 40, 30, color.RGBA{0, 255, 0, 255}))
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, 40, img.Cols())
	assert.Equal(t, 30, img.Rows())
	assert.Equal(t, 3, img.Channels())

	data, err := EncodeJPEG(img, 90)
	require.NoError(t, err)
	assert.True(t, IsJPEG(data))
}
