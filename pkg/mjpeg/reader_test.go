package mjpeg

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, f)
	}
}

func TestReader_AllFramesInOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	stream, want := buildStream(rng, 20)

	for _, size := range []int{1, 2, 50, DefaultChunkSize, 1 << 16} {
		r := NewReader(bytes.NewReader(stream), size)
		require.Equal(t, want, readAll(t, r), "chunk size %d", size)
		require.Equal(t, int64(len(stream)), r.BytesRead())
	}
}

func TestReader_ShortReads(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	stream, want := buildStream(rng, 5)

	r := NewReader(iotest.OneByteReader(bytes.NewReader(stream)), 0)
	require.Equal(t, want, readAll(t, r))
}

func TestReader_EndsMidFrame(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("\xff\xd8A\xff\xd9\xff\xd8BBB")), 4)

	f, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("\xff\xd8A\xff\xd9"), f)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 5, r.Buffered())

	// EOF is sticky.
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_EmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), 0)
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_UpstreamError(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(
		bytes.NewReader([]byte("\xff\xd8A\xff\xd9")),
		iotest.ErrReader(boom),
	)
	r := NewReader(src, 64)

	f, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("\xff\xd8A\xff\xd9"), f)

	_, err = r.Next()
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, io.EOF)
}

func TestReader_FrameDeliveredBeforeError(t *testing.T) {
	// DataErrReader returns the last bytes together with io.EOF.
	r := NewReader(iotest.DataErrReader(bytes.NewReader([]byte("\xff\xd8A\xff\xd9"))), 64)

	f, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("\xff\xd8A\xff\xd9"), f)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_OverflowIsRecoverable(t *testing.T) {
	stream := []byte("\xff\xd8" + string(bytes.Repeat([]byte("x"), 100)) + "\xff\xd9\xff\xd8ok\xff\xd9")
	r := NewReader(bytes.NewReader(stream), 16, WithMaxBuffer(32))

	_, err := r.Next()
	require.ErrorIs(t, err, ErrBufferOverflow)

	f, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("\xff\xd8ok\xff\xd9"), f)
}
