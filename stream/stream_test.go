package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/hash"
	"github.com/GerkinDev/jsonstream/internal/testutil"
	"github.com/GerkinDev/jsonstream/value"
)

// drain pulls size bytes at a time until the stream ends.
func drain(t *testing.T, s *Stream, size int) ([]byte, error) {
	t.Helper()

	var out []byte
	for range 1 << 20 {
		chunk, err := s.Pull(size)
		out = append(out, chunk...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		require.LessOrEqual(t, len(chunk), size)
	}
	t.Fatal("stream did not terminate")

	return nil, nil
}

func newStream(t *testing.T, v any, opts ...Option) *Stream {
	t.Helper()

	s, err := New(v, opts...)
	require.NoError(t, err)

	return s
}

func TestStream_ChunkingInvariance(t *testing.T) {
	root, want := testutil.NewGenerator(7).Sized(16384)

	for _, size := range []int{1, 7, 1000, len(want), len(want) * 2} {
		got, err := drain(t, newStream(t, root), size)
		require.NoError(t, err)
		require.Equal(t, string(want), string(got), "pull size %d", size)
	}
}

func TestStream_PullSizes(t *testing.T) {
	data := map[string]any{
		"title": "pull sizes",
		"items": []any{"abcdefghijklmnop", 12345, 1.5, "<&>", nil, true},
		"nested": map[string]any{"k": []any{"v", "w"}},
	}

	want, err := json.Marshal(data)
	require.NoError(t, err)
	stringified := string(want)
	require.Greater(t, len(stringified), 35)

	s := newStream(t, data)
	i := 0

	chunk, err := s.Pull(0)
	require.NoError(t, err)
	require.Nil(t, chunk)
	require.Equal(t, StateIdle, s.State())

	chunk, err = s.Pull(10)
	require.NoError(t, err)
	require.Equal(t, stringified[i:i+10], string(chunk))
	i += 10

	chunk, err = s.Pull(20)
	require.NoError(t, err)
	require.Equal(t, stringified[i:i+20], string(chunk))
	i += 20

	chunk, err = s.Pull(0)
	require.NoError(t, err)
	require.Nil(t, chunk)

	chunk, err = s.Pull(5)
	require.NoError(t, err)
	require.Equal(t, stringified[i:i+5], string(chunk))
	i += 5

	rest, err := drain(t, s, 64)
	require.NoError(t, err)
	require.Equal(t, stringified[i:], string(rest))
}

func TestStream_PendingTail(t *testing.T) {
	s := newStream(t, "abcdefghij")

	chunk, err := s.Pull(4)
	require.NoError(t, err)
	require.Equal(t, `"abc`, string(chunk))
	require.Equal(t, 8, s.Pending())
	require.Equal(t, StateStreaming, s.State())

	chunk, err = s.Pull(100)
	require.NoError(t, err)
	require.Equal(t, `defghij"`, string(chunk))
	require.Equal(t, 0, s.Pending())
	require.Equal(t, StateCompleted, s.State())
}

func TestStream_EndIsIdempotent(t *testing.T) {
	s := newStream(t, []any{1, 2})

	chunk, err := s.Pull(100)
	require.NoError(t, err)
	require.Equal(t, "[1,2]", string(chunk))

	for range 3 {
		chunk, err = s.Pull(100)
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, chunk)
	}
	require.Equal(t, StateCompleted, s.State())
	require.NoError(t, s.Err())
}

func TestStream_InvalidPullSize(t *testing.T) {
	s := newStream(t, 1)

	_, err := s.Pull(-1)
	require.ErrorIs(t, err, errs.ErrInvalidPullSize)
	require.Equal(t, StateIdle, s.State())
}

func TestStream_Failure(t *testing.T) {
	cyclic := value.Object{{Key: "name", Value: "loop"}}
	cyclic = append(cyclic, value.Member{Key: "self", Value: nil})
	cyclic[1].Value = cyclic

	s := newStream(t, cyclic)

	chunk, err := s.Pull(1000)
	require.ErrorIs(t, err, errs.ErrCircularDependency)
	require.Equal(t, `{"name":"loop"`, string(chunk), "the cyclic member's key is not emitted")
	require.Equal(t, StateFailed, s.State())

	// reported once, then the stream is simply over
	for range 2 {
		chunk, err = s.Pull(1000)
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, chunk)
	}
	require.ErrorIs(t, s.Err(), errs.ErrCircularDependency)
	require.Equal(t, "Circular dependency detected", s.Err().Error())
}

func TestStream_FailureAfterSmallPulls(t *testing.T) {
	a := []any{"x", nil}
	a[1] = a

	s := newStream(t, a)

	var got []byte
	var failure error
	for range 100 {
		chunk, err := s.Pull(1)
		got = append(got, chunk...)
		if err != nil {
			failure = err
			break
		}
	}
	require.ErrorIs(t, failure, errs.ErrCircularDependency)
	require.Equal(t, `["x"`, string(got))
}

func TestStream_OpaqueRoot(t *testing.T) {
	for _, v := range []any{func() {}, make(chan int), value.Undefined} {
		s := newStream(t, v)

		chunk, err := s.Pull(10)
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, chunk)
		require.Equal(t, StateCompleted, s.State())
		require.Zero(t, s.Delivered())
	}
}

func TestStream_Read(t *testing.T) {
	root, want := testutil.NewGenerator(11).Sized(20000)

	got, err := io.ReadAll(newStream(t, root))
	require.NoError(t, err)
	require.Equal(t, string(want), string(got))
}

func TestStream_ReadEmptyBuffer(t *testing.T) {
	s := newStream(t, "x")

	n, err := s.Read(nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, StateIdle, s.State())
}

func TestStream_WriteToFile(t *testing.T) {
	root, want := testutil.NewGenerator(5).Sized(50000)
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := os.Create(path)
	require.NoError(t, err)

	n, err := io.Copy(f, newStream(t, root, WithChunkSize(4096)))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, int64(len(want)), n)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(want), string(got))
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--

	return len(p), nil
}

func TestStream_WriteToWriterError(t *testing.T) {
	root, _ := testutil.NewGenerator(9).Sized(8000)
	s := newStream(t, root, WithChunkSize(1024))

	n, err := s.WriteTo(&failingWriter{after: 2})
	require.EqualError(t, err, "disk full")
	require.Equal(t, int64(2048), n)
}

func TestStream_WriteToCycle(t *testing.T) {
	m := map[string]any{"a": 1}
	m["b"] = m

	var buf bytes.Buffer
	_, err := newStream(t, m).WriteTo(&buf)
	require.ErrorIs(t, err, errs.ErrCircularDependency)
	require.Equal(t, `{"a":1`, buf.String())
}

func TestStream_OfferBackpressure(t *testing.T) {
	root, want := testutil.NewGenerator(13).Sized(10000)
	s := newStream(t, root, WithChunkSize(512))

	var got []byte
	rounds := 0
	for {
		rounds++
		accepted := 0
		err := s.Offer(func(chunk []byte) bool {
			got = append(got, chunk...)
			accepted++

			return accepted < 3
		})
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, 3, accepted)
		require.Less(t, rounds, 1000)
	}
	require.Equal(t, string(want), string(got))
	require.Equal(t, StateCompleted, s.State())
	require.ErrorIs(t, s.Offer(func([]byte) bool { return true }), io.EOF)
}

func TestStream_Digest(t *testing.T) {
	root, want := testutil.NewGenerator(17).Sized(30000)
	s := newStream(t, root)

	_, err := drain(t, s, 333)
	require.NoError(t, err)
	assert.Equal(t, hash.Sum64(want), s.Sum64())
	assert.Equal(t, int64(len(want)), s.Delivered())
}

func TestStream_EscapeHTML(t *testing.T) {
	got, err := drain(t, newStream(t, "<a&b>", WithEscapeHTML(false)), 3)
	require.NoError(t, err)
	require.Equal(t, `"<a&b>"`, string(got))

	got, err = drain(t, newStream(t, "<a&b>"), 3)
	require.NoError(t, err)
	require.Equal(t, `"\u003ca\u0026b\u003e"`, string(got))
}

func TestStream_Options(t *testing.T) {
	_, err := New(1, WithChunkSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidChunkSize)

	_, err = New(1, WithLogger(nil))
	require.ErrorIs(t, err, errs.ErrNilLogger)
}

func TestStream_Logging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := drain(t, newStream(t, []any{"a"}, WithLogger(logger)), 10)
	require.NoError(t, err)

	out := logs.String()
	assert.True(t, strings.Contains(out, "stream started"))
	assert.True(t, strings.Contains(out, "stream completed"))
	assert.True(t, strings.Contains(out, "bytes=5"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Streaming", StateStreaming.String())
	assert.Equal(t, "Completed", StateCompleted.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown", State(42).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateStreaming.Terminal())
}

func BenchmarkStream_Pull(b *testing.B) {
	root, want := testutil.NewGenerator(1).Sized(1 << 20)
	b.SetBytes(int64(len(want)))
	b.ReportAllocs()

	for b.Loop() {
		s, _ := New(root)
		for {
			if _, err := s.Pull(16 << 10); err != nil {
				break
			}
		}
	}
}
