package stream

import (
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/hash"
	"github.com/GerkinDev/jsonstream/internal/options"
	"github.com/GerkinDev/jsonstream/internal/pool"
	"github.com/GerkinDev/jsonstream/token"
)

// DefaultChunkSize is the chunk size used by WriteTo and Offer.
const DefaultChunkSize = pool.ChunkBufferDefaultSize

// Stream exposes the tokens of one value tree as a pull-driven byte stream.
//
// The generator only runs when the consumer asks for bytes, so memory use is
// bounded by the nesting depth of the value plus at most one partially
// delivered token. A Stream is single use and not safe for concurrent use.
type Stream struct {
	gen     *token.Generator
	genOpts []token.GeneratorOption

	pending []byte // unconsumed tail of the last token
	state   State
	err     error

	chunkSize int
	logger    *slog.Logger

	digest    *xxhash.Digest
	delivered int64
}

var (
	_ io.Reader   = (*Stream)(nil)
	_ io.WriterTo = (*Stream)(nil)
)

// New creates a stream over root. Nothing is serialized until bytes are requested.
//
// Parameters:
//   - root: The value tree to serialize. It must not be mutated until the stream ends.
//   - opts: Optional configuration (WithChunkSize, WithEscapeHTML, WithLogger)
//
// Returns:
//   - *Stream: The stream, in StateIdle
//   - error: An error if an option is invalid
func New(root any, opts ...Option) (*Stream, error) {
	s := &Stream{
		chunkSize: DefaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
		digest:    hash.NewDigest(),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	gen, err := token.New(root, s.genOpts...)
	if err != nil {
		return nil, err
	}
	s.gen = gen

	return s, nil
}

// Pull returns at most maxBytes bytes of the document.
//
// Tokens are taken whole from the generator until maxBytes is reached; when
// the last one does not fit, its remainder is kept and delivered first by the
// next call. A call therefore returns exactly maxBytes bytes unless the
// document ends first.
//
// Pull(0) returns nothing and does not advance the stream. At the end of the
// document Pull returns io.EOF, on every later call as well. If the value
// contains a cycle, the call that reaches it returns the bytes gathered so far
// together with errs.ErrCircularDependency; later calls return io.EOF and Err
// keeps the failure.
func (s *Stream) Pull(maxBytes int) ([]byte, error) {
	if maxBytes < 0 {
		return nil, errs.ErrInvalidPullSize
	}
	if maxBytes == 0 {
		return nil, nil
	}

	out, err := s.fill(make([]byte, 0, min(maxBytes, s.chunkSize)), maxBytes)
	if len(out) == 0 {
		out = nil
	}

	return out, err
}

// Read implements io.Reader with the same sizing rules as Pull.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	out, err := s.fill(p[:0], len(p))

	return len(out), err
}

// WriteTo implements io.WriterTo. It pushes chunks of the configured size to w
// until the document ends, the traversal fails, or w returns an error.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	var written int64
	for {
		buf.Reset()
		buf.Grow(s.chunkSize)

		var err error
		buf.B, err = s.fill(buf.B, s.chunkSize)
		if buf.Len() > 0 {
			n, werr := w.Write(buf.B)
			written += int64(n)
			if werr != nil {
				return written, werr
			}
		}

		switch {
		case err == io.EOF:
			return written, nil
		case err != nil:
			return written, err
		}
	}
}

// Offer pushes chunks of the configured size to sink for as long as sink
// reports it is ready for more. The chunk is only valid during the call.
//
// Offer returns nil when sink stopped accepting data (call Offer again once the
// transport is ready), io.EOF when the whole document has been delivered, or
// the traversal error.
func (s *Stream) Offer(sink func(chunk []byte) bool) error {
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	for {
		buf.Reset()
		buf.Grow(s.chunkSize)

		var err error
		buf.B, err = s.fill(buf.B, s.chunkSize)
		if buf.Len() > 0 && !sink(buf.B) {
			if err == nil && s.state == StateCompleted {
				return io.EOF
			}

			return err
		}
		if err != nil {
			return err
		}
	}
}

// State returns the lifecycle stage of the stream.
func (s *Stream) State() State {
	return s.state
}

// Err returns the failure that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Pending returns the number of bytes of a split token awaiting delivery.
func (s *Stream) Pending() int {
	return len(s.pending)
}

// Delivered returns the number of bytes handed to the consumer so far.
func (s *Stream) Delivered() int64 {
	return s.delivered
}

// Sum64 returns the xxHash64 digest of the bytes delivered so far. Once the
// stream is completed it equals the digest of the whole document.
func (s *Stream) Sum64() uint64 {
	return s.digest.Sum64()
}

// fill appends at most n bytes to dst.
func (s *Stream) fill(dst []byte, n int) ([]byte, error) {
	if s.state.Terminal() {
		// a failure is reported by the call that hit it
		return dst, io.EOF
	}

	start := len(dst)
	limit := start + n

	if len(s.pending) > 0 {
		take := min(len(s.pending), n)
		dst = append(dst, s.pending[:take]...)
		s.pending = s.pending[take:]
	}

	for len(dst) < limit {
		tok, err := s.gen.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.record(dst[start:])
			s.failed(err)

			return dst, err
		}
		if s.state == StateIdle {
			s.state = StateStreaming
			s.logger.Debug("stream started")
		}

		room := limit - len(dst)
		if len(tok) > room {
			dst = append(dst, tok[:room]...)
			s.pending = tok[room:]

			break
		}
		dst = append(dst, tok...)
	}
	s.record(dst[start:])

	if len(s.pending) == 0 && s.gen.Done() {
		s.completed()
		if len(dst) == start {
			return dst, io.EOF
		}
	}

	return dst, nil
}

func (s *Stream) record(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	_, _ = s.digest.Write(chunk)
	s.delivered += int64(len(chunk))
}

func (s *Stream) completed() {
	s.state = StateCompleted
	s.logger.Debug("stream completed",
		slog.Int64("bytes", s.delivered),
		slog.Int("tokens", s.gen.Tokens()),
		slog.Uint64("xxhash", s.digest.Sum64()),
	)
}

func (s *Stream) failed(err error) {
	s.state = StateFailed
	s.err = err
	s.pending = nil
	s.logger.Debug("stream failed",
		slog.Any("error", err),
		slog.Int64("bytes", s.delivered),
	)
}
