// Package jsonstream serializes arbitrarily large or deeply nested Go value
// trees to JSON text incrementally, with the same output as encoding/json.
//
// Values are never held in serialized form as a whole: a token generator walks
// the tree with an explicit stack and a pull stream hands its bytes out in
// whatever chunk sizes the consumer asks for. Values that contain themselves
// are reported with errs.ErrCircularDependency instead of looping or
// overflowing the call stack.
//
// # Core Features
//
//   - Byte-for-byte compatibility with json.Marshal (escaping, floats, struct tags, marshalers)
//   - Insertion-ordered objects through value.Object
//   - Cycle detection on the current traversal path (shared acyclic values are fine)
//   - Pull (Stream.Pull, io.Reader) and push (io.WriterTo, Stream.Offer) consumption
//   - Optional streaming compression (Zstd, S2, LZ4)
//   - xxHash64 digest of the delivered bytes
//
// # Basic Usage
//
// Pulling chunks:
//
//	s, _ := jsonstream.NewStream(doc)
//	for {
//	    chunk, err := s.Pull(16 << 10)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    conn.Write(chunk)
//	}
//
// Writing to a file, compressed:
//
//	stats, err := jsonstream.EncodeCompressed(f, doc, format.CompressionZstd)
//
// # Package Structure
//
// This package provides top-level wrappers around the stream, token and
// compress packages for the most common use cases. Use those packages
// directly for finer control.
package jsonstream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/GerkinDev/jsonstream/compress"
	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/format"
	"github.com/GerkinDev/jsonstream/internal/pool"
	"github.com/GerkinDev/jsonstream/stream"
)

// ErrCircularDependency is returned when a value contains itself.
var ErrCircularDependency = errs.ErrCircularDependency

// NewStream creates a pull stream over v. No work is done until bytes are requested.
//
// Parameters:
//   - v: The value tree to serialize. It must not be mutated until the stream ends.
//   - opts: Optional configuration (see stream.Option)
//
// Returns:
//   - *stream.Stream: The stream
//   - error: An error if an option is invalid
//
// Available options:
//   - stream.WithChunkSize(n)
//   - stream.WithEscapeHTML(true|false)
//   - stream.WithLogger(logger)
func NewStream(v any, opts ...stream.Option) (*stream.Stream, error) {
	return stream.New(v, opts...)
}

// Marshal serializes v completely and returns the JSON text.
//
// For valid input the result equals json.Marshal(v). Values whose top level
// has no JSON representation (functions, channels, value.Undefined) produce an
// empty result.
func Marshal(v any, opts ...stream.Option) ([]byte, error) {
	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	if _, err := Encode(buf, v, opts...); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// Encode streams the serialization of v into w and returns the number of bytes written.
//
// On failure, the bytes produced before the error have already been written.
func Encode(w io.Writer, v any, opts ...stream.Option) (int64, error) {
	s, err := stream.New(v, opts...)
	if err != nil {
		return 0, err
	}

	return s.WriteTo(w)
}

// EncodeCompressed streams the serialization of v through a compression writer into w.
//
// The compressed frame is finished even when serialization fails, so w holds a
// valid (truncated) stream in that case.
//
// Returns:
//   - compress.CompressionStats: Sizes before and after compression
//   - error: The serialization, compression or write error, if any
func EncodeCompressed(w io.Writer, v any, compressionType format.CompressionType, opts ...stream.Option) (compress.CompressionStats, error) {
	s, err := stream.New(v, opts...)
	if err != nil {
		return compress.CompressionStats{Algorithm: compressionType}, err
	}

	return CopyCompressed(w, s, compressionType)
}

// CopyCompressed drains s through a compression writer into w. It is the
// stream-level form of EncodeCompressed, for callers that need the stream
// afterwards (for its digest, say).
func CopyCompressed(w io.Writer, s *stream.Stream, compressionType format.CompressionType) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{Algorithm: compressionType}

	counter := &compress.CountingWriter{W: w}
	zw, err := compress.NewWriter(counter, compressionType)
	if err != nil {
		return stats, err
	}

	n, copyErr := s.WriteTo(zw)
	closeErr := zw.Close()

	stats.OriginalSize = n
	stats.CompressedSize = counter.N

	if copyErr != nil {
		return stats, copyErr
	}
	if closeErr != nil {
		return stats, fmt.Errorf("finishing %s stream: %w", compressionType, closeErr)
	}

	return stats, nil
}
