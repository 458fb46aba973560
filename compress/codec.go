package compress

import (
	"fmt"
	"io"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/format"
)

// Codec wraps streams in the frame format of one compression algorithm.
type Codec interface {
	// NewWriter wraps w so that bytes written are compressed. Close flushes
	// the final frame but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader wraps r and decompresses a stream produced by NewWriter.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// CompressionStats describes one compression run.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the number of bytes before compression
	OriginalSize int64

	// CompressedSize is the number of bytes after compression
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for empty input.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100).
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// NewWriter is shorthand for GetCodec followed by Codec.NewWriter.
func NewWriter(w io.Writer, compressionType format.CompressionType) (io.WriteCloser, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.NewWriter(w)
}

// NewReader is shorthand for GetCodec followed by Codec.NewReader.
func NewReader(r io.Reader, compressionType format.CompressionType) (io.ReadCloser, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.NewReader(r)
}

// CountingWriter counts the bytes passed through to W.
type CountingWriter struct {
	W io.Writer
	N int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.N += int64(n)

	return n, err
}
