package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Compressor provides LZ4 compression, the fastest of the built-in codecs
// to decompress.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// NewWriter returns an LZ4 frame writer. Blocks are compressed on the calling
// goroutine.
func (c LZ4Compressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.ConcurrencyOption(1)); err != nil {
		return nil, err
	}

	return zw, nil
}

// NewReader returns an LZ4 frame reader.
func (c LZ4Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
