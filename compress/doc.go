// Package compress provides the compression codecs that can be layered over a
// serialized JSON stream.
//
// Supported algorithms:
//   - None: bytes are passed through unchanged
//   - Zstd: best ratio, moderate speed (github.com/klauspost/compress/zstd)
//   - S2: balanced ratio and speed (github.com/klauspost/compress/s2)
//   - LZ4: fastest decompression (github.com/pierrec/lz4/v4)
//
// Every Codec works on the streaming frame format of its algorithm, so a
// document can be compressed as it is pulled from a stream without ever being
// held in full:
//
//	zw, err := compress.NewWriter(file, format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	if _, err := s.WriteTo(zw); err != nil {
//		return err
//	}
//	return zw.Close()
package compress
