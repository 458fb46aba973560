// Package stream turns a value tree into a pull-driven byte stream of its JSON
// text.
//
// A Stream wraps a token.Generator and hands out bytes only on demand:
//
//	s, err := stream.New(doc)
//	if err != nil {
//		return err
//	}
//	for {
//		chunk, err := s.Pull(4096)
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err // errs.ErrCircularDependency
//		}
//		send(chunk)
//	}
//
// The concatenation of all pulled chunks is the same document regardless of
// the sizes requested. Stream also implements io.Reader and io.WriterTo, and
// Offer pushes chunks to a sink that may ask to pause.
package stream
