// Package errs defines the sentinel errors returned by jsonstream packages.
//
// Callers compare against these values with errors.Is; wrapped variants carry
// additional context (for example the Go type whose marshaler failed).
package errs

import "errors"

var (
	// ErrCircularDependency is returned when a container value contains itself,
	// directly or transitively. It is the only error raised by the traversal of
	// well-formed input.
	ErrCircularDependency = errors.New("Circular dependency detected") //nolint:staticcheck

	// ErrMarshaler wraps failures reported by a json.Marshaler or
	// encoding.TextMarshaler implementation found in the value tree.
	ErrMarshaler = errors.New("marshaler failed")

	// ErrInvalidPullSize is returned when a negative byte quota is requested.
	ErrInvalidPullSize = errors.New("pull size must not be negative")

	// ErrInvalidChunkSize is returned when a chunk size option is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrUnsupportedCompression is returned for unknown compression types.
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrNilLogger is returned when a nil logger is passed as an option.
	ErrNilLogger = errors.New("logger must not be nil")
)
