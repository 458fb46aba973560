package stream

import (
	"log/slog"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/options"
	"github.com/GerkinDev/jsonstream/token"
)

// Option configures a Stream.
type Option = options.Option[*Stream]

// WithChunkSize sets the size of the chunks handed out by WriteTo and Offer.
// It does not affect Pull or Read, where the caller chooses the size.
func WithChunkSize(n int) Option {
	return options.New(func(s *Stream) error {
		if n <= 0 {
			return errs.ErrInvalidChunkSize
		}
		s.chunkSize = n

		return nil
	})
}

// WithEscapeHTML controls whether '<', '>' and '&' are escaped inside strings.
// Escaping is on by default, matching json.Marshal.
func WithEscapeHTML(on bool) Option {
	return options.NoError(func(s *Stream) {
		s.genOpts = append(s.genOpts, token.WithEscapeHTML(on))
	})
}

// WithLogger enables debug records on state transitions.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(s *Stream) error {
		if logger == nil {
			return errs.ErrNilLogger
		}
		s.logger = logger

		return nil
	})
}
