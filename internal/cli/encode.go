package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/GerkinDev/jsonstream"
	"github.com/GerkinDev/jsonstream/compress"
	"github.com/GerkinDev/jsonstream/internal/config"
	"github.com/GerkinDev/jsonstream/internal/input"
	"github.com/GerkinDev/jsonstream/internal/logging"
	"github.com/GerkinDev/jsonstream/stream"
)

// stdinPath selects standard input as the document source.
const stdinPath = "-"

func newEncodeCommand() *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Serialize a YAML or JSON document as compact JSON",
		Long: `Encode reads a YAML or JSON document (from the given file, or stdin when
the file is omitted or "-") and streams its compact JSON serialization to
stdout or to --output.

The output is produced chunk by chunk; with --compression it is compressed
on the fly. When writing to a file, the file is only replaced once the whole
document has been written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stdinPath
			if len(args) == 1 {
				path = args[0]
			}

			_, err := runEncode(cmd.Context(), cmd, path, opts)

			return err
		},
	}

	registerEncodeFlags(cmd, opts)

	return cmd
}

// encodeResult summarizes one encode run.
type encodeResult struct {
	Stats  compress.CompressionStats
	Digest uint64
}

func runEncode(ctx context.Context, cmd *cobra.Command, path string, opts *encodeOptions) (*encodeResult, error) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	start := time.Now()

	doc, err := readInput(cmd, path)
	if err != nil {
		return nil, &ExitError{Code: ExitRuntime, Err: err}
	}

	s, err := jsonstream.NewStream(doc,
		stream.WithChunkSize(cfg.ChunkSize),
		stream.WithEscapeHTML(cfg.EscapeHTML),
		stream.WithLogger(logger),
	)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	result, err := writeOutput(cmd, opts.output, cfg, s)
	if err != nil {
		return nil, runtimeError(err)
	}

	logger.Info("document encoded",
		slog.String("input", path),
		slog.Int64("bytes", result.Stats.OriginalSize),
		slog.Int64("written", result.Stats.CompressedSize),
		slog.String("compression", result.Stats.Algorithm.String()),
		slog.Duration("elapsed", time.Since(start)),
	)

	if opts.digest {
		fmt.Fprintf(cmd.ErrOrStderr(), "xxh64:%016x  %d bytes\n", result.Digest, result.Stats.OriginalSize)
	}

	return result, nil
}

func readInput(cmd *cobra.Command, path string) (any, error) {
	if path == stdinPath {
		doc, err := input.Decode(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return doc, nil
	}

	doc, err := input.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return doc, nil
}

// writeOutput drains s to stdout, or to a temporary file renamed over output
// once the document is complete.
func writeOutput(cmd *cobra.Command, output string, cfg *config.Config, s *stream.Stream) (*encodeResult, error) {
	if output == "" {
		return encodeTo(cmd.OutOrStdout(), cfg, s)
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	result, err := encodeTo(tmp, cfg, s)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing output file: %w", closeErr)
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), output)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, err
	}

	return result, nil
}

func encodeTo(w io.Writer, cfg *config.Config, s *stream.Stream) (*encodeResult, error) {
	stats, err := jsonstream.CopyCompressed(w, s, cfg.CompressionType())
	if err != nil {
		return nil, err
	}

	return &encodeResult{Stats: stats, Digest: s.Sum64()}, nil
}
