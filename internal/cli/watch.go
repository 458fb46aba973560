package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GerkinDev/jsonstream/internal/logging"
	"github.com/GerkinDev/jsonstream/internal/watch"
)

type watchOptions struct {
	encodeOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-encode a document whenever it changes",
		Long: `Watch encodes the given YAML or JSON document to --output, then encodes it
again every time the file is saved. Rapid successive changes are debounced.

A failed run (a parse error or a circular document) is reported and the
previous output is left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerEncodeFlags(cmd, &opts.encodeOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "quiet period before re-encoding")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *watchOptions) error {
	if opts.output == "" {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runFn := func(runCtx context.Context) (int64, error) {
		result, err := runEncode(runCtx, cmd, path, &opts.encodeOptions)
		if err != nil {
			return 0, err
		}

		return result.Stats.OriginalSize, nil
	}

	err := watch.Run(ctx, watch.Options{
		Files:    []string{path},
		Debounce: opts.debounce,
		Logger:   logging.FromContext(ctx),
		Out:      cmd.ErrOrStderr(),
	}, runFn)
	if err != nil {
		return &ExitError{Code: ExitRuntime, Err: err}
	}

	return nil
}
