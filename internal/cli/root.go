// Package cli implements the cobra command tree for jsonstream.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/config"
	"github.com/GerkinDev/jsonstream/internal/logging"
)

// Process exit codes.
const (
	ExitRuntime  = 1
	ExitUsage    = 2
	ExitCircular = 3
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// runtimeError classifies a failure that happened while producing output.
func runtimeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrCircularDependency) {
		return &ExitError{Code: ExitCircular, Err: err}
	}

	return &ExitError{Code: ExitRuntime, Err: err}
}

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return ExitRuntime
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "jsonstream",
		Short: "Stream YAML or JSON documents as compact JSON",
		Long: `jsonstream serializes a YAML or JSON document to compact JSON text
incrementally, in bounded chunks, without ever holding the whole output in
memory.

Key order of the input is preserved, YAML anchors are shared, and documents
whose aliases point back at an enclosing node are rejected with a circular
dependency error (exit code 3).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.Int("chunkSize", cfg.ChunkSize),
				slog.String("compression", cfg.Compression),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .jsonstream.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newEncodeCommand(),
		newWatchCommand(),
	)

	return cmd
}
