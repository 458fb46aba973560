// Package watch re-runs an action whenever a set of input files changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one regeneration and returns the number of bytes produced.
type RunFunc func(ctx context.Context) (int64, error)

// Options configures the watch behaviour.
type Options struct {
	// Files are the input files to watch.
	Files []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives one status line per run.
	Out io.Writer

	// Ready, when set, is closed once the watcher is installed and the initial
	// run has finished.
	Ready chan<- struct{}
}

// Run executes runFn once, then again after every relevant change to one of
// the watched files, until ctx is cancelled. Runs never overlap, and a run in
// progress when ctx is cancelled completes before Run returns.
//
// Files are watched through their parent directories so that editors which
// replace a file on save (rename over the original) keep being tracked.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(opts.Files))
	for _, f := range opts.Files {
		abs, absErr := filepath.Abs(f)
		if absErr != nil {
			return fmt.Errorf("resolving %q: %w", f, absErr)
		}
		targets[abs] = true

		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %q: %w", abs, err)
		}
	}

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	doRun(ctx, opts, runFn, "(initial)")
	if opts.Ready != nil {
		close(opts.Ready)
	}

	debounce := newDebouncer(opts.Debounce)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event, targets) {
				continue
			}
			opts.Logger.Debug("input changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			debounce.Trigger(event.Name)

		case <-debounce.C():
			doRun(ctx, opts, runFn, debounce.Path())

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	n, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s: ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s: OK (%d bytes)\n", now, trigger, n)
}

// isRelevant keeps write, create and rename events on watched files.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return targets[abs]
}
