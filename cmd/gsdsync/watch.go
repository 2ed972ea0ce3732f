package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/debug"
	"github.com/steveyegge/gsdsync/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Run forward sync whenever the roadmap changes",
	Long: `Run forward sync once, then again each time ROADMAP.md is saved.

Saves are debounced (watch.debounce, default 500ms) so an editor writing the
file in several steps triggers a single run. Runs never overlap. Press Ctrl+C
to stop.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if roadmapPath == "" {
			FatalError("--roadmap is required")
		}
		if err := checkTarget(modeForward, roadmapPath, ""); err != nil {
			FatalError("%v", err)
		}
		planningDir = ""

		ctx := getRootContext()
		gh, tr := openTracker(ctx)
		defer func() { _ = tr.Close() }()

		if err := watchRoadmap(ctx, roadmapPath, config.GetWatchDebounce(), func(ctx context.Context) {
			result, err := runOnce(ctx, tr, modeForward, gh.Client().Owner, gh.Client().Repo)
			if result != nil {
				printSyncResult(result)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s sync failed: %v\n", ui.RenderFail(ui.IconFail), err)
			}
		}); err != nil {
			FatalError("%v", err)
		}
	},
}

// watchRoadmap calls run once, then after every debounced write to path,
// until ctx is cancelled. run is only ever called from this goroutine.
func watchRoadmap(ctx context.Context, path string, delay time.Duration, run func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	pending := make(chan struct{}, 1)
	debouncer := NewDebouncer(delay, func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})
	defer debouncer.CancelAndWait()

	run(ctx)
	debug.PrintNormal("\nWatching %s for changes... (Press Ctrl+C to exit)\n", path)

	for {
		select {
		case <-ctx.Done():
			debug.PrintNormal("\nStopped watching.\n")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isRoadmapChange(event, abs) {
				debug.Logf("watch: %s\n", event)
				debouncer.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			WarnError("watcher error: %v", err)
		case <-pending:
			run(ctx)
			debug.PrintNormal("\nWatching %s for changes... (Press Ctrl+C to exit)\n", path)
		}
	}
}

func isRoadmapChange(event fsnotify.Event, abs string) bool {
	if filepath.Clean(event.Name) != abs {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func init() {
	watchCmd.Flags().StringVar(&roadmapPath, "roadmap", "", "Path to ROADMAP.md")
	registerModifierFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
