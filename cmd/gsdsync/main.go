// Command gsdsync keeps a GSD planning directory and a GitHub repository in
// step: roadmap phases become milestones, plans and todos become issues, and
// completion flows back into ROADMAP.md.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/debug"
	"github.com/steveyegge/gsdsync/internal/telemetry"
	"github.com/steveyegge/gsdsync/internal/ui"
)

var (
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "gsdsync",
	Short: "Sync a GSD roadmap with GitHub issues, milestones and projects",
	Long: `gsdsync mirrors a GSD planning directory into GitHub.

Forward sync (--roadmap) creates a milestone per phase and an issue per
incomplete plan, optionally also for pending todos, and links new issues to a
project board. Bidirectional sync (--sync) closes issues for plans checked off
in ROADMAP.md and checks off plans whose issues were closed on GitHub.

Runs are idempotent: anything already on GitHub is counted and left alone.`,
	Example: `  gsdsync --roadmap .planning/ROADMAP.md --auto-board --dry-run
  gsdsync --roadmap .planning/ROADMAP.md --sync-todos --board "Q3 Plan" --create-board
  gsdsync --sync .planning`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		applyViperOverrides(cmd)
		ui.ApplyColorProfile()

		if err := telemetry.Init(rootCtx, "gsdsync", Version); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)
		if rootCancel != nil {
			rootCancel()
		}
	},
	Run: runSync,
}

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	registerSyncFlags(rootCmd)

	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "Sync:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package so
// all later output respects them.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// flagConfigKeys maps flags that have a config equivalent to their key.
// Explicitly set flags win over the config file and environment.
var flagConfigKeys = map[string]string{
	"board":        "board.name",
	"board-owner":  "board.owner",
	"auto-board":   "board.auto",
	"create-board": "board.create",
	"sync-todos":   "todos.sync",
}

// applyViperOverrides merges config values into flags that were not set on
// the command line, and pushes set flags into config.
// Priority: flags > config file + env vars > defaults.
func applyViperOverrides(cmd *cobra.Command) {
	if !cmd.Flags().Changed("json") {
		jsonOutput = config.GetBool("json")
	}

	for name, key := range flagConfigKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if f.Value.Type() == "bool" {
			v, _ := cmd.Flags().GetBool(name)
			config.Set(key, v)
			continue
		}
		config.Set(key, f.Value.String())
	}
}

func getRootContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
