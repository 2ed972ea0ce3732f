package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/debug"
	"github.com/steveyegge/gsdsync/internal/github"
	"github.com/steveyegge/gsdsync/internal/telemetry"
	"github.com/steveyegge/gsdsync/internal/tracker"
	"github.com/steveyegge/gsdsync/internal/ui"
)

const (
	modeForward       = "forward"
	modeBidirectional = "bidirectional"
)

var (
	roadmapPath string
	planningDir string
	boardName   string
	boardOwner  string
	autoBoard   bool
	createBoard bool
	syncTodos   bool
	dryRun      bool
	confirmRun  bool
)

// registerSyncFlags adds the mode flags and the modifiers shared with watch.
func registerSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&roadmapPath, "roadmap", "", "Forward sync: create milestones and issues from this ROADMAP.md")
	cmd.Flags().StringVar(&planningDir, "sync", "", "Bidirectional sync: reconcile completion for the planning directory containing ROADMAP.md")
	cmd.MarkFlagsMutuallyExclusive("roadmap", "sync")
	registerModifierFlags(cmd)
}

func registerModifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&boardName, "board", "", "Link created issues to this project board")
	cmd.Flags().StringVar(&boardOwner, "board-owner", "", "Owner of the project board (default: repository owner)")
	cmd.Flags().BoolVar(&autoBoard, "auto-board", false, "Use the project board named \"<repo> Development\"")
	cmd.Flags().BoolVar(&createBoard, "create-board", false, "Create the project board if it does not exist")
	cmd.Flags().BoolVar(&syncTodos, "sync-todos", false, "Also create issues for pending todos")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without touching GitHub or the roadmap")
	cmd.Flags().BoolVar(&confirmRun, "confirm", false, "Ask before making changes")
}

// syncMode reports which mode the flags select. Exactly one of roadmap and dir
// must be set.
func syncMode(roadmap, dir string) (string, error) {
	switch {
	case roadmap != "" && dir != "":
		return "", errors.New("--roadmap and --sync are mutually exclusive")
	case roadmap != "":
		return modeForward, nil
	case dir != "":
		return modeBidirectional, nil
	default:
		return "", errors.New("one of --roadmap or --sync is required")
	}
}

// checkTarget fails when the roadmap file or planning directory is missing.
// It runs before any tracker call.
func checkTarget(mode, roadmap, dir string) error {
	if mode == modeForward {
		info, err := os.Stat(roadmap)
		if err != nil {
			return fmt.Errorf("roadmap not found: %s", roadmap)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory; --roadmap takes a ROADMAP.md path", roadmap)
		}
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("planning directory not found: %s", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, tracker.RoadmapFileName)); err != nil {
		return fmt.Errorf("no %s in %s", tracker.RoadmapFileName, dir)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) {
	mode, err := syncMode(roadmapPath, planningDir)
	if err != nil {
		_ = cmd.Usage()
		FatalError("%v", err)
	}
	if err := checkTarget(mode, roadmapPath, planningDir); err != nil {
		FatalError("%v", err)
	}

	ctx := getRootContext()
	gh, tr := openTracker(ctx)
	defer func() { _ = tr.Close() }()

	if confirmRun && !dryRun {
		if !confirmSync(mode, gh.Client().Owner+"/"+gh.Client().Repo) {
			return
		}
	}

	result, err := runOnce(ctx, tr, mode, gh.Client().Owner, gh.Client().Repo)
	if err != nil {
		if result != nil {
			printSyncResult(result)
		}
		if errors.Is(err, tracker.ErrLocked) {
			FatalErrorWithHint(err.Error(), "wait for the other run to finish, or remove "+
				filepath.Join(planningDir, tracker.LockFileName)+" if no gsdsync process is running")
		}
		FatalError("%v", err)
	}
	printSyncResult(result)
}

// openTracker builds the configured GitHub tracker. The concrete tracker is
// returned alongside the instrumented one for access to the repository.
func openTracker(ctx context.Context) (*github.Tracker, tracker.IssueTracker) {
	raw, err := tracker.NewTracker("github")
	if err != nil {
		FatalError("%v", err)
	}
	gh, ok := raw.(*github.Tracker)
	if !ok {
		FatalError("unexpected tracker type %T", raw)
	}

	if err := gh.Init(ctx, tracker.NewConfig("github", config.Store{})); err != nil {
		FatalErrorWithHint(err.Error(), "run 'gsdsync config set github.token <token>' or export GITHUB_TOKEN")
	}
	if err := gh.Validate(); err != nil {
		FatalError("%v", err)
	}
	debug.Logf("Using repository %s/%s\n", gh.Client().Owner, gh.Client().Repo)
	return gh, telemetry.WrapTracker(gh)
}

// boardRequest turns the board settings into a request for forward sync, or
// nil when no board was asked for.
func boardRequest(settings config.BoardSettings, repoOwner, repo string) *tracker.BoardRequest {
	name := settings.BoardName(repo)
	if name == "" {
		return nil
	}
	owner := settings.Owner
	if owner == "" {
		owner = repoOwner
	}
	return &tracker.BoardRequest{Owner: owner, Name: name, Create: settings.Create}
}

// newEngine wires the engine's callbacks to the terminal.
func newEngine(tr tracker.IssueTracker) *tracker.Engine {
	engine := tracker.NewEngine(tr)
	engine.DryRun = dryRun
	engine.OnMessage = func(msg string) {
		if jsonOutput {
			debug.Logf("%s\n", msg)
			return
		}
		debug.PrintNormal("%s\n", msg)
	}
	engine.OnWarning = func(msg string) {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderWarn(ui.IconWarn), msg)
	}
	if verboseFlag && !jsonOutput {
		engine.OnPreview = func(title, body string) {
			fmt.Println(ui.RenderAccent(title))
			fmt.Print(ui.RenderMarkdown(body))
		}
	}
	return engine
}

// runOnce performs one sync run inside its own telemetry span.
func runOnce(ctx context.Context, tr tracker.IssueTracker, mode, owner, repo string) (*tracker.SyncResult, error) {
	ctx, span := telemetry.StartRun(ctx, mode, dryRun)
	defer span.End()

	engine := newEngine(tr)
	if dryRun && !jsonOutput {
		debug.PrintNormal("%s\n", ui.DryRunStyle.Render("[DRY RUN] No changes will be made"))
	}

	var (
		result *tracker.SyncResult
		err    error
	)
	switch mode {
	case modeForward:
		result, err = engine.SyncRoadmap(ctx, tracker.ForwardOptions{
			RoadmapPath: roadmapPath,
			SyncTodos:   config.GetBool("todos.sync"),
			Board:       boardRequest(config.GetBoardSettings(), owner, repo),
		})
	case modeBidirectional:
		result, err = engine.SyncBidirectional(ctx, tracker.BidirectionalOptions{PlanningDir: planningDir})
	default:
		return nil, fmt.Errorf("unknown sync mode %q", mode)
	}

	telemetry.RecordResult(ctx, span, mode, result)
	return result, err
}
