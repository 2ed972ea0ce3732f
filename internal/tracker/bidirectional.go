package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/steveyegge/gsdsync/internal/debug"
	"github.com/steveyegge/gsdsync/internal/lockfile"
	"github.com/steveyegge/gsdsync/internal/roadmap"
)

// RoadmapFileName is the roadmap inside a planning directory.
const RoadmapFileName = "ROADMAP.md"

// SyncBidirectional propagates completion both ways: plans checked off in the
// roadmap close their open issues, and closed issues check off their plans.
// The roadmap is rewritten at most once per run.
func (e *Engine) SyncBidirectional(ctx context.Context, opts BidirectionalOptions) (*SyncResult, error) {
	result := &SyncResult{DryRun: e.DryRun}
	roadmapPath := filepath.Join(opts.PlanningDir, RoadmapFileName)

	if _, err := os.Stat(roadmapPath); err != nil {
		return nil, fmt.Errorf("no %s in %s: %w", RoadmapFileName, opts.PlanningDir, err)
	}

	lock, err := lockfile.Acquire(filepath.Join(opts.PlanningDir, LockFileName), "sync")
	if err != nil {
		if errors.Is(err, lockfile.ErrLockBusy) {
			return nil, fmt.Errorf("%w: %v", ErrLocked, err)
		}
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	rm, err := roadmap.ParseFile(roadmapPath)
	if err != nil {
		return nil, err
	}
	existing, err := e.Tracker.QueryIssues(ctx, LabelPlan)
	if err != nil {
		return result, fmt.Errorf("querying %s issues: %w", LabelPlan, err)
	}

	e.closeCompleted(ctx, rm, existing, result)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := e.markClosedPlans(roadmapPath, rm, existing, result); err != nil {
		return result, err
	}

	return result, nil
}

// closeCompleted closes the open issue of every completed plan.
func (e *Engine) closeCompleted(ctx context.Context, rm *roadmap.Roadmap, existing *IssueSet, result *SyncResult) {
	for _, plan := range rm.Plans {
		if !plan.IsCompleted() {
			continue
		}
		issue := existing.Get(PlanKey(plan.ID))
		if issue == nil || !issue.IsOpen() {
			continue
		}

		if e.DryRun {
			e.msg("[dry-run] Would close issue #%d (%s)", issue.Number, PlanKey(plan.ID))
			result.IssuesClosed++
			continue
		}
		if err := e.Tracker.CloseIssue(ctx, issue.Number); err != nil {
			e.fail(result, "Failed to close issue #%d (%s): %v", issue.Number, PlanKey(plan.ID), err)
			continue
		}
		result.IssuesClosed++
		e.msg("Closed issue #%d (%s)", issue.Number, PlanKey(plan.ID))
	}
}

// markClosedPlans checks off plans whose issues are closed. Edits carry the plan
// lines captured by the run's parse; they are applied to the roadmap as it is on
// disk now, so a line edited since then is skipped. The file is written once.
func (e *Engine) markClosedPlans(roadmapPath string, rm *roadmap.Roadmap, existing *IssueSet, result *SyncResult) error {
	data, err := os.ReadFile(roadmapPath) //nolint:gosec // G304: path is inside the planning dir
	if err != nil {
		return fmt.Errorf("failed to read roadmap: %w", err)
	}
	content := string(data)
	plans := PlansByKey(rm.Plans)

	var edits []roadmap.Edit
	for _, issue := range existing.All() {
		if !issue.IsClosed() || issue.Key == "" {
			continue
		}
		plan, ok := plans[issue.Key]
		if !ok || plan.IsCompleted() {
			continue
		}
		edits = append(edits, roadmap.CompletionEdit(plan))
	}
	if len(edits) == 0 {
		return nil
	}

	updated, applied, skipped := roadmap.ApplyEdits(content, edits)
	for _, s := range skipped {
		debug.Logf("Skipping stale edit for %s: line no longer present\n", PlanKey(s.PlanID))
	}
	for _, a := range applied {
		if e.DryRun {
			e.msg("[dry-run] Would mark [x]: %s", PlanKey(a.PlanID))
		} else {
			e.msg("Marked [x]: %s", PlanKey(a.PlanID))
		}
	}
	result.PlansMarkedComplete = len(applied)

	if len(applied) == 0 || e.DryRun {
		return nil
	}
	return writePreservingMode(roadmapPath, updated)
}

// writePreservingMode atomically replaces path with content and restores the
// original permission bits.
func writePreservingMode(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat roadmap: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write roadmap: %w", err)
	}
	if err := os.Chmod(path, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to restore roadmap permissions: %w", err)
	}
	return nil
}
