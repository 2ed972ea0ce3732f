package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/gsdsync/internal/debug"
	"github.com/steveyegge/gsdsync/internal/roadmap"
	"github.com/steveyegge/gsdsync/internal/todo"
)

// SyncRoadmap creates milestones for phases, issues for incomplete plans and,
// optionally, issues for pending todos. Items that already exist in the tracker
// are counted and left alone, so repeated runs are idempotent. Once the
// roadmap parses, the result is returned even alongside an error.
func (e *Engine) SyncRoadmap(ctx context.Context, opts ForwardOptions) (*SyncResult, error) {
	result := &SyncResult{DryRun: e.DryRun}

	rm, err := roadmap.ParseFile(opts.RoadmapPath)
	if err != nil {
		return nil, err
	}
	e.msg("Found %d phases and %d plans", len(rm.Phases), len(rm.Plans))

	board := e.resolveBoard(ctx, opts.Board)

	existing, err := e.Tracker.QueryIssues(ctx, LabelPlan)
	if err != nil {
		return result, fmt.Errorf("querying %s issues: %w", LabelPlan, err)
	}
	var existingTodos *IssueSet
	if opts.SyncTodos {
		existingTodos, err = e.Tracker.QueryIssues(ctx, LabelTodo)
		if err != nil {
			return result, fmt.Errorf("querying %s issues: %w", LabelTodo, err)
		}
	}
	debug.Logf("Fetched %d plan issues from %s\n", existing.Len(), e.trackerName())

	milestones := e.syncMilestones(ctx, rm, result)

	for _, plan := range rm.Plans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.syncPlan(ctx, rm, plan, opts.RoadmapPath, existing, milestones, board, result)
	}

	if opts.SyncTodos {
		todosDir := filepath.Join(filepath.Dir(opts.RoadmapPath), "todos")
		if err := e.syncTodos(ctx, todosDir, existingTodos, board, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// resolveBoard looks up, and when asked creates, the board issues are linked to.
// A missing board is not an error; issues are simply not linked.
func (e *Engine) resolveBoard(ctx context.Context, req *BoardRequest) *Board {
	if req == nil || req.Name == "" {
		return nil
	}

	board, err := e.Tracker.ResolveBoard(ctx, req.Owner, req.Name)
	if err != nil {
		e.warn("Failed to look up project %q: %v", req.Name, err)
		return nil
	}
	if board != nil {
		e.msg("Project: %s (#%d)", board.Title, board.Number)
		return board
	}

	if !req.Create {
		if !e.DryRun {
			e.warn("Project %q not found. Use --create-board to create it.", req.Name)
		}
		return nil
	}

	if e.DryRun {
		e.msg("[dry-run] Would create project: %s", req.Name)
		return nil
	}
	board, err = e.Tracker.CreateBoard(ctx, req.Owner, req.Name)
	if err != nil {
		e.warn("Failed to create project %q: %v", req.Name, err)
		return nil
	}
	e.msg("Created project: %s (#%d)", board.Title, board.Number)
	return board
}

// syncMilestones ensures one milestone per phase and returns the milestone
// number for each phase that has one, keyed by normalized phase number.
func (e *Engine) syncMilestones(ctx context.Context, rm *roadmap.Roadmap, result *SyncResult) map[string]int {
	numbers := make(map[string]int, len(rm.Phases))

	known := make(map[string]Milestone)
	list, err := e.Tracker.ListMilestones(ctx)
	if err != nil {
		e.warn("Failed to list milestones: %v", err)
	}
	for _, m := range list {
		known[m.Title] = m
	}

	for _, phase := range rm.Phases {
		title := MilestoneTitle(phase)
		key := roadmap.NormalizePhase(phase.Number)

		if m, ok := known[title]; ok {
			result.MilestonesExisting++
			numbers[key] = m.Number
			continue
		}

		if e.DryRun {
			e.msg("[dry-run] Would create milestone: %s", title)
			result.MilestonesCreated++
			continue
		}

		m, created, err := e.Tracker.EnsureMilestone(ctx, title, MilestoneDescription(phase))
		if err != nil {
			e.fail(result, "Failed to create milestone %q: %v", title, err)
			continue
		}
		numbers[key] = m.Number
		if created {
			result.MilestonesCreated++
			e.msg("Created milestone: %s", title)
		} else {
			result.MilestonesExisting++
		}
	}

	return numbers
}

func (e *Engine) syncPlan(ctx context.Context, rm *roadmap.Roadmap, plan *roadmap.Plan, roadmapPath string,
	existing *IssueSet, milestones map[string]int, board *Board, result *SyncResult) {
	if plan.IsCompleted() {
		return
	}

	key := PlanKey(plan.ID)
	if issue := existing.Get(key); issue != nil {
		result.IssuesExisting++
		debug.Logf("Issue exists for %s: #%d\n", key, issue.Number)
		return
	}

	phase := rm.PhaseFor(plan)
	if phase == nil {
		result.addError(fmt.Sprintf("No phase found for plan %s", plan.ID))
		return
	}

	title := PlanTitle(plan)
	body := PlanBody(plan, phase, roadmapPath)
	labels := PlanLabels(phase)

	if e.DryRun {
		e.msg("[dry-run] Would create issue: %s", title)
		if board != nil {
			e.msg("[dry-run] Would link to project")
		}
		e.preview(title, body)
		result.IssuesCreated++
		return
	}

	if err := e.Tracker.EnsureLabels(ctx, labels); err != nil {
		e.warn("Failed to ensure labels for %s: %v", key, err)
	}

	number, err := e.Tracker.CreateIssue(ctx, IssueRequest{
		Title:     title,
		Body:      body,
		Labels:    labels,
		Milestone: milestones[roadmap.NormalizePhase(phase.Number)],
	})
	if err != nil {
		e.fail(result, "Failed to create issue for %s: %v", key, err)
		return
	}
	result.IssuesCreated++
	e.msg("Created issue for %s: #%d", key, number)

	e.link(ctx, board, number, result)
}

func (e *Engine) link(ctx context.Context, board *Board, number int, result *SyncResult) {
	if board == nil {
		return
	}
	if err := e.Tracker.LinkIssueToBoard(ctx, board, number); err != nil {
		e.warn("Failed to link #%d to project %s: %v", number, board.Title, err)
		return
	}
	result.BoardLinked++
	debug.Logf("Linked #%d to project %s\n", number, board.Title)
}

func (e *Engine) syncTodos(ctx context.Context, todosDir string, existing *IssueSet, board *Board, result *SyncResult) error {
	if _, err := os.Stat(todosDir); err != nil {
		debug.Logf("No todos directory at %s\n", todosDir)
		return nil
	}

	loaded, err := todo.LoadDir(todosDir)
	if err != nil {
		e.fail(result, "Failed to load todos: %v", err)
		return nil
	}
	for _, skip := range loaded.Skipped {
		result.addError(fmt.Sprintf("Skipped todo %s: %s", skip.Filename, skip.Reason))
	}
	e.msg("Found %d pending todos", len(loaded.Todos))

	for _, t := range loaded.Todos {
		if err := ctx.Err(); err != nil {
			return err
		}

		if todoExists(existing, t) {
			result.TodosExisting++
			debug.Logf("Todo issue exists: %s\n", t.Title)
			continue
		}

		title := TodoTitle(t)
		body := TodoBody(t, todosDir)
		labels := TodoLabels(t)

		if e.DryRun {
			e.msg("[dry-run] Would create issue: %s", title)
			e.preview(title, body)
			result.TodosSynced++
			continue
		}

		if err := e.Tracker.EnsureLabels(ctx, labels); err != nil {
			e.warn("Failed to ensure labels for todo %q: %v", t.Title, err)
		}
		number, err := e.Tracker.CreateIssue(ctx, IssueRequest{Title: title, Body: body, Labels: labels})
		if err != nil {
			e.fail(result, "Failed to create issue for todo %q: %v", t.Title, err)
			continue
		}
		result.TodosSynced++
		e.msg("Created issue for todo: %s (#%d)", t.Title, number)

		e.link(ctx, board, number, result)
	}
	return nil
}

// todoExists matches todos loosely: any todo-labeled issue whose title contains
// the todo title counts as existing.
func todoExists(existing *IssueSet, t *todo.Todo) bool {
	for _, issue := range existing.All() {
		if strings.Contains(issue.Title, t.Title) {
			return true
		}
	}
	return false
}
