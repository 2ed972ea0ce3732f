package tracker

import (
	"fmt"

	"github.com/steveyegge/gsdsync/internal/roadmap"
	"github.com/steveyegge/gsdsync/internal/todo"
)

// Labels applied to generated issues.
const (
	LabelAutoGenerated = "auto-generated"
	LabelPlan          = "gsd-plan"
	LabelTodo          = "todo"
)

// PlanKey is the lookup key of the issue tracking plan id.
func PlanKey(id string) string {
	return "Plan-" + id
}

// PlanTitle is the issue title for plan: "[Plan-01-02] Add CI".
func PlanTitle(plan *roadmap.Plan) string {
	return fmt.Sprintf("[%s] %s", PlanKey(plan.ID), plan.Description)
}

// PlanLabels returns the labels for a plan issue in phase.
func PlanLabels(phase *roadmap.Phase) []string {
	return []string{LabelAutoGenerated, LabelPlan, "phase-" + phase.Number}
}

// MilestoneTitle is the milestone title for phase: "Phase 1: Setup".
func MilestoneTitle(phase *roadmap.Phase) string {
	return fmt.Sprintf("Phase %s: %s", phase.Number, phase.Name)
}

// MilestoneDescription is the phase goal, or a generic line when there is none.
func MilestoneDescription(phase *roadmap.Phase) string {
	if phase.Goal != "" {
		return phase.Goal
	}
	return "GSD Phase " + phase.Number
}

// TodoTitle is the issue title for t: "[Todo] Fix flaky test".
func TodoTitle(t *todo.Todo) string {
	return "[Todo] " + t.Title
}

// TodoLabels returns the labels for a todo issue.
func TodoLabels(t *todo.Todo) []string {
	return []string{LabelAutoGenerated, LabelTodo, "area-" + t.Area}
}

// PlansByKey indexes plans by their issue lookup key. Later duplicates of a plan
// ID replace earlier ones.
func PlansByKey(plans []*roadmap.Plan) map[string]*roadmap.Plan {
	m := make(map[string]*roadmap.Plan, len(plans))
	for _, p := range plans {
		m[PlanKey(p.ID)] = p
	}
	return m
}
