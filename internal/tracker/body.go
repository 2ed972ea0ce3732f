package tracker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/steveyegge/gsdsync/internal/roadmap"
	"github.com/steveyegge/gsdsync/internal/todo"
)

const bodyFooter = "*Auto-generated by GSD → GitHub sync*"

// PlanBody renders the issue body for plan. roadmapPath is shown as the source
// and its directory is taken as the planning directory.
func PlanBody(plan *roadmap.Plan, phase *roadmap.Phase, roadmapPath string) string {
	planningDir := filepath.ToSlash(filepath.Dir(roadmapPath))

	lines := []string{
		"## Plan Details",
		"",
		"**Plan ID**: " + plan.ID,
		fmt.Sprintf("**Phase**: %s - %s", phase.Number, phase.Name),
	}
	if phase.Goal != "" {
		lines = append(lines, "", "**Phase Goal**: "+phase.Goal)
	}
	if len(phase.Requirements) > 0 {
		lines = append(lines, "", "**Requirements**: "+strings.Join(phase.Requirements, ", "))
	}
	lines = append(lines,
		"",
		"### Source",
		fmt.Sprintf("- Roadmap: `%s` (line %d)", filepath.ToSlash(roadmapPath), plan.Line),
		fmt.Sprintf("- Plan file: `%s/phases/%s-*/plans/%s-PLAN.md`", planningDir, zeroPad2(plan.PhaseNum), plan.ID),
		"",
		"---",
		bodyFooter,
	)
	return strings.Join(lines, "\n")
}

// TodoBody renders the issue body for t, which was loaded from todosDir.
func TodoBody(t *todo.Todo, todosDir string) string {
	lines := []string{
		"## Todo Details",
		"",
		"**Area**: " + t.Area,
		"**Created**: " + t.Created,
	}
	if len(t.Files) > 0 {
		lines = append(lines, "", "### Related Files")
		for _, f := range t.Files {
			lines = append(lines, "- `"+f+"`")
		}
	}
	if t.Problem != "" {
		lines = append(lines, "", "### Problem", "", t.Problem)
	}
	if t.HasSolution() {
		lines = append(lines, "", "### Solution Hints", "", t.Solution)
	}
	source := filepath.ToSlash(filepath.Join(todosDir, todo.PendingDir, t.Filename))
	lines = append(lines,
		"",
		"### Source",
		"- Todo file: `"+source+"`",
		"",
		"---",
		bodyFooter,
	)
	return strings.Join(lines, "\n")
}

// zeroPad2 left-pads s with zeros to two characters.
func zeroPad2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
