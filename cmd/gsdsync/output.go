package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/tracker"
	"github.com/steveyegge/gsdsync/internal/ui"
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// printSyncResult prints the run summary. It is printed even with --quiet.
func printSyncResult(result *tracker.SyncResult) {
	if jsonOutput {
		outputJSON(result)
		return
	}
	mode := modeForward
	if planningDir != "" {
		mode = modeBidirectional
	}
	writeSummary(os.Stdout, mode, result, config.GetBool("todos.sync"))
}

// writeSummary renders the human-readable summary for one run.
func writeSummary(w io.Writer, mode string, r *tracker.SyncResult, withTodos bool) {
	if r == nil {
		return
	}

	fmt.Fprintf(w, "\n%s\n", ui.RenderHeader("Summary"))
	lines := summaryLines(mode, r, withTodos)
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", ui.RenderCount(l.label, l.n))
	}

	if r.HasErrors() {
		fmt.Fprintf(w, "  %s\n", ui.RenderFail(fmt.Sprintf("Errors: %d", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    - %s\n", e)
		}
	}

	if r.DryRun {
		fmt.Fprintf(w, "\n%s\n", ui.DryRunStyle.Render("[DRY RUN] No changes applied."))
	}
}

type summaryLine struct {
	label string
	n     int
}

func summaryLines(mode string, r *tracker.SyncResult, withTodos bool) []summaryLine {
	if mode == modeBidirectional {
		return []summaryLine{
			{"Issues closed", r.IssuesClosed},
			{"Plans marked [x]", r.PlansMarkedComplete},
		}
	}

	lines := []summaryLine{
		{"Milestones created", r.MilestonesCreated},
		{"Milestones existing", r.MilestonesExisting},
		{"Issues created", r.IssuesCreated},
		{"Issues existing", r.IssuesExisting},
	}
	if withTodos {
		lines = append(lines,
			summaryLine{"Todos synced", r.TodosSynced},
			summaryLine{"Todos existing", r.TodosExisting},
		)
	}
	if r.BoardLinked > 0 {
		lines = append(lines, summaryLine{"Added to project", r.BoardLinked})
	}
	return lines
}
