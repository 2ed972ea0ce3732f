package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/roadmap"
	"github.com/steveyegge/gsdsync/internal/tracker"
	"github.com/steveyegge/gsdsync/internal/ui"
)

var showRoadmapPath string

var showCmd = &cobra.Command{
	Use:     "show",
	GroupID: "sync",
	Short:   "Show the phases and plans parsed from a roadmap",
	Long: `Parse ROADMAP.md and print its phase/plan tree without contacting GitHub.

Plans whose phase number matches no phase are listed separately; they are
reported as errors by forward sync.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if showRoadmapPath == "" {
			FatalError("--roadmap is required")
		}
		rm, err := roadmap.ParseFile(showRoadmapPath)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(roadmapView(rm))
			return
		}
		writeRoadmapTree(os.Stdout, rm)
	},
}

type roadmapJSON struct {
	Phases     []*roadmap.Phase `json:"phases"`
	Unassigned []*roadmap.Plan  `json:"unassigned,omitempty"`
}

func roadmapView(rm *roadmap.Roadmap) roadmapJSON {
	return roadmapJSON{Phases: rm.Phases, Unassigned: rm.Unassigned()}
}

// writeRoadmapTree prints each phase as its milestone title with its plans
// below it.
func writeRoadmapTree(w io.Writer, rm *roadmap.Roadmap) {
	if len(rm.Phases) == 0 && len(rm.Plans) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("No phases or plans found."))
		return
	}

	for _, phase := range rm.Phases {
		fmt.Fprintf(w, "%s %s\n", ui.RenderCheckbox(phase.Status == roadmap.StatusCompleted),
			ui.RenderAccent(tracker.MilestoneTitle(phase)))
		if phase.Goal != "" {
			fmt.Fprintf(w, "    %s\n", ui.RenderMuted(ui.TruncateSimple(phase.Goal, 80)))
		}
		writePlans(w, phase.Plans)
	}

	if unassigned := rm.Unassigned(); len(unassigned) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.RenderWarn("Plans without a phase"))
		writePlans(w, unassigned)
	}

	done := 0
	for _, p := range rm.Plans {
		if p.IsCompleted() {
			done++
		}
	}
	fmt.Fprintf(w, "\n%d phases, %d/%d plans complete\n", len(rm.Phases), done, len(rm.Plans))
}

func writePlans(w io.Writer, plans []*roadmap.Plan) {
	for i, p := range plans {
		branch := ui.TreeChild
		if i == len(plans)-1 {
			branch = ui.TreeLast
		}
		fmt.Fprintf(w, "  %s%s %s %s\n", ui.RenderMuted(branch), ui.RenderCheckbox(p.IsCompleted()), p.ID,
			ui.TruncateSimple(p.Description, 72))
	}
}

func init() {
	showCmd.Flags().StringVar(&showRoadmapPath, "roadmap", "", "Path to ROADMAP.md")
	rootCmd.AddCommand(showCmd)
}
