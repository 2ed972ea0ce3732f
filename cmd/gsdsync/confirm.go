package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/steveyegge/gsdsync/internal/ui"
)

// confirmSync asks before a mutating run. It returns false when the user
// declines or aborts.
func confirmSync(mode, repo string) bool {
	if !ui.IsTerminal() || !ui.IsInputTerminal() {
		FatalErrorWithHint("--confirm needs an interactive terminal", "drop --confirm, or preview with --dry-run first")
	}

	action := "Create milestones and issues in " + repo + "?"
	if mode == modeBidirectional {
		action = "Close completed issues in " + repo + " and update ROADMAP.md?"
	}

	proceed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(action).
				Affirmative("Sync").
				Negative("Cancel").
				Value(&proceed),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(os.Stderr, "Sync cancelled.")
			return false
		}
		FatalError("prompt error: %v", err)
	}
	if !proceed {
		fmt.Fprintln(os.Stderr, "Sync cancelled.")
	}
	return proceed
}
