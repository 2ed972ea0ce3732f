package github

import (
	"strings"

	"github.com/steveyegge/gsdsync/internal/tracker"
)

// StateToTracker maps a GitHub issue state ("open"/"closed", any case) to the
// tracker state. Unknown states are treated as open.
func StateToTracker(state string) tracker.IssueState {
	if strings.EqualFold(state, "closed") {
		return tracker.StateClosed
	}
	return tracker.StateOpen
}

// IssueToTracker converts a GitHub issue to the engine's view of it.
func IssueToTracker(gh *Issue) tracker.TrackerIssue {
	return tracker.TrackerIssue{
		Number: gh.Number,
		State:  StateToTracker(gh.State),
		Title:  gh.Title,
		URL:    gh.HTMLURL,
	}
}

// IssuesToSet converts GitHub issues to an IssueSet in API order.
func IssuesToSet(issues []Issue) *tracker.IssueSet {
	converted := make([]tracker.TrackerIssue, 0, len(issues))
	for i := range issues {
		converted = append(converted, IssueToTracker(&issues[i]))
	}
	return tracker.NewIssueSet(converted)
}

// MilestoneToTracker converts a GitHub milestone.
func MilestoneToTracker(m *Milestone) tracker.Milestone {
	return tracker.Milestone{Number: m.Number, Title: m.Title}
}

// ProjectToBoard converts a Projects v2 board.
func ProjectToBoard(p *Project) *tracker.Board {
	if p == nil {
		return nil
	}
	return &tracker.Board{ID: p.ID, Number: p.Number, Title: p.Title, URL: p.URL}
}
