package github

import (
	"testing"

	"github.com/steveyegge/gsdsync/internal/tracker"
)

func TestStateToTracker(t *testing.T) {
	tests := []struct {
		in   string
		want tracker.IssueState
	}{
		{"open", tracker.StateOpen},
		{"closed", tracker.StateClosed},
		{"CLOSED", tracker.StateClosed},
		{"", tracker.StateOpen},
	}
	for _, tt := range tests {
		if got := StateToTracker(tt.in); got != tt.want {
			t.Errorf("StateToTracker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIssuesToSet(t *testing.T) {
	set := IssuesToSet([]Issue{
		{Number: 1, Title: "[Plan-02-01] Build", State: "closed", HTMLURL: "u1"},
		{Number: 2, Title: "untracked", State: "open"},
	})
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	got := set.Get("Plan-02-01")
	if got == nil || got.Number != 1 || !got.IsClosed() || got.URL != "u1" {
		t.Errorf("Get(Plan-02-01) = %+v", got)
	}
}

func TestProjectToBoard(t *testing.T) {
	if ProjectToBoard(nil) != nil {
		t.Error("ProjectToBoard(nil) should be nil")
	}
	b := ProjectToBoard(&Project{ID: "P", Number: 4, Title: "Roadmap", URL: "u"})
	if b.ID != "P" || b.Number != 4 || b.Title != "Roadmap" || b.URL != "u" {
		t.Errorf("ProjectToBoard() = %+v", b)
	}
}
