// Package tracker reconciles a GSD roadmap with an external issue tracker.
//
// It defines the IssueTracker interface that adapters (GitHub today) implement,
// and the Engine that drives forward sync (roadmap to issues) and bidirectional
// sync (completed plans close issues, closed issues check off plans).
package tracker

import "context"

// IssueTracker is the plugin interface every tracker integration implements.
// The Engine only talks to the tracker through it.
type IssueTracker interface {
	// Name returns the lowercase identifier for this tracker (e.g., "github").
	Name() string

	// DisplayName returns the human-readable name (e.g., "GitHub").
	DisplayName() string

	// Init configures the tracker. Called once before any sync operation.
	Init(ctx context.Context, cfg *Config) error

	// Validate checks that the tracker is configured well enough to make calls.
	Validate() error

	// Close releases any resources held by the tracker.
	Close() error

	// QueryIssues returns every issue (open and closed) carrying label.
	QueryIssues(ctx context.Context, label string) (*IssueSet, error)

	// CreateIssue creates an issue and returns its number.
	CreateIssue(ctx context.Context, req IssueRequest) (int, error)

	// CloseIssue closes the issue with the given number.
	CloseIssue(ctx context.Context, number int) error

	// ListMilestones returns all milestones, open and closed.
	ListMilestones(ctx context.Context) ([]Milestone, error)

	// EnsureMilestone returns the milestone titled title, creating it with
	// description when missing. The bool reports whether it was created.
	EnsureMilestone(ctx context.Context, title, description string) (Milestone, bool, error)

	// EnsureLabels creates any of labels that do not exist yet.
	EnsureLabels(ctx context.Context, labels []string) error

	// ResolveBoard finds a project board by owner and title.
	// Returns nil, nil if no such board exists.
	ResolveBoard(ctx context.Context, owner, name string) (*Board, error)

	// CreateBoard creates a project board owned by owner.
	CreateBoard(ctx context.Context, owner, name string) (*Board, error)

	// LinkIssueToBoard adds the issue to the board.
	LinkIssueToBoard(ctx context.Context, board *Board, number int) error
}
