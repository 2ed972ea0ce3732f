package github

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/steveyegge/gsdsync/internal/tracker"
)

func init() {
	tracker.Register("github", func() tracker.IssueTracker {
		return &Tracker{}
	})
}

// Tracker implements tracker.IssueTracker for GitHub.
type Tracker struct {
	client *Client

	// WorkDir is where the git remote is read from when owner/repo are not
	// configured. Empty means the process working directory.
	WorkDir string

	mu     sync.Mutex
	labels map[string]bool // labels known to exist
}

// NewTracker wraps an already configured client.
func NewTracker(client *Client) *Tracker {
	return &Tracker{client: client}
}

func (t *Tracker) Name() string        { return "github" }
func (t *Tracker) DisplayName() string { return "GitHub" }

// Client returns the underlying API client, or nil before Init.
func (t *Tracker) Client() *Client { return t.client }

// Init reads github.token (falling back to GITHUB_TOKEN, then GH_TOKEN),
// github.owner, github.repo and github.api-url. Owner and repo default to the
// origin remote of the working directory.
func (t *Tracker) Init(ctx context.Context, cfg *tracker.Config) error {
	token := cfg.Get(tracker.CommonConfig.Token)
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("GitHub token not configured (set github.token, GITHUB_TOKEN or GH_TOKEN)")
	}

	owner := cfg.Get(tracker.CommonConfig.Owner)
	repo := cfg.Get(tracker.CommonConfig.Repo)
	if owner == "" || repo == "" {
		remoteOwner, remoteRepo, err := RepoFromGit(ctx, t.WorkDir)
		if err != nil {
			return fmt.Errorf("GitHub repository not configured (set github.owner and github.repo): %w", err)
		}
		if owner == "" {
			owner = remoteOwner
		}
		if repo == "" {
			repo = remoteRepo
		}
	}

	client := NewClient(token, owner, repo)
	if apiURL := cfg.Get(tracker.CommonConfig.APIURL); apiURL != "" {
		client = client.WithBaseURL(apiURL)
	}
	t.client = client
	return nil
}

func (t *Tracker) Validate() error {
	if t.client == nil {
		return fmt.Errorf("GitHub tracker not initialized")
	}
	if t.client.Owner == "" || t.client.Repo == "" {
		return fmt.Errorf("GitHub repository not configured")
	}
	return nil
}

func (t *Tracker) Close() error { return nil }

func (t *Tracker) QueryIssues(ctx context.Context, label string) (*tracker.IssueSet, error) {
	issues, err := t.client.FetchIssues(ctx, "all", label)
	if err != nil {
		return nil, err
	}
	return IssuesToSet(issues), nil
}

// CreateIssue does not provision labels; that is EnsureLabels' job and is
// best-effort. GitHub attaches labels that do not exist yet by creating them.
func (t *Tracker) CreateIssue(ctx context.Context, req tracker.IssueRequest) (int, error) {
	created, err := t.client.CreateIssue(ctx, IssueCreate{
		Title:     req.Title,
		Body:      req.Body,
		Labels:    req.Labels,
		Milestone: req.Milestone,
	})
	if err != nil {
		return 0, err
	}
	return created.Number, nil
}

func (t *Tracker) CloseIssue(ctx context.Context, number int) error {
	return t.client.CloseIssue(ctx, number)
}

func (t *Tracker) ListMilestones(ctx context.Context) ([]tracker.Milestone, error) {
	milestones, err := t.client.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]tracker.Milestone, 0, len(milestones))
	for i := range milestones {
		result = append(result, MilestoneToTracker(&milestones[i]))
	}
	return result, nil
}

func (t *Tracker) EnsureMilestone(ctx context.Context, title, description string) (tracker.Milestone, bool, error) {
	existing, err := t.ListMilestones(ctx)
	if err != nil {
		return tracker.Milestone{}, false, err
	}
	for _, m := range existing {
		if m.Title == title {
			return m, false, nil
		}
	}
	created, err := t.client.CreateMilestone(ctx, title, description)
	if err != nil {
		return tracker.Milestone{}, false, err
	}
	return MilestoneToTracker(created), true, nil
}

// EnsureLabels creates missing labels. Labels seen once are cached for the
// lifetime of the tracker.
func (t *Tracker) EnsureLabels(ctx context.Context, labels []string) error {
	for _, name := range labels {
		if t.labelKnown(name) {
			continue
		}
		label, err := t.client.GetLabel(ctx, name)
		if err != nil {
			return err
		}
		if label == nil {
			if err := t.client.CreateLabel(ctx, name, DefaultLabelColor); err != nil {
				return err
			}
		}
		t.rememberLabel(name)
	}
	return nil
}

func (t *Tracker) labelKnown(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.labels[name]
}

func (t *Tracker) rememberLabel(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.labels == nil {
		t.labels = make(map[string]bool)
	}
	t.labels[name] = true
}

func (t *Tracker) ResolveBoard(ctx context.Context, owner, name string) (*tracker.Board, error) {
	if owner == "" {
		owner = t.client.Owner
	}
	project, err := t.client.FindProject(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return ProjectToBoard(project), nil
}

func (t *Tracker) CreateBoard(ctx context.Context, owner, name string) (*tracker.Board, error) {
	if owner == "" {
		owner = t.client.Owner
	}
	project, err := t.client.CreateProject(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return ProjectToBoard(project), nil
}

// LinkIssueToBoard looks up the issue's node ID and adds it to the board.
func (t *Tracker) LinkIssueToBoard(ctx context.Context, board *tracker.Board, number int) error {
	if board == nil || board.ID == "" {
		return fmt.Errorf("no project board to link issue #%d to", number)
	}
	issue, err := t.client.FetchIssueByNumber(ctx, number)
	if err != nil {
		return err
	}
	if issue.NodeID == "" {
		return fmt.Errorf("issue #%d has no node ID", number)
	}
	_, err = t.client.AddProjectItem(ctx, board.ID, issue.NodeID)
	return err
}
