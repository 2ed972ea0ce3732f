package tracker

import (
	"context"
	"fmt"
	"sync"
)

// mockTracker implements IssueTracker in memory for engine tests.
type mockTracker struct {
	mu sync.Mutex

	issues     []TrackerIssue
	milestones []Milestone
	boards     map[string]*Board
	labels     map[string]bool
	nextIssue  int

	created []IssueRequest
	closed  []int
	linked  []int
	calls   []string

	queryErr     error
	createErr    error
	closeErr     error
	milestoneErr error
	linkErr      error
}

func newMockTracker() *mockTracker {
	return &mockTracker{
		boards:    make(map[string]*Board),
		labels:    make(map[string]bool),
		nextIssue: 100,
	}
}

func (m *mockTracker) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockTracker) Name() string                            { return "mock" }
func (m *mockTracker) DisplayName() string                     { return "Mock" }
func (m *mockTracker) Init(_ context.Context, _ *Config) error { return nil }
func (m *mockTracker) Validate() error                         { return nil }
func (m *mockTracker) Close() error                            { return nil }

func (m *mockTracker) QueryIssues(_ context.Context, label string) (*IssueSet, error) {
	m.record("QueryIssues " + label)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []TrackerIssue
	for _, iss := range m.issues {
		if labelOf(iss.Title) == label {
			out = append(out, iss)
		}
	}
	return NewIssueSet(out), nil
}

// labelOf classifies mock issues by title prefix, standing in for tracker labels.
func labelOf(title string) string {
	if LookupKey(title) == "Todo" {
		return LabelTodo
	}
	return LabelPlan
}

func (m *mockTracker) CreateIssue(_ context.Context, req IssueRequest) (int, error) {
	m.record("CreateIssue " + req.Title)
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.nextIssue++
	m.created = append(m.created, req)
	m.issues = append(m.issues, TrackerIssue{Number: m.nextIssue, State: StateOpen, Title: req.Title})
	return m.nextIssue, nil
}

func (m *mockTracker) CloseIssue(_ context.Context, number int) error {
	m.record(fmt.Sprintf("CloseIssue %d", number))
	if m.closeErr != nil {
		return m.closeErr
	}
	m.closed = append(m.closed, number)
	for i := range m.issues {
		if m.issues[i].Number == number {
			m.issues[i].State = StateClosed
		}
	}
	return nil
}

func (m *mockTracker) ListMilestones(_ context.Context) ([]Milestone, error) {
	m.record("ListMilestones")
	return append([]Milestone(nil), m.milestones...), nil
}

func (m *mockTracker) EnsureMilestone(_ context.Context, title, _ string) (Milestone, bool, error) {
	m.record("EnsureMilestone " + title)
	if m.milestoneErr != nil {
		return Milestone{}, false, m.milestoneErr
	}
	for _, ms := range m.milestones {
		if ms.Title == title {
			return ms, false, nil
		}
	}
	ms := Milestone{Number: len(m.milestones) + 1, Title: title}
	m.milestones = append(m.milestones, ms)
	return ms, true, nil
}

func (m *mockTracker) EnsureLabels(_ context.Context, labels []string) error {
	m.record("EnsureLabels")
	for _, l := range labels {
		m.labels[l] = true
	}
	return nil
}

func (m *mockTracker) ResolveBoard(_ context.Context, _, name string) (*Board, error) {
	m.record("ResolveBoard " + name)
	return m.boards[name], nil
}

func (m *mockTracker) CreateBoard(_ context.Context, _, name string) (*Board, error) {
	m.record("CreateBoard " + name)
	b := &Board{ID: "PVT_" + name, Number: len(m.boards) + 1, Title: name}
	m.boards[name] = b
	return b, nil
}

func (m *mockTracker) LinkIssueToBoard(_ context.Context, _ *Board, number int) error {
	m.record(fmt.Sprintf("LinkIssueToBoard %d", number))
	if m.linkErr != nil {
		return m.linkErr
	}
	m.linked = append(m.linked, number)
	return nil
}

// mutatingCalls returns the recorded calls that change tracker state.
func (m *mockTracker) mutatingCalls() []string {
	var out []string
	for _, c := range m.calls {
		for _, prefix := range []string{"CreateIssue", "CloseIssue", "EnsureMilestone", "EnsureLabels", "CreateBoard", "LinkIssueToBoard"} {
			if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
				out = append(out, c)
			}
		}
	}
	return out
}
