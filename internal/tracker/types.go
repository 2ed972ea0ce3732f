package tracker

import (
	"regexp"
)

// IssueState is the normalized open/closed state of a tracker issue.
type IssueState string

const (
	StateOpen   IssueState = "OPEN"
	StateClosed IssueState = "CLOSED"
)

// TrackerIssue is an issue as seen by the engine, converted from the tracker's
// native representation.
type TrackerIssue struct {
	Number int
	State  IssueState
	Title  string
	URL    string

	// Key is the bracketed title prefix, e.g. "Plan-01-02" for
	// "[Plan-01-02] Add CI". Empty when the title has no prefix.
	Key string
}

// IsOpen reports whether the issue is open.
func (i *TrackerIssue) IsOpen() bool { return i.State == StateOpen }

// IsClosed reports whether the issue is closed.
func (i *TrackerIssue) IsClosed() bool { return i.State == StateClosed }

// Milestone is a tracker milestone. Each phase maps to one.
type Milestone struct {
	Number int
	Title  string
}

// Board is a project board that created issues are linked to.
type Board struct {
	ID     string // tracker node ID used for mutations
	Number int
	Title  string
	URL    string
}

// IssueRequest describes an issue to create.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
	// Milestone is the milestone number, 0 for none.
	Milestone int
}

// BoardRequest asks forward sync to link created issues to a board.
type BoardRequest struct {
	Owner string
	Name  string
	// Create the board when it does not exist.
	Create bool
}

// ForwardOptions configures SyncRoadmap.
type ForwardOptions struct {
	RoadmapPath string
	SyncTodos   bool
	// Board is optional; nil means issues are not linked to any board.
	Board *BoardRequest
}

// BidirectionalOptions configures SyncBidirectional.
type BidirectionalOptions struct {
	// PlanningDir contains ROADMAP.md.
	PlanningDir string
}

var keyPattern = regexp.MustCompile(`^\[([^\]]+)\]`)

// LookupKey extracts the bracketed prefix of an issue title.
func LookupKey(title string) string {
	if m := keyPattern.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// IssueSet is the result of a label query: issues in tracker order, indexed by
// lookup key. When two issues share a key the first one wins.
type IssueSet struct {
	issues []*TrackerIssue
	byKey  map[string]*TrackerIssue
}

// NewIssueSet builds an IssueSet, filling in each issue's Key from its title.
func NewIssueSet(issues []TrackerIssue) *IssueSet {
	s := &IssueSet{byKey: make(map[string]*TrackerIssue, len(issues))}
	for i := range issues {
		iss := issues[i]
		iss.Key = LookupKey(iss.Title)
		s.issues = append(s.issues, &iss)
		if iss.Key == "" {
			continue
		}
		if _, dup := s.byKey[iss.Key]; !dup {
			s.byKey[iss.Key] = &iss
		}
	}
	return s
}

// Get returns the issue for key, or nil.
func (s *IssueSet) Get(key string) *TrackerIssue {
	if s == nil {
		return nil
	}
	return s.byKey[key]
}

// All returns every issue in tracker order.
func (s *IssueSet) All() []*TrackerIssue {
	if s == nil {
		return nil
	}
	return s.issues
}

// Len returns the number of issues in the set.
func (s *IssueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.issues)
}
