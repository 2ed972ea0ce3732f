package tracker

import (
	"errors"
	"fmt"
)

// ErrLocked is returned when another sync run holds the planning directory lock.
var ErrLocked = errors.New("another sync is in progress for this planning directory")

// LockFileName is created in the planning directory for the duration of a
// bidirectional run.
const LockFileName = ".gsdsync.lock"

// Engine reconciles a roadmap with an issue tracker. It holds no state between
// runs; every Sync call returns a fresh SyncResult.
type Engine struct {
	Tracker IssueTracker

	// DryRun reports what would change without calling mutating tracker
	// methods or writing the roadmap.
	DryRun bool

	// Callbacks for UI feedback (optional).
	OnMessage func(msg string)
	OnWarning func(msg string)
	// OnPreview receives the title and body of each issue a dry run would create.
	OnPreview func(title, body string)
}

// NewEngine creates a sync engine for the given tracker.
func NewEngine(t IssueTracker) *Engine {
	return &Engine{Tracker: t}
}

func (e *Engine) msg(format string, args ...interface{}) {
	if e.OnMessage != nil {
		e.OnMessage(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) warn(format string, args ...interface{}) {
	if e.OnWarning != nil {
		e.OnWarning(fmt.Sprintf(format, args...))
	}
}

// fail reports a per-item tracker failure: printed now, recorded in the result.
func (e *Engine) fail(result *SyncResult, format string, args ...interface{}) {
	m := fmt.Sprintf(format, args...)
	e.warn("%s", m)
	result.addError(m)
}

func (e *Engine) preview(title, body string) {
	if e.OnPreview != nil {
		e.OnPreview(title, body)
	}
}

func (e *Engine) trackerName() string {
	if e.Tracker == nil {
		return "tracker"
	}
	return e.Tracker.DisplayName()
}
