// Package roadmap parses GSD ROADMAP.md documents into phases and plans.
//
// A roadmap mixes two dialects. Everything before the "## Phase Details" marker is a
// lightweight checklist:
//
//	- [ ] **Phase 1: Setup** - Bootstrap the repo
//	- [x] 01-01: Initialize repo
//
// Everything after it is the detailed dialect:
//
//	### Phase 1: Setup
//	**Goal**: Bootstrap
//	**Requirements**: REQ-01, REQ-02
//	- [ ] 01-02: Add CI
//
// The parser is tolerant: lines it does not recognize are ignored, and it never
// fails on content.
package roadmap

import "strings"

// Status is the completion state of a phase or plan.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Phase is a numbered group of plans.
type Phase struct {
	Number       string   `json:"number"` // e.g. "1" or "2.1"
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"` // checklist "- description" tail
	Goal         string   `json:"goal,omitempty"`
	DependsOn    string   `json:"depends_on,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Research     string   `json:"research,omitempty"`
	Status       Status   `json:"status"`
	Plans        []*Plan  `json:"plans,omitempty"`

	Line       int    `json:"line"`                  // first line that defined the phase
	LineText   string `json:"-"`                     // raw text of that line
	DetailLine int    `json:"detail_line,omitempty"` // "### Phase" header line, 0 if absent
}

// Plan is a single unit of work inside a phase.
type Plan struct {
	ID          string `json:"id"`        // e.g. "01-02" or "21-03"
	PhaseNum    string `json:"phase_num"` // as written, e.g. "01" or "2.1"
	PlanNum     string `json:"plan_num"`  // as written, e.g. "02"
	Description string `json:"description"`
	Status      Status `json:"status"`
	Line        int    `json:"line"`
	LineText    string `json:"-"` // raw source line, used for checkbox rewrites
}

// IsCompleted reports whether the plan is checked off.
func (p *Plan) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// Roadmap is the parsed form of a roadmap document.
type Roadmap struct {
	// Phases in document order.
	Phases []*Phase `json:"phases"`
	// Plans is the flat list of every plan in document order, including
	// plans that could not be matched to a phase.
	Plans []*Plan `json:"plans"`
}

// FindPhase returns the phase whose normalized number matches number.
func (r *Roadmap) FindPhase(number string) *Phase {
	if i := r.phaseIndex(number); i >= 0 {
		return r.Phases[i]
	}
	return nil
}

func (r *Roadmap) phaseIndex(number string) int {
	want := NormalizePhase(number)
	for i, p := range r.Phases {
		if NormalizePhase(p.Number) == want {
			return i
		}
	}
	return -1
}

// PhaseFor returns the phase owning plan, or nil if the plan is unassigned.
func (r *Roadmap) PhaseFor(plan *Plan) *Phase {
	return r.FindPhase(plan.PhaseNum)
}

// Unassigned returns plans whose phase number matches no known phase.
func (r *Roadmap) Unassigned() []*Plan {
	var out []*Plan
	for _, plan := range r.Plans {
		if r.PhaseFor(plan) == nil {
			out = append(out, plan)
		}
	}
	return out
}

// NormalizePhase strips leading zeros from the integer part of a phase number:
// "01" -> "1", "02.1" -> "2.1". The fractional part is left alone.
func NormalizePhase(n string) string {
	n = strings.TrimSpace(n)
	whole, frac, hasFrac := strings.Cut(n, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if hasFrac {
		return whole + "." + frac
	}
	return whole
}

// PlanID builds the composite plan identifier: "2.1" + "03" -> "21-03".
func PlanID(phaseNum, planNum string) string {
	return strings.ReplaceAll(phaseNum, ".", "") + "-" + planNum
}
