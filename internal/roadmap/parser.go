package roadmap

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DetailsMarker switches the parser from the checklist dialect to the detail dialect.
const DetailsMarker = "## Phase Details"

var (
	// ### Phase 1: Name
	phaseHeaderPattern = regexp.MustCompile(`^###\s*Phase\s+(\d+(?:\.\d+)?)\s*:\s*(.+)$`)

	// - [ ] **Phase 1: Name** - Description
	phaseChecklistPattern = regexp.MustCompile(`^\s*-\s*\[([ xX])\]\s*\*\*Phase\s+(\d+(?:\.\d+)?)\s*:\s*(.+?)\*\*\s*(?:-\s*(.+))?$`)

	// - [ ] 01-02: Description
	planPattern = regexp.MustCompile(`^\s*-\s*\[([ xX])\]\s*(\d+(?:\.\d+)?)-(\d+)\s*:\s*(.+)$`)

	requirementPattern = regexp.MustCompile(`REQ-\d+`)
)

type phaseField int

const (
	fieldGoal phaseField = iota
	fieldDependsOn
	fieldRequirements
	fieldResearch
)

var fieldPatterns = []struct {
	field   phaseField
	pattern *regexp.Regexp
}{
	{fieldGoal, regexp.MustCompile(`^\*\*Goal\*\*:\s*(.+)$`)},
	{fieldDependsOn, regexp.MustCompile(`^\*\*Depends on\*\*:\s*(.+)$`)},
	{fieldRequirements, regexp.MustCompile(`^\*\*Requirements\*\*:\s*(.+)$`)},
	{fieldResearch, regexp.MustCompile(`^\*\*Research\*\*:\s*(.+)$`)},
}

// event is what a single line means to the parser. Exactly one of the
// concrete event types below is produced per recognized line.
type event interface{ isEvent() }

type detailMarkerSeen struct{}

type phaseHeaderSeen struct {
	number string
	name   string
}

type phaseChecklistSeen struct {
	done        bool
	number      string
	name        string
	description string
}

type phaseFieldSeen struct {
	field phaseField
	value string
}

type planLineSeen struct {
	done        bool
	phaseNum    string
	planNum     string
	description string
}

func (detailMarkerSeen) isEvent()   {}
func (phaseHeaderSeen) isEvent()    {}
func (phaseChecklistSeen) isEvent() {}
func (phaseFieldSeen) isEvent()     {}
func (planLineSeen) isEvent()       {}

// parseState is the accumulator threaded through the fold.
type parseState struct {
	roadmap  *Roadmap
	current  int // index into roadmap.Phases, -1 when no phase is open
	inDetail bool
}

// classify maps one line to an event, or nil when the line carries no structure.
// Matchers are tried in precedence order; the first match wins.
func classify(line string, st *parseState) event {
	if strings.Contains(line, DetailsMarker) {
		return detailMarkerSeen{}
	}

	if st.inDetail {
		if m := phaseHeaderPattern.FindStringSubmatch(line); m != nil {
			return phaseHeaderSeen{number: m[1], name: strings.TrimSpace(m[2])}
		}
	} else if m := phaseChecklistPattern.FindStringSubmatch(line); m != nil {
		return phaseChecklistSeen{
			done:        isChecked(m[1]),
			number:      m[2],
			name:        strings.TrimSpace(m[3]),
			description: strings.TrimSpace(m[4]),
		}
	}

	if st.current >= 0 && st.inDetail {
		for _, fp := range fieldPatterns {
			if m := fp.pattern.FindStringSubmatch(line); m != nil {
				return phaseFieldSeen{field: fp.field, value: m[1]}
			}
		}
	}

	if m := planPattern.FindStringSubmatch(line); m != nil {
		return planLineSeen{
			done:        isChecked(m[1]),
			phaseNum:    m[2],
			planNum:     m[3],
			description: strings.TrimSpace(m[4]),
		}
	}

	return nil
}

func isChecked(mark string) bool {
	return strings.EqualFold(mark, "x")
}

func statusFor(done bool) Status {
	if done {
		return StatusCompleted
	}
	return StatusPending
}

// apply folds one event into the accumulator.
func (st *parseState) apply(ev event, lineNo int, line string) {
	r := st.roadmap

	switch ev := ev.(type) {
	case detailMarkerSeen:
		st.inDetail = true

	case phaseHeaderSeen:
		if i := r.phaseIndex(ev.number); i >= 0 {
			// The detail section is the richer definition; the checklist keeps
			// ownership of status.
			p := r.Phases[i]
			p.Number = ev.number
			p.Name = ev.name
			if p.DetailLine == 0 {
				p.DetailLine = lineNo
			}
			st.current = i
			return
		}
		r.Phases = append(r.Phases, &Phase{
			Number:     ev.number,
			Name:       ev.name,
			Status:     StatusPending,
			Line:       lineNo,
			LineText:   line,
			DetailLine: lineNo,
		})
		st.current = len(r.Phases) - 1

	case phaseChecklistSeen:
		if i := r.phaseIndex(ev.number); i >= 0 {
			p := r.Phases[i]
			p.Status = statusFor(ev.done)
			p.Line = lineNo
			p.LineText = line
			return
		}
		r.Phases = append(r.Phases, &Phase{
			Number:      ev.number,
			Name:        ev.name,
			Description: ev.description,
			Status:      statusFor(ev.done),
			Line:        lineNo,
			LineText:    line,
		})
		st.current = len(r.Phases) - 1

	case phaseFieldSeen:
		p := r.Phases[st.current]
		switch ev.field {
		case fieldGoal:
			p.Goal = ev.value
		case fieldDependsOn:
			p.DependsOn = ev.value
		case fieldRequirements:
			p.Requirements = extractRequirements(ev.value)
		case fieldResearch:
			p.Research = ev.value
		}

	case planLineSeen:
		plan := &Plan{
			ID:          PlanID(ev.phaseNum, ev.planNum),
			PhaseNum:    ev.phaseNum,
			PlanNum:     ev.planNum,
			Description: ev.description,
			Status:      statusFor(ev.done),
			Line:        lineNo,
			LineText:    line,
		}
		r.Plans = append(r.Plans, plan)

		want := NormalizePhase(ev.phaseNum)
		if st.current >= 0 && NormalizePhase(r.Phases[st.current].Number) == want {
			r.Phases[st.current].Plans = append(r.Phases[st.current].Plans, plan)
			return
		}
		if i := r.phaseIndex(ev.phaseNum); i >= 0 {
			r.Phases[i].Plans = append(r.Phases[i].Plans, plan)
		}
	}
}

// extractRequirements returns every REQ-<digits> in s, deduplicated, in order of
// first appearance.
func extractRequirements(s string) []string {
	var reqs []string
	seen := make(map[string]bool)
	for _, req := range requirementPattern.FindAllString(s, -1) {
		if seen[req] {
			continue
		}
		seen[req] = true
		reqs = append(reqs, req)
	}
	return reqs
}

// Parse converts roadmap text into phases and plans. It never fails: lines that
// do not match a known shape are skipped.
func Parse(content string) *Roadmap {
	st := &parseState{roadmap: &Roadmap{}, current: -1}

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if ev := classify(line, st); ev != nil {
			st.apply(ev, i+1, line)
		}
	}

	return st.roadmap
}

// ParseFile reads and parses the roadmap at path.
func ParseFile(path string) (*Roadmap, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read roadmap: %w", err)
	}
	return Parse(string(data)), nil
}
