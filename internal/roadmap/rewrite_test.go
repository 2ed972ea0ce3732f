package roadmap

import (
	"strings"
	"testing"
)

func TestCompletionEdit(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"- [ ] 01-02: Do thing", "- [x] 01-02: Do thing"},
		{"  - [ ] 2.1-01: Nested [ ] brackets", "  - [x] 2.1-01: Nested [ ] brackets"},
		{"- [x] 01-01: Already done", "- [x] 01-01: Already done"},
	}
	for _, tt := range tests {
		r := Parse(tt.line)
		if len(r.Plans) != 1 {
			t.Fatalf("Parse(%q) found %d plans", tt.line, len(r.Plans))
		}
		e := CompletionEdit(r.Plans[0])
		if e.Old != tt.line || e.New != tt.want {
			t.Errorf("CompletionEdit(%q) = %q -> %q, want %q", tt.line, e.Old, e.New, tt.want)
		}
		if e.PlanID != r.Plans[0].ID {
			t.Errorf("PlanID = %q, want %q", e.PlanID, r.Plans[0].ID)
		}
	}
}

func TestApplyEdits_RoundTrip(t *testing.T) {
	before := "# Roadmap\n\n- [ ] **Phase 1: Setup**\n- [x] 01-01: Init\n- [ ] 01-02: Do thing\ntrailing text\n"
	r := Parse(before)

	var edits []Edit
	for _, p := range r.Plans {
		if !p.IsCompleted() {
			edits = append(edits, CompletionEdit(p))
		}
	}

	after, applied, skipped := ApplyEdits(before, edits)
	if len(applied) != 1 || len(skipped) != 0 {
		t.Fatalf("applied=%d skipped=%d", len(applied), len(skipped))
	}
	want := strings.Replace(before, "- [ ] 01-02: Do thing", "- [x] 01-02: Do thing", 1)
	if after != want {
		t.Errorf("ApplyEdits result:\n%s\nwant:\n%s", after, want)
	}

	reparsed := Parse(after)
	for _, p := range reparsed.Plans {
		if !p.IsCompleted() {
			t.Errorf("plan %s still open after rewrite", p.ID)
		}
	}
}

func TestApplyEdits_StaleEditSkipped(t *testing.T) {
	snapshot := "- [ ] 01-01: One\n- [ ] 01-02: Two\n"
	r := Parse(snapshot)
	edits := []Edit{CompletionEdit(r.Plans[0]), CompletionEdit(r.Plans[1])}

	// Someone changed plan 01-02 between read and write.
	current := "- [ ] 01-01: One\n- [ ] 01-02: Two (renamed)\n"
	after, applied, skipped := ApplyEdits(current, edits)

	if len(applied) != 1 || applied[0].PlanID != "01-01" {
		t.Errorf("applied = %+v", applied)
	}
	if len(skipped) != 1 || skipped[0].PlanID != "01-02" {
		t.Errorf("skipped = %+v", skipped)
	}
	if after != "- [x] 01-01: One\n- [ ] 01-02: Two (renamed)\n" {
		t.Errorf("after = %q", after)
	}
}

func TestApplyEdits_WholeLineOnly(t *testing.T) {
	content := "prefix - [ ] 01-01: One\n- [ ] 01-01: One\n- [ ] 01-01: One more\n"
	edits := []Edit{{PlanID: "01-01", Old: "- [ ] 01-01: One", New: "- [x] 01-01: One"}}

	after, applied, _ := ApplyEdits(content, edits)
	if len(applied) != 1 {
		t.Fatalf("applied = %d", len(applied))
	}
	want := "prefix - [ ] 01-01: One\n- [x] 01-01: One\n- [ ] 01-01: One more\n"
	if after != want {
		t.Errorf("after = %q, want %q", after, want)
	}
}

func TestApplyEdits_FirstOccurrenceOnly(t *testing.T) {
	content := "- [ ] 01-01: Dup\n- [ ] 01-01: Dup\n"
	edits := []Edit{{PlanID: "01-01", Old: "- [ ] 01-01: Dup", New: "- [x] 01-01: Dup"}}
	after, _, _ := ApplyEdits(content, edits)
	if after != "- [x] 01-01: Dup\n- [ ] 01-01: Dup\n" {
		t.Errorf("after = %q", after)
	}
}

func TestApplyEdits_PreservesCRLF(t *testing.T) {
	content := "- [ ] **Phase 1: A**\r\n- [ ] 01-01: One\r\n- [ ] 01-02: Two"
	r := Parse(content)
	var edits []Edit
	for _, p := range r.Plans {
		edits = append(edits, CompletionEdit(p))
	}
	after, applied, _ := ApplyEdits(content, edits)
	if len(applied) != 2 {
		t.Fatalf("applied = %d", len(applied))
	}
	want := "- [ ] **Phase 1: A**\r\n- [x] 01-01: One\r\n- [x] 01-02: Two"
	if after != want {
		t.Errorf("after = %q, want %q", after, want)
	}
}

func TestApplyEdits_NoopEditSkipped(t *testing.T) {
	content := "- [x] 01-01: Done\n"
	r := Parse(content)
	_, applied, skipped := ApplyEdits(content, []Edit{CompletionEdit(r.Plans[0])})
	if len(applied) != 0 || len(skipped) != 1 {
		t.Errorf("applied=%d skipped=%d, want 0/1", len(applied), len(skipped))
	}
}
