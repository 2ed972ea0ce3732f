package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/gsdsync/internal/tracker"
)

func TestWriteSummary_Forward(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, modeForward, &tracker.SyncResult{
		MilestonesCreated:  1,
		MilestonesExisting: 2,
		IssuesCreated:      3,
		IssuesExisting:     4,
		TodosSynced:        5,
		BoardLinked:        3,
		Errors:             []string{"Plan 07-01: no phase 07"},
	}, true)
	out := buf.String()

	for _, want := range []string{
		"SUMMARY",
		"Milestones created: 1",
		"Milestones existing: 2",
		"Issues created: 3",
		"Issues existing: 4",
		"Todos synced: 5",
		"Todos existing: 0",
		"Added to project: 3",
		"Errors: 1",
		"- Plan 07-01: no phase 07",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Issues closed")
	assert.NotContains(t, out, "DRY RUN")
}

func TestWriteSummary_TodosHiddenUnlessRequested(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, modeForward, &tracker.SyncResult{}, false)
	assert.NotContains(t, buf.String(), "Todos")
	assert.NotContains(t, buf.String(), "Added to project")
}

func TestWriteSummary_BidirectionalDryRun(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, modeBidirectional, &tracker.SyncResult{
		IssuesClosed:        2,
		PlansMarkedComplete: 1,
		DryRun:              true,
	}, false)
	out := buf.String()

	assert.Contains(t, out, "Issues closed: 2")
	assert.Contains(t, out, "Plans marked [x]: 1")
	assert.NotContains(t, out, "Milestones")
	assert.NotContains(t, out, "Errors")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "[DRY RUN] No changes applied."))
}

func TestWriteSummary_NilResult(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, modeForward, nil, false)
	assert.Empty(t, buf.String())
}
