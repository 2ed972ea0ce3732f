package tracker

// SyncResult accumulates the outcome of one sync run. In dry-run mode the
// counts describe what would have happened.
type SyncResult struct {
	MilestonesCreated   int `json:"milestones_created"`
	MilestonesExisting  int `json:"milestones_existing"`
	IssuesCreated       int `json:"issues_created"`
	IssuesExisting      int `json:"issues_existing"`
	IssuesClosed        int `json:"issues_closed"`
	PlansMarkedComplete int `json:"plans_marked_complete"`
	TodosSynced         int `json:"todos_synced"`
	TodosExisting       int `json:"todos_existing"`
	BoardLinked         int `json:"board_linked"`

	// Errors are non-fatal problems in the order they occurred.
	Errors []string `json:"errors,omitempty"`

	DryRun bool `json:"dry_run,omitempty"`
}

// HasErrors reports whether any non-fatal error was recorded.
func (r *SyncResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *SyncResult) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}
