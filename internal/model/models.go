package model

import "time"

// Operation kinds recorded in the journal.
const (
	KindDelete = "delete"
	KindRename = "rename"
	KindBackup = "backup"
)

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BackupSkipped is the backup outcome of an operation rejected before a
// backup was attempted.
const BackupSkipped = "skipped"

// Operation is one journaled file mutation (or manual backup) together with
// what the safety net did before it.
type Operation struct {
	ID            string    `json:"id"`         // UUID
	RequestID     string    `json:"request_id"` // HTTP request or CLI invocation
	Kind          string    `json:"kind"`       // delete, rename or backup
	Path          string    `json:"path"`       // absolute path of the target file
	Target        string    `json:"target,omitempty"`
	BackupOutcome string    `json:"backup_outcome"` // copied, deduplicated, reindexed, failed or skipped
	BackupHash    string    `json:"backup_hash,omitempty"`
	BackupError   string    `json:"backup_error,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Duration returns how long the operation took.
func (op *Operation) Duration() time.Duration {
	if op.FinishedAt.IsZero() {
		return 0
	}
	return op.FinishedAt.Sub(op.StartedAt)
}
