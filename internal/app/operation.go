package app

import (
	"context"
	"time"

	"pin-go/internal/files"
)

// Invocation tracks one CLI command run. Its ID tags every log line and is
// the request id of any operation the command journals.
type Invocation struct {
	ID        string
	Command   string
	StartedAt time.Time
	Status    string // "success" or "error"
}

// NewInvocation creates an invocation for command started at the given time.
func NewInvocation(command string, started time.Time) *Invocation {
	return &Invocation{
		ID:        "cli-" + started.UTC().Format("20060102T150405Z"),
		Command:   command,
		StartedAt: started,
		Status:    "success",
	}
}

// Context returns ctx tagged with the invocation id.
func (inv *Invocation) Context(ctx context.Context) context.Context {
	return files.WithRequestID(ctx, inv.ID)
}

// Fail marks the invocation as failed.
func (inv *Invocation) Fail() {
	inv.Status = "error"
}
