package files

import (
	"context"

	"pin-go/internal/model"
)

// Journal records finished operations. Implementations must be safe for
// concurrent use.
type Journal interface {
	Record(op *model.Operation) error
	List(limit int) ([]*model.Operation, error)
}

// NopJournal keeps nothing.
type NopJournal struct{}

func (NopJournal) Record(*model.Operation) error        { return nil }
func (NopJournal) List(int) ([]*model.Operation, error) { return nil, nil }

type requestIDKey struct{}

// WithRequestID returns a context carrying the id of the request that
// triggered an operation. It ends up in the journal.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
