package audit

import "context"

// Store persists audit entries. Append joins the caller's transaction when
// one is carried in ctx, so a state change and its audit entry commit
// together or not at all.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}
