package anchor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
)

// OutboxStore persists anchor intents. Enqueue participates in the
// transaction carried in ctx.
type OutboxStore interface {
	Enqueue(ctx context.Context, intent Intent) error
	// Due returns pending intents whose next attempt is at or before now.
	Due(ctx context.Context, now time.Time, limit int) ([]Intent, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	// Reschedule bumps the attempt counter and sets the next attempt time.
	Reschedule(ctx context.Context, id uuid.UUID, attempts int, next time.Time) error
}

// Store persists confirmed anchors.
type Store interface {
	Save(ctx context.Context, a Anchor) error
	ListByDocuments(ctx context.Context, documentIDs []domain.DocumentID) ([]Anchor, error)
}
