package document

import (
	"context"

	"pharmaops/pkg/domain"
)

// Store persists documents. Mutations participate in the transaction carried
// in ctx.
type Store interface {
	Save(ctx context.Context, doc Document) error
	Get(ctx context.Context, id domain.DocumentID) (Document, error)
	// GetForUpdate locks the document row for the duration of the enclosing
	// transaction.
	GetForUpdate(ctx context.Context, id domain.DocumentID) (Document, error)
	// UpdateStatus is a compare-and-set: it fails with sentinel.ErrConflict
	// when the stored status no longer matches from.
	UpdateStatus(ctx context.Context, id domain.DocumentID, from, to Status) error
	// SetReview stamps the reviewer identity and signature.
	SetReview(ctx context.Context, id domain.DocumentID, approvedBy domain.UserID, signature string) error
	ListByStatus(ctx context.Context, status Status) ([]Document, error)
	ListByIDs(ctx context.Context, ids []domain.DocumentID) ([]Document, error)
}
