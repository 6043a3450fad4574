package order

import (
	"context"

	"pharmaops/pkg/domain"
)

// Store persists orders. Mutations participate in the transaction carried in
// ctx.
type Store interface {
	Save(ctx context.Context, order Order) error
	Get(ctx context.Context, id domain.OrderID) (Order, error)
	// GetForUpdate locks the order row for the duration of the enclosing
	// transaction. Transition decisions read through this.
	GetForUpdate(ctx context.Context, id domain.OrderID) (Order, error)
	// UpdateStatus is a compare-and-set: it fails with sentinel.ErrConflict
	// when the stored status no longer matches from.
	UpdateStatus(ctx context.Context, id domain.OrderID, from, to Status) error
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}

// ChecklistStore persists checklist lines. Insert enforces the one line per
// (order, requirement) invariant and fails with sentinel.ErrConflict on a
// duplicate.
type ChecklistStore interface {
	Insert(ctx context.Context, line ChecklistLine) error
	Get(ctx context.Context, id domain.LineID) (ChecklistLine, error)
	FindByOrderAndRequirement(ctx context.Context, orderID domain.OrderID, requirementID domain.RequirementID) (ChecklistLine, error)
	FindByDocument(ctx context.Context, documentID domain.DocumentID) (ChecklistLine, error)
	Update(ctx context.Context, line ChecklistLine) error
	ListByOrder(ctx context.Context, orderID domain.OrderID) ([]ChecklistLine, error)
}
