package user

import (
	"context"

	"pharmaops/pkg/domain"
)

// Store persists users and vendor-product assignments.
type Store interface {
	Save(ctx context.Context, u User) error
	Get(ctx context.Context, id domain.UserID) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// AssignProduct links a vendor to a product they may ship. Duplicate
	// assignments fail with sentinel.ErrConflict.
	AssignProduct(ctx context.Context, vendorID domain.UserID, productID domain.ProductID) error
	ListAssignedProducts(ctx context.Context, vendorID domain.UserID) ([]domain.ProductID, error)
}
