package shipment

import (
	"context"

	"pharmaops/pkg/domain"
)

// Store persists shipments. Mutations participate in the transaction carried
// in ctx.
type Store interface {
	Save(ctx context.Context, sh Shipment) error
	Get(ctx context.Context, id domain.ShipmentID) (Shipment, error)
	// UpdateStatus is a compare-and-set: it fails with sentinel.ErrConflict
	// when the stored status no longer matches from.
	UpdateStatus(ctx context.Context, id domain.ShipmentID, from, to Status) error
	ListByOrder(ctx context.Context, orderID domain.OrderID) ([]Shipment, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
