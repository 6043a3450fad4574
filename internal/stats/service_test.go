package stats

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaops/internal/order"
	"pharmaops/internal/shipment"
	"pharmaops/pkg/domain"
)

func TestDashboard_Compute(t *testing.T) {
	ctx := context.Background()
	orders := order.NewInMemoryStore()
	shipments := shipment.NewInMemoryStore()

	seedOrder := func(status order.Status) {
		require.NoError(t, orders.Save(ctx, order.Order{
			ID:        domain.NewOrderID(),
			CompanyID: domain.NewCompanyID(),
			Status:    status,
		}))
	}
	seedShipment := func(status shipment.Status) {
		require.NoError(t, shipments.Save(ctx, shipment.Shipment{
			ID:      domain.NewShipmentID(),
			OrderID: domain.NewOrderID(),
			Status:  status,
		}))
	}

	seedOrder(order.StatusRequested)
	seedOrder(order.StatusRequested)
	seedOrder(order.StatusDocsPending)
	seedOrder(order.StatusReadyToShip)
	seedOrder(order.StatusShipped)
	seedShipment(shipment.StatusInTransit)
	seedShipment(shipment.StatusDelivered)
	seedShipment(shipment.StatusDelivered)

	// nil cache: every call computes directly.
	svc := NewService(orders, shipments, nil, time.Minute, slog.New(slog.DiscardHandler))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, Dashboard{
		OrdersRequested:    2,
		OrdersAccepted:     0,
		DocsPending:        1,
		ReadyToShip:        1,
		Shipped:            1,
		ShipmentsInTransit: 1,
		ShipmentsDelivered: 2,
	}, d)
}
