//go:build integration

package stats_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaops/internal/order"
	platformredis "pharmaops/internal/platform/redis"
	"pharmaops/internal/shipment"
	"pharmaops/internal/stats"
	"pharmaops/pkg/domain"
	"pharmaops/pkg/testutil/containers"
)

func TestDashboard_RedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container := containers.NewRedisContainer(t)

	cache, err := platformredis.New(ctx, container.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	orders := order.NewInMemoryStore()
	shipments := shipment.NewInMemoryStore()
	seedOrder := func(status order.Status) {
		require.NoError(t, orders.Save(ctx, order.Order{
			ID:        domain.NewOrderID(),
			CompanyID: domain.NewCompanyID(),
			Status:    status,
		}))
	}
	seedOrder(order.StatusRequested)

	svc := stats.NewService(orders, shipments, cache, time.Minute, slog.New(slog.DiscardHandler))

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.OrdersRequested)

	// A second read within the TTL is served from cache and does not see the
	// new order.
	seedOrder(order.StatusRequested)
	cached, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cached.OrdersRequested)

	// Once the cache entry is gone the counts are recomputed.
	require.NoError(t, container.FlushAll(ctx))
	fresh, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.OrdersRequested)
}
