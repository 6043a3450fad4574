// Package stats serves the operations dashboard: live counts of where orders
// and shipments sit in the pipeline. Counts are cached briefly in Redis; a
// cache outage degrades to direct reads, never to an error.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pharmaops/internal/order"
	"pharmaops/internal/platform/redis"
	"pharmaops/internal/shipment"
	dErrors "pharmaops/pkg/domain-errors"
)

const cacheKey = "pharmaops:stats:dashboard"

// Dashboard is the pipeline snapshot shown on the operations overview.
type Dashboard struct {
	OrdersRequested    int `json:"ordersRequested"`
	OrdersAccepted     int `json:"ordersAccepted"`
	DocsPending        int `json:"docsPending"`
	ReadyToShip        int `json:"readyToShip"`
	Shipped            int `json:"shipped"`
	ShipmentsInTransit int `json:"shipmentsInTransit"`
	ShipmentsDelivered int `json:"shipmentsDelivered"`
}

type Service struct {
	orders    order.Store
	shipments shipment.Store
	cache     *redis.Client
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(orders order.Store, shipments shipment.Store, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{orders: orders, shipments: shipments, cache: cache, ttl: ttl, logger: logger}
}

// Dashboard returns the current pipeline counts, served from cache when
// fresh.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	d, err := s.compute(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	s.toCache(ctx, d)
	return d, nil
}

func (s *Service) compute(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	counts := []struct {
		dst   *int
		count func(context.Context) (int, error)
	}{
		{&d.OrdersRequested, func(ctx context.Context) (int, error) { return s.orders.CountByStatus(ctx, order.StatusRequested) }},
		{&d.OrdersAccepted, func(ctx context.Context) (int, error) { return s.orders.CountByStatus(ctx, order.StatusAccepted) }},
		{&d.DocsPending, func(ctx context.Context) (int, error) { return s.orders.CountByStatus(ctx, order.StatusDocsPending) }},
		{&d.ReadyToShip, func(ctx context.Context) (int, error) { return s.orders.CountByStatus(ctx, order.StatusReadyToShip) }},
		{&d.Shipped, func(ctx context.Context) (int, error) { return s.orders.CountByStatus(ctx, order.StatusShipped) }},
		{&d.ShipmentsInTransit, func(ctx context.Context) (int, error) { return s.shipments.CountByStatus(ctx, shipment.StatusInTransit) }},
		{&d.ShipmentsDelivered, func(ctx context.Context) (int, error) { return s.shipments.CountByStatus(ctx, shipment.StatusDelivered) }},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return Dashboard{}, dErrors.Wrap(err, dErrors.CodeInternal, "count pipeline stage")
		}
		*c.dst = n
	}
	return d, nil
}

func (s *Service) fromCache(ctx context.Context) (Dashboard, bool) {
	if s.cache == nil {
		return Dashboard{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("stats cache read failed", "error", err)
		}
		return Dashboard{}, false
	}
	var d Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		s.logger.Warn("stats cache entry corrupt", "error", err)
		return Dashboard{}, false
	}
	return d, true
}

func (s *Service) toCache(ctx context.Context, d Dashboard) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", "error", err)
	}
}
