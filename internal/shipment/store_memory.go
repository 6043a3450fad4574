package shipment

import (
	"context"
	"sort"
	"sync"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

// InMemoryStore keeps shipments in memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	shipments map[domain.ShipmentID]Shipment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{shipments: make(map[domain.ShipmentID]Shipment)}
}

func (s *InMemoryStore) Save(_ context.Context, sh Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[sh.ID] = sh
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.ShipmentID) (Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[id]
	if !ok {
		return Shipment{}, sentinel.ErrNotFound
	}
	return sh, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.ShipmentID, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sh.Status != from {
		return sentinel.ErrConflict
	}
	sh.Status = to
	s.shipments[id] = sh
	return nil
}

func (s *InMemoryStore) ListByOrder(_ context.Context, orderID domain.OrderID) ([]Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Shipment
	for _, sh := range s.shipments {
		if sh.OrderID == orderID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sh := range s.shipments {
		if sh.Status == status {
			count++
		}
	}
	return count, nil
}
