package order

import (
	"context"
	"sort"
	"sync"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

// InMemoryStore keeps orders in memory. Serialization of transitions is the
// tx.Runner's job; the store only guards its own maps.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]Order
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orders: make(map[domain.OrderID]Order)}
}

func (s *InMemoryStore) Save(_ context.Context, ord Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[ord.ID] = ord
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.OrderID) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ord, ok := s.orders[id]
	if !ok {
		return Order{}, sentinel.ErrNotFound
	}
	return ord, nil
}

func (s *InMemoryStore) GetForUpdate(ctx context.Context, id domain.OrderID) (Order, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.OrderID, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if ord.Status != from {
		return sentinel.ErrConflict
	}
	ord.Status = to
	s.orders[id] = ord
	return nil
}

func (s *InMemoryStore) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, ord := range s.orders {
		if ord.CompanyID == companyID {
			out = append(out, ord)
		}
	}
	sortOrders(out)
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, ord := range s.orders {
		if ord.Status == status {
			out = append(out, ord)
		}
	}
	sortOrders(out)
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, ord := range s.orders {
		if ord.Status == status {
			count++
		}
	}
	return count, nil
}

func sortOrders(orders []Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
}

// InMemoryChecklistStore keeps checklist lines in memory, enforcing the one
// line per (order, requirement) invariant like the database unique constraint
// does.
type InMemoryChecklistStore struct {
	mu    sync.RWMutex
	lines map[domain.LineID]ChecklistLine
	byKey map[checklistKey]domain.LineID
}

type checklistKey struct {
	orderID       domain.OrderID
	requirementID domain.RequirementID
}

func NewInMemoryChecklistStore() *InMemoryChecklistStore {
	return &InMemoryChecklistStore{
		lines: make(map[domain.LineID]ChecklistLine),
		byKey: make(map[checklistKey]domain.LineID),
	}
}

func (s *InMemoryChecklistStore) Insert(_ context.Context, line ChecklistLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := checklistKey{orderID: line.OrderID, requirementID: line.RequirementID}
	if _, exists := s.byKey[key]; exists {
		return sentinel.ErrConflict
	}
	s.lines[line.ID] = line
	s.byKey[key] = line.ID
	return nil
}

func (s *InMemoryChecklistStore) Get(_ context.Context, id domain.LineID) (ChecklistLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	line, ok := s.lines[id]
	if !ok {
		return ChecklistLine{}, sentinel.ErrNotFound
	}
	return line, nil
}

func (s *InMemoryChecklistStore) FindByOrderAndRequirement(_ context.Context, orderID domain.OrderID, requirementID domain.RequirementID) (ChecklistLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[checklistKey{orderID: orderID, requirementID: requirementID}]
	if !ok {
		return ChecklistLine{}, sentinel.ErrNotFound
	}
	return s.lines[id], nil
}

func (s *InMemoryChecklistStore) FindByDocument(_ context.Context, documentID domain.DocumentID) (ChecklistLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, line := range s.lines {
		if line.DocumentID != nil && *line.DocumentID == documentID {
			return line, nil
		}
	}
	return ChecklistLine{}, sentinel.ErrNotFound
}

func (s *InMemoryChecklistStore) Update(_ context.Context, line ChecklistLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[line.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.lines[line.ID] = line
	return nil
}

func (s *InMemoryChecklistStore) ListByOrder(_ context.Context, orderID domain.OrderID) ([]ChecklistLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ChecklistLine
	for _, line := range s.lines {
		if line.OrderID == orderID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
