package user

import (
	"context"
	"sort"
	"sync"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

type assignmentKey struct {
	vendorID  domain.UserID
	productID domain.ProductID
}

// InMemoryStore keeps users and assignments in memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	users       map[domain.UserID]User
	byEmail     map[string]domain.UserID
	assignments map[assignmentKey]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:       make(map[domain.UserID]User),
		byEmail:     make(map[string]domain.UserID),
		assignments: make(map[assignmentKey]struct{}),
	}
}

func (s *InMemoryStore) Save(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.UserID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return u, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return s.users[id], nil
}

func (s *InMemoryStore) AssignProduct(_ context.Context, vendorID domain.UserID, productID domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{vendorID: vendorID, productID: productID}
	if _, exists := s.assignments[key]; exists {
		return sentinel.ErrConflict
	}
	s.assignments[key] = struct{}{}
	return nil
}

func (s *InMemoryStore) ListAssignedProducts(_ context.Context, vendorID domain.UserID) ([]domain.ProductID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ProductID
	for key := range s.assignments {
		if key.vendorID == vendorID {
			out = append(out, key.productID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}
