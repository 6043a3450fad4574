package anchor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

// InMemoryOutboxStore keeps anchor intents in memory.
type InMemoryOutboxStore struct {
	mu      sync.RWMutex
	intents map[uuid.UUID]Intent
}

func NewInMemoryOutboxStore() *InMemoryOutboxStore {
	return &InMemoryOutboxStore{intents: make(map[uuid.UUID]Intent)}
}

func (s *InMemoryOutboxStore) Enqueue(_ context.Context, intent Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intent.ID] = intent
	return nil
}

func (s *InMemoryOutboxStore) Due(_ context.Context, now time.Time, limit int) ([]Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Intent
	for _, intent := range s.intents {
		if !intent.Done && !intent.NextAttempt.After(now) {
			out = append(out, intent)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextAttempt.Before(out[j].NextAttempt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryOutboxStore) MarkDone(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	intent.Done = true
	s.intents[id] = intent
	return nil
}

func (s *InMemoryOutboxStore) Reschedule(_ context.Context, id uuid.UUID, attempts int, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	intent.Attempts = attempts
	intent.NextAttempt = next
	s.intents[id] = intent
	return nil
}

// Pending returns the count of undone intents. Test helper.
func (s *InMemoryOutboxStore) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, intent := range s.intents {
		if !intent.Done {
			count++
		}
	}
	return count
}

// InMemoryStore keeps confirmed anchors in memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	anchors map[domain.AnchorID]Anchor
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{anchors: make(map[domain.AnchorID]Anchor)}
}

func (s *InMemoryStore) Save(_ context.Context, a Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[a.ID] = a
	return nil
}

func (s *InMemoryStore) ListByDocuments(_ context.Context, documentIDs []domain.DocumentID) ([]Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.DocumentID]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	var out []Anchor
	for _, a := range s.anchors {
		if _, ok := wanted[a.DocumentID]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnchoredAt.Before(out[j].AnchoredAt) })
	return out, nil
}
