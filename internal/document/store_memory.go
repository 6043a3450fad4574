package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.DocumentID]Document)}
}

func (s *InMemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, nil
}

func (s *InMemoryStore) GetForUpdate(ctx context.Context, id domain.DocumentID) (Document, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.DocumentID, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if doc.Status != from {
		return sentinel.ErrConflict
	}
	doc.Status = to
	doc.UpdatedAt = time.Now()
	s.docs[id] = doc
	return nil
}

func (s *InMemoryStore) SetReview(_ context.Context, id domain.DocumentID, approvedBy domain.UserID, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	doc.ApprovedBy = &approvedBy
	doc.Signature = signature
	doc.UpdatedAt = time.Now()
	s.docs[id] = doc
	return nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, doc := range s.docs {
		if doc.Status == status {
			out = append(out, doc)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (s *InMemoryStore) ListByIDs(_ context.Context, ids []domain.DocumentID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	sortDocuments(out)
	return out, nil
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
}
