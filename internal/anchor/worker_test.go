package anchor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pharmaops/pkg/domain"
)

// countingProvider tallies notary calls per kind.
type countingProvider struct {
	documents int
	shipments int
}

func (p *countingProvider) AnchorDocument(context.Context, string, string) (string, error) {
	p.documents++
	return "0xcounted", nil
}

func (p *countingProvider) RecordShipment(context.Context, domain.ShipmentID, string) (string, error) {
	p.shipments++
	return "0xcounted", nil
}

type WorkerSuite struct {
	suite.Suite
	outbox  *InMemoryOutboxStore
	anchors *InMemoryStore
	queue   *Queue
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.outbox = NewInMemoryOutboxStore()
	s.anchors = NewInMemoryStore()
	s.queue = NewQueue(s.outbox)
}

func (s *WorkerSuite) newWorker(provider Provider, maxAttempts int) *Worker {
	return NewWorker(s.outbox, s.anchors, provider, "besu-test",
		time.Second, maxAttempts, slog.New(slog.DiscardHandler), nil)
}

func (s *WorkerSuite) TestDrain_DocumentSuccess() {
	ctx := context.Background()
	docID := domain.NewDocumentID()
	s.Require().NoError(s.queue.EnqueueDocument(ctx, docID, "abc123", "1.0"))

	w := s.newWorker(MockProvider{}, 5)
	w.Drain(ctx)

	s.Equal(0, s.outbox.Pending())

	anchors, err := s.anchors.ListByDocuments(ctx, []domain.DocumentID{docID})
	s.Require().NoError(err)
	s.Require().Len(anchors, 1)
	s.Equal(docID, anchors[0].DocumentID)
	s.Equal("besu-test", anchors[0].Network)
	s.NotEmpty(anchors[0].TxHash)
}

func (s *WorkerSuite) TestDrain_ShipmentSuccess() {
	ctx := context.Background()
	s.Require().NoError(s.queue.EnqueueShipment(ctx, domain.NewShipmentID(), "SHIPMENT_CREATED"))

	w := s.newWorker(MockProvider{}, 5)
	w.Drain(ctx)

	// Shipment anchors confirm without a blockchain_anchors row.
	s.Equal(0, s.outbox.Pending())
}

func (s *WorkerSuite) TestDrain_FailureReschedulesWithBackoff() {
	ctx := context.Background()
	docID := domain.NewDocumentID()
	s.Require().NoError(s.queue.EnqueueDocument(ctx, docID, "abc123", "1.0"))

	w := s.newWorker(MockProvider{Fail: true}, 5)
	w.Drain(ctx)

	// Still pending, but no longer due: the retry is in the future.
	s.Equal(1, s.outbox.Pending())
	due, err := s.outbox.Due(ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Empty(due)

	due, err = s.outbox.Due(ctx, time.Now().Add(time.Minute), 10)
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal(1, due[0].Attempts)
}

func (s *WorkerSuite) TestDrain_AbandonsAfterMaxAttempts() {
	ctx := context.Background()
	docID := domain.NewDocumentID()
	s.Require().NoError(s.queue.EnqueueDocument(ctx, docID, "abc123", "1.0"))

	w := s.newWorker(MockProvider{Fail: true}, 3)
	for i := 0; i < 3; i++ {
		due, err := s.outbox.Due(ctx, time.Now().Add(time.Hour), 10)
		s.Require().NoError(err)
		for _, intent := range due {
			w.process(ctx, intent)
		}
	}

	// Retired without an anchor; the triggering approval is unaffected.
	s.Equal(0, s.outbox.Pending())
	anchors, err := s.anchors.ListByDocuments(ctx, []domain.DocumentID{docID})
	s.Require().NoError(err)
	s.Empty(anchors)
}

func (s *WorkerSuite) TestDrain_MalformedDocumentIntent() {
	ctx := context.Background()
	s.Require().NoError(s.outbox.Enqueue(ctx, Intent{
		ID:          uuid.New(),
		Kind:        KindDocument,
		PayloadHash: "abc123",
		Version:     "1.0",
		NextAttempt: time.Now().Add(-time.Second),
		CreatedAt:   time.Now(),
	}))

	provider := &countingProvider{}
	w := s.newWorker(provider, 1)
	w.Drain(ctx)

	// A document intent without a document id never reaches the notary and is
	// retired without a confirmed anchor.
	s.Equal(0, provider.documents)
	s.Equal(0, s.outbox.Pending())
}

func (s *WorkerSuite) TestRun_StopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	w := s.newWorker(MockProvider{}, 5)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("worker did not stop on context cancellation")
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(3))
	assert.Equal(t, 5*time.Minute, backoff(20), "backoff is capped")
}

func TestQueue_ShipmentPayloadHashIsDeterministic(t *testing.T) {
	ctx := context.Background()
	outbox := NewInMemoryOutboxStore()
	queue := NewQueue(outbox)

	shipmentID := domain.NewShipmentID()
	require.NoError(t, queue.EnqueueShipment(ctx, shipmentID, "SHIPMENT_CREATED"))
	require.NoError(t, queue.EnqueueShipment(ctx, shipmentID, "SHIPMENT_CREATED"))

	due, err := outbox.Due(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, due[0].PayloadHash, due[1].PayloadHash)
	assert.Len(t, due[0].PayloadHash, 64)
}
