//go:build integration

package anchor_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pharmaops/internal/anchor"
	"pharmaops/internal/platform/postgres"
	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
	"pharmaops/pkg/testutil/containers"
)

type AnchorPostgresSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	outbox  *anchor.PostgresOutboxStore
	anchors *anchor.PostgresStore

	uploaderID domain.UserID
}

func TestAnchorPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AnchorPostgresSuite))
}

func (s *AnchorPostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(context.Background(), s.pg.DB))
	s.outbox = anchor.NewPostgresOutboxStore(s.pg.DB)
	s.anchors = anchor.NewPostgresStore(s.pg.DB)
}

func (s *AnchorPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateAll(ctx))

	s.uploaderID = domain.NewUserID()
	_, err := s.pg.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, role) VALUES ($1, $2, $3)`,
		uuid.UUID(s.uploaderID), "vendor@acme.example", string(domain.RoleVendor))
	s.Require().NoError(err)
}

func (s *AnchorPostgresSuite) seedDocument() domain.DocumentID {
	docID := domain.NewDocumentID()
	_, err := s.pg.DB.ExecContext(context.Background(), `
		INSERT INTO documents (id, title, doc_type, version, status, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(docID), "GMP Certificate", "TRANSACTIONAL", "1.0", "approved", uuid.UUID(s.uploaderID))
	s.Require().NoError(err)
	return docID
}

func (s *AnchorPostgresSuite) newIntent(next time.Time) anchor.Intent {
	docID := s.seedDocument()
	return anchor.Intent{
		ID:          uuid.New(),
		Kind:        anchor.KindDocument,
		DocumentID:  &docID,
		PayloadHash: "abc123",
		Version:     "1.0",
		NextAttempt: next.UTC().Truncate(time.Microsecond),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *AnchorPostgresSuite) TestOutboxDue() {
	ctx := context.Background()
	now := time.Now()

	overdue := s.newIntent(now.Add(-time.Minute))
	dueNow := s.newIntent(now)
	future := s.newIntent(now.Add(time.Hour))
	for _, intent := range []anchor.Intent{future, dueNow, overdue} {
		s.Require().NoError(s.outbox.Enqueue(ctx, intent))
	}

	s.Run("returns only due intents, oldest first", func() {
		got, err := s.outbox.Due(ctx, now, 50)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(overdue.ID, got[0].ID)
		s.Equal(dueNow.ID, got[1].ID)
		s.Require().NotNil(got[0].DocumentID)
		s.Equal(*overdue.DocumentID, *got[0].DocumentID)
	})

	s.Run("honors the batch limit", func() {
		got, err := s.outbox.Due(ctx, now, 1)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(overdue.ID, got[0].ID)
	})

	s.Run("reschedule pushes an intent out of the window", func() {
		s.Require().NoError(s.outbox.Reschedule(ctx, overdue.ID, 1, now.Add(2*time.Second)))

		got, err := s.outbox.Due(ctx, now, 50)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(dueNow.ID, got[0].ID)

		got, err = s.outbox.Due(ctx, now.Add(3*time.Second), 50)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(1, got[1].Attempts)
	})

	s.Run("done intents are never picked up again", func() {
		s.Require().NoError(s.outbox.MarkDone(ctx, dueNow.ID))
		got, err := s.outbox.Due(ctx, now.Add(24*time.Hour), 50)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		for _, intent := range got {
			s.NotEqual(dueNow.ID, intent.ID)
		}
	})

	s.Run("updating an unknown intent", func() {
		s.ErrorIs(s.outbox.MarkDone(ctx, uuid.New()), sentinel.ErrNotFound)
		s.ErrorIs(s.outbox.Reschedule(ctx, uuid.New(), 1, now), sentinel.ErrNotFound)
	})
}

func (s *AnchorPostgresSuite) TestOutboxShipmentIntent() {
	ctx := context.Background()
	shipmentID := domain.NewShipmentID()

	intent := anchor.Intent{
		ID:          uuid.New(),
		Kind:        anchor.KindShipment,
		ShipmentID:  &shipmentID,
		PayloadHash: "deadbeef",
		EventType:   "shipment.created",
		NextAttempt: time.Now().Add(-time.Second),
		CreatedAt:   time.Now(),
	}
	s.Require().NoError(s.outbox.Enqueue(ctx, intent))

	got, err := s.outbox.Due(ctx, time.Now(), 50)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(anchor.KindShipment, got[0].Kind)
	s.Nil(got[0].DocumentID)
	s.Require().NotNil(got[0].ShipmentID)
	s.Equal(shipmentID, *got[0].ShipmentID)
	s.Equal("shipment.created", got[0].EventType)
}

func (s *AnchorPostgresSuite) TestAnchorsByDocument() {
	ctx := context.Background()
	docA := s.seedDocument()
	docB := s.seedDocument()
	docC := s.seedDocument()

	for i, docID := range []domain.DocumentID{docA, docB, docC} {
		s.Require().NoError(s.anchors.Save(ctx, anchor.Anchor{
			ID:         domain.NewAnchorID(),
			DocumentID: docID,
			TxHash:     "0xfeed",
			Network:    "besu-test",
			AnchoredAt: time.Now().UTC().Add(time.Duration(i) * time.Second).Truncate(time.Microsecond),
		}))
	}

	got, err := s.anchors.ListByDocuments(ctx, []domain.DocumentID{docA, docB})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(docA, got[0].DocumentID, "ordered by anchor time")
	s.Equal(docB, got[1].DocumentID)

	got, err = s.anchors.ListByDocuments(ctx, nil)
	s.Require().NoError(err)
	s.Empty(got)
}
