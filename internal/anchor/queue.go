package anchor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
)

// Queue writes anchor intents. Callers invoke it inside the business
// transaction so the intent commits atomically with the state change it
// records.
type Queue struct {
	outbox OutboxStore
}

func NewQueue(outbox OutboxStore) *Queue {
	return &Queue{outbox: outbox}
}

// EnqueueDocument records the intent to anchor an approved document.
func (q *Queue) EnqueueDocument(ctx context.Context, documentID domain.DocumentID, fileHash, version string) error {
	if err := q.outbox.Enqueue(ctx, Intent{
		ID:          uuid.New(),
		Kind:        KindDocument,
		DocumentID:  &documentID,
		PayloadHash: fileHash,
		Version:     version,
		NextAttempt: time.Now(),
		CreatedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("enqueue document anchor: %w", err)
	}
	return nil
}

// EnqueueShipment records the intent to anchor a shipment event.
func (q *Queue) EnqueueShipment(ctx context.Context, shipmentID domain.ShipmentID, eventType string) error {
	sum := sha256.Sum256([]byte(shipmentID.String() + "|" + eventType))
	if err := q.outbox.Enqueue(ctx, Intent{
		ID:          uuid.New(),
		Kind:        KindShipment,
		ShipmentID:  &shipmentID,
		PayloadHash: hex.EncodeToString(sum[:]),
		EventType:   eventType,
		NextAttempt: time.Now(),
		CreatedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("enqueue shipment anchor: %w", err)
	}
	return nil
}
