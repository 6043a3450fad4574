package anchor

import (
	"time"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
)

// Kind distinguishes the two provenance events the notary bridge accepts.
type Kind string

const (
	KindDocument Kind = "document"
	KindShipment Kind = "shipment"
)

// Intent is a durable request to anchor an event. Intents are written inside
// the business transaction that caused them and drained by the worker after
// commit, so a crash between commit and anchoring loses nothing.
type Intent struct {
	ID          uuid.UUID
	Kind        Kind
	DocumentID  *domain.DocumentID
	ShipmentID  *domain.ShipmentID
	PayloadHash string
	Version     string
	EventType   string
	Attempts    int
	NextAttempt time.Time
	Done        bool
	CreatedAt   time.Time
}

// Anchor is a confirmed on-chain reference for a document approval.
type Anchor struct {
	ID         domain.AnchorID
	DocumentID domain.DocumentID
	TxHash     string
	Network    string
	AnchoredAt time.Time
}
