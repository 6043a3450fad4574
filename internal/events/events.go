// Package events publishes workflow facts to Kafka for downstream consumers
// (track-and-trace, partner notifications). Publishing is fire-and-forget:
// the workflow never waits on the broker.
package events

import (
	"encoding/json"
	"time"

	"pharmaops/pkg/domain"
)

// ShipmentEvent announces a shipment lifecycle fact on the shipment topic.
type ShipmentEvent struct {
	ShipmentID  domain.ShipmentID
	OrderID     domain.OrderID
	EventType   string
	Product     string
	LotNumber   string
	Quantity    int
	Origin      string
	Destination string
	OccurredAt  time.Time
}

// MarshalJSON writes ids in their canonical string form; the typed wrappers
// would otherwise encode as raw byte arrays.
func (e ShipmentEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ShipmentID  string    `json:"shipmentId"`
		OrderID     string    `json:"orderId"`
		EventType   string    `json:"eventType"`
		Product     string    `json:"product"`
		LotNumber   string    `json:"lotNumber"`
		Quantity    int       `json:"quantity"`
		Origin      string    `json:"origin"`
		Destination string    `json:"destination"`
		OccurredAt  time.Time `json:"occurredAt"`
	}{
		ShipmentID:  e.ShipmentID.String(),
		OrderID:     e.OrderID.String(),
		EventType:   e.EventType,
		Product:     e.Product,
		LotNumber:   e.LotNumber,
		Quantity:    e.Quantity,
		Origin:      e.Origin,
		Destination: e.Destination,
		OccurredAt:  e.OccurredAt,
	})
}
