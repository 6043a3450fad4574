package shipment

import (
	"time"

	"pharmaops/pkg/domain"
)

// Status is the physical shipment state, tracked separately from the order
// workflow once goods leave the warehouse.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Event types attached to provenance records and the shipment topic.
const (
	EventCreated   = "SHIPMENT_CREATED"
	EventInTransit = "SHIPMENT_IN_TRANSIT"
	EventDelivered = "SHIPMENT_DELIVERED"
)

// Shipment is one physical consignment for an order.
type Shipment struct {
	ID          domain.ShipmentID
	OrderID     domain.OrderID
	Product     string
	LotNumber   string
	Quantity    int
	Origin      string
	Destination string
	Status      Status
	ETA         *time.Time
	CreatedAt   time.Time
}

// Input carries the caller-supplied fields of a new shipment.
type Input struct {
	Product     string
	LotNumber   string
	Quantity    int
	Origin      string
	Destination string
	ETA         *time.Time
}
