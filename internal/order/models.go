package order

import (
	"time"

	"pharmaops/pkg/domain"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusRequested   Status = "REQUESTED"
	StatusAccepted    Status = "ACCEPTED"
	StatusDocsPending Status = "DOCS_PENDING"
	StatusReadyToShip Status = "READY_TO_SHIP"
	StatusShipped     Status = "SHIPPED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusDocsPending, StatusReadyToShip, StatusShipped:
		return true
	}
	return false
}

// LineStatus tracks a single requirement's fulfillment state for one order.
type LineStatus string

const (
	LineMissing  LineStatus = "MISSING"
	LinePending  LineStatus = "PENDING"
	LineApproved LineStatus = "APPROVED"
	LineRejected LineStatus = "REJECTED"
)

// Order progresses REQUESTED -> ACCEPTED -> DOCS_PENDING -> READY_TO_SHIP ->
// SHIPPED. Rejection of an approved document can revert READY_TO_SHIP back to
// DOCS_PENDING.
type Order struct {
	ID        domain.OrderID
	CompanyID domain.CompanyID
	CreatedBy domain.UserID
	Status    Status
	CreatedAt time.Time
}

// ChecklistLine is one OrderDocumentStatus row. Exactly one exists per
// (order, requirement) pair; the requirement reference is mandatory.
type ChecklistLine struct {
	ID            domain.LineID
	OrderID       domain.OrderID
	RequirementID domain.RequirementID
	DocumentID    *domain.DocumentID
	Status        LineStatus
	Notes         string
}

// ChecklistItem is the checklist view returned to callers, enriched with the
// requirement name.
type ChecklistItem struct {
	RequirementID domain.RequirementID
	Name          string
	Status        LineStatus
	Notes         string
}
