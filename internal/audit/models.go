package audit

import (
	"time"

	"pharmaops/pkg/domain"
)

// Action tags one kind of workflow mutation in the trail.
type Action string

const (
	ActionRequirementDefined Action = "DEFINE_REQUIREMENT"
	ActionProductCreated     Action = "CREATE_PRODUCT"
	ActionVendorInvited      Action = "INVITE_VENDOR"
	ActionVendorAssigned     Action = "ASSIGN_VENDOR_PRODUCT"

	ActionOrderCreated       Action = "CREATE_ORDER"
	ActionOrderAccepted      Action = "ACCEPT_ORDER"
	ActionChecklistGenerated Action = "GENERATE_CHECKLIST"
	ActionOrderStatusChanged Action = "UPDATE_ORDER_STATUS"

	ActionDocumentSubmitted Action = "SUBMIT_DOCUMENT"
	ActionDocumentApproved  Action = "APPROVE_DOCUMENT"
	ActionDocumentRejected  Action = "REJECT_DOCUMENT"

	ActionShipmentCreated Action = "CREATE_SHIPMENT"
)

// Entry is one immutable record of a mutating action. Entries survive even if
// the entity they describe is later modified; they are never updated or
// deleted.
type Entry struct {
	ID        domain.EntryID
	Action    Action
	ActorID   *domain.UserID // nil for system actions
	Details   map[string]any
	CreatedAt time.Time
}

// Filter narrows an audit query. Zero fields match everything.
type Filter struct {
	ActorID *domain.UserID
	Action  Action
	From    time.Time
	To      time.Time
	Limit   int
}
