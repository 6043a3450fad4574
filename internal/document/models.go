package document

import (
	"time"

	"pharmaops/pkg/domain"
)

// Type separates reusable master documents from per-order transactional ones.
type Type string

const (
	TypeMaster        Type = "MASTER"
	TypeTransactional Type = "TRANSACTIONAL"
)

func (t Type) Valid() bool {
	return t == TypeMaster || t == TypeTransactional
}

// Status is the review lifecycle state. Documents move draft -> in_review and
// then to exactly one of approved or rejected; both are terminal for the
// version.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Document is one uploaded artifact at one version.
type Document struct {
	ID         domain.DocumentID
	Title      string
	DocType    Type
	Version    string
	Status     Status
	UploadedBy domain.UserID
	ApprovedBy *domain.UserID
	// Signature is the reviewer's electronic signature captured at approval.
	// Approval without it is refused.
	Signature  string
	FileHash   string
	StorageRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Upload carries the caller-supplied fields of a new document.
type Upload struct {
	Title      string
	Version    string
	FileHash   string
	StorageRef string
}
