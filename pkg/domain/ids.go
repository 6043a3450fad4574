package domain

import (
	"github.com/google/uuid"

	dErrors "pharmaops/pkg/domain-errors"
)

// Typed UUID wrappers for entity identifiers. Distinct types keep an OrderID
// from being passed where a DocumentID is expected; the compiler enforces it.
type (
	UserID        uuid.UUID
	CompanyID     uuid.UUID
	ProductID     uuid.UUID
	RequirementID uuid.UUID
	OrderID       uuid.UUID
	LineID        uuid.UUID
	DocumentID    uuid.UUID
	ShipmentID    uuid.UUID
	AnchorID      uuid.UUID
	EntryID       uuid.UUID
)

// parseUUID enforces the invariant that IDs crossing a trust boundary are
// valid, non-nil UUIDs.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeValidation, "id is not a valid uuid")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id must not be the nil uuid")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	return UserID(parsed), err
}

func ParseCompanyID(raw string) (CompanyID, error) {
	parsed, err := parseUUID(raw)
	return CompanyID(parsed), err
}

func ParseProductID(raw string) (ProductID, error) {
	parsed, err := parseUUID(raw)
	return ProductID(parsed), err
}

func ParseRequirementID(raw string) (RequirementID, error) {
	parsed, err := parseUUID(raw)
	return RequirementID(parsed), err
}

func ParseOrderID(raw string) (OrderID, error) {
	parsed, err := parseUUID(raw)
	return OrderID(parsed), err
}

func ParseLineID(raw string) (LineID, error) {
	parsed, err := parseUUID(raw)
	return LineID(parsed), err
}

func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw)
	return DocumentID(parsed), err
}

func ParseShipmentID(raw string) (ShipmentID, error) {
	parsed, err := parseUUID(raw)
	return ShipmentID(parsed), err
}

func NewUserID() UserID               { return UserID(uuid.New()) }
func NewCompanyID() CompanyID         { return CompanyID(uuid.New()) }
func NewProductID() ProductID         { return ProductID(uuid.New()) }
func NewRequirementID() RequirementID { return RequirementID(uuid.New()) }
func NewOrderID() OrderID             { return OrderID(uuid.New()) }
func NewLineID() LineID               { return LineID(uuid.New()) }
func NewDocumentID() DocumentID       { return DocumentID(uuid.New()) }
func NewShipmentID() ShipmentID       { return ShipmentID(uuid.New()) }
func NewAnchorID() AnchorID           { return AnchorID(uuid.New()) }
func NewEntryID() EntryID             { return EntryID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id CompanyID) String() string     { return uuid.UUID(id).String() }
func (id ProductID) String() string     { return uuid.UUID(id).String() }
func (id RequirementID) String() string { return uuid.UUID(id).String() }
func (id OrderID) String() string       { return uuid.UUID(id).String() }
func (id LineID) String() string        { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id ShipmentID) String() string    { return uuid.UUID(id).String() }
func (id AnchorID) String() string      { return uuid.UUID(id).String() }
func (id EntryID) String() string       { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RequirementID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id LineID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ShipmentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AnchorID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
