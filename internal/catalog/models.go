package catalog

import "pharmaops/pkg/domain"

// Company is a vendor organization fulfilling orders.
type Company struct {
	ID     domain.CompanyID
	Name   string
	Domain string
}

// Product is immutable once created except rename.
type Product struct {
	ID        domain.ProductID
	Name      string
	SKU       string
	CompanyID domain.CompanyID
}

// Requirement names one document type a product's orders must evidence.
// Read-only after creation: edits create new requirements, never mutate
// existing ones referenced by an order.
type Requirement struct {
	ID                domain.RequirementID
	ProductID         domain.ProductID
	Name              string
	Description       string
	RequiredForExport bool
	Country           string
}
