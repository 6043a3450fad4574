package catalog

import (
	"context"

	"pharmaops/pkg/domain"
)

type CompanyStore interface {
	Save(ctx context.Context, company Company) error
	Get(ctx context.Context, id domain.CompanyID) (Company, error)
	FindByName(ctx context.Context, name string) (Company, error)
}

type ProductStore interface {
	Save(ctx context.Context, product Product) error
	Get(ctx context.Context, id domain.ProductID) (Product, error)
	Rename(ctx context.Context, id domain.ProductID, name string) error
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]Product, error)
	List(ctx context.Context) ([]Product, error)
}

type RequirementStore interface {
	Save(ctx context.Context, requirement Requirement) error
	Get(ctx context.Context, id domain.RequirementID) (Requirement, error)
	ListByProducts(ctx context.Context, productIDs []domain.ProductID) ([]Requirement, error)
}
