package catalog

import (
	"context"
	"errors"
	"sort"

	"pharmaops/internal/audit"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/sentinel"
)

// Service owns the product catalog and resolves per-company document
// requirements. Resolution is pure and deterministic: the same company yields
// the same requirement set until an admin defines a new requirement.
type Service struct {
	companies    CompanyStore
	products     ProductStore
	requirements RequirementStore
	recorder     *audit.Recorder
}

func NewService(companies CompanyStore, products ProductStore, requirements RequirementStore, recorder *audit.Recorder) *Service {
	return &Service{
		companies:    companies,
		products:     products,
		requirements: requirements,
		recorder:     recorder,
	}
}

// DefineRequirement registers a new document requirement for a product.
// Admin only. The requirement is immutable once created.
func (s *Service) DefineRequirement(ctx context.Context, actor domain.Actor, productID domain.ProductID, name, description string, requiredForExport bool, country string) (Requirement, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Requirement{}, dErrors.New(dErrors.CodeForbidden, "defining requirements requires the admin role")
	}
	if name == "" {
		return Requirement{}, dErrors.New(dErrors.CodeValidation, "requirement name must not be empty")
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Requirement{}, dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
		}
		return Requirement{}, dErrors.Wrap(err, dErrors.CodeInternal, "load product")
	}

	req := Requirement{
		ID:                domain.NewRequirementID(),
		ProductID:         productID,
		Name:              name,
		Description:       description,
		RequiredForExport: requiredForExport,
		Country:           country,
	}
	if err := s.requirements.Save(ctx, req); err != nil {
		return Requirement{}, dErrors.Wrap(err, dErrors.CodeInternal, "save requirement")
	}

	if err := s.recorder.Record(ctx, &actor.ID, audit.ActionRequirementDefined, map[string]any{
		"requirementId":     req.ID.String(),
		"productId":         productID.String(),
		"name":              name,
		"requiredForExport": requiredForExport,
	}); err != nil {
		return Requirement{}, err
	}
	return req, nil
}

// CreateCompany registers a trading partner. Admin only.
func (s *Service) CreateCompany(ctx context.Context, actor domain.Actor, name, companyDomain string) (Company, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Company{}, dErrors.New(dErrors.CodeForbidden, "creating companies requires the admin role")
	}
	if name == "" {
		return Company{}, dErrors.New(dErrors.CodeValidation, "company name must not be empty")
	}
	if _, err := s.companies.FindByName(ctx, name); err == nil {
		return Company{}, dErrors.Newf(dErrors.CodeConflict, "company %q already exists", name)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Company{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up company")
	}

	company := Company{
		ID:     domain.NewCompanyID(),
		Name:   name,
		Domain: companyDomain,
	}
	if err := s.companies.Save(ctx, company); err != nil {
		return Company{}, dErrors.Wrap(err, dErrors.CodeInternal, "save company")
	}
	return company, nil
}

// GetCompany loads a single company.
func (s *Service) GetCompany(ctx context.Context, id domain.CompanyID) (Company, error) {
	company, err := s.companies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Company{}, dErrors.Newf(dErrors.CodeNotFound, "company %s not found", id)
		}
		return Company{}, dErrors.Wrap(err, dErrors.CodeInternal, "load company")
	}
	return company, nil
}

// CreateProduct adds a product to a company's catalog. Admin only.
func (s *Service) CreateProduct(ctx context.Context, actor domain.Actor, companyID domain.CompanyID, name, sku string) (Product, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Product{}, dErrors.New(dErrors.CodeForbidden, "creating products requires the admin role")
	}
	if name == "" {
		return Product{}, dErrors.New(dErrors.CodeValidation, "product name must not be empty")
	}
	if _, err := s.companies.Get(ctx, companyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Product{}, dErrors.Newf(dErrors.CodeNotFound, "company %s not found", companyID)
		}
		return Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "load company")
	}

	product := Product{
		ID:        domain.NewProductID(),
		Name:      name,
		SKU:       sku,
		CompanyID: companyID,
	}
	if err := s.products.Save(ctx, product); err != nil {
		return Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "save product")
	}

	if err := s.recorder.Record(ctx, &actor.ID, audit.ActionProductCreated, map[string]any{
		"productId": product.ID.String(),
		"companyId": companyID.String(),
		"name":      name,
	}); err != nil {
		return Product{}, err
	}
	return product, nil
}

// RenameProduct is the only mutation a product supports after creation.
func (s *Service) RenameProduct(ctx context.Context, actor domain.Actor, id domain.ProductID, name string) error {
	if !actor.Is(domain.RoleAdmin) {
		return dErrors.New(dErrors.CodeForbidden, "renaming products requires the admin role")
	}
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "product name must not be empty")
	}
	if err := s.products.Rename(ctx, id, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "product %s not found", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "rename product")
	}
	return nil
}

// ListProducts returns the full catalog.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx)
}

// GetRequirement loads a single requirement.
func (s *Service) GetRequirement(ctx context.Context, id domain.RequirementID) (Requirement, error) {
	req, err := s.requirements.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Requirement{}, dErrors.Newf(dErrors.CodeNotFound, "requirement %s not found", id)
		}
		return Requirement{}, dErrors.Wrap(err, dErrors.CodeInternal, "load requirement")
	}
	return req, nil
}

// ResolveRequirements maps a company to the requirement set applicable to its
// products. Fails with NotFound when the company has no products; an order
// for such a company is a configuration error, not vacuously compliant.
func (s *Service) ResolveRequirements(ctx context.Context, companyID domain.CompanyID) ([]Requirement, error) {
	products, err := s.products.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list company products")
	}
	if len(products) == 0 {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "company %s has no products", companyID)
	}

	ids := make([]domain.ProductID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	reqs, err := s.requirements.ListByProducts(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list requirements")
	}

	// Deterministic order regardless of store backend.
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Name != reqs[j].Name {
			return reqs[i].Name < reqs[j].Name
		}
		return reqs[i].ID.String() < reqs[j].ID.String()
	})
	return reqs, nil
}
