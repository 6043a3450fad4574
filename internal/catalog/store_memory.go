package catalog

import (
	"context"
	"sync"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

type InMemoryCompanyStore struct {
	mu        sync.RWMutex
	companies map[domain.CompanyID]Company
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{companies: make(map[domain.CompanyID]Company)}
}

func (s *InMemoryCompanyStore) Save(_ context.Context, company Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.ID] = company
	return nil
}

func (s *InMemoryCompanyStore) Get(_ context.Context, id domain.CompanyID) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return Company{}, sentinel.ErrNotFound
	}
	return company, nil
}

func (s *InMemoryCompanyStore) FindByName(_ context.Context, name string) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, company := range s.companies {
		if company.Name == name {
			return company, nil
		}
	}
	return Company{}, sentinel.ErrNotFound
}

type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[domain.ProductID]Product
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{products: make(map[domain.ProductID]Product)}
}

func (s *InMemoryProductStore) Save(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

func (s *InMemoryProductStore) Get(_ context.Context, id domain.ProductID) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return Product{}, sentinel.ErrNotFound
	}
	return product, nil
}

func (s *InMemoryProductStore) Rename(_ context.Context, id domain.ProductID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	product.Name = name
	s.products[id] = product
	return nil
}

func (s *InMemoryProductStore) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Product
	for _, product := range s.products {
		if product.CompanyID == companyID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *InMemoryProductStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, product)
	}
	return out, nil
}

type InMemoryRequirementStore struct {
	mu           sync.RWMutex
	requirements map[domain.RequirementID]Requirement
}

func NewInMemoryRequirementStore() *InMemoryRequirementStore {
	return &InMemoryRequirementStore{requirements: make(map[domain.RequirementID]Requirement)}
}

func (s *InMemoryRequirementStore) Save(_ context.Context, requirement Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requirements[requirement.ID] = requirement
	return nil
}

func (s *InMemoryRequirementStore) Get(_ context.Context, id domain.RequirementID) (Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requirement, ok := s.requirements[id]
	if !ok {
		return Requirement{}, sentinel.ErrNotFound
	}
	return requirement, nil
}

func (s *InMemoryRequirementStore) ListByProducts(_ context.Context, productIDs []domain.ProductID) ([]Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.ProductID]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	var out []Requirement
	for _, requirement := range s.requirements {
		if wanted[requirement.ProductID] {
			out = append(out, requirement)
		}
	}
	return out, nil
}
