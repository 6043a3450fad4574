package order

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/tx"
)

// stubRequirements resolves a fixed requirement set per company.
type stubRequirements struct {
	byCompany map[domain.CompanyID][]catalog.Requirement
}

func (s *stubRequirements) ResolveRequirements(_ context.Context, companyID domain.CompanyID) ([]catalog.Requirement, error) {
	return s.byCompany[companyID], nil
}

type OrderServiceSuite struct {
	suite.Suite
	orders       *InMemoryStore
	lines        *InMemoryChecklistStore
	companies    *catalog.InMemoryCompanyStore
	requirements *stubRequirements
	auditStore   *audit.InMemoryStore
	service      *Service

	admin   domain.Actor
	vendor  domain.Actor
	company catalog.Company
	reqs    []catalog.Requirement
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.orders = NewInMemoryStore()
	s.lines = NewInMemoryChecklistStore()
	s.companies = catalog.NewInMemoryCompanyStore()
	s.auditStore = audit.NewInMemoryStore()

	s.admin = domain.Actor{ID: domain.NewUserID(), Role: domain.RoleAdmin}
	s.vendor = domain.Actor{ID: domain.NewUserID(), Role: domain.RoleVendor}

	s.company = catalog.Company{ID: domain.NewCompanyID(), Name: "Acme Pharma"}
	s.Require().NoError(s.companies.Save(context.Background(), s.company))

	s.reqs = []catalog.Requirement{
		{ID: domain.NewRequirementID(), Name: "GMP Certificate"},
		{ID: domain.NewRequirementID(), Name: "Certificate of Analysis"},
		{ID: domain.NewRequirementID(), Name: "Export License"},
	}
	s.requirements = &stubRequirements{byCompany: map[domain.CompanyID][]catalog.Requirement{
		s.company.ID: s.reqs,
	}}

	logger := slog.New(slog.DiscardHandler)
	recorder := audit.NewRecorder(s.auditStore, logger, nil)
	s.service = NewService(s.orders, s.lines, s.requirements, s.companies,
		recorder, tx.NewMutexRunner(), logger, nil)
}

func (s *OrderServiceSuite) createAccepted() Order {
	ctx := context.Background()
	ord, err := s.service.Create(ctx, s.admin, s.company.ID)
	s.Require().NoError(err)
	ord, err = s.service.Accept(ctx, s.admin, ord.ID)
	s.Require().NoError(err)
	return ord
}

func (s *OrderServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("admin creates order in REQUESTED", func() {
		ord, err := s.service.Create(ctx, s.admin, s.company.ID)
		s.Require().NoError(err)
		s.Equal(StatusRequested, ord.Status)
		s.Equal(s.company.ID, ord.CompanyID)

		stored, err := s.orders.Get(ctx, ord.ID)
		s.NoError(err)
		s.Equal(StatusRequested, stored.Status)
	})

	s.Run("non-admin is forbidden", func() {
		_, err := s.service.Create(ctx, s.vendor, s.company.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown company is rejected", func() {
		_, err := s.service.Create(ctx, s.admin, domain.NewCompanyID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("creation is audited", func() {
		before := len(s.auditStore.All())
		_, err := s.service.Create(ctx, s.admin, s.company.ID)
		s.Require().NoError(err)
		entries := s.auditStore.All()
		s.Len(entries, before+1)
		s.Equal(audit.ActionOrderCreated, entries[len(entries)-1].Action)
	})
}

func (s *OrderServiceSuite) TestAccept() {
	ctx := context.Background()

	s.Run("REQUESTED becomes ACCEPTED", func() {
		ord, err := s.service.Create(ctx, s.admin, s.company.ID)
		s.Require().NoError(err)

		accepted, err := s.service.Accept(ctx, s.admin, ord.ID)
		s.Require().NoError(err)
		s.Equal(StatusAccepted, accepted.Status)
	})

	s.Run("double accept conflicts", func() {
		ord := s.createAccepted()
		_, err := s.service.Accept(ctx, s.admin, ord.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing order", func() {
		_, err := s.service.Accept(ctx, s.admin, domain.NewOrderID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *OrderServiceSuite) TestGenerateChecklist() {
	ctx := context.Background()

	s.Run("materializes one MISSING line per requirement", func() {
		ord := s.createAccepted()

		items, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.Require().NoError(err)
		s.Len(items, len(s.reqs))
		for _, item := range items {
			s.Equal(LineMissing, item.Status)
		}

		updated, err := s.orders.Get(ctx, ord.ID)
		s.NoError(err)
		s.Equal(StatusDocsPending, updated.Status)
	})

	s.Run("regeneration adds nothing and preserves line state", func() {
		ord := s.createAccepted()
		_, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.Require().NoError(err)

		// Flip one line to APPROVED, then regenerate.
		line, err := s.lines.FindByOrderAndRequirement(ctx, ord.ID, s.reqs[0].ID)
		s.Require().NoError(err)
		line.Status = LineApproved
		s.Require().NoError(s.lines.Update(ctx, line))

		items, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.Require().NoError(err)
		s.Len(items, len(s.reqs))

		kept, err := s.lines.FindByOrderAndRequirement(ctx, ord.ID, s.reqs[0].ID)
		s.Require().NoError(err)
		s.Equal(LineApproved, kept.Status, "regeneration must not reset reviewed lines")

		lines, err := s.lines.ListByOrder(ctx, ord.ID)
		s.Require().NoError(err)
		s.Len(lines, len(s.reqs), "no duplicate lines")
	})

	s.Run("new requirement appears on regeneration", func() {
		ord := s.createAccepted()
		_, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.Require().NoError(err)

		added := catalog.Requirement{ID: domain.NewRequirementID(), Name: "Stability Data"}
		s.requirements.byCompany[s.company.ID] = append(s.reqs, added)
		defer func() { s.requirements.byCompany[s.company.ID] = s.reqs }()

		items, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.Require().NoError(err)
		s.Len(items, len(s.reqs)+1)
	})

	s.Run("zero requirements is a configuration error", func() {
		other := catalog.Company{ID: domain.NewCompanyID(), Name: "Empty Co"}
		s.Require().NoError(s.companies.Save(ctx, other))
		ord, err := s.service.Create(ctx, s.admin, other.ID)
		s.Require().NoError(err)

		_, err = s.service.GenerateChecklist(ctx, s.admin, ord.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("system actor may generate", func() {
		ord := s.createAccepted()
		_, err := s.service.GenerateChecklist(ctx, domain.Actor{}, ord.ID)
		s.NoError(err)
	})

	s.Run("vendor is forbidden", func() {
		ord := s.createAccepted()
		_, err := s.service.GenerateChecklist(ctx, s.vendor, ord.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *OrderServiceSuite) TestCompliant() {
	ctx := context.Background()
	ord := s.createAccepted()
	_, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
	s.Require().NoError(err)

	compliant, err := s.service.Compliant(ctx, ord.ID)
	s.Require().NoError(err)
	s.False(compliant)

	lines, err := s.lines.ListByOrder(ctx, ord.ID)
	s.Require().NoError(err)
	for _, line := range lines {
		line.Status = LineApproved
		s.Require().NoError(s.lines.Update(ctx, line))
	}

	compliant, err = s.service.Compliant(ctx, ord.ID)
	s.Require().NoError(err)
	s.True(compliant)
}

func (s *OrderServiceSuite) TestOverrideStatus() {
	ctx := context.Background()

	s.Run("admin may bypass the transition table", func() {
		ord := s.createAccepted()
		updated, err := s.service.OverrideStatus(ctx, s.admin, ord.ID, StatusReadyToShip)
		s.Require().NoError(err)
		s.Equal(StatusReadyToShip, updated.Status)

		// The escape hatch still leaves a trail.
		entries, err := s.auditStore.Query(ctx, audit.Filter{Action: audit.ActionOrderStatusChanged})
		s.Require().NoError(err)
		s.NotEmpty(entries)
	})

	s.Run("unknown status is rejected", func() {
		ord := s.createAccepted()
		_, err := s.service.OverrideStatus(ctx, s.admin, ord.ID, Status("LOST"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("vendor is forbidden", func() {
		ord := s.createAccepted()
		_, err := s.service.OverrideStatus(ctx, s.vendor, ord.ID, StatusShipped)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *OrderServiceSuite) TestReviewQueue() {
	ctx := context.Background()
	ord := s.createAccepted()
	_, err := s.service.GenerateChecklist(ctx, s.admin, ord.ID)
	s.Require().NoError(err)

	queue, err := s.service.ReviewQueue(ctx)
	s.Require().NoError(err)
	s.Len(queue, 1)
	s.Equal(ord.ID, queue[0].ID)
}
