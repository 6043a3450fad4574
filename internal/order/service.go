package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/sentinel"
	"pharmaops/pkg/platform/tx"
)

// RequirementSource resolves the requirement set for a company's products.
type RequirementSource interface {
	ResolveRequirements(ctx context.Context, companyID domain.CompanyID) ([]catalog.Requirement, error)
}

// CompanySource verifies company references on order creation.
type CompanySource interface {
	Get(ctx context.Context, id domain.CompanyID) (catalog.Company, error)
}

// Service governs the order lifecycle and materializes checklists. Every
// transition runs inside a single transaction keyed on the order id, so
// concurrent transitions on one order serialize and transition decisions read
// the same state they act on.
type Service struct {
	orders       Store
	lines        ChecklistStore
	requirements RequirementSource
	companies    CompanySource
	recorder     *audit.Recorder
	runner       tx.Runner
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewService(
	orders Store,
	lines ChecklistStore,
	requirements RequirementSource,
	companies CompanySource,
	recorder *audit.Recorder,
	runner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		orders:       orders,
		lines:        lines,
		requirements: requirements,
		companies:    companies,
		recorder:     recorder,
		runner:       runner,
		logger:       logger,
		metrics:      m,
	}
}

// Create registers a new order in REQUESTED. Admin only.
func (s *Service) Create(ctx context.Context, actor domain.Actor, companyID domain.CompanyID) (Order, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Order{}, dErrors.New(dErrors.CodeForbidden, "creating orders requires the admin role")
	}
	if _, err := s.companies.Get(ctx, companyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Order{}, dErrors.Newf(dErrors.CodeNotFound, "company %s not found", companyID)
		}
		return Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "load company")
	}

	ord := Order{
		ID:        domain.NewOrderID(),
		CompanyID: companyID,
		CreatedBy: actor.ID,
		Status:    StatusRequested,
		CreatedAt: time.Now(),
	}

	err := s.runner.RunInTx(ctx, ord.ID.String(), func(ctx context.Context) error {
		if err := s.orders.Save(ctx, ord); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save order")
		}
		return s.recorder.Record(ctx, &actor.ID, audit.ActionOrderCreated, map[string]any{
			"orderId":   ord.ID.String(),
			"companyId": companyID.String(),
			"status":    string(StatusRequested),
		})
	})
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

// Accept moves REQUESTED -> ACCEPTED. Admin only.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, orderID domain.OrderID) (Order, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Order{}, dErrors.New(dErrors.CodeForbidden, "accepting orders requires the admin role")
	}

	var accepted Order
	err := s.runner.RunInTx(ctx, orderID.String(), func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
		}
		if ord.Status != StatusRequested {
			return dErrors.Newf(dErrors.CodeConflict, "order %s is %s, only REQUESTED orders can be accepted", orderID, ord.Status)
		}
		if err := s.orders.UpdateStatus(ctx, orderID, StatusRequested, StatusAccepted); err != nil {
			return s.translateStatusErr(err)
		}
		if err := s.recorder.Record(ctx, &actor.ID, audit.ActionOrderAccepted, map[string]any{
			"orderId": orderID.String(),
			"before":  string(StatusRequested),
			"after":   string(StatusAccepted),
		}); err != nil {
			return err
		}
		ord.Status = StatusAccepted
		accepted = ord
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.metrics.ObserveTransition("order", string(StatusRequested), string(StatusAccepted))
	return accepted, nil
}

// GenerateChecklist materializes one MISSING line per applicable requirement.
// Idempotent: requirements that already have a line, in any status, are left
// untouched. Admin or system (zero actor) only.
func (s *Service) GenerateChecklist(ctx context.Context, actor domain.Actor, orderID domain.OrderID) ([]ChecklistItem, error) {
	if !actor.System() && !actor.Is(domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "generating checklists requires the admin role")
	}

	var items []ChecklistItem
	err := s.runner.RunInTx(ctx, orderID.String(), func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
		}

		reqs, err := s.requirements.ResolveRequirements(ctx, ord.CompanyID)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return dErrors.Newf(dErrors.CodeValidation, "no document requirements defined for company %s", ord.CompanyID)
		}

		existing, err := s.lines.ListByOrder(ctx, orderID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
		}
		covered := make(map[domain.RequirementID]ChecklistLine, len(existing))
		for _, line := range existing {
			covered[line.RequirementID] = line
		}

		created := 0
		for _, req := range reqs {
			if _, ok := covered[req.ID]; ok {
				continue
			}
			line := ChecklistLine{
				ID:            domain.NewLineID(),
				OrderID:       orderID,
				RequirementID: req.ID,
				Status:        LineMissing,
			}
			if err := s.lines.Insert(ctx, line); err != nil {
				// A concurrent generation already created this line; the
				// unique constraint preserved the invariant.
				if errors.Is(err, sentinel.ErrConflict) {
					continue
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "insert checklist line")
			}
			covered[req.ID] = line
			created++
		}

		if ord.Status == StatusAccepted {
			if err := s.orders.UpdateStatus(ctx, orderID, StatusAccepted, StatusDocsPending); err != nil {
				return s.translateStatusErr(err)
			}
			s.metrics.ObserveTransition("order", string(StatusAccepted), string(StatusDocsPending))
		}

		if created > 0 {
			var actorRef *domain.UserID
			if !actor.System() {
				actorRef = &actor.ID
			}
			if err := s.recorder.Record(ctx, actorRef, audit.ActionChecklistGenerated, map[string]any{
				"orderId":      orderID.String(),
				"linesCreated": created,
				"totalLines":   len(covered),
			}); err != nil {
				return err
			}
		}

		for _, req := range reqs {
			line := covered[req.ID]
			items = append(items, ChecklistItem{
				RequirementID: req.ID,
				Name:          req.Name,
				Status:        line.Status,
				Notes:         line.Notes,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Checklist returns the order's checklist in requirement order.
func (s *Service) Checklist(ctx context.Context, orderID domain.OrderID) ([]ChecklistItem, error) {
	ord, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
	}

	reqs, err := s.requirements.ResolveRequirements(ctx, ord.CompanyID)
	if err != nil {
		return nil, err
	}
	names := make(map[domain.RequirementID]string, len(reqs))
	for _, req := range reqs {
		names[req.ID] = req.Name
	}

	items := make([]ChecklistItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, ChecklistItem{
			RequirementID: line.RequirementID,
			Name:          names[line.RequirementID],
			Status:        line.Status,
			Notes:         line.Notes,
		})
	}
	return items, nil
}

// Compliant re-evaluates the compliance gate from stored lines.
func (s *Service) Compliant(ctx context.Context, orderID domain.OrderID) (bool, error) {
	lines, err := s.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
	}
	verdict := Compliant(lines)
	s.metrics.ObserveGateCheck(verdict)
	return verdict, nil
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, orderID domain.OrderID) (Order, error) {
	ord, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Order{}, dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
		}
		return Order{}, dErrors.Wrap(err, dErrors.CodeInternal, "load order")
	}
	return ord, nil
}

// ListByCompany returns a company's orders (vendor view).
func (s *Service) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]Order, error) {
	return s.orders.ListByCompany(ctx, companyID)
}

// ReviewQueue returns orders awaiting document review (QA view).
func (s *Service) ReviewQueue(ctx context.Context) ([]Order, error) {
	return s.orders.ListByStatus(ctx, StatusDocsPending)
}

// OverrideStatus is the admin escape hatch. It bypasses the transition table
// but never the audit trail.
func (s *Service) OverrideStatus(ctx context.Context, actor domain.Actor, orderID domain.OrderID, to Status) (Order, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Order{}, dErrors.New(dErrors.CodeForbidden, "overriding order status requires the admin role")
	}
	if !to.Valid() {
		return Order{}, dErrors.Newf(dErrors.CodeValidation, "unknown order status %q", to)
	}

	var updated Order
	err := s.runner.RunInTx(ctx, orderID.String(), func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
		}
		if err := s.orders.UpdateStatus(ctx, orderID, ord.Status, to); err != nil {
			return s.translateStatusErr(err)
		}
		if err := s.recorder.Record(ctx, &actor.ID, audit.ActionOrderStatusChanged, map[string]any{
			"orderId": orderID.String(),
			"before":  string(ord.Status),
			"after":   string(to),
		}); err != nil {
			return err
		}
		s.metrics.ObserveTransition("order", string(ord.Status), string(to))
		ord.Status = to
		updated = ord
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

func (s *Service) translateStatusErr(err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "order status changed concurrently")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "order not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "update order status")
}
