// Package evidence assembles audit-ready compliance packs: everything an
// inspector needs about one order, gathered in a single call and exportable
// as a spreadsheet.
package evidence

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pharmaops/internal/anchor"
	"pharmaops/internal/audit"
	"pharmaops/internal/document"
	"pharmaops/internal/order"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
)

// Pack is the full compliance evidence for one order.
type Pack struct {
	Order       order.Order
	Checklist   []order.ChecklistItem
	Documents   []document.Document
	Anchors     []anchor.Anchor
	Audit       []audit.Entry
	GeneratedAt time.Time
}

// OrderSource reads order state and its checklist view.
type OrderSource interface {
	Get(ctx context.Context, orderID domain.OrderID) (order.Order, error)
	Checklist(ctx context.Context, orderID domain.OrderID) ([]order.ChecklistItem, error)
}

// DocumentSource loads documents in bulk.
type DocumentSource interface {
	ListByIDs(ctx context.Context, ids []domain.DocumentID) ([]document.Document, error)
}

// AnchorSource loads confirmed provenance anchors for documents.
type AnchorSource interface {
	ListByDocuments(ctx context.Context, documentIDs []domain.DocumentID) ([]anchor.Anchor, error)
}

// AuditSource queries the audit trail.
type AuditSource interface {
	Query(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type Service struct {
	orders  OrderSource
	lines   order.ChecklistStore
	docs    DocumentSource
	anchors AnchorSource
	audits  AuditSource
}

func NewService(orders OrderSource, lines order.ChecklistStore, docs DocumentSource, anchors AnchorSource, audits AuditSource) *Service {
	return &Service{orders: orders, lines: lines, docs: docs, anchors: anchors, audits: audits}
}

// Build gathers the evidence pack for an order. Auditor or admin only.
func (s *Service) Build(ctx context.Context, actor domain.Actor, orderID domain.OrderID) (Pack, error) {
	if !actor.Is(domain.RoleAuditor) && !actor.Is(domain.RoleAdmin) {
		return Pack{}, dErrors.New(dErrors.CodeForbidden, "evidence packs require the auditor or admin role")
	}

	ord, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return Pack{}, err
	}

	pack := Pack{Order: ord, GeneratedAt: time.Now()}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.orders.Checklist(ctx, orderID)
		if err != nil {
			return err
		}
		pack.Checklist = items
		return nil
	})

	g.Go(func() error {
		lines, err := s.lines.ListByOrder(ctx, orderID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
		}
		var docIDs []domain.DocumentID
		for _, line := range lines {
			if line.DocumentID != nil {
				docIDs = append(docIDs, *line.DocumentID)
			}
		}
		docs, err := s.docs.ListByIDs(ctx, docIDs)
		if err != nil {
			return err
		}
		anchors, err := s.anchors.ListByDocuments(ctx, docIDs)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list anchors")
		}
		pack.Documents = docs
		pack.Anchors = anchors
		return nil
	})

	g.Go(func() error {
		entries, err := s.audits.Query(ctx, audit.Filter{})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "query audit trail")
		}
		pack.Audit = filterByOrder(entries, orderID)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Pack{}, err
	}
	return pack, nil
}

// filterByOrder keeps audit entries that reference the order in their
// structured details.
func filterByOrder(entries []audit.Entry, orderID domain.OrderID) []audit.Entry {
	want := orderID.String()
	var out []audit.Entry
	for _, e := range entries {
		if ref, ok := e.Details["orderId"].(string); ok && ref == want {
			out = append(out, e)
		}
	}
	return out
}
