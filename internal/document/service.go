package document

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pharmaops/internal/audit"
	"pharmaops/internal/order"
	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/sentinel"
	"pharmaops/pkg/platform/tx"
)

// AnchorQueue records the intent to anchor an approved document. The write
// joins the enclosing transaction; the actual ledger call happens after
// commit and never affects the approval.
type AnchorQueue interface {
	EnqueueDocument(ctx context.Context, documentID domain.DocumentID, fileHash, version string) error
}

// Service governs the document review lifecycle and its coupling to order
// checklists. Reviews of transactional documents run inside a transaction
// keyed on the owning order, so a review and any other transition on that
// order serialize.
type Service struct {
	docs     Store
	orders   order.Store
	lines    order.ChecklistStore
	recorder *audit.Recorder
	anchors  AnchorQueue
	runner   tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func NewService(
	docs Store,
	orders order.Store,
	lines order.ChecklistStore,
	recorder *audit.Recorder,
	anchors AnchorQueue,
	runner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		docs:     docs,
		orders:   orders,
		lines:    lines,
		recorder: recorder,
		anchors:  anchors,
		runner:   runner,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("pharmaops/document"),
	}
}

// UploadMaster registers a reusable master document in draft. Admin only.
func (s *Service) UploadMaster(ctx context.Context, actor domain.Actor, upload Upload) (Document, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Document{}, dErrors.New(dErrors.CodeForbidden, "uploading master documents requires the admin role")
	}
	if err := validateUpload(upload); err != nil {
		return Document{}, err
	}

	now := time.Now()
	doc := Document{
		ID:         domain.NewDocumentID(),
		Title:      upload.Title,
		DocType:    TypeMaster,
		Version:    upload.Version,
		Status:     StatusDraft,
		UploadedBy: actor.ID,
		FileHash:   upload.FileHash,
		StorageRef: upload.StorageRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.runner.RunInTx(ctx, doc.ID.String(), func(ctx context.Context) error {
		if err := s.docs.Save(ctx, doc); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save document")
		}
		return s.recorder.Record(ctx, &actor.ID, audit.ActionDocumentSubmitted, map[string]any{
			"documentId": doc.ID.String(),
			"docType":    string(TypeMaster),
			"version":    doc.Version,
		})
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Submit uploads a transactional document against a checklist line and puts
// it in review. The line must exist and be MISSING or REJECTED; a line that is
// already under review or approved refuses new submissions. Vendor only.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, orderID domain.OrderID, requirementID domain.RequirementID, upload Upload) (Document, error) {
	if !actor.Is(domain.RoleVendor) {
		return Document{}, dErrors.New(dErrors.CodeForbidden, "submitting documents requires the vendor role")
	}
	if err := validateUpload(upload); err != nil {
		return Document{}, err
	}

	now := time.Now()
	doc := Document{
		ID:         domain.NewDocumentID(),
		Title:      upload.Title,
		DocType:    TypeTransactional,
		Version:    upload.Version,
		Status:     StatusDraft,
		UploadedBy: actor.ID,
		FileHash:   upload.FileHash,
		StorageRef: upload.StorageRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.runner.RunInTx(ctx, orderID.String(), func(ctx context.Context) error {
		if _, err := s.orders.GetForUpdate(ctx, orderID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
		}

		line, err := s.lines.FindByOrderAndRequirement(ctx, orderID, requirementID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s has no checklist line for requirement %s", orderID, requirementID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load checklist line")
		}
		if line.Status != order.LineMissing && line.Status != order.LineRejected {
			return dErrors.Newf(dErrors.CodeConflict, "requirement %s already has a document in %s", requirementID, line.Status)
		}

		if err := s.docs.Save(ctx, doc); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save document")
		}
		if err := s.docs.UpdateStatus(ctx, doc.ID, StatusDraft, StatusInReview); err != nil {
			return s.translateStatusErr(err)
		}

		line.DocumentID = &doc.ID
		line.Status = order.LinePending
		line.Notes = ""
		if err := s.lines.Update(ctx, line); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update checklist line")
		}

		return s.recorder.Record(ctx, &actor.ID, audit.ActionDocumentSubmitted, map[string]any{
			"documentId":    doc.ID.String(),
			"orderId":       orderID.String(),
			"requirementId": requirementID.String(),
			"version":       doc.Version,
		})
	})
	if err != nil {
		return Document{}, err
	}

	s.metrics.ObserveTransition("document", string(StatusDraft), string(StatusInReview))
	doc.Status = StatusInReview
	return doc, nil
}

// Approve moves a document under review to approved. The reviewer's
// electronic signature is mandatory; approval without it is refused before
// any state changes. Approving the last outstanding line flips the order to
// READY_TO_SHIP in the same transaction. QA reviewer only.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, documentID domain.DocumentID, signature string) (Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.approve", trace.WithAttributes(
		attribute.String("document.id", documentID.String()),
	))
	defer span.End()

	if !actor.Is(domain.RoleQAReviewer) {
		return Document{}, dErrors.New(dErrors.CodeForbidden, "approving documents requires the qa_reviewer role")
	}
	if signature == "" {
		return Document{}, dErrors.New(dErrors.CodeValidation, "approval requires an electronic signature")
	}

	key, line, hasLine, err := s.reviewKey(ctx, documentID)
	if err != nil {
		return Document{}, err
	}

	var approved Document
	err = s.runner.RunInTx(ctx, key, func(ctx context.Context) error {
		doc, err := s.docs.GetForUpdate(ctx, documentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "document %s not found", documentID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load document")
		}
		if doc.Status != StatusInReview {
			return dErrors.Newf(dErrors.CodeConflict, "document %s is %s, only documents in review can be approved", documentID, doc.Status)
		}

		if err := s.docs.UpdateStatus(ctx, documentID, StatusInReview, StatusApproved); err != nil {
			return s.translateStatusErr(err)
		}
		if err := s.docs.SetReview(ctx, documentID, actor.ID, signature); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "record review")
		}

		details := map[string]any{
			"documentId": documentID.String(),
			"version":    doc.Version,
			"before":     string(StatusInReview),
			"after":      string(StatusApproved),
		}

		if hasLine {
			// Re-read under the order lock; the snapshot from reviewKey may
			// be stale.
			line, err = s.lines.FindByDocument(ctx, documentID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "load checklist line")
			}
			line.Status = order.LineApproved
			line.Notes = ""
			if err := s.lines.Update(ctx, line); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "update checklist line")
			}
			details["orderId"] = line.OrderID.String()

			if err := s.maybeReadyToShip(ctx, line.OrderID); err != nil {
				return err
			}
		}

		if err := s.recorder.Record(ctx, &actor.ID, audit.ActionDocumentApproved, details); err != nil {
			return err
		}

		if err := s.anchors.EnqueueDocument(ctx, documentID, doc.FileHash, doc.Version); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "schedule provenance anchor")
		}

		doc.Status = StatusApproved
		doc.ApprovedBy = &actor.ID
		doc.Signature = signature
		approved = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	s.metrics.ObserveTransition("document", string(StatusInReview), string(StatusApproved))
	return approved, nil
}

// Reject moves a document to rejected. Review notes are mandatory so the
// vendor knows what to fix; the bound checklist line resets to MISSING,
// keeping the notes, so the vendor can resubmit. A previously approved
// document can also be rejected; when that drops the order below the
// compliance gate, the order reverts READY_TO_SHIP -> DOCS_PENDING in the
// same transaction. QA reviewer only.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, documentID domain.DocumentID, notes string) (Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.reject", trace.WithAttributes(
		attribute.String("document.id", documentID.String()),
	))
	defer span.End()

	if !actor.Is(domain.RoleQAReviewer) {
		return Document{}, dErrors.New(dErrors.CodeForbidden, "rejecting documents requires the qa_reviewer role")
	}
	if notes == "" {
		return Document{}, dErrors.New(dErrors.CodeValidation, "rejection requires review notes")
	}

	key, line, hasLine, err := s.reviewKey(ctx, documentID)
	if err != nil {
		return Document{}, err
	}

	var rejected Document
	var from Status
	err = s.runner.RunInTx(ctx, key, func(ctx context.Context) error {
		doc, err := s.docs.GetForUpdate(ctx, documentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "document %s not found", documentID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load document")
		}
		if doc.Status != StatusInReview && doc.Status != StatusApproved {
			return dErrors.Newf(dErrors.CodeConflict, "document %s is %s and cannot be rejected", documentID, doc.Status)
		}
		from = doc.Status

		if err := s.docs.UpdateStatus(ctx, documentID, doc.Status, StatusRejected); err != nil {
			return s.translateStatusErr(err)
		}

		details := map[string]any{
			"documentId": documentID.String(),
			"version":    doc.Version,
			"notes":      notes,
			"before":     string(from),
			"after":      string(StatusRejected),
		}

		if hasLine {
			line, err = s.lines.FindByDocument(ctx, documentID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "load checklist line")
			}
			line.Status = order.LineMissing
			line.Notes = notes
			if err := s.lines.Update(ctx, line); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "update checklist line")
			}
			details["orderId"] = line.OrderID.String()

			if err := s.maybeRevertReadyToShip(ctx, line.OrderID); err != nil {
				return err
			}
		}

		if err := s.recorder.Record(ctx, &actor.ID, audit.ActionDocumentRejected, details); err != nil {
			return err
		}

		doc.Status = StatusRejected
		rejected = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	s.metrics.ObserveTransition("document", string(from), string(StatusRejected))
	return rejected, nil
}

// Get loads a single document.
func (s *Service) Get(ctx context.Context, documentID domain.DocumentID) (Document, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Document{}, dErrors.Newf(dErrors.CodeNotFound, "document %s not found", documentID)
		}
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "load document")
	}
	return doc, nil
}

// ReviewQueue returns all documents awaiting review (QA view).
func (s *Service) ReviewQueue(ctx context.Context) ([]Document, error) {
	docs, err := s.docs.ListByStatus(ctx, StatusInReview)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents in review")
	}
	return docs, nil
}

// ListByIDs loads documents in bulk, for evidence assembly.
func (s *Service) ListByIDs(ctx context.Context, ids []domain.DocumentID) ([]Document, error) {
	docs, err := s.docs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	return docs, nil
}

// reviewKey picks the transaction key for a review: the owning order when the
// document is bound to a checklist line, else the document itself. The line
// snapshot is advisory; callers re-read it under the lock.
func (s *Service) reviewKey(ctx context.Context, documentID domain.DocumentID) (string, order.ChecklistLine, bool, error) {
	line, err := s.lines.FindByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return documentID.String(), order.ChecklistLine{}, false, nil
		}
		return "", order.ChecklistLine{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "load checklist line")
	}
	return line.OrderID.String(), line, true, nil
}

// maybeReadyToShip flips DOCS_PENDING -> READY_TO_SHIP when every checklist
// line is approved. Runs inside the order's transaction.
func (s *Service) maybeReadyToShip(ctx context.Context, orderID domain.OrderID) error {
	lines, err := s.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
	}
	compliant := order.Compliant(lines)
	s.metrics.ObserveGateCheck(compliant)
	if !compliant {
		return nil
	}

	ord, err := s.orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
	}
	if ord.Status != order.StatusDocsPending {
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, order.StatusDocsPending, order.StatusReadyToShip); err != nil {
		return s.translateStatusErr(err)
	}
	s.metrics.ObserveTransition("order", string(order.StatusDocsPending), string(order.StatusReadyToShip))
	return nil
}

// maybeRevertReadyToShip reverts READY_TO_SHIP -> DOCS_PENDING when a
// rejection broke the compliance gate.
func (s *Service) maybeRevertReadyToShip(ctx context.Context, orderID domain.OrderID) error {
	lines, err := s.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
	}
	compliant := order.Compliant(lines)
	s.metrics.ObserveGateCheck(compliant)
	if compliant {
		return nil
	}

	ord, err := s.orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
	}
	if ord.Status != order.StatusReadyToShip {
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, order.StatusReadyToShip, order.StatusDocsPending); err != nil {
		return s.translateStatusErr(err)
	}
	s.logger.Info("order reverted to documentation",
		"orderId", orderID, "cause", "document rejection")
	s.metrics.ObserveTransition("order", string(order.StatusReadyToShip), string(order.StatusDocsPending))
	return nil
}

func validateUpload(u Upload) error {
	if u.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "document title must not be empty")
	}
	if u.Version == "" {
		return dErrors.New(dErrors.CodeValidation, "document version must not be empty")
	}
	if u.FileHash == "" {
		return dErrors.New(dErrors.CodeValidation, "document file hash must not be empty")
	}
	return nil
}

func (s *Service) translateStatusErr(err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "status changed concurrently")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "update status")
}
