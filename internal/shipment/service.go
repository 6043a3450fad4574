package shipment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pharmaops/internal/audit"
	"pharmaops/internal/events"
	"pharmaops/internal/order"
	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/sentinel"
	"pharmaops/pkg/platform/tx"
)

// EventPublisher announces shipment facts to downstream consumers.
type EventPublisher interface {
	PublishShipmentEvent(ctx context.Context, evt events.ShipmentEvent) error
}

// AnchorQueue records the intent to anchor a shipment event on the ledger.
type AnchorQueue interface {
	EnqueueShipment(ctx context.Context, shipmentID domain.ShipmentID, eventType string) error
}

// Service creates shipments behind the compliance gate and tracks them in
// transit. Creation re-evaluates the gate inside the order's transaction:
// holding READY_TO_SHIP is not enough, the checklist itself is re-read so a
// rejection racing the shipment cannot slip through.
type Service struct {
	shipments Store
	orders    order.Store
	lines     order.ChecklistStore
	recorder  *audit.Recorder
	publisher EventPublisher
	anchors   AnchorQueue
	runner    tx.Runner
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(
	shipments Store,
	orders order.Store,
	lines order.ChecklistStore,
	recorder *audit.Recorder,
	publisher EventPublisher,
	anchors AnchorQueue,
	runner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		shipments: shipments,
		orders:    orders,
		lines:     lines,
		recorder:  recorder,
		publisher: publisher,
		anchors:   anchors,
		runner:    runner,
		logger:    logger,
		metrics:   m,
	}
}

// Create ships an order. The order must be READY_TO_SHIP and the checklist
// must pass the compliance gate at this very moment; otherwise the call fails
// with a compliance error carrying the approved/total progress. Vendor only.
func (s *Service) Create(ctx context.Context, actor domain.Actor, orderID domain.OrderID, input Input) (Shipment, error) {
	if !actor.Is(domain.RoleVendor) {
		return Shipment{}, dErrors.New(dErrors.CodeForbidden, "creating shipments requires the vendor role")
	}
	if err := validateInput(input); err != nil {
		return Shipment{}, err
	}

	sh := Shipment{
		ID:          domain.NewShipmentID(),
		OrderID:     orderID,
		Product:     input.Product,
		LotNumber:   input.LotNumber,
		Quantity:    input.Quantity,
		Origin:      input.Origin,
		Destination: input.Destination,
		Status:      StatusCreated,
		ETA:         input.ETA,
		CreatedAt:   time.Now(),
	}

	err := s.runner.RunInTx(ctx, orderID.String(), func(ctx context.Context) error {
		ord, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "order %s not found", orderID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load order")
		}

		lines, err := s.lines.ListByOrder(ctx, orderID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list checklist lines")
		}
		compliant := order.Compliant(lines)
		s.metrics.ObserveGateCheck(compliant)
		if ord.Status != order.StatusReadyToShip || !compliant {
			approved, total := order.Progress(lines)
			return dErrors.New(dErrors.CodeCompliance, "order is not cleared for shipping").
				WithDetails(map[string]any{
					"orderStatus":  string(ord.Status),
					"approvedDocs": approved,
					"requiredDocs": total,
				})
		}

		if err := s.orders.UpdateStatus(ctx, orderID, order.StatusReadyToShip, order.StatusShipped); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "order status changed concurrently")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "update order status")
		}

		if err := s.shipments.Save(ctx, sh); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save shipment")
		}

		if err := s.recorder.Record(ctx, &actor.ID, audit.ActionShipmentCreated, map[string]any{
			"shipmentId": sh.ID.String(),
			"orderId":    orderID.String(),
			"lotNumber":  sh.LotNumber,
			"quantity":   sh.Quantity,
			"before":     string(order.StatusReadyToShip),
			"after":      string(order.StatusShipped),
		}); err != nil {
			return err
		}

		return s.enqueueAnchor(ctx, sh.ID, EventCreated)
	})
	if err != nil {
		return Shipment{}, err
	}

	s.metrics.ObserveTransition("order", string(order.StatusReadyToShip), string(order.StatusShipped))
	s.publish(ctx, sh, EventCreated)
	return sh, nil
}

// MarkInTransit moves CREATED -> IN_TRANSIT. Vendor or admin.
func (s *Service) MarkInTransit(ctx context.Context, actor domain.Actor, shipmentID domain.ShipmentID) (Shipment, error) {
	return s.transition(ctx, actor, shipmentID, StatusCreated, StatusInTransit, EventInTransit)
}

// MarkDelivered moves IN_TRANSIT -> DELIVERED. Vendor or admin.
func (s *Service) MarkDelivered(ctx context.Context, actor domain.Actor, shipmentID domain.ShipmentID) (Shipment, error) {
	return s.transition(ctx, actor, shipmentID, StatusInTransit, StatusDelivered, EventDelivered)
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, shipmentID domain.ShipmentID, from, to Status, eventType string) (Shipment, error) {
	if !actor.Is(domain.RoleVendor) && !actor.Is(domain.RoleAdmin) {
		return Shipment{}, dErrors.New(dErrors.CodeForbidden, "updating shipments requires the vendor or admin role")
	}

	var sh Shipment
	err := s.runner.RunInTx(ctx, shipmentID.String(), func(ctx context.Context) error {
		var err error
		sh, err = s.shipments.Get(ctx, shipmentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "shipment %s not found", shipmentID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load shipment")
		}
		if sh.Status != from {
			return dErrors.Newf(dErrors.CodeConflict, "shipment %s is %s, expected %s", shipmentID, sh.Status, from)
		}
		if err := s.shipments.UpdateStatus(ctx, shipmentID, from, to); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "shipment status changed concurrently")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "update shipment status")
		}
		return s.enqueueAnchor(ctx, shipmentID, eventType)
	})
	if err != nil {
		return Shipment{}, err
	}

	s.metrics.ObserveTransition("shipment", string(from), string(to))
	sh.Status = to
	s.publish(ctx, sh, eventType)
	return sh, nil
}

// Get loads a single shipment.
func (s *Service) Get(ctx context.Context, shipmentID domain.ShipmentID) (Shipment, error) {
	sh, err := s.shipments.Get(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Shipment{}, dErrors.Newf(dErrors.CodeNotFound, "shipment %s not found", shipmentID)
		}
		return Shipment{}, dErrors.Wrap(err, dErrors.CodeInternal, "load shipment")
	}
	return sh, nil
}

// ListByOrder returns an order's shipments.
func (s *Service) ListByOrder(ctx context.Context, orderID domain.OrderID) ([]Shipment, error) {
	return s.shipments.ListByOrder(ctx, orderID)
}

func (s *Service) enqueueAnchor(ctx context.Context, shipmentID domain.ShipmentID, eventType string) error {
	if s.anchors == nil {
		return nil
	}
	if err := s.anchors.EnqueueShipment(ctx, shipmentID, eventType); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "schedule provenance anchor")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, sh Shipment, eventType string) {
	if s.publisher == nil {
		return
	}
	evt := events.ShipmentEvent{
		ShipmentID:  sh.ID,
		OrderID:     sh.OrderID,
		EventType:   eventType,
		Product:     sh.Product,
		LotNumber:   sh.LotNumber,
		Quantity:    sh.Quantity,
		Origin:      sh.Origin,
		Destination: sh.Destination,
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.PublishShipmentEvent(ctx, evt); err != nil {
		s.logger.Warn("shipment event publish failed", "shipmentId", sh.ID, "error", err)
	}
}

func validateInput(in Input) error {
	switch {
	case in.Product == "":
		return dErrors.New(dErrors.CodeValidation, "shipment product must not be empty")
	case in.LotNumber == "":
		return dErrors.New(dErrors.CodeValidation, "shipment lot number must not be empty")
	case in.Quantity <= 0:
		return dErrors.New(dErrors.CodeValidation, "shipment quantity must be positive")
	case in.Origin == "":
		return dErrors.New(dErrors.CodeValidation, "shipment origin must not be empty")
	case in.Destination == "":
		return dErrors.New(dErrors.CodeValidation, "shipment destination must not be empty")
	}
	return nil
}
