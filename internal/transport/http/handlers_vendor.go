package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmaops/internal/document"
	"pharmaops/internal/shipment"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/middleware/auth"
)

func (s *Server) handleVendorOrders(w http.ResponseWriter, r *http.Request) {
	companyID, ok := auth.GetCompanyID(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeForbidden, "vendor token carries no company"))
		return
	}
	orders, err := s.orders.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	requirementID, err := domain.ParseRequirementID(chi.URLParam(r, "requirementID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req uploadDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Submit(r.Context(), auth.GetActor(r.Context()), orderID, requirementID, document.Upload{
		Title:      req.Title,
		Version:    req.Version,
		FileHash:   req.FileHash,
		StorageRef: req.StorageRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req createShipmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sh, err := s.shipments.Create(r.Context(), auth.GetActor(r.Context()), orderID, shipment.Input{
		Product:     req.Product,
		LotNumber:   req.LotNumber,
		Quantity:    req.Quantity,
		Origin:      req.Origin,
		Destination: req.Destination,
		ETA:         req.ETA,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentResponse(sh))
}

func (s *Server) handleShipmentInTransit(w http.ResponseWriter, r *http.Request) {
	s.handleShipmentTransition(w, r, s.shipments.MarkInTransit)
}

func (s *Server) handleShipmentDelivered(w http.ResponseWriter, r *http.Request) {
	s.handleShipmentTransition(w, r, s.shipments.MarkDelivered)
}

func (s *Server) handleShipmentTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, actor domain.Actor, id domain.ShipmentID) (shipment.Shipment, error),
) {
	shipmentID, err := domain.ParseShipmentID(chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	sh, err := transition(r.Context(), auth.GetActor(r.Context()), shipmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(sh))
}
