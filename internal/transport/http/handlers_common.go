package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmaops/pkg/domain"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	ord, err := s.orders.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.orders.Checklist(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistResponse(items))
}

func (s *Server) handleGetCompliance(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	compliant, err := s.orders.Compliant(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"compliant": compliant})
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	shipments, err := s.shipments.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]shipmentResponse, 0, len(shipments))
	for _, sh := range shipments {
		out = append(out, toShipmentResponse(sh))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID, err := domain.ParseShipmentID(chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	sh, err := s.shipments.Get(r.Context(), shipmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(sh))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Get(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		documentResponse
		Anchors []anchorResponse `json:"anchors,omitempty"`
	}{documentResponse: toDocumentResponse(doc)}

	if anchors, err := s.anchors.ListByDocuments(r.Context(), []domain.DocumentID{documentID}); err == nil {
		for _, a := range anchors {
			resp.Anchors = append(resp.Anchors, anchorResponse{
				DocumentID: a.DocumentID.String(),
				TxHash:     a.TxHash,
				Network:    a.Network,
				AnchoredAt: a.AnchoredAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
