package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/middleware/auth"
)

func (s *Server) handleReviewDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.ReviewQueue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponses(docs))
}

func (s *Server) handleReviewOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ReviewQueue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (s *Server) handleApproveDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req approveDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Approve(r.Context(), auth.GetActor(r.Context()), documentID, req.Signature)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) handleRejectDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req rejectDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Reject(r.Context(), auth.GetActor(r.Context()), documentID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}
