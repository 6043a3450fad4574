package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmaops/internal/document"
	"pharmaops/internal/order"
	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/middleware/auth"
)

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	company, err := s.catalog.CreateCompany(r.Context(), auth.GetActor(r.Context()), req.Name, req.Domain)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   company.ID.String(),
		"name": company.Name,
	})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := s.catalog.CreateProduct(r.Context(), auth.GetActor(r.Context()), companyID, req.Name, req.SKU)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (s *Server) handleRenameProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := domain.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req renameProductRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.catalog.RenameProduct(r.Context(), auth.GetActor(r.Context()), productID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": productID.String(), "name": req.Name})
}

func (s *Server) handleDefineRequirement(w http.ResponseWriter, r *http.Request) {
	productID, err := domain.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req defineRequirementRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	requirement, err := s.catalog.DefineRequirement(r.Context(), auth.GetActor(r.Context()),
		productID, req.Name, req.Description, req.RequiredForExport, req.Country)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   requirement.ID.String(),
		"name": requirement.Name,
	})
}

func (s *Server) handleInviteVendor(w http.ResponseWriter, r *http.Request) {
	var req inviteVendorRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	invitation, err := s.users.InviteVendor(r.Context(), auth.GetActor(r.Context()), req.Email, companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvitationResponse(invitation))
}

func (s *Server) handleAssignVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := domain.ParseUserID(chi.URLParam(r, "vendorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	productID, err := domain.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.users.AssignProduct(r.Context(), auth.GetActor(r.Context()), vendorID, productID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	ord, err := s.orders.Create(r.Context(), auth.GetActor(r.Context()), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(ord))
}

func (s *Server) handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	ord, err := s.orders.Accept(r.Context(), auth.GetActor(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (s *Server) handleGenerateChecklist(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.orders.GenerateChecklist(r.Context(), auth.GetActor(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistResponse(items))
}

func (s *Server) handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req overrideStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ord, err := s.orders.OverrideStatus(r.Context(), auth.GetActor(r.Context()), orderID, order.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (s *Server) handleUploadMaster(w http.ResponseWriter, r *http.Request) {
	var req uploadDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.UploadMaster(r.Context(), auth.GetActor(r.Context()), document.Upload{
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
