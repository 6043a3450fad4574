package httptransport

import (
	"time"

	"pharmaops/internal/catalog"
	"pharmaops/internal/document"
	"pharmaops/internal/order"
	"pharmaops/internal/shipment"
	"pharmaops/internal/user"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createCompanyRequest struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain"`
}

type createProductRequest struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
	Name      string `json:"name" validate:"required"`
	SKU       string `json:"sku"`
}

type renameProductRequest struct {
	Name string `json:"name" validate:"required"`
}

type defineRequirementRequest struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	RequiredForExport bool   `json:"requiredForExport"`
	Country           string `json:"country"`
}

type inviteVendorRequest struct {
	Email     string `json:"email" validate:"required,email"`
	CompanyID string `json:"companyId" validate:"required,uuid"`
}

type createOrderRequest struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
}

type overrideStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type uploadDocumentRequest struct {
	Title      string `json:"title" validate:"required"`
	Version    string `json:"version" validate:"required"`
	FileHash   string `json:"fileHash" validate:"required"`
	StorageRef string `json:"storageRef"`
}

type approveDocumentRequest struct {
	Signature string `json:"signature" validate:"required"`
}

type rejectDocumentRequest struct {
	Notes string `json:"notes" validate:"required"`
}

type createShipmentRequest struct {
	Product     string     `json:"product" validate:"required"`
	LotNumber   string     `json:"lotNumber" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	Origin      string     `json:"origin" validate:"required"`
	Destination string     `json:"destination" validate:"required"`
	ETA         *time.Time `json:"eta"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toOrderResponse(ord order.Order) orderResponse {
	return orderResponse{
		ID:        ord.ID.String(),
		CompanyID: ord.CompanyID.String(),
		Status:    string(ord.Status),
		CreatedAt: ord.CreatedAt,
	}
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, ord := range orders {
		out = append(out, toOrderResponse(ord))
	}
	return out
}

type checklistItemResponse struct {
	RequirementID string `json:"requirementId"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

func toChecklistResponse(items []order.ChecklistItem) []checklistItemResponse {
	out := make([]checklistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, checklistItemResponse{
			RequirementID: item.RequirementID.String(),
			Name:          item.Name,
			Status:        string(item.Status),
			Notes:         item.Notes,
		})
	}
	return out
}

type documentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	DocType    string    `json:"docType"`
	Version    string    `json:"version"`
	Status     string    `json:"status"`
	UploadedBy string    `json:"uploadedBy"`
	ApprovedBy string    `json:"approvedBy,omitempty"`
	FileHash   string    `json:"fileHash"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toDocumentResponse(doc document.Document) documentResponse {
	resp := documentResponse{
		ID:         doc.ID.String(),
		Title:      doc.Title,
		DocType:    string(doc.DocType),
		Version:    doc.Version,
		Status:     string(doc.Status),
		UploadedBy: doc.UploadedBy.String(),
		FileHash:   doc.FileHash,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	if doc.ApprovedBy != nil {
		resp.ApprovedBy = doc.ApprovedBy.String()
	}
	return resp
}

func toDocumentResponses(docs []document.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	return out
}

type shipmentResponse struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	Product     string     `json:"product"`
	LotNumber   string     `json:"lotNumber"`
	Quantity    int        `json:"quantity"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	ETA         *time.Time `json:"eta,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toShipmentResponse(sh shipment.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:          sh.ID.String(),
		OrderID:     sh.OrderID.String(),
		Product:     sh.Product,
		LotNumber:   sh.LotNumber,
		Quantity:    sh.Quantity,
		Origin:      sh.Origin,
		Destination: sh.Destination,
		Status:      string(sh.Status),
		ETA:         sh.ETA,
		CreatedAt:   sh.CreatedAt,
	}
}

type productResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	CompanyID string `json:"companyId"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{ID: p.ID.String(), Name: p.Name, SKU: p.SKU, CompanyID: p.CompanyID.String()}
}

type invitationResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	CompanyID string `json:"companyId"`
}

func toInvitationResponse(inv user.Invitation) invitationResponse {
	resp := invitationResponse{
		UserID: inv.User.ID.String(),
		Email:  inv.User.Email,
	}
	if inv.User.CompanyID != nil {
		resp.CompanyID = inv.User.CompanyID.String()
	}
	return resp
}
