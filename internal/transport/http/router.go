// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the workflow services and encode; no business rule lives here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmaops/internal/anchor"
	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/internal/document"
	"pharmaops/internal/evidence"
	"pharmaops/internal/order"
	"pharmaops/internal/platform/metrics"
	"pharmaops/internal/shipment"
	"pharmaops/internal/stats"
	"pharmaops/internal/user"
	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/middleware/auth"
	"pharmaops/pkg/platform/middleware/metadata"
	request "pharmaops/pkg/platform/middleware/request"
)

// Service interfaces consumed by the handlers. Narrow on purpose so handler
// tests can substitute fakes.

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type CatalogService interface {
	CreateCompany(ctx context.Context, actor domain.Actor, name, companyDomain string) (catalog.Company, error)
	CreateProduct(ctx context.Context, actor domain.Actor, companyID domain.CompanyID, name, sku string) (catalog.Product, error)
	RenameProduct(ctx context.Context, actor domain.Actor, id domain.ProductID, name string) error
	DefineRequirement(ctx context.Context, actor domain.Actor, productID domain.ProductID, name, description string, requiredForExport bool, country string) (catalog.Requirement, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

type UserService interface {
	InviteVendor(ctx context.Context, actor domain.Actor, email string, companyID domain.CompanyID) (user.Invitation, error)
	AssignProduct(ctx context.Context, actor domain.Actor, vendorID domain.UserID, productID domain.ProductID) error
}

type OrderService interface {
	Create(ctx context.Context, actor domain.Actor, companyID domain.CompanyID) (order.Order, error)
	Accept(ctx context.Context, actor domain.Actor, orderID domain.OrderID) (order.Order, error)
	GenerateChecklist(ctx context.Context, actor domain.Actor, orderID domain.OrderID) ([]order.ChecklistItem, error)
	Checklist(ctx context.Context, orderID domain.OrderID) ([]order.ChecklistItem, error)
	Compliant(ctx context.Context, orderID domain.OrderID) (bool, error)
	Get(ctx context.Context, orderID domain.OrderID) (order.Order, error)
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]order.Order, error)
	ReviewQueue(ctx context.Context) ([]order.Order, error)
	OverrideStatus(ctx context.Context, actor domain.Actor, orderID domain.OrderID, to order.Status) (order.Order, error)
}

type DocumentService interface {
	UploadMaster(ctx context.Context, actor domain.Actor, upload document.Upload) (document.Document, error)
	Submit(ctx context.Context, actor domain.Actor, orderID domain.OrderID, requirementID domain.RequirementID, upload document.Upload) (document.Document, error)
	Approve(ctx context.Context, actor domain.Actor, documentID domain.DocumentID, signature string) (document.Document, error)
	Reject(ctx context.Context, actor domain.Actor, documentID domain.DocumentID, notes string) (document.Document, error)
	Get(ctx context.Context, documentID domain.DocumentID) (document.Document, error)
	ReviewQueue(ctx context.Context) ([]document.Document, error)
}

type ShipmentService interface {
	Create(ctx context.Context, actor domain.Actor, orderID domain.OrderID, input shipment.Input) (shipment.Shipment, error)
	MarkInTransit(ctx context.Context, actor domain.Actor, shipmentID domain.ShipmentID) (shipment.Shipment, error)
	MarkDelivered(ctx context.Context, actor domain.Actor, shipmentID domain.ShipmentID) (shipment.Shipment, error)
	Get(ctx context.Context, shipmentID domain.ShipmentID) (shipment.Shipment, error)
	ListByOrder(ctx context.Context, orderID domain.OrderID) ([]shipment.Shipment, error)
}

type EvidenceService interface {
	Build(ctx context.Context, actor domain.Actor, orderID domain.OrderID) (evidence.Pack, error)
	ExportXLSX(ctx context.Context, actor domain.Actor, orderID domain.OrderID) ([]byte, error)
}

type AuditService interface {
	Query(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type StatsService interface {
	Dashboard(ctx context.Context) (stats.Dashboard, error)
}

// AnchorReader serves confirmed anchors on the document detail view.
type AnchorReader interface {
	ListByDocuments(ctx context.Context, documentIDs []domain.DocumentID) ([]anchor.Anchor, error)
}

// Server bundles everything the router needs.
type Server struct {
	auth      AuthService
	catalog   CatalogService
	users     UserService
	orders    OrderService
	documents DocumentService
	shipments ShipmentService
	evidence  EvidenceService
	audits    AuditService
	stats     StatsService
	anchors   AnchorReader
	verifier  *auth.Verifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewServer(
	authSvc AuthService,
	catalogSvc CatalogService,
	userSvc UserService,
	orderSvc OrderService,
	documentSvc DocumentService,
	shipmentSvc ShipmentService,
	evidenceSvc EvidenceService,
	auditSvc AuditService,
	statsSvc StatsService,
	anchors AnchorReader,
	verifier *auth.Verifier,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Server {
	return &Server{
		auth:      authSvc,
		catalog:   catalogSvc,
		users:     userSvc,
		orders:    orderSvc,
		documents: documentSvc,
		shipments: shipmentSvc,
		evidence:  evidenceSvc,
		audits:    auditSvc,
		stats:     statsSvc,
		anchors:   anchors,
		verifier:  verifier,
		logger:    logger,
		metrics:   m,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.instrument)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/login", s.handleLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(s.verifier, s.logger))

		// Admin: catalog, accounts and order administration.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(s.logger, domain.RoleAdmin))
			r.Post("/companies", s.handleCreateCompany)
			r.Post("/products", s.handleCreateProduct)
			r.Patch("/products/{productID}", s.handleRenameProduct)
			r.Post("/products/{productID}/requirements", s.handleDefineRequirement)
			r.Post("/vendors", s.handleInviteVendor)
			r.Post("/vendors/{vendorID}/products/{productID}", s.handleAssignVendor)
			r.Post("/orders", s.handleCreateOrder)
			r.Post("/orders/{orderID}/accept", s.handleAcceptOrder)
			r.Post("/orders/{orderID}/checklist", s.handleGenerateChecklist)
			r.Patch("/orders/{orderID}/status", s.handleOverrideStatus)
			r.Post("/documents/master", s.handleUploadMaster)
		})

		// Vendor: submissions and shipping.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(s.logger, domain.RoleVendor))
			r.Get("/vendor/orders", s.handleVendorOrders)
			r.Post("/orders/{orderID}/requirements/{requirementID}/documents", s.handleSubmitDocument)
			r.Post("/orders/{orderID}/shipments", s.handleCreateShipment)
			r.Post("/shipments/{shipmentID}/in-transit", s.handleShipmentInTransit)
			r.Post("/shipments/{shipmentID}/delivered", s.handleShipmentDelivered)
		})

		// QA: the review queue.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(s.logger, domain.RoleQAReviewer))
			r.Get("/review/documents", s.handleReviewDocuments)
			r.Get("/review/orders", s.handleReviewOrders)
			r.Post("/documents/{documentID}/approve", s.handleApproveDocument)
			r.Post("/documents/{documentID}/reject", s.handleRejectDocument)
		})

		// Auditor: the trail and evidence packs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(s.logger, domain.RoleAuditor, domain.RoleAdmin))
			r.Get("/audit-trail", s.handleAuditTrail)
			r.Get("/orders/{orderID}/evidence", s.handleEvidencePack)
			r.Get("/orders/{orderID}/evidence.xlsx", s.handleEvidenceExport)
		})

		// Any authenticated role.
		r.Get("/products", s.handleListProducts)
		r.Get("/orders/{orderID}", s.handleGetOrder)
		r.Get("/orders/{orderID}/checklist", s.handleGetChecklist)
		r.Get("/orders/{orderID}/compliance", s.handleGetCompliance)
		r.Get("/orders/{orderID}/shipments", s.handleListShipments)
		r.Get("/shipments/{shipmentID}", s.handleGetShipment)
		r.Get("/documents/{documentID}", s.handleGetDocument)
		r.Get("/stats/dashboard", s.handleDashboard)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", request.GetRequestID(r.Context()),
			"client_ip", metadata.GetClientIP(r.Context()),
		)
	})
}

// instrument records request latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, r.Method, time.Since(start))
	})
}
