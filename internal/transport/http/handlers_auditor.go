package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pharmaops/internal/audit"
	"pharmaops/internal/evidence"
	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/middleware/auth"
)

type auditEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.audits.Query(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := auditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Actor:     "system",
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.ActorID != nil {
			resp.Actor = e.ActorID.String()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func auditFilterFromQuery(r *http.Request) (audit.Filter, error) {
	var filter audit.Filter
	q := r.URL.Query()

	if raw := q.Get("actorId"); raw != "" {
		actorID, err := domain.ParseUserID(raw)
		if err != nil {
			return audit.Filter{}, err
		}
		filter.ActorID = &actorID
	}
	filter.Action = audit.Action(q.Get("action"))
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			filter.To = t
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	return filter, nil
}

type evidencePackResponse struct {
	Order       orderResponse           `json:"order"`
	Checklist   []checklistItemResponse `json:"checklist"`
	Documents   []documentResponse      `json:"documents"`
	Anchors     []anchorResponse        `json:"anchors"`
	Audit       []auditEntryResponse    `json:"auditTrail"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

type anchorResponse struct {
	DocumentID string    `json:"documentId"`
	TxHash     string    `json:"txHash"`
	Network    string    `json:"network"`
	AnchoredAt time.Time `json:"anchoredAt"`
}

func (s *Server) handleEvidencePack(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	pack, err := s.evidence.Build(r.Context(), auth.GetActor(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvidenceResponse(pack))
}

func (s *Server) handleEvidenceExport(w http.ResponseWriter, r *http.Request) {
	orderID, err := domain.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	workbook, err := s.evidence.ExportXLSX(r.Context(), auth.GetActor(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="evidence-`+orderID.String()+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func toEvidenceResponse(pack evidence.Pack) evidencePackResponse {
	resp := evidencePackResponse{
		Order:       toOrderResponse(pack.Order),
		Checklist:   toChecklistResponse(pack.Checklist),
		Documents:   toDocumentResponses(pack.Documents),
		GeneratedAt: pack.GeneratedAt,
	}
	for _, a := range pack.Anchors {
		resp.Anchors = append(resp.Anchors, anchorResponse{
			DocumentID: a.DocumentID.String(),
			TxHash:     a.TxHash,
			Network:    a.Network,
			AnchoredAt: a.AnchoredAt,
		})
	}
	for _, e := range pack.Audit {
		entry := auditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Actor:     "system",
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.ActorID != nil {
			entry.Actor = e.ActorID.String()
		}
		resp.Audit = append(resp.Audit, entry)
	}
	return resp
}
