package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pharmaops/internal/document"
	"pharmaops/internal/transport/http/mocks"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/middleware/auth"
)

//go:generate mockgen -destination=mocks/document-mocks.go -package=mocks pharmaops/internal/transport/http DocumentService

const testSigningKey = "handler-test-signing-key"

func signToken(t *testing.T, actor domain.Actor) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  actor.ID.String(),
		"role": string(actor.Role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func newTestRouter(docs DocumentService) http.Handler {
	server := NewServer(nil, nil, nil, nil, docs, nil, nil, nil, nil, nil,
		auth.NewVerifier(testSigningKey), slog.New(slog.DiscardHandler), nil)
	return server.Router()
}

func doRequest(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleApproveDocument(t *testing.T) {
	qa := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleQAReviewer}
	token := signToken(t, qa)
	docID := domain.NewDocumentID()

	t.Run("approves and returns the document - 200", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		approved := document.Document{
			ID:      docID,
			Title:   "GMP Certificate",
			DocType: document.TypeTransactional,
			Version: "1.0",
			Status:  document.StatusApproved,
		}
		mockDocs.EXPECT().
			Approve(gomock.Any(), qa, docID, "sig:qa-reviewer").
			Return(approved, nil).
			Times(1)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/approve", token,
			approveDocumentRequest{Signature: "sig:qa-reviewer"})

		require.Equal(t, http.StatusOK, w.Code)
		var got documentResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, docID.String(), got.ID)
		assert.Equal(t, string(document.StatusApproved), got.Status)
	})

	t.Run("missing signature never reaches the service - 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/approve", token,
			approveDocumentRequest{Signature: ""})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var errBody errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, string(dErrors.CodeValidation), errBody.Error)
	})

	t.Run("malformed document id - 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/not-a-uuid/approve", token,
			approveDocumentRequest{Signature: "sig:qa-reviewer"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("workflow conflict surfaces as 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().
			Approve(gomock.Any(), qa, docID, "sig:qa-reviewer").
			Return(document.Document{}, dErrors.New(dErrors.CodeConflict, "document is not in review"))

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/approve", token,
			approveDocumentRequest{Signature: "sig:qa-reviewer"})

		require.Equal(t, http.StatusConflict, w.Code)
		var errBody errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, string(dErrors.CodeConflict), errBody.Error)
		assert.Equal(t, "document is not in review", errBody.Message)
	})
}

func TestHandleRejectDocument(t *testing.T) {
	qa := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleQAReviewer}
	token := signToken(t, qa)
	docID := domain.NewDocumentID()

	t.Run("rejects with notes - 200", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().
			Reject(gomock.Any(), qa, docID, "hash mismatch on page 3").
			Return(document.Document{ID: docID, Status: document.StatusRejected}, nil)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/reject", token,
			rejectDocumentRequest{Notes: "hash mismatch on page 3"})

		require.Equal(t, http.StatusOK, w.Code)
		var got documentResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, string(document.StatusRejected), got.Status)
	})

	t.Run("empty notes never reach the service - 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().Reject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/reject", token,
			rejectDocumentRequest{Notes: ""})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleReviewDocuments(t *testing.T) {
	qa := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleQAReviewer}

	ctrl := gomock.NewController(t)
	mockDocs := mocks.NewMockDocumentService(ctrl)
	mockDocs.EXPECT().ReviewQueue(gomock.Any()).Return([]document.Document{
		{ID: domain.NewDocumentID(), Status: document.StatusInReview},
		{ID: domain.NewDocumentID(), Status: document.StatusInReview},
	}, nil)

	w := doRequest(t, newTestRouter(mockDocs), http.MethodGet,
		"/api/review/documents", signToken(t, qa), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []documentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
}

func TestRouterAccessControl(t *testing.T) {
	docID := domain.NewDocumentID()

	t.Run("missing token - 401", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/approve", "",
			approveDocumentRequest{Signature: "sig"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another key - 401", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		router := newTestRouter(mocks.NewMockDocumentService(ctrl))

		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  domain.NewUserID().String(),
			"role": string(domain.RoleQAReviewer),
		}).SignedString([]byte("some-other-key"))
		require.NoError(t, err)

		w := doRequest(t, router, http.MethodGet, "/api/review/documents", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("vendor cannot approve - 403", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDocs := mocks.NewMockDocumentService(ctrl)
		mockDocs.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		vendor := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleVendor}
		w := doRequest(t, newTestRouter(mockDocs), http.MethodPost,
			"/api/documents/"+docID.String()+"/approve", signToken(t, vendor),
			approveDocumentRequest{Signature: "sig"})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("health needs no token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		w := doRequest(t, newTestRouter(mocks.NewMockDocumentService(ctrl)),
			http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
