package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pharmaops/pkg/domain-errors"
)

// stubAuth authenticates exactly one credential pair.
type stubAuth struct {
	email, password, token string
}

func (a *stubAuth) Login(_ context.Context, email, password string) (string, error) {
	if email != a.email || password != a.password {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return a.token, nil
}

func TestHandleLogin(t *testing.T) {
	stub := &stubAuth{email: "qa@pharmaops.example", password: "s3cret", token: "signed-token"}
	server := NewServer(stub, nil, nil, nil, nil, nil, nil, nil, nil, nil,
		nil, slog.New(slog.DiscardHandler), nil)
	router := server.Router()

	t.Run("valid credentials return the token - 200", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/login", "",
			loginRequest{Email: stub.email, Password: stub.password})

		require.Equal(t, http.StatusOK, w.Code)
		var got loginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "signed-token", got.Token)
	})

	t.Run("bad credentials - 401", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/login", "",
			loginRequest{Email: stub.email, Password: "wrong"})

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var errBody errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errBody))
		assert.Equal(t, string(dErrors.CodeUnauthorized), errBody.Error)
	})

	t.Run("malformed email - 400", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/login", "",
			loginRequest{Email: "not-an-email", Password: "s3cret"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json - 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{bad-json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
