package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Chain(t *testing.T) {
	t.Run("wrap preserves the cause", func(t *testing.T) {
		cause := errors.New("row not found")
		err := Wrap(cause, CodeNotFound, "load order")

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "not_found")
		assert.Contains(t, err.Error(), "row not found")
	})

	t.Run("HasCode sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeCompliance, "gate failed"))
		assert.True(t, HasCode(err, CodeCompliance))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("CodeOf defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
		assert.Equal(t, CodeForbidden, CodeOf(New(CodeForbidden, "nope")))
	})
}

func TestError_WithDetails(t *testing.T) {
	base := New(CodeCompliance, "order is not cleared for shipping")
	detailed := base.WithDetails(map[string]any{"approvedDocs": 2, "requiredDocs": 5})

	require.NotSame(t, base, detailed)
	assert.Nil(t, base.Details)
	assert.Equal(t, 2, detailed.Details["approvedDocs"])
	assert.Equal(t, CodeCompliance, detailed.Code)
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeValidation:   http.StatusBadRequest,
		CodeBadRequest:   http.StatusBadRequest,
		CodeCompliance:   http.StatusConflict,
		CodeConflict:     http.StatusConflict,
		CodeTimeout:      http.StatusGatewayTimeout,
		CodeInternal:     http.StatusInternalServerError,
		CodeAnchorFailed: http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
