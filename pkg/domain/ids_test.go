package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pharmaops/pkg/domain-errors"
)

// TestParseUUID_Invariants validates that identifiers crossing a trust
// boundary must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseOrderID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseOrderID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseOrderID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid uuid", func(t *testing.T) {
		raw := uuid.NewString()
		id, err := ParseOrderID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
	})

	t.Run("accepts uppercase uuid", func(t *testing.T) {
		raw := strings.ToUpper(uuid.NewString())
		id, err := ParseDocumentID(raw)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(raw), id.String())
	})
}

func TestIDs_TypedDistinctness(t *testing.T) {
	// Same raw uuid, different types. String round-trips identically but the
	// compiler keeps the types apart; this documents the intent.
	raw := uuid.NewString()

	orderID, err := ParseOrderID(raw)
	require.NoError(t, err)
	docID, err := ParseDocumentID(raw)
	require.NoError(t, err)

	assert.Equal(t, orderID.String(), docID.String())
}

func TestIDs_IsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.True(t, OrderID{}.IsNil())
	assert.False(t, NewOrderID().IsNil())
}

func TestActor_System(t *testing.T) {
	assert.True(t, Actor{}.System())
	assert.False(t, Actor{ID: NewUserID(), Role: RoleAdmin}.System())
	assert.False(t, Actor{Role: RoleAdmin}.System())
}
