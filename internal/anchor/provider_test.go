package anchor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

func TestNotaryClient_AnchorDocument(t *testing.T) {
	t.Run("returns the tx hash", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/anchors", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "document", req["kind"])
			assert.Equal(t, "abc123", req["hash"])

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"txHash": "0xfeed"})
		}))
		defer srv.Close()

		client := NewNotaryClient(srv.URL, 5*time.Second)
		txHash, err := client.AnchorDocument(context.Background(), "abc123", "1.0")
		require.NoError(t, err)
		assert.Equal(t, "0xfeed", txHash)
	})

	t.Run("5xx maps to unavailability", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewNotaryClient(srv.URL, 5*time.Second)
		_, err := client.AnchorDocument(context.Background(), "abc123", "1.0")
		assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	})

	t.Run("missing tx hash is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		client := NewNotaryClient(srv.URL, 5*time.Second)
		_, err := client.AnchorDocument(context.Background(), "abc123", "1.0")
		assert.Error(t, err)
	})
}

func TestNotaryClient_RecordShipment(t *testing.T) {
	shipmentID := domain.NewShipmentID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "shipment", req["kind"])
		assert.Equal(t, shipmentID.String(), req["shipmentId"])
		assert.Equal(t, "SHIPMENT_DELIVERED", req["eventType"])

		_ = json.NewEncoder(w).Encode(map[string]string{"txHash": "0xbeef"})
	}))
	defer srv.Close()

	client := NewNotaryClient(srv.URL, 5*time.Second)
	txHash, err := client.RecordShipment(context.Background(), shipmentID, "SHIPMENT_DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", txHash)
}

func TestMockProvider(t *testing.T) {
	t.Run("deterministic success", func(t *testing.T) {
		p := MockProvider{}
		txHash, err := p.AnchorDocument(context.Background(), "abcdef0123456789", "1.0")
		require.NoError(t, err)
		assert.Equal(t, "0xmock-abcdef012345", txHash)
	})

	t.Run("configured failure", func(t *testing.T) {
		p := MockProvider{Fail: true}
		_, err := p.AnchorDocument(context.Background(), "abc", "1.0")
		assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	})
}
