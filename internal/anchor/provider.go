package anchor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
)

// Provider submits provenance events to the notary bridge and returns the
// resulting transaction hash.
type Provider interface {
	AnchorDocument(ctx context.Context, fileHash, version string) (string, error)
	RecordShipment(ctx context.Context, shipmentID domain.ShipmentID, eventType string) (string, error)
}

// NotaryClient talks to the HTTP notary bridge in front of the ledger.
type NotaryClient struct {
	baseURL string
	http    *http.Client
}

func NewNotaryClient(baseURL string, timeout time.Duration) *NotaryClient {
	return &NotaryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type notaryRequest struct {
	Kind       string `json:"kind"`
	Hash       string `json:"hash,omitempty"`
	Version    string `json:"version,omitempty"`
	ShipmentID string `json:"shipmentId,omitempty"`
	EventType  string `json:"eventType,omitempty"`
}

type notaryResponse struct {
	TxHash string `json:"txHash"`
}

func (c *NotaryClient) AnchorDocument(ctx context.Context, fileHash, version string) (string, error) {
	return c.submit(ctx, notaryRequest{Kind: string(KindDocument), Hash: fileHash, Version: version})
}

func (c *NotaryClient) RecordShipment(ctx context.Context, shipmentID domain.ShipmentID, eventType string) (string, error) {
	return c.submit(ctx, notaryRequest{Kind: string(KindShipment), ShipmentID: shipmentID.String(), EventType: eventType})
}

func (c *NotaryClient) submit(ctx context.Context, payload notaryRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal notary request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/anchors", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build notary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call notary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("notary returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("notary returned %d", resp.StatusCode)
	}

	var out notaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode notary response: %w", err)
	}
	if out.TxHash == "" {
		return "", fmt.Errorf("notary response missing txHash")
	}
	return out.TxHash, nil
}

// MockProvider anchors against deterministic data with a configurable latency
// and failure mode, mimicking real ledger round-trips for development and
// tests.
type MockProvider struct {
	Latency time.Duration
	// Fail makes every call return an unavailability error.
	Fail bool
}

func (p MockProvider) AnchorDocument(_ context.Context, fileHash, _ string) (string, error) {
	time.Sleep(p.Latency)
	if p.Fail {
		return "", sentinel.ErrUnavailable
	}
	return "0xmock-" + shortRef(fileHash), nil
}

func (p MockProvider) RecordShipment(_ context.Context, shipmentID domain.ShipmentID, _ string) (string, error) {
	time.Sleep(p.Latency)
	if p.Fail {
		return "", sentinel.ErrUnavailable
	}
	return "0xmock-" + shortRef(shipmentID.String()), nil
}

func shortRef(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	if s == "" {
		return uuid.NewString()[:12]
	}
	return s
}
