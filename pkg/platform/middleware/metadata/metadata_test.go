package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	newReq := func(remoteAddr string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remoteAddr
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"X-Forwarded-For single", newReq("10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.7"}), "203.0.113.7"},
		{"X-Forwarded-For chain takes the first hop", newReq("10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}), "203.0.113.7"},
		{"X-Real-IP fallback", newReq("10.0.0.1:1234", map[string]string{"X-Real-IP": "198.51.100.4"}), "198.51.100.4"},
		{"RemoteAddr strips the port", newReq("192.0.2.9:5555", nil), "192.0.2.9"},
		{"IPv6 RemoteAddr", newReq("[::1]:5555", nil), "[::1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientIPFromRequest(tt.req))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = GetClientIP(r.Context())
		gotUA = GetUserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:5555"
	req.Header.Set("User-Agent", "pharmaops-cli/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.9", gotIP)
	assert.Equal(t, "pharmaops-cli/1.0", gotUA)
}

func TestWithClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "203.0.113.7", "curl/8")
	assert.Equal(t, "203.0.113.7", GetClientIP(ctx))
	assert.Equal(t, "curl/8", GetUserAgent(ctx))
}
