package fortigate

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirelark/fortidash/pkg/cache"
	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/models"
)

// newTestClient points a client at the TLS test server, trusting its
// self-signed certificate the way a deployment opts in for an appliance.
func newTestClient(t *testing.T, srv *httptest.Server, token string) *Client {
	t.Helper()

	u := srv.Listener.Addr().String()

	host, portStr, err := net.SplitHostPort(u)
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := &Config{
		Host:               host,
		Port:               port,
		APIToken:           token,
		Timeout:            models.Duration(5 * time.Second),
		InsecureSkipVerify: true,
	}

	return NewClient(cfg, cache.New("test", time.Minute), logger.NewTestLogger())
}

func TestClientUnconfigured(t *testing.T) {
	cfg := &Config{Host: "192.0.2.1"}
	client := NewClient(cfg, cache.New("test", time.Minute), logger.NewTestLogger())

	assert.False(t, client.Configured())

	_, err := client.Get(context.Background(), EndpointSystemStatus)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnconfigured)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept, gotPath string

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path

		_, _ = w.Write([]byte(`{"results":{},"status":"success"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "secret-token")

	_, err := client.Get(context.Background(), EndpointSystemStatus)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/api/v2/monitor/system/status", gotPath)
}

func TestClientCachesResponses(t *testing.T) {
	calls := 0

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		_, _ = w.Write([]byte(`{"results":[],"status":"success"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "tok")

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), EndpointArpTable)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, calls)
}

func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API token"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "bad-token")

	_, err := client.Get(context.Background(), EndpointSystemStatus)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUnauthorized, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid API token", apiErr.Message)
}

func TestClientForbiddenIsUnauthorized(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "tok")

	_, err := client.Get(context.Background(), EndpointSystemStatus)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientHTTPErrorWithoutBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "tok")

	_, err := client.Get(context.Background(), EndpointArpTable)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	client := newTestClient(t, srv, "tok")
	srv.Close()

	_, err := client.Get(context.Background(), EndpointSystemStatus)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindTransport, apiErr.Kind)
}

func TestClientErrorsAreNotCached(t *testing.T) {
	calls := 0

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "tok")

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), EndpointArpTable)
		require.Error(t, err)
	}

	assert.Equal(t, 2, calls)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{"bare path", "monitor/system/status", "/api/v2/monitor/system/status"},
		{"leading slash", "/monitor/system/arp", "/api/v2/monitor/system/arp"},
		{"already versioned", "/api/v2/monitor/wifi/managed_ap", "/api/v2/monitor/wifi/managed_ap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeEndpoint(tt.endpoint))
		})
	}
}
