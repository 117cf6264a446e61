package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid http upstream",
			config:  Config{UpstreamURL: "http://app:8080"},
			wantErr: false,
		},
		{
			name:    "valid https upstream",
			config:  Config{UpstreamURL: "https://app.internal"},
			wantErr: false,
		},
		{
			name:    "missing upstream",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			config:  Config{UpstreamURL: "ftp://app:21"},
			wantErr: true,
		},
		{
			name:    "missing host",
			config:  Config{UpstreamURL: "http://"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  Config{UpstreamURL: "http://app:8080", Timeout: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForwarder_ForwardsToUpstream(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(r.Context())
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer upstream.Close()

	forwarder, err := NewForwarder(Config{UpstreamURL: upstream.URL})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/denuncia/track/42?ref=abc", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Host = "gateway.example.org"
	w := httptest.NewRecorder()
	forwarder.ServeHTTP(w, r)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Upstream"))

	require.NotNil(t, seen)
	assert.Equal(t, "/denuncia/track/42", seen.URL.Path)
	assert.Equal(t, "ref=abc", seen.URL.RawQuery)
	assert.Equal(t, "203.0.113.9", seen.Header.Get("X-Forwarded-For"))
	assert.Equal(t, "http", seen.Header.Get("X-Forwarded-Proto"))
	assert.Equal(t, "gateway.example.org", seen.Header.Get("X-Forwarded-Host"))
}

func TestForwarder_PrefixesUpstreamBasePath(t *testing.T) {
	t.Parallel()

	var seenPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	forwarder, err := NewForwarder(Config{UpstreamURL: upstream.URL + "/app"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	forwarder.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff/cases", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/app/staff/cases", seenPath)
}

func TestForwarder_StripsHopHeaders(t *testing.T) {
	t.Parallel()

	var seen http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	forwarder, err := NewForwarder(Config{UpstreamURL: upstream.URL})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/denuncia", nil)
	r.Header.Set("Proxy-Authorization", "Basic secret")
	r.Header.Set("Keep-Alive", "timeout=5")
	w := httptest.NewRecorder()
	forwarder.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen.Get("Proxy-Authorization"))
	assert.Empty(t, seen.Get("Keep-Alive"))
}

func TestForwarder_UnreachableUpstream(t *testing.T) {
	t.Parallel()

	metrics := NewMetricsWithRegisterer("test", nil)
	forwarder, err := NewForwarder(
		Config{UpstreamURL: "http://127.0.0.1:1"},
		WithMetrics(metrics),
	)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	forwarder.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "bad_gateway")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestForwarder_UpstreamTimeout(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer upstream.Close()

	forwarder, err := NewForwarder(Config{
		UpstreamURL: upstream.URL,
		Timeout:     50 * time.Millisecond,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	forwarder.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "gateway_timeout")
}

func TestNewForwarder_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewForwarder(Config{UpstreamURL: "not a url"})
	assert.Error(t, err)
}

func TestSingleJoiningSlash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/app/x", singleJoiningSlash("/app", "/x"))
	assert.Equal(t, "/app/x", singleJoiningSlash("/app/", "/x"))
	assert.Equal(t, "/app/x", singleJoiningSlash("/app", "x"))
}
