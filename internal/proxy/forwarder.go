package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/canal-etico/gateway/internal/observability"
)

// hopHeaders are headers that must not be forwarded upstream.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ErrInvalidUpstream indicates that the configured upstream URL cannot
// be used as a forward target.
var ErrInvalidUpstream = errors.New("invalid upstream URL")

// Config holds forwarder configuration.
type Config struct {
	// UpstreamURL is the base URL of the application server, for
	// example "http://app:8080".
	UpstreamURL string `yaml:"upstreamUrl"`

	// Timeout bounds a single upstream exchange. Zero disables the
	// per-request deadline.
	Timeout time.Duration `yaml:"timeout"`

	// FlushInterval is passed to the underlying reverse proxy.
	// Negative means flush immediately.
	FlushInterval time.Duration `yaml:"flushInterval"`

	// MaxIdleConns bounds the idle connection pool to the upstream.
	MaxIdleConns int `yaml:"maxIdleConns"`

	// IdleConnTimeout is how long idle upstream connections are kept.
	IdleConnTimeout time.Duration `yaml:"idleConnTimeout"`
}

// DefaultConfig returns forwarder defaults suitable for a single
// upstream application server.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		FlushInterval:   -1,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Validate checks the forwarder configuration.
func (c Config) Validate() error {
	if c.UpstreamURL == "" {
		return fmt.Errorf("%w: upstream URL is required", ErrInvalidUpstream)
	}
	target, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpstream, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidUpstream, target.Scheme)
	}
	if target.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidUpstream)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Forwarder proxies requests to the configured upstream.
type Forwarder struct {
	target  *url.URL
	proxy   *httputil.ReverseProxy
	logger  observability.Logger
	metrics *Metrics
	timeout time.Duration
}

// Option is a functional option for configuring the forwarder.
type Option func(*Forwarder)

// WithLogger sets the logger for the forwarder.
func WithLogger(logger observability.Logger) Option {
	return func(f *Forwarder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector for the forwarder.
func WithMetrics(metrics *Metrics) Option {
	return func(f *Forwarder) {
		f.metrics = metrics
	}
}

// WithTransport overrides the upstream transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Forwarder) {
		f.proxy.Transport = transport
	}
}

// NewForwarder creates a forwarder for the configured upstream.
func NewForwarder(config Config, opts ...Option) (*Forwarder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	target, err := url.Parse(config.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpstream, err)
	}

	f := &Forwarder{
		target:  target,
		logger:  observability.NopLogger(),
		timeout: config.Timeout,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     config.IdleConnTimeout,
	}

	f.proxy = &httputil.ReverseProxy{
		Director:      f.director,
		Transport:     transport,
		FlushInterval: config.FlushInterval,
		ErrorHandler:  f.handleError,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Target returns the upstream base URL.
func (f *Forwarder) Target() *url.URL {
	return f.target
}

// ServeHTTP implements http.Handler.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if f.timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), f.timeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	f.proxy.ServeHTTP(w, r)

	f.metrics.ObserveUpstreamDuration(time.Since(start))
}

// director rewrites the request for the upstream target.
func (f *Forwarder) director(req *http.Request) {
	req.URL.Scheme = f.target.Scheme
	req.URL.Host = f.target.Host
	if f.target.Path != "" && f.target.Path != "/" {
		req.URL.Path = singleJoiningSlash(f.target.Path, req.URL.Path)
	}

	for _, h := range hopHeaders {
		req.Header.Del(h)
	}

	if clientIP, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		if prior := req.Header.Get("X-Forwarded-For"); prior != "" {
			clientIP = prior + ", " + clientIP
		}
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	if req.TLS != nil {
		req.Header.Set("X-Forwarded-Proto", "https")
	} else {
		req.Header.Set("X-Forwarded-Proto", "http")
	}
	req.Header.Set("X-Forwarded-Host", req.Host)

	req.Host = f.target.Host
}

// handleError translates upstream failures into JSON error responses.
func (f *Forwarder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	errorType := "upstream_error"
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		errorType = "upstream_timeout"
	}

	f.metrics.RecordError(errorType)
	f.logger.WithContext(r.Context()).Error("upstream request failed",
		observability.String("method", r.Method),
		observability.String("path", r.URL.Path),
		observability.String("upstream", f.target.Host),
		observability.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusGatewayTimeout {
		_, _ = io.WriteString(w, `{"error":"gateway_timeout","message":"upstream did not respond in time"}`)
		return
	}
	_, _ = io.WriteString(w, `{"error":"bad_gateway","message":"failed to reach upstream"}`)
}

// singleJoiningSlash joins a base path and a request path with exactly
// one slash between them.
func singleJoiningSlash(a, b string) string {
	aSlash := len(a) > 0 && a[len(a)-1] == '/'
	bSlash := len(b) > 0 && b[0] == '/'
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	}
	return a + b
}
