package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/canal-etico/gateway/internal/config"
	"github.com/canal-etico/gateway/internal/health"
)

// ginModeOnce ensures gin.SetMode is only called once.
var ginModeOnce sync.Once

// Options holds the collaborators assembled into the server.
type Options struct {
	// Config holds listener and timeout settings.
	Config config.ServerConfig

	// Logger for server lifecycle events.
	Logger *zap.Logger

	// Middleware is the ordered middleware chain installed on the
	// engine before any route is registered.
	Middleware []gin.HandlerFunc

	// Health serves the actuator endpoints. Optional.
	Health *health.Handler

	// Forwarder handles every request not served locally. Optional;
	// without it unmatched requests get a 404.
	Forwarder http.Handler

	// MetricsGatherer backs the /metrics endpoint. Defaults to the
	// Prometheus default gatherer.
	MetricsGatherer prometheus.Gatherer
}

// Server is the gateway HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     config.ServerConfig
	logger     *zap.Logger

	mu      sync.RWMutex
	addr    net.Addr
	running bool
}

// New assembles a server from the given options.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MetricsGatherer == nil {
		opts.MetricsGatherer = prometheus.DefaultGatherer
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()
	engine.Use(opts.Middleware...)

	if opts.Health != nil {
		opts.Health.Register(engine)
	}

	// The metrics endpoint sits behind the same middleware chain as
	// everything else. It is protected unless the operator lists
	// /metrics as a public prefix.
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		opts.MetricsGatherer,
		promhttp.HandlerOpts{},
	)))

	if opts.Forwarder != nil {
		engine.NoRoute(gin.WrapH(opts.Forwarder))
	} else {
		engine.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "no upstream configured",
			})
		})
	}

	return &Server{
		engine: engine,
		config: opts.Config,
		logger: opts.Logger,
	}
}

// Handler returns the assembled HTTP handler. Used by tests and by
// callers embedding the gateway in a larger server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start binds the listener and serves until Stop is called or the
// listener fails. It blocks, so callers usually run it in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.addr = listener.Addr()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		zap.String("address", listener.Addr().String()),
		zap.Duration("readTimeout", s.config.ReadTimeout),
		zap.Duration("writeTimeout", s.config.WriteTimeout),
	)

	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}
