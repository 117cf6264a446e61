package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/canal-etico/gateway/internal/auth"
	"github.com/canal-etico/gateway/internal/config"
	"github.com/canal-etico/gateway/internal/health"
	"github.com/canal-etico/gateway/internal/middleware"
	"github.com/canal-etico/gateway/internal/observability"
	"github.com/canal-etico/gateway/internal/policy"
	"github.com/canal-etico/gateway/internal/proxy"
	"github.com/canal-etico/gateway/internal/security"
	"github.com/canal-etico/gateway/internal/server"
)

// metricsNamespace is the Prometheus namespace shared by all gateway
// metrics.
const metricsNamespace = "gateway"

// application holds all wired gateway components.
type application struct {
	config *config.Config
	logger observability.Logger
	tracer *observability.Tracer
	server *server.Server
}

// newApplication wires the gateway components from the loaded
// configuration.
func newApplication(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*application, error) {
	logger := observability.NewLoggerWithZap(zlog)

	tracer, err := observability.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	policyMetrics := policy.NewMetrics(metricsNamespace)
	policyMetrics.Init()

	pathPolicy, err := policy.New(cfg.Policy, policy.WithMetrics(policyMetrics))
	if err != nil {
		return nil, fmt.Errorf("failed to build path policy: %w", err)
	}

	verifier, err := auth.NewVerifier(ctx, &cfg.Auth, auth.WithVerifierLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	var signer security.Signer
	if cfg.Signing.Enabled {
		signer, err = security.NewHMACSigner([]byte(cfg.Signing.Key))
		if err != nil {
			return nil, fmt.Errorf("failed to create origin signer: %w", err)
		}
	}

	forwarder, err := proxy.NewForwarder(cfg.Upstream,
		proxy.WithLogger(logger),
		proxy.WithMetrics(proxy.NewMetrics(metricsNamespace)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream forwarder: %w", err)
	}

	checker := health.NewChecker()
	checker.Register("upstream", health.UpstreamCheck(forwarder.Target()))

	srv := server.New(server.Options{
		Config:     cfg.Server,
		Logger:     zlog,
		Middleware: buildMiddlewareChain(cfg, pathPolicy, verifier, signer, zlog),
		Health:     health.NewHandler(checker),
		Forwarder:  forwarder,
	})

	return &application{
		config: cfg,
		logger: logger,
		tracer: tracer,
		server: srv,
	}, nil
}

// buildMiddlewareChain assembles the ordered middleware chain. Access
// control runs last so every rejected request is still logged and
// rate limited.
func buildMiddlewareChain(
	cfg *config.Config,
	pathPolicy *policy.PathPolicy,
	verifier auth.Verifier,
	signer security.Signer,
	zlog *zap.Logger,
) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		middleware.Recovery(zlog),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: zlog,
			SkipPaths: []string{
				"/actuator/health",
				"/actuator/health/liveness",
				"/actuator/health/readiness",
			},
		}),
	}

	if cfg.Tracing.Enabled {
		chain = append(chain, middleware.Tracing(cfg.Tracing.ServiceName))
	}

	if cfg.RateLimit.Enabled {
		chain = append(chain, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Logger:            zlog,
		}))
	}

	chain = append(chain, middleware.AccessControl(middleware.AccessControlConfig{
		Policy:   pathPolicy,
		Verifier: verifier,
		Signer:   signer,
		Logger:   zlog,
	}))

	return chain
}
