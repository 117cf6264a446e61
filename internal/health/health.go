package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status is an aggregate or per-component health status.
type Status string

const (
	// StatusUp indicates the component is operational.
	StatusUp Status = "UP"
	// StatusDown indicates the component is failing.
	StatusDown Status = "DOWN"
)

// Component is the result of a single health check.
type Component struct {
	Status  Status            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

// Response is the aggregate health response.
type Response struct {
	Status     Status               `json:"status"`
	Components map[string]Component `json:"components,omitempty"`
}

// CheckFunc performs one health check. Implementations must honor the
// context deadline.
type CheckFunc func(ctx context.Context) Component

// Checker aggregates registered health checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// CheckerOption is a functional option for configuring the checker.
type CheckerOption func(*Checker)

// WithCheckTimeout bounds the time spent running all checks.
func WithCheckTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewChecker creates a health checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds a named health check. Registering the same name again
// replaces the previous check.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Unregister removes a named health check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Check runs every registered check and aggregates the result. The
// aggregate is DOWN if any component is DOWN.
func (c *Checker) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	response := Response{
		Status:     StatusUp,
		Components: make(map[string]Component, len(names)),
	}
	for _, name := range names {
		component := checks[name](ctx)
		response.Components[name] = component
		if component.Status == StatusDown {
			response.Status = StatusDown
		}
	}
	return response
}
