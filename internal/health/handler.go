package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves the actuator health endpoints.
type Handler struct {
	checker *Checker
}

// NewHandler creates a handler around the given checker.
func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

// Register mounts the actuator endpoints on the given router group.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/actuator/health", h.Health)
	r.GET("/actuator/health/liveness", h.Liveness)
	r.GET("/actuator/health/readiness", h.Readiness)
}

// Health handles GET /actuator/health.
func (h *Handler) Health(c *gin.Context) {
	response := h.checker.Check(c.Request.Context())

	status := http.StatusOK
	if response.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// Liveness handles GET /actuator/health/liveness. It reports UP as long
// as the process is serving requests.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Status: StatusUp})
}

// Readiness handles GET /actuator/health/readiness. Readiness runs the
// registered checks so the gateway is only routable once its upstream
// is reachable.
func (h *Handler) Readiness(c *gin.Context) {
	h.Health(c)
}
