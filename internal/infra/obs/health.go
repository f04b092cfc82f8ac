package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers serves the liveness and readiness probes. Ready is
// consulted on every readiness check; leaving it nil reports ready, which
// is what the in-memory storage mode wants.
type HealthHandlers struct {
	Ready func() error
}

// Livez answers as long as the process accepts requests.
func (h HealthHandlers) Livez(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Readyz reports whether backing stores are reachable.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
