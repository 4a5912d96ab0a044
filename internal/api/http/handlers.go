package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/guard"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// Version is reported by the root endpoint.
const Version = "0.3.0"

// Guard is the orchestrator surface served over HTTP.
type Guard interface {
	HandleMessage(ctx context.Context, data []byte) guard.Response
	HandleNavigation(ctx context.Context, ev types.NavigationEvent) (types.Decision, error)
	Stats() guard.Stats
}

// Status reports the health of collaborators.
type Status struct {
	BridgeConnected func() bool
	BreakerState    func() string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	guard  Guard
	status Status
	logger *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(g Guard, status Status, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{guard: g, status: status, logger: logger.Named("http")}
}

// Register mounts the handlers on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	r.POST("/messages", h.Message)
	r.POST("/events/navigation", h.Navigation)
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "SafeWaters guard",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "healthy"}
	if h.status.BridgeConnected != nil {
		body["bridge_connected"] = h.status.BridgeConnected()
	}
	if h.status.BreakerState != nil {
		body["classifier_breaker"] = h.status.BreakerState()
	}
	c.JSON(http.StatusOK, body)
}

// Stats returns the guard's lifetime counters
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.guard.Stats())
}

// Message handles one extension message. Handled failures are answered
// with 200 and success=false, as over the bridge.
func (h *Handlers) Message(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, guard.Response{Error: "request body required"})
		return
	}
	c.JSON(http.StatusOK, h.guard.HandleMessage(c.Request.Context(), data))
}

// Navigation handles one navigation lifecycle event
func (h *Handlers) Navigation(c *gin.Context) {
	var ev types.NavigationEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.logger.Debug("Invalid navigation event", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"decision": types.DecisionAllow, "error": err.Error()})
		return
	}

	decision, err := h.guard.HandleNavigation(c.Request.Context(), ev)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"decision": decision, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": decision})
}
