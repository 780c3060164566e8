package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
	"github.com/gin-gonic/gin"
)

// SystemHandlers serve health and operator endpoints.
type SystemHandlers struct {
	cfg         *config.Config
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	started     time.Time
}

func NewSystemHandlers(cfg *config.Config, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		cfg:         cfg,
		logger:      logger,
		perfTracker: perfTracker,
		started:     time.Now(),
	}
}

// GetHealth handles GET /healthz
func (h *SystemHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"environment": h.cfg.AppEnv,
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"payments":    h.cfg.PaymentsConfigured(),
		"webhooks":    h.cfg.WebhookConfigured(),
		"email":       h.cfg.EmailConfigured(),
	})
}

// GetLogLevels handles GET /debug/log-levels - returns current log levels for all channels.
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles POST /debug/log-levels - sets the log level for a specific channel.
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	switch strings.ToUpper(req.Level) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}
	level := logging.ParseLevel(req.Level)

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, level)})
}

// GetPerformance handles GET /debug/performance
func (h *SystemHandlers) GetPerformance(c *gin.Context) {
	snapshot := h.perfTracker.Snapshot()
	out := make(gin.H, len(snapshot))
	for op, s := range snapshot {
		out[op] = gin.H{
			"count":    s.Count,
			"failures": s.Failures,
			"slow":     s.Slow,
			"average":  s.Average().String(),
			"max":      s.Max.String(),
		}
	}
	c.JSON(http.StatusOK, out)
}
