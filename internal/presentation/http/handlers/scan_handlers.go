package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/services"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/funnel"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	URL string `json:"url"`
}

// LeadRequest is the body of POST /leads.
type LeadRequest struct {
	ScanID string    `json:"scanId"`
	Lead   user.Lead `json:"leadData"`
}

// FunnelHandlers serve the scan, lead capture and content endpoints.
type FunnelHandlers struct {
	funnelService *services.FunnelService
	logger        *logging.ChanneledLogger
}

// NewFunnelHandlers creates funnel handlers with injected dependencies
func NewFunnelHandlers(funnelService *services.FunnelService, logger *logging.ChanneledLogger) *FunnelHandlers {
	return &FunnelHandlers{
		funnelService: funnelService,
		logger:        logger,
	}
}

// PostScan handles POST /scan
func (h *FunnelHandlers) PostScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	started, err := h.funnelService.StartScan(req.URL)
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelFunnel, "scan.start"), err, "Failed to start scan")
		return
	}
	c.JSON(http.StatusOK, started)
}

// StreamScan handles GET /scan/stream?url= as server-sent events.
func (h *FunnelHandlers) StreamScan(c *gin.Context) {
	raw := c.Query("url")
	if _, err := funnel.NormalizeURL(raw); err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelFunnel, "scan.start"), err, "Failed to start scan")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	err := h.funnelService.Stream(c.Request.Context(), raw, func(event string, data any) bool {
		return writeEvent(c.Writer, event, data) == nil
	})
	if err != nil && c.Request.Context().Err() == nil {
		h.logger.Funnel().Warn("Scan stream ended with error", "error", err)
		_ = writeEvent(c.Writer, "error", gin.H{"error": "Scan failed"})
	}
}

func writeEvent(w gin.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// GetPreview handles GET /scan/preview?url=, which skips the scan animation.
func (h *FunnelHandlers) GetPreview(c *gin.Context) {
	res, err := h.funnelService.Preview(c.Query("url"))
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelFunnel, "scan.preview"), err, "Failed to build scan preview")
		return
	}
	c.JSON(http.StatusOK, res)
}

// PostLead handles POST /leads
func (h *FunnelHandlers) PostLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	lead, err := h.funnelService.CaptureLead(req.ScanID, req.Lead)
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelFunnel, "lead.capture"), err, "Failed to capture lead")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scanId": req.ScanID, "leadData": lead})
}

// GetContent handles GET /content
func (h *FunnelHandlers) GetContent(c *gin.Context) {
	c.JSON(http.StatusOK, h.funnelService.Content())
}

// GetRiskEstimate handles GET /risk/estimate?transactions=N
func (h *FunnelHandlers) GetRiskEstimate(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("transactions", "0"))
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transactions must be a non-negative integer"})
		return
	}
	c.JSON(http.StatusOK, h.funnelService.EstimateExposure(n))
}
