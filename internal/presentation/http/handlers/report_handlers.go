package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/services"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/domain/user"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

const reportFailure = "Failed to generate or serve report"

// ReportHandlers serves the PDF report downloads.
type ReportHandlers struct {
	reportService *services.ReportService
	logger        *logging.ChanneledLogger
}

// NewReportHandlers creates report handlers with injected dependencies
func NewReportHandlers(reportService *services.ReportService, logger *logging.ChanneledLogger) *ReportHandlers {
	return &ReportHandlers{
		reportService: reportService,
		logger:        logger,
	}
}

// GetReport handles GET and POST /reports/*scanId. A POST body may carry
// the lead fields printed on a freshly generated report.
func (h *ReportHandlers) GetReport(c *gin.Context) {
	start := time.Now()
	scanID := strings.Trim(c.Param("scanId"), "/")
	h.logger.Report().Debug("Received report request", "method", c.Request.Method, "scanId", scanID)

	if scanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scan ID is required"})
		return
	}

	var lead *user.Lead
	if c.Request.Method == http.MethodPost {
		var body user.Lead
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		} else if err == nil {
			lead = &body
		}
	}

	pdf, err := h.reportService.GetOrCreate(c.Request.Context(), scanID, lead)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			respondError(c, h.logger.WithOperation(logging.ChannelReport, "report.get"), err, reportFailure)
			return
		}
		h.logger.LogError(logging.ChannelReport, "report.get", err, map[string]any{
			"scanId":   scanID,
			"duration": time.Since(start).String(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": reportFailure})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="compliance-report-%s.pdf"`, scanID))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
