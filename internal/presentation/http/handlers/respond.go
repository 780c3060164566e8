// Package handlers provides the gin HTTP handlers for the funnel API.
package handlers

import (
	"log/slog"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/apperr"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {error, details?, type?} with the status its
// kind maps to. Upstream and internal failures are reported as fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error(fallback, "requestId", middleware.GetRequestID(c), "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, apperr.Body(err, fallback))
}
