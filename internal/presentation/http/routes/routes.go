// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AtRiskMedia/compliance-funnel/internal/application/container"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/compliance-funnel/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(container.Logger.HTTP()))
	r.Use(middleware.CORSMiddleware(container.Config.CORSAllowOrigins))

	// Initialize handlers
	funnelHandlers := handlers.NewFunnelHandlers(container.FunnelService, container.Logger)
	reportHandlers := handlers.NewReportHandlers(container.ReportService, container.Logger)
	paymentHandlers := handlers.NewPaymentHandlers(container.PaymentService, container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.Config, container.Logger, container.PerfTracker)

	r.GET("/healthz", systemHandlers.GetHealth)
	r.GET("/content", funnelHandlers.GetContent)
	r.GET("/risk/estimate", funnelHandlers.GetRiskEstimate)

	scan := r.Group("/scan")
	{
		scan.POST("", funnelHandlers.PostScan)
		scan.GET("/stream", funnelHandlers.StreamScan)
		scan.GET("/preview", funnelHandlers.GetPreview)
	}

	r.POST("/leads", funnelHandlers.PostLead)

	// the wildcard also matches "/reports/" so a blank id gets a 400, not a 404
	r.GET("/reports/*scanId", reportHandlers.GetReport)
	r.POST("/reports/*scanId", reportHandlers.GetReport)

	payment := r.Group("/payment")
	{
		payment.POST("/checkout", paymentHandlers.PostCheckout)
		payment.GET("/checkout", paymentHandlers.GetCheckoutStatus)
		payment.GET("/checkout-session", paymentHandlers.GetCheckoutSession)
		payment.POST("/webhook", paymentHandlers.PostWebhook)
	}

	// Operator and debug endpoints never ship to production
	if !container.Config.IsProduction() {
		payment.GET("/debug-checkout", paymentHandlers.GetDebugCheckout)

		debug := r.Group("/debug")
		{
			debug.GET("/log-levels", systemHandlers.GetLogLevels)
			debug.POST("/log-levels", systemHandlers.SetLogLevel)
			debug.GET("/performance", systemHandlers.GetPerformance)
		}
	}

	return r
}
