package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/services"
	"github.com/AtRiskMedia/compliance-funnel/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// maxWebhookBytes bounds webhook payloads. Stripe events are far smaller.
const maxWebhookBytes = 65536

// PaymentHandlers contains the checkout and webhook handlers.
type PaymentHandlers struct {
	paymentService *services.PaymentService
	logger         *logging.ChanneledLogger
}

// NewPaymentHandlers creates payment handlers with injected dependencies
func NewPaymentHandlers(paymentService *services.PaymentService, logger *logging.ChanneledLogger) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
		logger:         logger,
	}
}

// PostCheckout handles POST /payment/checkout
func (h *PaymentHandlers) PostCheckout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lead data and scan ID are required"})
		return
	}

	session, err := h.paymentService.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelPayment, "checkout.create"), err, "Failed to create checkout session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetCheckoutStatus handles GET /payment/checkout, a liveness check for the checkout API.
func (h *PaymentHandlers) GetCheckoutStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Stripe checkout API is running", "status": "ok"})
}

// GetCheckoutSession handles GET /payment/checkout-session?session_id=
func (h *PaymentHandlers) GetCheckoutSession(c *gin.Context) {
	session, err := h.paymentService.GetCheckoutSession(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelPayment, "checkout.get"), err, "Failed to retrieve checkout session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// PostWebhook handles POST /payment/webhook. The raw body is verified
// against the Stripe-Signature header before anything is decoded.
func (h *PaymentHandlers) PostWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Webhook payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook body"})
		return
	}

	ev, err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondError(c, h.logger.WithOperation(logging.ChannelPayment, "webhook"), err, "Webhook handler failed")
		return
	}
	h.logger.Payment().Debug("Webhook processed", "eventId", ev.ID, "type", ev.Type)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetDebugCheckout handles GET /payment/debug-checkout. It is only routed
// outside production and skips the provider entirely.
func (h *PaymentHandlers) GetDebugCheckout(c *gin.Context) {
	h.logger.Payment().Warn("Debug checkout used", "scanId", services.DebugScanID, "sessionId", services.DebugSessionID)
	c.Redirect(http.StatusSeeOther, h.paymentService.DebugCheckoutURL())
}
