// Package payments talks to the hosted payment provider: it creates and reads
// checkout sessions and authenticates webhook deliveries.
package payments

import (
	"context"
	"errors"
)

// Webhook event types the service reacts to.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventPaymentSucceeded     = "payment_intent.succeeded"
	EventPaymentFailed        = "payment_intent.payment_failed"
	CheckoutSessionIDTemplate = "{CHECKOUT_SESSION_ID}"
)

// ErrInvalidSignature is returned when a webhook payload does not match its
// signature header.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutParams describes a one-off checkout for a single fixed-price item.
type CheckoutParams struct {
	ProductName        string
	ProductDescription string
	UnitAmount         int64 // minor units
	Currency           string
	Quantity           int64
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url,omitempty"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntent is the subset of a payment intent the service logs.
type PaymentIntent struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
	Failure  string
	Metadata map[string]string
}

// Event is an authenticated webhook delivery. Session or PaymentIntent is
// set depending on Type.
type Event struct {
	ID            string
	Type          string
	Session       *Session
	PaymentIntent *PaymentIntent
}

// Provider is the payment provider API used by the application.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*Session, error)
	ParseWebhook(payload []byte, signatureHeader, secret string) (*Event, error)
}
