package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider implements Provider with the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider returns a provider bound to secretKey.
func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

func checkoutSessionParams(ctx context.Context, p CheckoutParams) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(p.ProductName),
					Description: stripe.String(p.ProductDescription),
				},
				UnitAmount: stripe.Int64(p.UnitAmount),
			},
			Quantity: stripe.Int64(p.Quantity),
		}},
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	return params
}

// CreateCheckoutSession creates a hosted checkout session.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	cs, err := s.api.CheckoutSessions.New(checkoutSessionParams(ctx, p))
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return fromCheckoutSession(cs), nil
}

// GetCheckoutSession retrieves a checkout session by id.
func (s *StripeProvider) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", id, err)
	}
	return fromCheckoutSession(cs), nil
}

// ParseWebhook authenticates payload against the Stripe-Signature header
// and decodes the objects the service cares about.
func (s *StripeProvider) ParseWebhook(payload []byte, signatureHeader, secret string) (*Event, error) {
	return parseStripeWebhook(payload, signatureHeader, secret)
}

func parseStripeWebhook(payload []byte, signatureHeader, secret string) (*Event, error) {
	if err := webhook.ValidatePayload(payload, signatureHeader, secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = fromCheckoutSession(&cs)
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentIntent = fromPaymentIntent(&pi)
	}
	return out, nil
}

func fromCheckoutSession(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		CustomerEmail: cs.CustomerEmail,
		Metadata:      cs.Metadata,
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	return s
}

func fromPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
		Metadata: pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		out.Failure = pi.LastPaymentError.Msg
	}
	return out
}
