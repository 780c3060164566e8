package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test_secret"

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

const completedPayload = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "status": "complete",
    "payment_status": "paid",
    "amount_total": 19700,
    "currency": "usd",
    "customer_details": {"email": "jo@acme.com"},
    "metadata": {"scanId": "CCFP-1", "businessName": "Acme"}
  }}
}`

func TestParseWebhookCheckoutCompleted(t *testing.T) {
	payload := []byte(completedPayload)
	ev, err := parseStripeWebhook(payload, sign(payload, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if ev.Type != EventCheckoutCompleted || ev.Session == nil {
		t.Fatalf("event = %+v", ev)
	}
	s := ev.Session
	if s.ID != "cs_test_1" || s.AmountTotal != 19700 || s.Status != "complete" || s.PaymentStatus != "paid" {
		t.Fatalf("session = %+v", s)
	}
	if s.CustomerEmail != "jo@acme.com" {
		t.Fatalf("customer email from details = %q", s.CustomerEmail)
	}
	if s.Metadata["scanId"] != "CCFP-1" {
		t.Fatalf("metadata = %v", s.Metadata)
	}
}

func TestParseWebhookPaymentFailed(t *testing.T) {
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{
		"id":"pi_1","object":"payment_intent","amount":19700,"currency":"usd","status":"requires_payment_method",
		"last_payment_error":{"message":"Your card was declined."}}}}`)
	ev, err := parseStripeWebhook(payload, sign(payload, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if ev.PaymentIntent == nil || ev.PaymentIntent.Failure != "Your card was declined." {
		t.Fatalf("payment intent = %+v", ev.PaymentIntent)
	}
}

func TestParseWebhookRejectsBadSignatures(t *testing.T) {
	payload := []byte(completedPayload)
	tests := map[string]string{
		"wrong secret":  sign(payload, "whsec_other", time.Now()),
		"stale":         sign(payload, testSecret, time.Now().Add(-time.Hour)),
		"garbage":       "not-a-signature",
		"tampered body": sign([]byte(`{"id":"evt_x"}`), testSecret, time.Now()),
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseStripeWebhook(payload, header, testSecret)
			if !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("error = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestCheckoutSessionParams(t *testing.T) {
	ctx := context.Background()
	p := checkoutSessionParams(ctx, CheckoutParams{
		ProductName:        "Cleanup & Verification Package",
		ProductDescription: "desc",
		UnitAmount:         19700,
		Currency:           "usd",
		Quantity:           2,
		CustomerEmail:      "jo@acme.com",
		SuccessURL:         "https://x/confirmation?scanId=CCFP-1&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          "https://x/checkout-cancelled",
		Metadata:           map[string]string{"scanId": "CCFP-1"},
	})
	if *p.Mode != "payment" || *p.BillingAddressCollection != "required" {
		t.Fatalf("mode/billing = %s/%s", *p.Mode, *p.BillingAddressCollection)
	}
	item := p.LineItems[0]
	if *item.Quantity != 2 || *item.PriceData.UnitAmount != 19700 || *item.PriceData.ProductData.Name != "Cleanup & Verification Package" {
		t.Fatalf("line item = %+v", item)
	}
	if *p.CustomerEmail != "jo@acme.com" || p.Metadata["scanId"] != "CCFP-1" {
		t.Fatalf("email/metadata = %s/%v", *p.CustomerEmail, p.Metadata)
	}
	if p.Context != ctx {
		t.Fatal("context not propagated")
	}
}
