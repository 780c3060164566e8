// Package apperr classifies application errors so the HTTP layer can map them
// to status codes and response bodies without knowing where they came from.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind is the coarse classification of an application error.
type Kind string

const (
	KindValidation    Kind = "validation"    // missing or malformed input, user-correctable
	KindConfiguration Kind = "configuration" // operator must fix setup
	KindUpstream      Kind = "upstream"      // render engine or payment provider failure
	KindIntegrity     Kind = "integrity"     // signature mismatch, event discarded
	KindInternal      Kind = "internal"
)

// Machine-readable types returned to API callers.
const (
	TypeValidation     = "VALIDATION_ERROR"
	TypeStripeConfig   = "STRIPE_CONFIG_ERROR"
	TypeStripeCheckout = "STRIPE_CHECKOUT_ERROR"
	TypeSignature      = "SIGNATURE_ERROR"
	TypeRender         = "REPORT_RENDER_ERROR"
)

// Error is a classified error. Message is safe to show to users; Err is the
// underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Type    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a user-correctable input error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Type: TypeValidation}
}

// Configuration returns an error that tells the operator to fix setup.
func Configuration(typ, message, details string) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Details: details, Type: typ}
}

// Upstream wraps a failure of an external dependency.
func Upstream(typ, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Type: typ, Err: err}
}

// Integrity wraps an authenticity failure such as a bad webhook signature.
func Integrity(message string, err error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Type: TypeSignature, Err: err}
}

// KindOf returns the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUpstream
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindValidation, KindConfiguration, KindIntegrity:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON error body for err. fallback is used as the message
// for errors that carry no user-safe text.
func Body(err error, fallback string) map[string]any {
	var ae *Error
	if !errors.As(err, &ae) {
		return map[string]any{"error": fallback}
	}
	msg := ae.Message
	if msg == "" || ae.Kind == KindUpstream || ae.Kind == KindInternal {
		msg = fallback
	}
	body := map[string]any{"error": msg}
	if ae.Details != "" {
		body["details"] = ae.Details
	}
	if ae.Type != "" {
		body["type"] = ae.Type
	}
	return body
}
