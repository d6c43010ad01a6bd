package payment

import (
	"context"
	"errors"
)

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedWebhook = errors.New("malformed webhook payload")
)

// Gateway is the payment provider as seen by the producers.
type Gateway interface {
	// CreateIntent registers a charge attempt correlated to the order through metadata.
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// CreateConnectionToken hands a terminal reader a short-lived credential.
	CreateConnectionToken(ctx context.Context) (string, error)
	// ParseWebhook verifies signature over payload and decodes the event.
	// Verification failures wrap ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	// SignatureHeader names the request header carrying the webhook signature.
	SignatureHeader() string
}

type IntentRequest struct {
	OrderID   string
	Amount    int64
	Kiosk     int
	OrderType string
	Items     string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type WebhookKind string

const (
	WebhookSucceeded WebhookKind = "succeeded"
	WebhookFailed    WebhookKind = "failed"
	WebhookIgnored   WebhookKind = "ignored"
)

// WebhookEvent is a verified gateway event reduced to what the machine needs.
type WebhookEvent struct {
	ID             string
	Type           string
	Kind           WebhookKind
	IntentID       string
	OrderID        string
	FailureMessage string
}
