package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const stripeSignatureHeader = "Stripe-Signature"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	// Backends overrides the API endpoints; nil uses Stripe's.
	Backends *stripe.Backends
}

// Stripe creates card-present intents for Terminal readers.
type Stripe struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripe(cfg StripeConfig) *Stripe {
	api := &client.API{}
	api.Init(cfg.SecretKey, cfg.Backends)
	return &Stripe{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}
}

func (s *Stripe) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card_present"}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, req.OrderID)
	params.AddMetadata(metadataKiosk, strconv.Itoa(req.Kiosk))
	params.AddMetadata(metadataOrderType, req.OrderType)
	params.AddMetadata(metadataItems, req.Items)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &payment.Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) CreateConnectionToken(ctx context.Context) (string, error) {
	params := &stripe.TerminalConnectionTokenParams{}
	params.Context = ctx

	token, err := s.api.TerminalConnectionTokens.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create connection token: %w", err)
	}
	return token.Secret, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedWebhook, err)
	}

	out := &payment.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: webhookKind(string(event.Type)),
	}
	if out.Kind == payment.WebhookIgnored || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: payment intent of %s: %v", payment.ErrMalformedWebhook, event.ID, err)
	}
	out.IntentID = pi.ID
	out.OrderID = pi.Metadata[metadataOrderID]
	if pi.LastPaymentError != nil {
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out, nil
}

func isSignatureError(err error) bool {
	for _, target := range []error{
		webhook.ErrNotSigned,
		webhook.ErrInvalidHeader,
		webhook.ErrNoValidSignature,
		webhook.ErrTooOld,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Stripe) SignatureHeader() string {
	return stripeSignatureHeader
}
