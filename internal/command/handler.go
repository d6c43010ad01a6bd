package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
)

// maxMetadataValue is the longest metadata value, in characters, the gateway accepts.
const maxMetadataValue = 500

type Handler struct {
	orderSvc *order.Service
	payments *payment.Machine
	gateway  payment.Gateway
}

func NewHandler(orderSvc *order.Service, payments *payment.Machine, gateway payment.Gateway) *Handler {
	return &Handler{
		orderSvc: orderSvc,
		payments: payments,
		gateway:  gateway,
	}
}

// PlaceOrder validates, stores and announces an order on the order feed
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	items := make([]order.Item, len(cmd.Producten))
	for i, line := range cmd.Producten {
		items[i] = order.Item{Item: line.Item, Quantity: line.Quantity, Opmerking: line.Opmerking}
	}

	return h.orderSvc.Place(ctx, order.PlaceRequest{
		Producten: items,
		Type:      order.Kind(cmd.Type),
		Kiosk:     cmd.Kiosk,
	})
}

// UpdateOrderStatus is the admin status change
func (h *Handler) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatus) (*order.Order, error) {
	return h.orderSvc.UpdateStatus(ctx, cmd.OrderID, cmd.Status)
}

type PaymentIntentResult struct {
	ClientSecret string
	OrderID      string
	Status       payment.Status
}

// CreatePaymentIntent creates the gateway intent and (re)starts the payment
// of the order in pending state. Nothing is stored when the gateway fails.
func (h *Handler) CreatePaymentIntent(ctx context.Context, cmd CreatePaymentIntent) (*PaymentIntentResult, error) {
	if cmd.OrderID == "" {
		return nil, payment.ErrMissingOrderID
	}
	if cmd.Amount <= 0 {
		return nil, payment.ErrInvalidAmount
	}

	intent, err := h.gateway.CreateIntent(ctx, payment.IntentRequest{
		OrderID:   cmd.OrderID,
		Amount:    cmd.Amount,
		Kiosk:     cmd.Kiosk,
		OrderType: cmd.OrderType,
		Items:     itemsMetadata(cmd.Items),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent for %s: %w", cmd.OrderID, err)
	}

	changed, err := h.payments.Start(cmd.OrderID, cmd.Amount)
	if err != nil {
		return nil, err
	}

	log.Printf("[Payment] Intent %s created for order %s (%d cents)", intent.ID, cmd.OrderID, cmd.Amount)
	return &PaymentIntentResult{
		ClientSecret: intent.ClientSecret,
		OrderID:      cmd.OrderID,
		Status:       changed.Status,
	}, nil
}

func (h *Handler) CancelPayment(ctx context.Context, cmd CancelPayment) (payment.StatusChanged, error) {
	return h.payments.Cancel(cmd.OrderID)
}

func (h *Handler) ConfirmPayment(ctx context.Context, cmd ConfirmPayment) (payment.StatusChanged, error) {
	return h.payments.Confirm(cmd.OrderID)
}

// PushPaymentStatus stores the status reported by the terminal integration.
func (h *Handler) PushPaymentStatus(ctx context.Context, cmd PushPaymentStatus) (payment.StatusChanged, error) {
	if cmd.OrderID == "" {
		return payment.StatusChanged{}, payment.ErrMissingOrderID
	}
	return h.payments.Push(cmd.OrderID, payment.Status(cmd.Status), cmd.Message)
}

// HandleWebhook verifies a gateway event and applies at most one transition.
// Events of other types, or without an order reference, are acknowledged
// without touching the payment state.
func (h *Handler) HandleWebhook(ctx context.Context, cmd HandleWebhook) (*payment.WebhookEvent, error) {
	event, err := h.gateway.ParseWebhook(cmd.Payload, cmd.Signature)
	if err != nil {
		return nil, err
	}

	if event.Kind == payment.WebhookIgnored {
		log.Printf("[Payment] Ignoring webhook %s (%s)", event.ID, event.Type)
		return event, nil
	}
	if event.OrderID == "" {
		log.Printf("[Payment] Webhook %s for intent %s carries no orderId, skipping", event.ID, event.IntentID)
		return event, nil
	}

	switch event.Kind {
	case payment.WebhookSucceeded:
		_, err = h.payments.Succeed(event.OrderID)
	case payment.WebhookFailed:
		_, err = h.payments.Fail(event.OrderID, event.FailureMessage)
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (h *Handler) CreateConnectionToken(ctx context.Context) (string, error) {
	secret, err := h.gateway.CreateConnectionToken(ctx)
	if err != nil {
		return "", fmt.Errorf("create connection token: %w", err)
	}
	return secret, nil
}

// itemsMetadata flattens the items field (a string or any JSON value) into
// a metadata value.
func itemsMetadata(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	if utf8.RuneCountInString(s) > maxMetadataValue {
		s = string([]rune(s)[:maxMetadataValue])
	}
	return s
}
