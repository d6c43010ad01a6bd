package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/example/kiosk-orders/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t *testing.T, eventType string, data any) events.Event {
	t.Helper()
	e, err := events.New(events.AggregatePayment, "ORD-1", eventType, data)
	require.NoError(t, err)
	return e
}

func TestHandler_MailsPaidWithAmount(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewHandler(mailer, "shop@example.com")
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, event(t, events.PaymentIntentCreated, events.PaymentIntent{OrderID: "ORD-1", Amount: 1250})))
	require.NoError(t, h.HandleEvent(ctx, event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-1", Status: "pending"})))
	require.NoError(t, h.HandleEvent(ctx, event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-1", Status: "paid"})))

	assert.Equal(t, []string{"ORD-1:paid"}, mailer.payments)
	assert.Equal(t, []int64{1250}, mailer.amounts)
}

func TestHandler_MailsFailedWithoutKnownAmount(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewHandler(mailer, "shop@example.com")

	require.NoError(t, h.HandleEvent(context.Background(), event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-2", Status: "failed", Message: "Card declined"})))

	assert.Equal(t, []string{"ORD-2:failed"}, mailer.payments)
	assert.Equal(t, []int64{0}, mailer.amounts)
}

func TestHandler_IgnoresOtherEvents(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewHandler(mailer, "shop@example.com")
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, event(t, events.OrderPlaced, map[string]string{"orderId": "ORD-1"})))
	require.NoError(t, h.HandleEvent(ctx, event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-1", Status: "cancelled"})))
	require.NoError(t, h.HandleEvent(ctx, event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-1", Status: "refund_requested"})))

	assert.Empty(t, mailer.payments)
}

func TestHandler_BadPayload(t *testing.T) {
	h := NewHandler(&recordingMailer{}, "shop@example.com")
	e := events.Event{EventType: events.PaymentStatusChanged, Data: []byte(`"not an object"`)}

	assert.Error(t, h.HandleEvent(context.Background(), e))
}

func TestHandler_MailError(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	h := NewHandler(mailer, "shop@example.com")

	err := h.HandleEvent(context.Background(), event(t, events.PaymentStatusChanged, events.PaymentStatus{OrderID: "ORD-1", Status: "paid"}))
	assert.Error(t, err)
}
