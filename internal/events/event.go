package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AggregateOrder   = "Order"
	AggregatePayment = "Payment"
)

const (
	OrderPlaced          = "OrderPlaced"
	OrderStatusUpdated   = "OrderStatusUpdated"
	PaymentIntentCreated = "PaymentIntentCreated"
	PaymentStatusChanged = "PaymentStatusChanged"
)

// Event is the envelope published on the outbound bus.
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

// New wraps data in an envelope with a fresh id.
func New(aggregateType, aggregateID, eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// PaymentStatus is the payload of PaymentStatusChanged.
type PaymentStatus struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Trigger string `json:"trigger"`
}

// PaymentIntent is the payload of PaymentIntentCreated.
type PaymentIntent struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
