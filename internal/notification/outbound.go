package notification

import (
	"context"
	"log"
	"time"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/events"
)

type OrderMailer interface {
	SendNewOrder(to string, o *order.Order) error
}

// Outbound turns order and payment changes into outbound events and mails.
// Everything runs on the dispatcher; callers never wait for the bus or SMTP.
type Outbound struct {
	dispatcher *Dispatcher
	publisher  events.Publisher
	mailer     OrderMailer
	adminEmail string
}

// NewOutbound wires the outbound side effects. mailer may be nil, and no mail
// is sent without an adminEmail.
func NewOutbound(dispatcher *Dispatcher, publisher events.Publisher, mailer OrderMailer, adminEmail string) *Outbound {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Outbound{
		dispatcher: dispatcher,
		publisher:  publisher,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

func (n *Outbound) OrderPlaced(o *order.Order) {
	n.publish(events.AggregateOrder, o.OrderID, events.OrderPlaced, order.NewPlaced(o.Clone()))

	if n.mailer == nil || n.adminEmail == "" {
		return
	}
	snapshot := o.Clone()
	n.dispatcher.Submit(Task{
		Name: "mail new order " + o.OrderID,
		Run: func(ctx context.Context) error {
			return n.mailer.SendNewOrder(n.adminEmail, snapshot)
		},
	})
}

func (n *Outbound) OrderStatusUpdated(o *order.Order) {
	n.publish(events.AggregateOrder, o.OrderID, events.OrderStatusUpdated, order.StatusUpdated{
		OrderID:   o.OrderID,
		Status:    o.Status,
		UpdatedAt: time.Now().UTC(),
	})
}

func (n *Outbound) PaymentIntentCreated(e payment.IntentCreated) {
	n.publish(events.AggregatePayment, e.OrderID, events.PaymentIntentCreated, events.PaymentIntent{
		OrderID: e.OrderID,
		Amount:  e.Amount,
	})
}

func (n *Outbound) PaymentStatusChanged(e payment.StatusChanged, trigger payment.Trigger) {
	n.publish(events.AggregatePayment, e.OrderID, events.PaymentStatusChanged, events.PaymentStatus{
		OrderID: e.OrderID,
		Status:  string(e.Status),
		Message: e.Message,
		Trigger: string(trigger),
	})
}

func (n *Outbound) publish(aggregateType, aggregateID, eventType string, data any) {
	event, err := events.New(aggregateType, aggregateID, eventType, data)
	if err != nil {
		log.Printf("[Notifier] Failed to build %s for %s: %v", eventType, aggregateID, err)
		return
	}
	n.dispatcher.Submit(Task{
		Name: "publish " + eventType + " " + aggregateID,
		Key:  aggregateType + "/" + aggregateID,
		Run: func(ctx context.Context) error {
			return n.publisher.Publish(ctx, event)
		},
	})
}

var (
	_ order.Notifier   = (*Outbound)(nil)
	_ payment.Notifier = (*Outbound)(nil)
)
