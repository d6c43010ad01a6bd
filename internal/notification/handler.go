package notification

import (
	"context"
	"log"
	"sync"

	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/events"
)

type PaymentMailer interface {
	SendPaymentUpdate(to, orderID, status, message string, amount int64) error
}

// Handler consumes outbound events and mails the shop inbox about final
// payment outcomes.
type Handler struct {
	mailer PaymentMailer
	to     string

	mu      sync.Mutex
	amounts map[string]int64 // orderId -> amount of the latest intent
}

func NewHandler(mailer PaymentMailer, to string) *Handler {
	return &Handler{
		mailer:  mailer,
		to:      to,
		amounts: make(map[string]int64),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, event events.Event) error {
	switch event.EventType {
	case events.PaymentIntentCreated:
		var e events.PaymentIntent
		if err := event.Decode(&e); err != nil {
			log.Printf("[Notifier] Failed to unmarshal %s: %v", event.EventType, err)
			return err
		}
		h.mu.Lock()
		h.amounts[e.OrderID] = e.Amount
		h.mu.Unlock()
		return nil

	case events.PaymentStatusChanged:
		var e events.PaymentStatus
		if err := event.Decode(&e); err != nil {
			log.Printf("[Notifier] Failed to unmarshal %s: %v", event.EventType, err)
			return err
		}
		return h.handleStatusChanged(e)
	}
	return nil
}

func (h *Handler) handleStatusChanged(e events.PaymentStatus) error {
	status := payment.Status(e.Status)
	if !status.IsTerminal() {
		return nil
	}

	h.mu.Lock()
	amount := h.amounts[e.OrderID]
	delete(h.amounts, e.OrderID)
	h.mu.Unlock()

	if status == payment.StatusCancelled {
		return nil
	}

	log.Printf("[Notifier] Payment %s for order %s, mailing %s", status, e.OrderID, h.to)
	if err := h.mailer.SendPaymentUpdate(h.to, e.OrderID, e.Status, e.Message, amount); err != nil {
		log.Printf("[Notifier] Failed to send payment mail for %s: %v", e.OrderID, err)
		return err
	}
	return nil
}
