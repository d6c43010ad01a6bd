package payment

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

var (
	ErrMissingOrderID    = errors.New("orderId is required")
	ErrInvalidAmount     = errors.New("amount must be a positive number of cents")
	ErrMissingStatus     = errors.New("status is required")
	ErrUnknownStatus     = errors.New("unknown payment status")
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// validTransitions is only consulted in strict mode. Restarting with pending
// is always allowed, and an order without an entry may enter any state.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled, StatusFailed},
	StatusPaid:      {},
	StatusCancelled: {},
	StatusFailed:    {},
}

func canTransition(current Entry, exists bool, target Status) bool {
	if !exists || target == StatusPending {
		return true
	}
	return slices.Contains(validTransitions[current.Status], target)
}

// Broadcaster delivers an event to every subscriber of a feed.
type Broadcaster interface {
	Broadcast(event any) error
}

// Notifier receives applied transitions for best-effort outbound delivery.
type Notifier interface {
	PaymentIntentCreated(e IntentCreated)
	PaymentStatusChanged(e StatusChanged, trigger Trigger)
}

type Options struct {
	// Strict rejects transitions outside validTransitions instead of
	// overwriting unconditionally.
	Strict   bool
	Notifier Notifier
}

// Machine applies payment transitions to the store and announces each one on
// the payment feed.
type Machine struct {
	store    *Store
	feed     Broadcaster
	notifier Notifier
	strict   bool

	// mu keeps feed order identical to store order.
	mu sync.Mutex
}

func NewMachine(store *Store, feed Broadcaster, opts Options) *Machine {
	return &Machine{
		store:    store,
		feed:     feed,
		notifier: opts.Notifier,
		strict:   opts.Strict,
	}
}

// Start (re)starts the payment of orderID in pending state. Besides the
// status event it pushes an intent-created event carrying the amount.
func (m *Machine) Start(orderID string, amount int64) (StatusChanged, error) {
	if amount <= 0 {
		return StatusChanged{}, ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := m.apply(orderID, TriggerCreateIntent, StatusPending, MessageIntentCreated)
	if err != nil {
		return changed, err
	}

	created := IntentCreated{OrderID: orderID, Amount: amount, Status: StatusPending}
	m.broadcast(created)
	m.broadcast(changed)

	if m.notifier != nil {
		m.notifier.PaymentIntentCreated(created)
		m.notifier.PaymentStatusChanged(changed, TriggerCreateIntent)
	}
	return changed, nil
}

// Cancel is the manual frontend cancel.
func (m *Machine) Cancel(orderID string) (StatusChanged, error) {
	return m.Apply(orderID, TriggerManualCancel, StatusCancelled, MessageCancelled)
}

// Confirm is the manual frontend confirm. It is an operator override and is
// not checked against the gateway.
func (m *Machine) Confirm(orderID string) (StatusChanged, error) {
	return m.Apply(orderID, TriggerManualConfirm, StatusPaid, MessageConfirmed)
}

// Push stores a status reported by the terminal integration verbatim.
func (m *Machine) Push(orderID string, status Status, message string) (StatusChanged, error) {
	if status == "" {
		return StatusChanged{}, ErrMissingStatus
	}
	if m.strict && !status.IsKnown() {
		return StatusChanged{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return m.Apply(orderID, TriggerExternalPush, status, message)
}

// Succeed marks a gateway-confirmed payment.
func (m *Machine) Succeed(orderID string) (StatusChanged, error) {
	return m.Apply(orderID, TriggerWebhookSucceeded, StatusPaid, MessageSucceeded)
}

// Fail marks a gateway-reported failure; reason becomes the message.
func (m *Machine) Fail(orderID, reason string) (StatusChanged, error) {
	if reason == "" {
		reason = MessageFailed
	}
	return m.Apply(orderID, TriggerWebhookFailed, StatusFailed, reason)
}

// Apply writes one transition and broadcasts it.
func (m *Machine) Apply(orderID string, trigger Trigger, status Status, message string) (StatusChanged, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := m.apply(orderID, trigger, status, message)
	if err != nil {
		return changed, err
	}

	m.broadcast(changed)
	if m.notifier != nil {
		m.notifier.PaymentStatusChanged(changed, trigger)
	}
	return changed, nil
}

// apply must be called with m.mu held.
func (m *Machine) apply(orderID string, trigger Trigger, status Status, message string) (StatusChanged, error) {
	if orderID == "" {
		return StatusChanged{}, ErrMissingOrderID
	}

	_, err := m.store.Update(orderID, func(current Entry, exists bool) (Entry, error) {
		if m.strict && !canTransition(current, exists, status) {
			return Entry{}, fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, current.Status, status, trigger)
		}
		return Entry{Status: status, Message: message}, nil
	})
	if err != nil {
		log.Printf("[Payment] Rejected %s for order %s: %v", trigger, orderID, err)
		return StatusChanged{}, err
	}

	log.Printf("[Payment] Order %s -> %s (%s)", orderID, status, trigger)
	return StatusChanged{OrderID: orderID, Status: status, Message: message}, nil
}

func (m *Machine) broadcast(event any) {
	if err := m.feed.Broadcast(event); err != nil {
		log.Printf("[Payment] Broadcast failed: %v", err)
	}
}
