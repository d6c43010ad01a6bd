package order

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Repository is the order storage collaborator.
type Repository interface {
	InsertOrder(ctx context.Context, o *Order) error
	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]*Order, error)
	// UpdateOrderStatus returns ErrOrderNotFound for an unknown id.
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*Order, error)
}

// Broadcaster delivers an event to every subscriber of a feed.
type Broadcaster interface {
	Broadcast(event any) error
}

// Notifier receives order changes for best-effort outbound delivery.
type Notifier interface {
	OrderPlaced(o *Order)
	OrderStatusUpdated(o *Order)
}

type Service struct {
	repo     Repository
	feed     Broadcaster
	notifier Notifier
	ids      *IDGenerator
	now      func() time.Time
}

func NewService(repo Repository, feed Broadcaster, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		feed:     feed,
		notifier: notifier,
		ids:      NewIDGenerator(time.Now),
		now:      time.Now,
	}
}

// Place validates, stores and announces a new order on the order feed.
// Nothing is stored or broadcast when validation fails.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		OrderID:   s.ids.Next(req.Type),
		Type:      req.Type,
		Kiosk:     req.Kiosk,
		Producten: req.Producten,
		Status:    StatusNew,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.InsertOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("store order %s: %w", o.OrderID, err)
	}

	if err := s.feed.Broadcast(NewPlaced(o)); err != nil {
		log.Printf("[Order] Broadcast of order %s failed: %v", o.OrderID, err)
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(o)
	}

	log.Printf("[Order] Placed %s (%s, kiosk %d, %d lines)", o.OrderID, o.Type, o.Kiosk, len(o.Producten))
	return o, nil
}

// UpdateStatus is the admin status change. Any non-empty status is accepted.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*Order, error) {
	if status == "" {
		return nil, ErrMissingStatus
	}

	o, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OrderStatusUpdated(o)
	}
	log.Printf("[Order] %s status -> %s", orderID, status)
	return o, nil
}
