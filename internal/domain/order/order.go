package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is the order type chosen at the kiosk.
type Kind string

const (
	KindTakeaway Kind = "takeaway"
	KindPickup   Kind = "pickup"
	// KindQuote is a custom-quote request; it may come from outside a kiosk.
	KindQuote Kind = "quote"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTakeaway, KindPickup, KindQuote:
		return true
	}
	return false
}

// StatusNew is the status of every freshly placed order. Only the admin
// status update changes it afterwards.
const StatusNew = "new"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must contain at least one product")
	ErrInvalidType   = errors.New("type must be takeaway, pickup or quote")
	ErrMissingKiosk  = errors.New("kiosk number is required and must be a positive number")
	ErrInvalidItem   = errors.New("every product needs an item name and a positive quantity")
	ErrMissingStatus = errors.New("status is required")
)

// Item is one product line.
type Item struct {
	Item      string `json:"item" bson:"item"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Opmerking string `json:"opmerking" bson:"opmerking,omitempty"`
}

type Order struct {
	OrderID   string    `json:"orderId" bson:"orderId"`
	Type      Kind      `json:"type" bson:"type"`
	Kiosk     int       `json:"kiosk,omitempty" bson:"kiosk,omitempty"`
	Producten []Item    `json:"producten" bson:"producten"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Clone returns a deep copy so stored orders are never shared with callers.
func (o *Order) Clone() *Order {
	c := *o
	c.Producten = append([]Item(nil), o.Producten...)
	return &c
}

// PlaceRequest is the validated input of an order placement.
type PlaceRequest struct {
	Producten []Item
	Type      Kind
	Kiosk     int
}

// Validate checks the request in the same order a kiosk user would fix it:
// products, type, kiosk.
func (r PlaceRequest) Validate() error {
	if len(r.Producten) == 0 {
		return ErrEmptyOrder
	}
	for i, item := range r.Producten {
		if strings.TrimSpace(item.Item) == "" || item.Quantity <= 0 {
			return fmt.Errorf("%w (line %d)", ErrInvalidItem, i+1)
		}
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.Type != KindQuote && r.Kiosk <= 0 {
		return ErrMissingKiosk
	}
	if r.Kiosk < 0 {
		return ErrMissingKiosk
	}
	return nil
}
