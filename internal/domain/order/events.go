package order

import "time"

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusUpdated = "OrderStatusUpdated"
)

// Placed is pushed on the order feed for every new order.
type Placed struct {
	OrderID   string    `json:"orderId"`
	Type      Kind      `json:"type"`
	Kiosk     int       `json:"kiosk,omitempty"`
	Producten []Item    `json:"producten"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPlaced(o *Order) Placed {
	return Placed{
		OrderID:   o.OrderID,
		Type:      o.Type,
		Kiosk:     o.Kiosk,
		Producten: o.Producten,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

// StatusUpdated is published outbound when an admin changes an order status.
type StatusUpdated struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}
