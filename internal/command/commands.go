package command

import "encoding/json"

// Order Commands
type PlaceOrder struct {
	Producten []OrderLine `json:"producten"`
	Type      string      `json:"type"`
	Kiosk     int         `json:"kiosk"`
}

type OrderLine struct {
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`
	Opmerking string `json:"opmerking"`
}

type UpdateOrderStatus struct {
	OrderID string `json:"-"`
	Status  string `json:"status"`
}

// Payment Commands
type CreatePaymentIntent struct {
	OrderID   string          `json:"orderId"`
	Amount    int64           `json:"amount"`
	Kiosk     int             `json:"kiosk"`
	OrderType string          `json:"orderType"`
	Items     json.RawMessage `json:"items"`
}

type CancelPayment struct {
	OrderID string `json:"orderId"`
}

type ConfirmPayment struct {
	OrderID string `json:"orderId"`
}

type PushPaymentStatus struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HandleWebhook struct {
	Payload   []byte
	Signature string
}
