package api

import (
	"net/http"

	"github.com/example/kiosk-orders/internal/api/middleware"
)

type RouterConfig struct {
	Handlers *Handlers
	// OrderFeed and PaymentFeed serve the two event streams.
	OrderFeed   http.Handler
	PaymentFeed http.Handler
	// WebhookSignatureHeader names the header the gateway signs webhooks in.
	WebhookSignatureHeader string
	AllowedOrigins         []string
	// StaticDir is served at / when set.
	StaticDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h := cfg.Handlers

	// Static files (kiosk UI)
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	// Live feeds
	mux.Handle("GET /admin/notifications", cfg.OrderFeed)
	mux.Handle("GET /payments/notifications", cfg.PaymentFeed)

	// Catalog & orders
	mux.HandleFunc("GET /products", h.GetProducts)
	mux.HandleFunc("POST /order", h.PlaceOrder)
	mux.HandleFunc("PATCH /admin/order/{orderId}/status", h.UpdateOrderStatus)
	mux.HandleFunc("GET /admin", h.AdminOverview)

	// Payments
	mux.HandleFunc("POST /connection_token", h.CreateConnectionToken)
	mux.HandleFunc("POST /create-payment-intent", h.CreatePaymentIntent)
	mux.HandleFunc("POST /cancel-payment", h.CancelPayment)
	mux.HandleFunc("POST /confirm-payment", h.ConfirmPayment)
	mux.HandleFunc("POST /payment-status", h.PushPaymentStatus)
	mux.HandleFunc("GET /payment-status", h.GetPaymentStatuses)
	mux.HandleFunc("POST /webhook", h.Webhook(cfg.WebhookSignatureHeader))

	return middleware.Logging(middleware.CORS(cfg.AllowedOrigins)(mux))
}
