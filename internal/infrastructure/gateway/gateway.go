package gateway

import "github.com/example/kiosk-orders/internal/domain/payment"

const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"

	metadataOrderID   = "orderId"
	metadataKiosk     = "kiosk"
	metadataOrderType = "orderType"
	metadataItems     = "items"
)

func webhookKind(eventType string) payment.WebhookKind {
	switch eventType {
	case eventIntentSucceeded:
		return payment.WebhookSucceeded
	case eventIntentFailed:
		return payment.WebhookFailed
	default:
		return payment.WebhookIgnored
	}
}
