package payment

// IntentCreated is pushed on the payment feed when a payment intent is created.
type IntentCreated struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
	Status  Status `json:"status"`
}

// StatusChanged is pushed on the payment feed after every applied transition.
type StatusChanged struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Trigger names the producer that caused a transition.
type Trigger string

const (
	TriggerCreateIntent     Trigger = "create_intent"
	TriggerManualCancel     Trigger = "manual_cancel"
	TriggerManualConfirm    Trigger = "manual_confirm"
	TriggerExternalPush     Trigger = "external_push"
	TriggerWebhookSucceeded Trigger = "webhook_succeeded"
	TriggerWebhookFailed    Trigger = "webhook_failed"
)

const (
	MessageIntentCreated = "Payment intent created"
	MessageCancelled     = "Payment cancelled"
	MessageConfirmed     = "Payment confirmed manually"
	MessageSucceeded     = "Payment succeeded"
	MessageFailed        = "Payment failed"
)
