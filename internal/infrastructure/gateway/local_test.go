package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestLocal(t *testing.T) *Local {
	l, err := NewLocal(testSecret, "eur")
	require.NoError(t, err)
	return l
}

func TestNewLocal_ShortSecret(t *testing.T) {
	_, err := NewLocal("short", "eur")
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestLocal_CreateIntent(t *testing.T) {
	l := newTestLocal(t)

	intent, err := l.CreateIntent(context.Background(), payment.IntentRequest{OrderID: "ORD-1", Amount: 1250})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "pi_local_"))

	claims, err := l.ValidateClientSecret(intent.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", claims.OrderID)
	assert.Equal(t, int64(1250), claims.Amount)
	assert.Equal(t, "eur", claims.Currency)
	assert.Equal(t, intent.ID, claims.ID)
}

func TestLocal_ConnectionTokenIsNotAClientSecret(t *testing.T) {
	l := newTestLocal(t)

	token, err := l.CreateConnectionToken(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = l.ValidateClientSecret(token)
	assert.Error(t, err)
}

func TestLocal_ParseWebhook_Succeeded(t *testing.T) {
	l := newTestLocal(t)
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"orderId":"ORD-1"}}}}`)

	sig, err := l.SignWebhook(payload)
	require.NoError(t, err)

	event, err := l.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookSucceeded, event.Kind)
	assert.Equal(t, "ORD-1", event.OrderID)
	assert.Equal(t, "pi_1", event.IntentID)
	assert.Equal(t, "evt_1", event.ID)
}

func TestLocal_ParseWebhook_Failed(t *testing.T) {
	l := newTestLocal(t)
	payload := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","metadata":{"orderId":"ORD-2"},"last_payment_error":{"message":"Card declined"}}}}`)

	sig, err := l.SignWebhook(payload)
	require.NoError(t, err)

	event, err := l.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookFailed, event.Kind)
	assert.Equal(t, "Card declined", event.FailureMessage)
}

func TestLocal_ParseWebhook_IgnoredType(t *testing.T) {
	l := newTestLocal(t)
	payload := []byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	sig, err := l.SignWebhook(payload)
	require.NoError(t, err)

	event, err := l.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookIgnored, event.Kind)
	assert.Empty(t, event.OrderID)
}

func TestLocal_ParseWebhook_InvalidSignature(t *testing.T) {
	l := newTestLocal(t)
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"orderId":"ORD-1"}}}}`)
	sig, err := l.SignWebhook(payload)
	require.NoError(t, err)

	other, err := NewLocal(strings.Repeat("x", 32), "eur")
	require.NoError(t, err)
	otherSig, err := other.SignWebhook(payload)
	require.NoError(t, err)

	tests := []struct {
		name      string
		payload   []byte
		signature string
	}{
		{"missing signature", payload, ""},
		{"garbage signature", payload, "not-a-jwt"},
		{"tampered payload", []byte(strings.Replace(string(payload), "ORD-1", "ORD-9", 1)), sig},
		{"other secret", payload, otherSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ParseWebhook(tt.payload, tt.signature)
			assert.ErrorIs(t, err, payment.ErrInvalidSignature)
		})
	}
}

func TestLocal_ParseWebhook_MalformedPayload(t *testing.T) {
	l := newTestLocal(t)
	payload := []byte(`not json`)
	sig, err := l.SignWebhook(payload)
	require.NoError(t, err)

	_, err = l.ParseWebhook(payload, sig)

	assert.ErrorIs(t, err, payment.ErrMalformedWebhook)
	assert.NotErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestLocal_ConnectionTokenCannotSignWebhooks(t *testing.T) {
	l := newTestLocal(t)
	token, err := l.CreateConnectionToken(context.Background())
	require.NoError(t, err)

	_, err = l.ParseWebhook([]byte(`{}`), token)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestLocal_SignatureHeader(t *testing.T) {
	assert.Equal(t, "Local-Signature", newTestLocal(t).SignatureHeader())
}
