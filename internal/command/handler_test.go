package command

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []any
}

func (f *recordingFeed) Broadcast(event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeGateway struct {
	intentErr  error
	tokenErr   error
	webhook    *payment.WebhookEvent
	webhookErr error

	requests []payment.IntentRequest
}

func (g *fakeGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	g.requests = append(g.requests, req)
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return &payment.Intent{ID: "pi_" + req.OrderID, ClientSecret: "secret_" + req.OrderID}, nil
}

func (g *fakeGateway) CreateConnectionToken(ctx context.Context) (string, error) {
	return "pst_test", g.tokenErr
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	return g.webhook, g.webhookErr
}

func (g *fakeGateway) SignatureHeader() string { return "Test-Signature" }

type testHandler struct {
	*Handler
	repo        *mocks.MockRepository
	orderFeed   *recordingFeed
	paymentFeed *recordingFeed
	store       *payment.Store
	gateway     *fakeGateway
}

func newTestHandler(strict bool) *testHandler {
	repo := mocks.NewMockRepository()
	orderFeed := &recordingFeed{}
	paymentFeed := &recordingFeed{}
	store := payment.NewStore()
	gw := &fakeGateway{}

	orderSvc := order.NewService(repo, orderFeed, nil)
	machine := payment.NewMachine(store, paymentFeed, payment.Options{Strict: strict})

	return &testHandler{
		Handler:     NewHandler(orderSvc, machine, gw),
		repo:        repo,
		orderFeed:   orderFeed,
		paymentFeed: paymentFeed,
		store:       store,
		gateway:     gw,
	}
}

// ============================================
// Order Tests
// ============================================

func TestHandler_PlaceOrder(t *testing.T) {
	h := newTestHandler(false)

	o, err := h.PlaceOrder(context.Background(), PlaceOrder{
		Producten: []OrderLine{{Item: "Cola", Quantity: 2}},
		Type:      "takeaway",
		Kiosk:     3,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.OrderID, "ORD-"))
	assert.Equal(t, []order.Item{{Item: "Cola", Quantity: 2}}, o.Producten)
	assert.Len(t, h.repo.InsertCalls, 1)
	assert.Len(t, h.orderFeed.events, 1)
	assert.Empty(t, h.paymentFeed.events)
}

func TestHandler_PlaceOrder_EmptyProducts(t *testing.T) {
	h := newTestHandler(false)

	_, err := h.PlaceOrder(context.Background(), PlaceOrder{Type: "takeaway", Kiosk: 3})

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.Empty(t, h.repo.InsertCalls)
	assert.Empty(t, h.orderFeed.events)
}

func TestHandler_UpdateOrderStatus(t *testing.T) {
	h := newTestHandler(false)
	ctx := context.Background()

	o, err := h.PlaceOrder(ctx, PlaceOrder{Producten: []OrderLine{{Item: "Cola", Quantity: 1}}, Type: "pickup", Kiosk: 1})
	require.NoError(t, err)

	updated, err := h.UpdateOrderStatus(ctx, UpdateOrderStatus{OrderID: o.OrderID, Status: "klaar"})
	require.NoError(t, err)
	assert.Equal(t, "klaar", updated.Status)

	_, err = h.UpdateOrderStatus(ctx, UpdateOrderStatus{OrderID: "ORD-404", Status: "klaar"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

// ============================================
// Payment Intent Tests
// ============================================

func TestHandler_CreatePaymentIntent(t *testing.T) {
	h := newTestHandler(false)

	res, err := h.CreatePaymentIntent(context.Background(), CreatePaymentIntent{
		OrderID:   "ORD-2",
		Amount:    500,
		Kiosk:     4,
		OrderType: "takeaway",
		Items:     json.RawMessage(`[{"item":"Cola","quantity":2}]`),
	})

	require.NoError(t, err)
	assert.Equal(t, "secret_ORD-2", res.ClientSecret)
	assert.Equal(t, payment.StatusPending, res.Status)

	entry, ok := h.store.Get("ORD-2")
	require.True(t, ok)
	assert.Equal(t, payment.StatusPending, entry.Status)

	// exactly one event carries the amount
	var withAmount []payment.IntentCreated
	for _, e := range h.paymentFeed.events {
		if created, ok := e.(payment.IntentCreated); ok {
			withAmount = append(withAmount, created)
		}
	}
	require.Len(t, withAmount, 1)
	assert.Equal(t, int64(500), withAmount[0].Amount)

	require.Len(t, h.gateway.requests, 1)
	assert.Equal(t, 4, h.gateway.requests[0].Kiosk)
	assert.Equal(t, `[{"item":"Cola","quantity":2}]`, h.gateway.requests[0].Items)
}

func TestHandler_CreatePaymentIntent_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  CreatePaymentIntent
		want error
	}{
		{"missing order", CreatePaymentIntent{Amount: 500}, payment.ErrMissingOrderID},
		{"missing amount", CreatePaymentIntent{OrderID: "ORD-1"}, payment.ErrInvalidAmount},
		{"negative amount", CreatePaymentIntent{OrderID: "ORD-1", Amount: -5}, payment.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(false)

			_, err := h.CreatePaymentIntent(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, h.gateway.requests)
			assert.Zero(t, h.store.Len())
			assert.Empty(t, h.paymentFeed.events)
		})
	}
}

func TestHandler_CreatePaymentIntent_GatewayError(t *testing.T) {
	h := newTestHandler(false)
	h.gateway.intentErr = errors.New("gateway unavailable")

	_, err := h.CreatePaymentIntent(context.Background(), CreatePaymentIntent{OrderID: "ORD-1", Amount: 500})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway unavailable")
	assert.Zero(t, h.store.Len())
	assert.Empty(t, h.paymentFeed.events)
}

func TestHandler_CreatePaymentIntent_RestartsTerminalPayment(t *testing.T) {
	h := newTestHandler(false)
	ctx := context.Background()

	_, err := h.CreatePaymentIntent(ctx, CreatePaymentIntent{OrderID: "ORD-1", Amount: 500})
	require.NoError(t, err)
	_, err = h.CancelPayment(ctx, CancelPayment{OrderID: "ORD-1"})
	require.NoError(t, err)

	_, err = h.CreatePaymentIntent(ctx, CreatePaymentIntent{OrderID: "ORD-1", Amount: 700})
	require.NoError(t, err)

	entry, _ := h.store.Get("ORD-1")
	assert.Equal(t, payment.StatusPending, entry.Status)
}

// ============================================
// Manual & External Transition Tests
// ============================================

func TestHandler_CancelAndConfirm(t *testing.T) {
	h := newTestHandler(false)
	ctx := context.Background()

	changed, err := h.CancelPayment(ctx, CancelPayment{OrderID: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCancelled, changed.Status)

	// unguarded: confirm after cancel overwrites
	changed, err = h.ConfirmPayment(ctx, ConfirmPayment{OrderID: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, changed.Status)
	assert.Len(t, h.paymentFeed.events, 2)

	_, err = h.CancelPayment(ctx, CancelPayment{})
	assert.ErrorIs(t, err, payment.ErrMissingOrderID)
	assert.Len(t, h.paymentFeed.events, 2)
}

func TestHandler_PushPaymentStatus(t *testing.T) {
	h := newTestHandler(false)
	ctx := context.Background()

	_, err := h.PushPaymentStatus(ctx, PushPaymentStatus{OrderID: "ORD-1", Status: "processing", Message: "reader busy"})
	require.NoError(t, err)

	entry, _ := h.store.Get("ORD-1")
	assert.Equal(t, payment.Entry{Status: "processing", Message: "reader busy"}, entry)

	_, err = h.PushPaymentStatus(ctx, PushPaymentStatus{Status: "paid"})
	assert.ErrorIs(t, err, payment.ErrMissingOrderID)

	_, err = h.PushPaymentStatus(ctx, PushPaymentStatus{OrderID: "ORD-1"})
	assert.ErrorIs(t, err, payment.ErrMissingStatus)
}

func TestHandler_StrictRejectsConfirmAfterCancel(t *testing.T) {
	h := newTestHandler(true)
	ctx := context.Background()

	_, err := h.CreatePaymentIntent(ctx, CreatePaymentIntent{OrderID: "ORD-1", Amount: 500})
	require.NoError(t, err)
	_, err = h.CancelPayment(ctx, CancelPayment{OrderID: "ORD-1"})
	require.NoError(t, err)

	_, err = h.ConfirmPayment(ctx, ConfirmPayment{OrderID: "ORD-1"})
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)

	entry, _ := h.store.Get("ORD-1")
	assert.Equal(t, payment.StatusCancelled, entry.Status)
}

// ============================================
// Webhook Tests
// ============================================

func TestHandler_HandleWebhook_SucceededUnknownOrder(t *testing.T) {
	h := newTestHandler(false)
	h.gateway.webhook = &payment.WebhookEvent{ID: "evt_1", Kind: payment.WebhookSucceeded, OrderID: "ORD-9"}

	_, err := h.HandleWebhook(context.Background(), HandleWebhook{Payload: []byte(`{}`), Signature: "sig"})

	require.NoError(t, err)
	entry, ok := h.store.Get("ORD-9")
	require.True(t, ok)
	assert.Equal(t, payment.StatusPaid, entry.Status)
	assert.Len(t, h.paymentFeed.events, 1)
}

func TestHandler_HandleWebhook_Failed(t *testing.T) {
	h := newTestHandler(false)
	h.gateway.webhook = &payment.WebhookEvent{ID: "evt_2", Kind: payment.WebhookFailed, OrderID: "ORD-1", FailureMessage: "Card declined"}

	_, err := h.HandleWebhook(context.Background(), HandleWebhook{})

	require.NoError(t, err)
	entry, _ := h.store.Get("ORD-1")
	assert.Equal(t, payment.Entry{Status: payment.StatusFailed, Message: "Card declined"}, entry)
}

func TestHandler_HandleWebhook_InvalidSignature(t *testing.T) {
	h := newTestHandler(false)
	h.gateway.webhookErr = payment.ErrInvalidSignature

	_, err := h.HandleWebhook(context.Background(), HandleWebhook{Payload: []byte(`{}`), Signature: "forged"})

	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.Zero(t, h.store.Len())
	assert.Empty(t, h.paymentFeed.events)
}

func TestHandler_HandleWebhook_NoTransition(t *testing.T) {
	tests := []struct {
		name  string
		event *payment.WebhookEvent
	}{
		{"ignored type", &payment.WebhookEvent{ID: "evt_3", Kind: payment.WebhookIgnored}},
		{"no order reference", &payment.WebhookEvent{ID: "evt_4", Kind: payment.WebhookSucceeded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(false)
			h.gateway.webhook = tt.event

			_, err := h.HandleWebhook(context.Background(), HandleWebhook{})

			require.NoError(t, err)
			assert.Zero(t, h.store.Len())
			assert.Empty(t, h.paymentFeed.events)
		})
	}
}

func TestHandler_CreateConnectionToken(t *testing.T) {
	h := newTestHandler(false)

	secret, err := h.CreateConnectionToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pst_test", secret)

	h.gateway.tokenErr = errors.New("unavailable")
	_, err = h.CreateConnectionToken(context.Background())
	assert.Error(t, err)
}

func TestItemsMetadata(t *testing.T) {
	assert.Equal(t, "", itemsMetadata(nil))
	assert.Equal(t, "", itemsMetadata(json.RawMessage(`null`)))
	assert.Equal(t, "2x Cola", itemsMetadata(json.RawMessage(`"2x Cola"`)))
	assert.Equal(t, `[1,2]`, itemsMetadata(json.RawMessage(` [1,2] `)))
	assert.Len(t, itemsMetadata(json.RawMessage(`"`+strings.Repeat("a", 600)+`"`)), maxMetadataValue)
}

func TestItemsMetadata_CutsOnCharacterBoundary(t *testing.T) {
	got := itemsMetadata(json.RawMessage(`"` + strings.Repeat("a", 499) + "€€" + `"`))

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxMetadataValue, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", 499)+"€", got)

	// A short multi-byte value is kept whole even when it exceeds 500 bytes.
	euros := strings.Repeat("€", 200)
	assert.Equal(t, euros, itemsMetadata(json.RawMessage(`"`+euros+`"`)))
}
