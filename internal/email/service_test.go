package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(err error) (*Service, *[]sentMail) {
	var sent []sentMail
	s := NewService("smtp.local", "1025", "kiosk@example.com")
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return err
	}
	return s, &sent
}

func TestService_SendNewOrder(t *testing.T) {
	s, sent := newTestService(nil)
	o := &order.Order{
		OrderID:   "ORD-1700000000000",
		Type:      order.KindTakeaway,
		Kiosk:     3,
		Producten: []order.Item{{Item: "Cola", Quantity: 2, Opmerking: "<geen ijs>"}},
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	require.NoError(t, s.SendNewOrder("shop@example.com", o))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.local:1025", mail.addr)
	assert.Equal(t, []string{"shop@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Nieuwe bestelling ORD-1700000000000 (takeaway, kiosk 3)")
	assert.Contains(t, mail.msg, "Cola")
	assert.Contains(t, mail.msg, "&lt;geen ijs&gt;")
	assert.NotContains(t, mail.msg, "<geen ijs>")
}

func TestService_SendPaymentUpdate(t *testing.T) {
	s, sent := newTestService(nil)

	require.NoError(t, s.SendPaymentUpdate("shop@example.com", "ORD-1", "failed", "Card declined", 1250))

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "Subject: Betaling ORD-1: FAILED")
	assert.Contains(t, (*sent)[0].msg, "€12.50")
	assert.Contains(t, (*sent)[0].msg, "Card declined")
}

func TestService_SendError(t *testing.T) {
	s, _ := newTestService(errors.New("connection refused"))
	assert.Error(t, s.SendPaymentUpdate("shop@example.com", "ORD-1", "paid", "ok", 0))
}

func TestBuildPaymentUpdateBody_UnknownAmount(t *testing.T) {
	body := BuildPaymentUpdateBody("ORD-1", "paid", "Payment succeeded", 0)
	assert.NotContains(t, body, "Bedrag")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "€12.50", FormatCents(1250))
	assert.Equal(t, "€0.05", FormatCents(5))
	assert.Equal(t, "€1000.00", FormatCents(100000))
}
