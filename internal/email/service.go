package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/example/kiosk-orders/internal/domain/order"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail sendFunc
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendNewOrder tells the shop inbox about a placed order.
func (s *Service) SendNewOrder(to string, o *order.Order) error {
	subject := fmt.Sprintf("Nieuwe bestelling %s (%s)", o.OrderID, o.Type)
	if o.Kiosk > 0 {
		subject = fmt.Sprintf("Nieuwe bestelling %s (%s, kiosk %d)", o.OrderID, o.Type, o.Kiosk)
	}
	return s.send(to, subject, BuildNewOrderBody(o))
}

// SendPaymentUpdate reports a final payment outcome. amount is in cents; 0
// means unknown and is left out of the mail.
func (s *Service) SendPaymentUpdate(to, orderID, status, message string, amount int64) error {
	subject := fmt.Sprintf("Betaling %s: %s", orderID, strings.ToUpper(status))
	return s.send(to, subject, BuildPaymentUpdateBody(orderID, status, message, amount))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
