package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/shopspring/decimal"
)

const cellStyle = `padding: 12px; border-bottom: 1px solid #eee;`

// BuildNewOrderBody builds the HTML body of the new-order mail
func BuildNewOrderBody(o *order.Order) string {
	var rows strings.Builder
	for _, item := range o.Producten {
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="%s">%s</td>
				<td style="%s text-align: center;">%d</td>
				<td style="%s">%s</td>
			</tr>`,
			cellStyle, html.EscapeString(item.Item),
			cellStyle, item.Quantity,
			cellStyle, html.EscapeString(item.Opmerking),
		))
	}

	kiosk := "-"
	if o.Kiosk > 0 {
		kiosk = fmt.Sprintf("%d", o.Kiosk)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px; margin-top: 0;">Nieuwe bestelling</h1>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-family: monospace; font-size: 18px; font-weight: bold;">%s</p>
		<p style="margin: 5px 0 0 0; color: #666;">Type: %s &middot; Kiosk: %s &middot; %s</p>
	</div>
	<table style="width: 100%%; border-collapse: collapse;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Item</th>
				<th style="padding: 12px; text-align: center;">Aantal</th>
				<th style="padding: 12px; text-align: left;">Opmerking</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>
</body>
</html>`,
		html.EscapeString(o.OrderID),
		html.EscapeString(string(o.Type)),
		kiosk,
		o.CreatedAt.Format("02-01-2006 15:04:05"),
		rows.String(),
	)
}

// BuildPaymentUpdateBody builds the HTML body of a payment outcome mail
func BuildPaymentUpdateBody(orderID, status, message string, amount int64) string {
	color := "#2e7d32"
	if status != "paid" {
		color = "#c62828"
	}

	amountLine := ""
	if amount > 0 {
		amountLine = fmt.Sprintf(`<p style="margin: 5px 0 0 0;">Bedrag: <strong>%s</strong></p>`, FormatCents(amount))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px; margin-top: 0;">Betaling <span style="color: %s;">%s</span></h1>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px;">
		<p style="margin: 0; font-family: monospace; font-size: 18px; font-weight: bold;">%s</p>
		%s
		<p style="margin: 5px 0 0 0; color: #666;">%s</p>
	</div>
</body>
</html>`,
		color, html.EscapeString(status),
		html.EscapeString(orderID),
		amountLine,
		html.EscapeString(message),
	)
}

// FormatCents renders an amount in cents as euros, e.g. 1250 -> "€12.50".
func FormatCents(cents int64) string {
	return "€" + decimal.New(cents, -2).StringFixed(2)
}
