package query

import (
	"context"
	"strconv"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/domain/product"
)

type Handler struct {
	products product.Repository
	orders   order.Repository
	payments *payment.Store
}

func NewHandler(products product.Repository, orders order.Repository, payments *payment.Store) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		payments: payments,
	}
}

// Products
func (h *Handler) ListProducts(ctx context.Context) ([]*product.Product, error) {
	products, err := h.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*product.Product{}
	}
	return products, nil
}

// AdminOverview flattens all orders into one row per product line, newest
// order first.
func (h *Handler) AdminOverview(ctx context.Context) ([]OverviewRow, error) {
	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	var rows []OverviewRow
	for _, o := range orders {
		kiosk := "-"
		if o.Kiosk > 0 {
			kiosk = strconv.Itoa(o.Kiosk)
		}
		for _, item := range o.Producten {
			rows = append(rows, OverviewRow{
				OrderID:   o.OrderID,
				Type:      string(o.Type),
				Kiosk:     kiosk,
				Item:      item.Item,
				Quantity:  item.Quantity,
				Opmerking: item.Opmerking,
				Time:      o.CreatedAt.Local().Format(overviewTimeLayout),
				Status:    o.Status,
			})
		}
	}
	return rows, nil
}

// PaymentStatuses is the debug dump of every known payment, keyed by order id.
func (h *Handler) PaymentStatuses() map[string]payment.Entry {
	return h.payments.DumpAll()
}
