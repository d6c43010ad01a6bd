package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/product"
)

// MemoryRepository keeps orders and products in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	products []*product.Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]*order.Order),
	}
}

// InsertOrder stores a copy of o. Order ids are unique.
func (r *MemoryRepository) InsertOrder(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.OrderID]; exists {
		return fmt.Errorf("order %s already exists", o.OrderID)
	}
	r.orders[o.OrderID] = o.Clone()
	return nil
}

// ListOrders returns copies of all orders, newest first.
func (r *MemoryRepository) ListOrders(ctx context.Context) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o.Clone())
	}
	slices.SortFunc(orders, func(a, b *order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders, nil
}

func (r *MemoryRepository) UpdateOrderStatus(ctx context.Context, orderID, status string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Status = status
	return o.Clone(), nil
}

// AddProduct appends a catalog entry.
func (r *MemoryRepository) AddProduct(p *product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.products = append(r.products, &cp)
}

func (r *MemoryRepository) ListProducts(ctx context.Context) ([]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*product.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		products = append(products, &cp)
	}
	return products, nil
}
