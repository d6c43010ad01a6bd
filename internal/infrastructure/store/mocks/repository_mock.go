package mocks

import (
	"context"
	"slices"
	"sync"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/product"
)

// MockRepository is a mock implementation of store.Repository for testing
type MockRepository struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	products []*product.Product

	// Errors returned by the matching method when set
	InsertErr error
	ListErr   error
	UpdateErr error

	// For tracking calls in tests
	InsertCalls []*order.Order
	UpdateCalls []UpdateCall
	ListCalls   int
}

// UpdateCall records parameters passed to UpdateOrderStatus
type UpdateCall struct {
	OrderID string
	Status  string
}

// NewMockRepository creates a new MockRepository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		orders: make(map[string]*order.Order),
	}
}

func (m *MockRepository) InsertOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, o.Clone())
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.orders[o.OrderID] = o.Clone()
	return nil
}

func (m *MockRepository) ListOrders(ctx context.Context) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	orders := make([]*order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o.Clone())
	}
	slices.SortFunc(orders, func(a, b *order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders, nil
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, orderID, status string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{OrderID: orderID, Status: status})
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Status = status
	return o.Clone(), nil
}

func (m *MockRepository) ListProducts(ctx context.Context) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.products), nil
}

// SetProducts sets the catalog directly for testing
func (m *MockRepository) SetProducts(products ...*product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// GetOrder gets an order directly for testing (without recording the call)
func (m *MockRepository) GetOrder(orderID string) (*order.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Reset clears all data and recorded calls
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[string]*order.Order)
	m.products = nil
	m.InsertCalls = nil
	m.UpdateCalls = nil
	m.ListCalls = 0
}
