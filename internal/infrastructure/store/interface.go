package store

import (
	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/product"
)

// Repository is everything the API needs from order storage.
type Repository interface {
	order.Repository
	product.Repository
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MongoRepository)(nil)
)
