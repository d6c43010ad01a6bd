package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/product"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id   TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	kiosk      INTEGER NOT NULL DEFAULT 0,
	producten  JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'new',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at DESC);
CREATE TABLE IF NOT EXISTS products (
	id    TEXT PRIMARY KEY,
	naam  TEXT NOT NULL,
	prijs BIGINT NOT NULL,
	image TEXT NOT NULL DEFAULT ''
);`

// PostgresRepository stores orders and products in PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertOrder(ctx context.Context, o *order.Order) error {
	producten, err := json.Marshal(o.Producten)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, type, kiosk, producten, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.OrderID, string(o.Type), o.Kiosk, producten, o.Status, o.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, type, kiosk, producten, status, created_at
		 FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Printf("[Postgres] Error scanning order: %v", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID, status string) (*order.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2
		 RETURNING order_id, type, kiosk, producten, status, created_at`,
		status, orderID,
	)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, naam, prijs, image FROM products ORDER BY naam`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Naam, &p.Prijs, &p.Image); err != nil {
			log.Printf("[Postgres] Error scanning product: %v", err)
			continue
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o         order.Order
		kind      string
		producten []byte
	)
	if err := row.Scan(&o.OrderID, &kind, &o.Kiosk, &producten, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Type = order.Kind(kind)
	if err := json.Unmarshal(producten, &o.Producten); err != nil {
		return nil, fmt.Errorf("decode producten of %s: %w", o.OrderID, err)
	}
	return &o, nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
