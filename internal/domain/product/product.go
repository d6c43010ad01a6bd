package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPrice = errors.New("prijs must be positive")
	ErrInvalidName  = errors.New("naam is required")
)

// Product is a catalog entry shown on the kiosk. Prijs is in cents.
type Product struct {
	ID    string `json:"id"`
	Naam  string `json:"naam"`
	Prijs int64  `json:"prijs"`
	Image string `json:"image"`
}

// New validates and creates a catalog entry with a fresh id.
func New(naam string, prijs int64, image string) (*Product, error) {
	naam = strings.TrimSpace(naam)
	if naam == "" {
		return nil, ErrInvalidName
	}
	if prijs <= 0 {
		return nil, ErrInvalidPrice
	}
	return &Product{
		ID:    uuid.New().String(),
		Naam:  naam,
		Prijs: prijs,
		Image: image,
	}, nil
}

// Repository lists the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]*Product, error)
}
