package product

import (
	"context"

	"postro/internal/domain"
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Search      string
	Category    string
	Subcategory string
}

type Repository interface {
	List(ctx context.Context, filter Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// DecrementStock reserves n units atomically. It returns the remaining
	// stock and domain.ErrInsufficientStock when fewer than n units remain.
	DecrementStock(ctx context.Context, id string, n int) (int, error)
	// RestoreStock releases n previously reserved units.
	RestoreStock(ctx context.Context, id string, n int) error
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
