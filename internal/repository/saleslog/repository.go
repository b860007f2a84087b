package saleslog

import (
	"context"
	"time"

	"postro/internal/domain"
)

// Filter narrows sales queries. Zero values match everything.
type Filter struct {
	ProductID string
	Category  string
	From      time.Time
	To        time.Time
	Limit     int
}

type Repository interface {
	Append(ctx context.Context, entry domain.SaleLog) error
	List(ctx context.Context, filter Filter) ([]domain.SaleLog, error)
	Count(ctx context.Context) (int, error)
	// TopProducts returns the n products with the most sale entries.
	TopProducts(ctx context.Context, n int) ([]domain.ProductSaleCount, error)
}
