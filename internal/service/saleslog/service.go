package saleslog

import (
	"context"
	"time"

	"postro/internal/domain"
	salesrepo "postro/internal/repository/saleslog"
)

const defaultRecentLimit = 50

type Service struct {
	repo salesrepo.Repository
}

func New(repo salesrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Recent returns the latest sale entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.SaleLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.repo.List(ctx, salesrepo.Filter{Limit: limit})
}

// Query returns sale entries filtered by product, category, and date range.
func (s *Service) Query(ctx context.Context, productID, category string, from, to time.Time, limit int) ([]domain.SaleLog, error) {
	return s.repo.List(ctx, salesrepo.Filter{
		ProductID: productID,
		Category:  category,
		From:      from,
		To:        to,
		Limit:     limit,
	})
}

// TopProducts returns the ten best-selling products by sale count.
func (s *Service) TopProducts(ctx context.Context) ([]domain.ProductSaleCount, error) {
	return s.repo.TopProducts(ctx, 10)
}

// TotalCount returns the total number of logged sales.
func (s *Service) TotalCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
