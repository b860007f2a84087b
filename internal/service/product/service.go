package product

import (
	"context"
	"strings"

	"postro/internal/domain"
	productrepo "postro/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns catalog products matching the filter. The search term matches
// name, category, and tags, case-insensitively.
func (s *Service) List(ctx context.Context, search, category, subcategory string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{
		Search:      strings.TrimSpace(search),
		Category:    strings.TrimSpace(category),
		Subcategory: strings.TrimSpace(subcategory),
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}
