package product

import (
	"context"
	"errors"
	"io"
	"log"

	"postro/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, filter Filter) ([]domain.Product, error) {
	const q = `
SELECT id::text, key, name, category, subcategory, tags, stock, price_cents, image_url, created_at
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%' OR EXISTS (
	SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE '%' || $1 || '%'
))
  AND ($2 = '' OR category = $2)
  AND ($3 = '' OR subcategory = $3)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, filter.Search, filter.Category, filter.Subcategory)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Subcategory, &p.Tags, &p.Stock, &p.PriceCents, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, key, name, category, subcategory, tags, stock, price_cents, image_url, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Subcategory, &p.Tags, &p.Stock, &p.PriceCents, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id string, n int) (int, error) {
	const q = `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
RETURNING stock
`
	var remaining int
	err := r.pool.QueryRow(ctx, q, id, n).Scan(&remaining)
	if err == nil {
		r.logger.Printf("product repo: decrement id=%s n=%d remaining=%d", id, n, remaining)
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Printf("product repo: decrement id=%s error=%v", id, err)
		return 0, err
	}

	// The conditional write matched no row: either the product is missing or
	// its stock is below n.
	if _, err := r.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return 0, domain.ErrInsufficientStock
}

func (r *postgresRepo) RestoreStock(ctx context.Context, id string, n int) error {
	const q = `
UPDATE products
SET stock = stock + $2
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, id, n)
	if err != nil {
		r.logger.Printf("product repo: restore id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (key, name, category, subcategory, tags, stock, price_cents, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    category = EXCLUDED.category,
    subcategory = EXCLUDED.subcategory,
    tags = EXCLUDED.tags,
    stock = EXCLUDED.stock,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.Key,
		product.Name,
		product.Category,
		product.Subcategory,
		product.Tags,
		product.Stock,
		product.PriceCents,
		product.ImageURL,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s error=%v", product.Key, err)
		return nil, err
	}
	return &res, nil
}
