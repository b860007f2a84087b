package saleslog

import (
	"context"
	"io"
	"log"

	"postro/internal/domain"
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

func (r *postgresRepo) Append(ctx context.Context, entry domain.SaleLog) error {
	const q = `
INSERT INTO sales_log (id, product_id, product_name, category, tags, stock_before, stock_after, logged_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q,
		entry.ID,
		entry.ProductID,
		entry.ProductName,
		entry.Category,
		entry.Tags,
		entry.StockBefore,
		entry.StockAfter,
		entry.LoggedAt,
	)
	if err != nil {
		r.logger.Printf("sales repo: append product=%s error=%v", entry.ProductID, err)
	}
	return err
}

func (r *postgresRepo) List(ctx context.Context, filter Filter) ([]domain.SaleLog, error) {
	const q = `
SELECT id::text, product_id::text, product_name, category, tags, stock_before, stock_after, logged_at
FROM sales_log
WHERE ($1 = '' OR product_id::text = $1)
  AND ($2 = '' OR category = $2)
  AND ($3::timestamptz IS NULL OR logged_at >= $3)
  AND ($4::timestamptz IS NULL OR logged_at <= $4)
ORDER BY logged_at DESC
LIMIT $5
`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var from, to interface{}
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		to = filter.To
	}

	rows, err := r.pool.Query(ctx, q, filter.ProductID, filter.Category, from, to, limit)
	if err != nil {
		r.logger.Printf("sales repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.SaleLog
	for rows.Next() {
		var s domain.SaleLog
		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Category, &s.Tags, &s.StockBefore, &s.StockAfter, &s.LoggedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_log`).Scan(&count)
	return count, err
}

func (r *postgresRepo) TopProducts(ctx context.Context, n int) ([]domain.ProductSaleCount, error) {
	const q = `
SELECT product_name, COUNT(*) AS sales
FROM sales_log
GROUP BY product_name
ORDER BY sales DESC, product_name ASC
LIMIT $1
`
	if n <= 0 {
		n = 10
	}
	rows, err := r.pool.Query(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductSaleCount
	for rows.Next() {
		var p domain.ProductSaleCount
		if err := rows.Scan(&p.ProductName, &p.Count); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
