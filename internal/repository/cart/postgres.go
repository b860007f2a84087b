package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

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

const cartQuery = `
SELECT session_id, created_at, updated_at, expires_at
FROM carts
WHERE session_id = $1
`

const itemsQuery = `
SELECT product_id::text, product_name, price_cents, quantity, added_at
FROM cart_items
WHERE session_id = $1
ORDER BY added_at ASC
`

func (r *postgresRepo) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return fetchCart(ctx, r.pool, sessionID)
}

func (r *postgresRepo) AddItem(ctx context.Context, sessionID string, product domain.Product, now, expiresAt time.Time) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (session_id, created_at, updated_at, expires_at)
VALUES ($1, $2, $2, $3)
ON CONFLICT (session_id) DO UPDATE SET
    updated_at = EXCLUDED.updated_at,
    expires_at = EXCLUDED.expires_at
`, sessionID, now, expiresAt); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (session_id, product_id, product_name, price_cents, quantity, added_at)
VALUES ($1, $2, $3, $4, 1, $5)
ON CONFLICT (session_id, product_id) DO UPDATE SET
    quantity = cart_items.quantity + 1
`, sessionID, product.ID, product.Name, product.PriceCents, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return fetchCart(ctx, r.pool, sessionID)
}

func (r *postgresRepo) SetQuantity(ctx context.Context, sessionID, productID string, quantity int, now, expiresAt time.Time) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE session_id = $2 AND product_id = $3
`, quantity, sessionID, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, sessionID, now, expiresAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return fetchCart(ctx, r.pool, sessionID)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, sessionID, productID string, now, expiresAt time.Time) (int, *domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	var removedQty int
	err = tx.QueryRow(ctx, `
DELETE FROM cart_items
WHERE session_id = $1 AND product_id = $2
RETURNING quantity
`, sessionID, productID).Scan(&removedQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Removing an absent line is a successful no-op.
			return 0, nil, tx.Commit(ctx)
		}
		return 0, nil, err
	}

	var remaining int
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*) FROM cart_items WHERE session_id = $1
`, sessionID).Scan(&remaining); err != nil {
		return 0, nil, err
	}

	if remaining == 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
			return 0, nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, nil, err
		}
		r.logger.Printf("cart repo: session=%s emptied, cart deleted", sessionID)
		return removedQty, nil, nil
	}

	if err := touchCart(ctx, tx, sessionID, now, expiresAt); err != nil {
		return 0, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}

	cart, err := fetchCart(ctx, r.pool, sessionID)
	if err != nil {
		return removedQty, nil, err
	}
	return removedQty, cart, nil
}

func (r *postgresRepo) Touch(ctx context.Context, sessionID string, now, expiresAt time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET updated_at = $2, expires_at = $3
WHERE session_id = $1
`, sessionID, now, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ExpiredSessions(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT session_id FROM carts WHERE expires_at <= $1
`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

func (r *postgresRepo) ReleaseExpired(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// Locking the cart row with the expiry predicate is the atomic trigger
	// for the stock release: a concurrent sweeper blocks here and, once the
	// winner commits its delete, finds no row and no-ops.
	var locked int
	err = tx.QueryRow(ctx, `
SELECT 1 FROM carts
WHERE session_id = $1 AND expires_at <= $2
FOR UPDATE
`, sessionID, now).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, tx.Commit(ctx)
		}
		return false, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE products p
SET stock = p.stock + released.quantity
FROM (
	SELECT product_id, quantity
	FROM cart_items
	WHERE session_id = $1
) AS released
WHERE p.id = released.product_id
`, sessionID); err != nil {
		return false, err
	}

	// Cascades to cart_items.
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	r.logger.Printf("cart repo: released expired cart session=%s", sessionID)
	return true, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, sessionID string, now, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET updated_at = $2, expires_at = $3
WHERE session_id = $1
`, sessionID, now, expiresAt)
	return err
}

func fetchCart(ctx context.Context, pool *pgxpool.Pool, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := pool.QueryRow(ctx, cartQuery, sessionID).Scan(
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
		&cart.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := pool.Query(ctx, itemsQuery, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.PriceCents, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
