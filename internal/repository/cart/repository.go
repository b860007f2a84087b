package cart

import (
	"context"
	"time"

	"postro/internal/domain"
)

// Repository persists session-keyed carts. Every mutation carries the caller's
// mutation time and the derived expiry so expires_at always tracks the last
// write. A cart whose last line is removed is deleted, never kept empty.
type Repository interface {
	// Get returns the cart for a session, or domain.ErrNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// AddItem creates the cart if needed and adds one unit of the product,
	// incrementing an existing line.
	AddItem(ctx context.Context, sessionID string, product domain.Product, now, expiresAt time.Time) (*domain.Cart, error)
	// SetQuantity sets an existing line to quantity (>= 1). Returns
	// domain.ErrNotFound when the line does not exist.
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int, now, expiresAt time.Time) (*domain.Cart, error)
	// RemoveItem deletes a line, reporting the removed quantity (0 when the
	// line was absent). The returned cart is nil when the cart was deleted.
	RemoveItem(ctx context.Context, sessionID, productID string, now, expiresAt time.Time) (int, *domain.Cart, error)
	// Touch refreshes updated_at/expires_at without changing items.
	Touch(ctx context.Context, sessionID string, now, expiresAt time.Time) error
	// ExpiredSessions lists sessions whose carts expired at or before now.
	ExpiredSessions(ctx context.Context, now time.Time) ([]string, error)
	// ReleaseExpired deletes one expired cart and restores its reserved stock
	// in a single transaction. Returns false when there was nothing to
	// release, which makes concurrent sweeps idempotent.
	ReleaseExpired(ctx context.Context, sessionID string, now time.Time) (bool, error)
}
