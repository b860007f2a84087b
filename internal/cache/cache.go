package cache

import (
	"context"
	"errors"

	"postro/internal/domain"
)

// CartCache is a read-through cache of cart snapshots keyed by session id.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
