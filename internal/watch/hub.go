// Package watch delivers live cart snapshots to subscribers. Cart mutations
// publish the session id over Redis pub/sub; each watcher re-reads the cart
// from the store on every notification, so a client's own writes are never
// lost to a stale cached read.
package watch

import (
	"context"
	"errors"
	"io"
	"log"

	"postro/internal/domain"
	"postro/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "cart.changed."

// CartSource loads the current cart snapshot for a session.
// domain.ErrNotFound means no cart exists.
type CartSource interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
}

type Hub struct {
	rdb    *redis.Client
	carts  CartSource
	logger *log.Logger
}

func NewHub(rdb *redis.Client, carts CartSource, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{rdb: rdb, carts: carts, logger: logger}
}

// Publish notifies all watchers of a session that its cart changed. Errors
// are logged, not returned: a missed notification degrades freshness, never
// correctness, because watchers re-read on the next change.
func (h *Hub) Publish(ctx context.Context, sessionID string) {
	if err := h.rdb.Publish(ctx, channelPrefix+sessionID, sessionID).Err(); err != nil {
		h.logger.Printf("watch: publish session=%s error=%v", sessionID, err)
	}
}

// Watch subscribes onChange to cart changes for a session. onChange receives
// the current snapshot immediately, then a fresh snapshot after every
// committed change (nil when no cart exists). The returned cancel function
// releases the subscription; it is safe to call more than once.
func (h *Hub) Watch(ctx context.Context, sessionID string, onChange func(*domain.Cart)) (func(), error) {
	pubsub := h.rdb.Subscribe(ctx, channelPrefix+sessionID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	metrics.CartWatchers.Inc()

	onChange(h.snapshot(watchCtx, sessionID))

	go func() {
		defer metrics.CartWatchers.Dec()
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				onChange(h.snapshot(watchCtx, sessionID))
			}
		}
	}()

	return cancel, nil
}

func (h *Hub) snapshot(ctx context.Context, sessionID string) *domain.Cart {
	cart, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
			h.logger.Printf("watch: snapshot session=%s error=%v", sessionID, err)
		}
		return nil
	}
	return cart
}
