// Package notify delivers fire-and-forget transient messages (toasts) to the
// presentation layer, fanned out per session over NATS.
package notify

import (
	"context"
	"time"
)

// ToastDuration is how long the presentation layer shows a toast before
// auto-dismissing it.
const ToastDuration = 3500 * time.Millisecond

// Toast messages surfaced by the cart flow.
const (
	MsgOutOfStock     = "OUT OF STOCK • TRY ANOTHER DROP"
	MsgNotEnoughStock = "NOT ENOUGH STOCK"
	MsgItemRemoved    = "ITEM REMOVED FROM CART"
	MsgAddFailed      = "ERROR • Failed to add to cart"
)

// Toast is one transient message for a session.
type Toast struct {
	Message    string `json:"message"`
	DurationMS int64  `json:"durationMs"`
}

// Notifier publishes toasts. Implementations must never block the caller on
// delivery and must swallow transport failures.
type Notifier interface {
	Toast(ctx context.Context, sessionID, message string)
}

// Noop discards all toasts. Used in tests and when the message bus is down.
type Noop struct{}

func (Noop) Toast(context.Context, string, string) {}
