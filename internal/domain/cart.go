package domain

import (
	"fmt"
	"time"
)

// Cart is a session-scoped reservation of products. It is keyed by the
// client's session id and expires a fixed TTL after its last mutation.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"lastUpdatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// CartItem is one product line within a cart. Name and price are
// denormalized from the product so the cart renders without a join.
type CartItem struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"addedAt"`
}

// ItemCount returns the total unit count across all lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalCents returns the cart total in cents.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}

// TimeRemaining formats the countdown until expiresAt as "M:SS", floored to
// the whole second, or "EXPIRED" once the deadline has passed.
func TimeRemaining(expiresAt, now time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "EXPIRED"
	}
	diff = diff.Truncate(time.Second)
	minutes := int(diff / time.Minute)
	seconds := int(diff%time.Minute) / int(time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
