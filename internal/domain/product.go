package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Stock       int       `json:"stock"`
	PriceCents  int64     `json:"priceCents"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stock badge labels shown on product cards.
const (
	StockSoldOut = "SOLD OUT"
	StockLastFew = "LAST FEW"
	StockLow     = "LOW STOCK"
	StockIn      = "IN STOCK"
)

// StockLevel maps a stock count to its badge label.
func StockLevel(stock int) string {
	switch {
	case stock <= 0:
		return StockSoldOut
	case stock <= 3:
		return StockLastFew
	case stock <= 7:
		return StockLow
	default:
		return StockIn
	}
}
