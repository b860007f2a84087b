package domain

import "time"

// SaleLog is an append-only record of a completed stock decrement.
type SaleLog struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	StockBefore int       `json:"stockBefore"`
	StockAfter  int       `json:"stockAfter"`
	LoggedAt    time.Time `json:"timestamp"`
}

// ProductSaleCount is an aggregate used by the top-sellers report.
type ProductSaleCount struct {
	ProductName string `json:"productName"`
	Count       int    `json:"count"`
}
