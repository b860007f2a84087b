package domain

import (
	"testing"
	"time"
)

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		want      string
	}{
		{"two minutes five seconds", now.Add(125 * time.Second), "2:05"},
		{"full hour", now.Add(60 * time.Minute), "60:00"},
		{"seconds only", now.Add(5 * time.Second), "0:05"},
		{"zero pads seconds", now.Add(61 * time.Second), "1:01"},
		{"floors sub-second remainder", now.Add(125*time.Second + 900*time.Millisecond), "2:05"},
		{"exactly now", now, "EXPIRED"},
		{"already passed", now.Add(-time.Second), "EXPIRED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeRemaining(tc.expiresAt, now); got != tc.want {
				t.Fatalf("TimeRemaining() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCartTotals(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "a", PriceCents: 2500, Quantity: 2},
			{ProductID: "b", PriceCents: 3400, Quantity: 1},
		},
	}

	if got := cart.ItemCount(); got != 3 {
		t.Fatalf("ItemCount() = %d, want 3", got)
	}
	if got := cart.TotalCents(); got != 8400 {
		t.Fatalf("TotalCents() = %d, want 8400", got)
	}
}

func TestStockLevel(t *testing.T) {
	cases := []struct {
		stock int
		want  string
	}{
		{0, StockSoldOut},
		{-1, StockSoldOut},
		{1, StockLastFew},
		{3, StockLastFew},
		{4, StockLow},
		{7, StockLow},
		{8, StockIn},
		{100, StockIn},
	}
	for _, tc := range cases {
		if got := StockLevel(tc.stock); got != tc.want {
			t.Fatalf("StockLevel(%d) = %q, want %q", tc.stock, got, tc.want)
		}
	}
}
