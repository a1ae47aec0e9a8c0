package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one requested line inside an order. The snapshot deliberately
// carries no per-line price; only the order-level total is persisted.
type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Items     []Item          `json:"products"`
	Total     decimal.Decimal `json:"totalPrice"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Total sums price(productId) x quantity over all items and rounds the
// final sum once to 2 fractional digits, half away from zero. Duplicate
// product ids are summed, not merged.
func Total(items []Item, prices map[int64]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(prices[it.ProductID].Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}
