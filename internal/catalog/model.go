package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewProduct carries the validated fields for product creation.
type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
}

// Filter narrows List results. Zero values mean "no filter";
// conditions are AND-combined.
type Filter struct {
	Category string
	InStock  bool
}
