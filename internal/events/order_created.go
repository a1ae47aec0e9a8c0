package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderCreated = "OrderCreated"
	OrderCreatedQueue     = "order.created"
)

// OrderCreated is the wire contract announced after a checkout commits.
// Like the persisted snapshot, items carry no per-line price.
type OrderCreated struct {
	EventType string          `json:"eventType"`
	OrderID   string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"totalPrice"`
	Timestamp time.Time       `json:"timestamp"`
}

type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
