package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/catalog"
)

// ErrUnknownProduct aborts a checkout when any requested product id does
// not exist at validation time.
var ErrUnknownProduct = errors.New("one or more product ids are invalid")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PriceSource resolves product prices, optionally inside a transaction.
type PriceSource interface {
	PricesFor(ctx context.Context, q catalog.Querier, ids []int64) (map[int64]decimal.Decimal, error)
}

// CartClearer empties a user's cart as part of the checkout transaction.
type CartClearer interface {
	ClearTx(ctx context.Context, tx pgx.Tx, userID string) error
}

type Repository interface {
	// PlaceOrder validates the requested products, computes the total,
	// persists the order and clears the cart in one transaction.
	PlaceOrder(ctx context.Context, userID string, items []Item) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}

type PostgresRepository struct {
	pool   DBPool
	prices PriceSource
	carts  CartClearer
}

func NewPostgresRepository(pool DBPool, prices PriceSource, carts CartClearer) *PostgresRepository {
	return &PostgresRepository{pool: pool, prices: prices, carts: carts}
}

func (r *PostgresRepository) PlaceOrder(ctx context.Context, userID string, items []Item) (*Order, error) {
	ids := distinctIDs(items)

	// Serializable so a product deleted between validation and write
	// fails the transaction instead of producing a phantom order.
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prices, err := r.prices.PricesFor(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}
	if len(prices) != len(ids) {
		var missing []int64
		for _, id := range ids {
			if _, ok := prices[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownProduct, missing)
	}

	o := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     append([]Item(nil), items...),
		Total:     Total(items, prices),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	snapshot, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, items, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, o.ID, o.UserID, snapshot, o.Total, string(o.Status), o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := r.carts.ClearTx(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, items, total_price, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var snapshot []byte
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &snapshot, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(snapshot, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		o.Status = Status(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

func distinctIDs(items []Item) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
