package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrMissingUser     = errors.New("userId is required")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	// AddOrMerge inserts a line or increments an existing one. The returned
	// flag reports whether an existing line was merged into.
	AddOrMerge(ctx context.Context, userID string, productID int64, quantity int) (merged bool, err error)
	// Remove deletes a line. Removing an absent line is not an error.
	Remove(ctx context.Context, userID string, productID int64) error
	List(ctx context.Context, userID string) ([]Line, error)
	Clear(ctx context.Context, userID string) error
	// ClearTx clears a user's cart inside an open transaction, so checkout
	// can bundle it with the order insert.
	ClearTx(ctx context.Context, tx pgx.Tx, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) AddOrMerge(ctx context.Context, userID string, productID int64, quantity int) (bool, error) {
	if userID == "" {
		return false, ErrMissingUser
	}
	if quantity <= 0 {
		return false, ErrInvalidQuantity
	}

	// xmax is zero for freshly inserted rows, non-zero when the upsert
	// touched an existing one.
	var merged bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
		RETURNING (xmax <> 0)
	`, userID, productID, quantity).Scan(&merged)
	if err != nil {
		return false, fmt.Errorf("upsert cart line: %w", err)
	}
	return merged, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID string, productID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, product_id, quantity FROM cart_lines WHERE user_id = $1 ORDER BY product_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.UserID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
