package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrStockNotFound     = errors.New("stock not found")
	ErrInsufficientStock = errors.New("not enough units in stock")
)

// StockRepository defines the interface for stock mutation.
type StockRepository interface {
	Decrement(ctx context.Context, stockID int64, quantity decimal.Decimal, at time.Time) error
}

type stockRepository struct {
	db DBTX
}

// NewStockRepository creates a new instance of StockRepository
func NewStockRepository(db DBTX) StockRepository {
	return &stockRepository{db: db}
}

// Decrement subtracts a sold quantity from a stock row. The quantity guard in
// the WHERE clause makes concurrent sales of the same product safe: the
// transaction that loses the race affects zero rows and gets
// ErrInsufficientStock, which aborts its whole unit of work.
func (r *stockRepository) Decrement(ctx context.Context, stockID int64, quantity decimal.Decimal, at time.Time) error {
	query := `
		UPDATE stock
		SET quantity_in_stock = quantity_in_stock - $2, last_update = $3
		WHERE id = $1 AND quantity_in_stock >= $2
	`

	result, err := r.db.ExecContext(ctx, query, stockID, quantity, at)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}
