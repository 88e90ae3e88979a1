package repository

import (
	"context"
	"fmt"

	"checkpos/internal/domain"
)

// SoldProductRepository defines the interface for sold-product line access.
// Lines are write-once snapshots; they are read back through CheckRepository.
type SoldProductRepository interface {
	Create(ctx context.Context, sold *domain.SoldProduct) error
}

type soldProductRepository struct {
	db DBTX
}

// NewSoldProductRepository creates a new instance of SoldProductRepository
func NewSoldProductRepository(db DBTX) SoldProductRepository {
	return &soldProductRepository{db: db}
}

// Create inserts a sold-product snapshot using parameterized queries
func (r *soldProductRepository) Create(ctx context.Context, sold *domain.SoldProduct) error {
	query := `
		INSERT INTO sold_products (check_id, stock_id, product_identifier, title, description, units, quantity, price, discount, total_price, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		sold.CheckID,
		sold.StockID,
		sold.ProductIdentifier,
		sold.Title,
		sold.Description,
		sold.Units,
		sold.Quantity,
		sold.Price,
		sold.Discount,
		sold.TotalPrice,
		sold.SoldAt,
	).Scan(&sold.ID)

	if err != nil {
		return fmt.Errorf("failed to create sold product: %w", err)
	}

	return nil
}
