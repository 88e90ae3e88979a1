package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"checkpos/internal/domain"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this title already exists")
)

// ProductRepository defines the interface for catalog data access. FindByNames
// is the catalog-lookup used by check creation: it resolves product titles to
// a joined product/price/stock snapshot in one read.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	CreatePrice(ctx context.Context, price *domain.ProductPrice) error
	CreateStock(ctx context.Context, stock *domain.Stock) error
	FindByNames(ctx context.Context, names []string) ([]*domain.CatalogLine, error)
	List(ctx context.Context) ([]*domain.CatalogLine, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (identifier, title, description, units, min_quantity_sell)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Identifier,
		product.Title,
		product.Description,
		product.Units,
		product.MinQuantitySell,
	).Scan(&product.ID)

	if err != nil {
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// CreatePrice inserts the price row owned by a product
func (r *productRepository) CreatePrice(ctx context.Context, price *domain.ProductPrice) error {
	query := `
		INSERT INTO product_prices (product_id, price, discount, price_update, discount_update)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		price.ProductID,
		price.Price,
		price.Discount,
		price.PriceUpdate,
		price.DiscountUpdate,
	).Scan(&price.ID)

	if err != nil {
		return fmt.Errorf("failed to create product price: %w", err)
	}

	return nil
}

// CreateStock inserts the stock row owned by a product
func (r *productRepository) CreateStock(ctx context.Context, stock *domain.Stock) error {
	query := `
		INSERT INTO stock (product_id, identifier, quantity_in_stock, last_update)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		stock.ProductID,
		stock.Identifier,
		stock.QuantityInStock,
		stock.LastUpdate,
	).Scan(&stock.ID)

	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	return nil
}

const catalogLineColumns = `
	p.id, p.identifier, p.title, p.description, p.units, p.min_quantity_sell,
	pp.id, pp.product_id, pp.price, pp.discount, pp.price_update, pp.discount_update,
	s.id, s.product_id, s.identifier, s.quantity_in_stock, s.last_update
`

// FindByNames resolves product titles to their joined price/stock view.
// Titles absent from the catalog are simply absent from the result; the
// caller computes the difference.
func (r *productRepository) FindByNames(ctx context.Context, names []string) ([]*domain.CatalogLine, error) {
	query := `
		SELECT ` + catalogLineColumns + `
		FROM products p
		JOIN product_prices pp ON pp.product_id = p.id
		JOIN stock s ON s.product_id = p.id
		WHERE p.title = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by names: %w", err)
	}
	defer rows.Close()

	return scanCatalogLines(rows)
}

// List retrieves the full catalog with current prices and stock
func (r *productRepository) List(ctx context.Context) ([]*domain.CatalogLine, error) {
	query := `
		SELECT ` + catalogLineColumns + `
		FROM products p
		JOIN product_prices pp ON pp.product_id = p.id
		JOIN stock s ON s.product_id = p.id
		ORDER BY p.title ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanCatalogLines(rows)
}

func scanCatalogLines(rows *sql.Rows) ([]*domain.CatalogLine, error) {
	lines := []*domain.CatalogLine{}
	for rows.Next() {
		line := &domain.CatalogLine{}
		err := rows.Scan(
			&line.Product.ID,
			&line.Product.Identifier,
			&line.Product.Title,
			&line.Product.Description,
			&line.Product.Units,
			&line.Product.MinQuantitySell,
			&line.Price.ID,
			&line.Price.ProductID,
			&line.Price.Price,
			&line.Price.Discount,
			&line.Price.PriceUpdate,
			&line.Price.DiscountUpdate,
			&line.Stock.ID,
			&line.Stock.ProductID,
			&line.Stock.Identifier,
			&line.Stock.QuantityInStock,
			&line.Stock.LastUpdate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog lines: %w", err)
	}

	return lines, nil
}
