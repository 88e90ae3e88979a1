package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"checkpos/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCheckNotFound = errors.New("check not found")

// CheckRepository defines the interface for check data access. ListByEssence
// is the history query: all supplied filters apply as a conjunction, results
// are sorted by creation date and sliced by limit/offset, and every returned
// check carries its sold-product lines.
type CheckRepository interface {
	Create(ctx context.Context, check *domain.Check) error
	UpdateTotals(ctx context.Context, id int64, total, rest decimal.Decimal) error
	FindByIdentifier(ctx context.Context, identifier uuid.UUID) (*domain.Check, error)
	ListByEssence(ctx context.Context, essenceID int64, filter domain.CheckFilter, sortOrder SortOrder, limit, offset int) ([]*domain.Check, int, error)
}

type checkRepository struct {
	db DBTX
}

// NewCheckRepository creates a new instance of CheckRepository
func NewCheckRepository(db DBTX) CheckRepository {
	return &checkRepository{db: db}
}

// Create inserts a check header with zero totals using parameterized queries
func (r *checkRepository) Create(ctx context.Context, check *domain.Check) error {
	query := `
		INSERT INTO checks (identifier, created_at, purchasing_method, total_price, rest, essence_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		check.Identifier,
		check.CreatedAt,
		check.PurchasingMethod,
		check.TotalPrice,
		check.Rest,
		check.EssenceID,
	).Scan(&check.ID)

	if err != nil {
		return fmt.Errorf("failed to create check: %w", err)
	}

	return nil
}

// UpdateTotals finalizes a check's total and rest after its lines are persisted
func (r *checkRepository) UpdateTotals(ctx context.Context, id int64, total, rest decimal.Decimal) error {
	query := `
		UPDATE checks
		SET total_price = $2, rest = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, total, rest)
	if err != nil {
		return fmt.Errorf("failed to update check totals: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCheckNotFound
	}

	return nil
}

const checkColumns = `id, identifier, created_at, purchasing_method, total_price, rest, essence_id`

// FindByIdentifier retrieves a check by its external identifier, lines included
func (r *checkRepository) FindByIdentifier(ctx context.Context, identifier uuid.UUID) (*domain.Check, error) {
	query := `
		SELECT ` + checkColumns + `
		FROM checks
		WHERE identifier = $1
	`

	check := &domain.Check{}
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&check.ID,
		&check.Identifier,
		&check.CreatedAt,
		&check.PurchasingMethod,
		&check.TotalPrice,
		&check.Rest,
		&check.EssenceID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCheckNotFound
		}
		return nil, fmt.Errorf("failed to find check by identifier: %w", err)
	}

	if err := r.loadLines(ctx, []*domain.Check{check}); err != nil {
		return nil, err
	}

	return check, nil
}

// ListByEssence retrieves one page of an essence's checks plus the total count
// of checks matching the filters.
func (r *checkRepository) ListByEssence(
	ctx context.Context,
	essenceID int64,
	filter domain.CheckFilter,
	sortOrder SortOrder,
	limit, offset int,
) ([]*domain.Check, int, error) {
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderAsc
	}

	whereClause := "WHERE essence_id = $1"
	args := []any{essenceID}
	argIndex := 2

	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.EndDate)
		argIndex++
	}
	// The total-price filter needs both a threshold and a comparator.
	if filter.TotalPrice != nil && filter.TotalPriceRule.Valid() {
		op := map[domain.TotalPriceRule]string{
			domain.TotalPriceGT: ">",
			domain.TotalPriceGE: ">=",
			domain.TotalPriceLT: "<",
			domain.TotalPriceLE: "<=",
		}[filter.TotalPriceRule]
		whereClause += fmt.Sprintf(" AND total_price %s $%d", op, argIndex)
		args = append(args, *filter.TotalPrice)
		argIndex++
	}
	if filter.PurchaseType != nil {
		whereClause += fmt.Sprintf(" AND purchasing_method = $%d", argIndex)
		args = append(args, *filter.PurchaseType)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM checks %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count checks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+checkColumns+`
		FROM checks
		%s
		ORDER BY created_at %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortOrder, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	checks := []*domain.Check{}
	for rows.Next() {
		check := &domain.Check{}
		err := rows.Scan(
			&check.ID,
			&check.Identifier,
			&check.CreatedAt,
			&check.PurchasingMethod,
			&check.TotalPrice,
			&check.Rest,
			&check.EssenceID,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan check: %w", err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating checks: %w", err)
	}

	if err := r.loadLines(ctx, checks); err != nil {
		return nil, 0, err
	}

	return checks, total, nil
}

// loadLines attaches sold-product lines to the given checks in one query.
func (r *checkRepository) loadLines(ctx context.Context, checks []*domain.Check) error {
	if len(checks) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Check, len(checks))
	ids := make([]int64, 0, len(checks))
	for _, c := range checks {
		c.Products = []*domain.SoldProduct{}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query := `
		SELECT id, check_id, stock_id, product_identifier, title, description, units, quantity, price, discount, total_price, sold_at
		FROM sold_products
		WHERE check_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load sold products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sp := &domain.SoldProduct{}
		err := rows.Scan(
			&sp.ID,
			&sp.CheckID,
			&sp.StockID,
			&sp.ProductIdentifier,
			&sp.Title,
			&sp.Description,
			&sp.Units,
			&sp.Quantity,
			&sp.Price,
			&sp.Discount,
			&sp.TotalPrice,
			&sp.SoldAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan sold product: %w", err)
		}
		if check, ok := byID[sp.CheckID]; ok {
			check.Products = append(check.Products, sp)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating sold products: %w", err)
	}

	return nil
}
