package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"checkpos/internal/domain"
)

var ErrEssenceNotFound = errors.New("user essence not found")

// EssenceRepository defines the interface for user-essence data access
type EssenceRepository interface {
	Create(ctx context.Context, essence *domain.UserEssence) error
	FindByUserID(ctx context.Context, userID int64) (*domain.UserEssence, error)
	FindByID(ctx context.Context, id int64) (*domain.UserEssence, error)
}

type essenceRepository struct {
	db DBTX
}

// NewEssenceRepository creates a new instance of EssenceRepository
func NewEssenceRepository(db DBTX) EssenceRepository {
	return &essenceRepository{db: db}
}

// Create inserts a new user essence using parameterized queries
func (r *essenceRepository) Create(ctx context.Context, essence *domain.UserEssence) error {
	query := `
		INSERT INTO user_essences (user_id)
		VALUES ($1)
		RETURNING id
	`

	if err := r.db.QueryRowContext(ctx, query, essence.UserID).Scan(&essence.ID); err != nil {
		return fmt.Errorf("failed to create user essence: %w", err)
	}

	return nil
}

// FindByUserID retrieves the essence owned by the given user
func (r *essenceRepository) FindByUserID(ctx context.Context, userID int64) (*domain.UserEssence, error) {
	query := `
		SELECT id, user_id
		FROM user_essences
		WHERE user_id = $1
	`

	essence := &domain.UserEssence{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&essence.ID, &essence.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEssenceNotFound
		}
		return nil, fmt.Errorf("failed to find user essence by user ID: %w", err)
	}

	return essence, nil
}

// FindByID retrieves an essence by its surrogate id
func (r *essenceRepository) FindByID(ctx context.Context, id int64) (*domain.UserEssence, error) {
	query := `
		SELECT id, user_id
		FROM user_essences
		WHERE id = $1
	`

	essence := &domain.UserEssence{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&essence.ID, &essence.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEssenceNotFound
		}
		return nil, fmt.Errorf("failed to find user essence by ID: %w", err)
	}

	return essence, nil
}
