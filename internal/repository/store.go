package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository can run either standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// Store bundles the repositories of the check domain behind one transaction
// boundary. ExecTx runs fn against a Store whose repositories share a single
// transaction; any error rolls the whole unit of work back.
type Store interface {
	Products() ProductRepository
	Essences() EssenceRepository
	Checks() CheckRepository
	SoldProducts() SoldProductRepository
	Stock() StockRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db       *sql.DB
	products ProductRepository
	essences EssenceRepository
	checks   CheckRepository
	sold     SoldProductRepository
	stock    StockRepository
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sql.DB) Store {
	return &sqlStore{
		db:       db,
		products: NewProductRepository(db),
		essences: NewEssenceRepository(db),
		checks:   NewCheckRepository(db),
		sold:     NewSoldProductRepository(db),
		stock:    NewStockRepository(db),
	}
}

func (s *sqlStore) Products() ProductRepository         { return s.products }
func (s *sqlStore) Essences() EssenceRepository         { return s.essences }
func (s *sqlStore) Checks() CheckRepository             { return s.checks }
func (s *sqlStore) SoldProducts() SoldProductRepository { return s.sold }
func (s *sqlStore) Stock() StockRepository              { return s.stock }

func (s *sqlStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &txStore{
		products: NewProductRepository(tx),
		essences: NewEssenceRepository(tx),
		checks:   NewCheckRepository(tx),
		sold:     NewSoldProductRepository(tx),
		stock:    NewStockRepository(tx),
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// txStore is a Store already scoped to a transaction. Its ExecTx runs fn
// directly: the surrounding transaction stays the boundary.
type txStore struct {
	products ProductRepository
	essences EssenceRepository
	checks   CheckRepository
	sold     SoldProductRepository
	stock    StockRepository
}

func (s *txStore) Products() ProductRepository         { return s.products }
func (s *txStore) Essences() EssenceRepository         { return s.essences }
func (s *txStore) Checks() CheckRepository             { return s.checks }
func (s *txStore) SoldProducts() SoldProductRepository { return s.sold }
func (s *txStore) Stock() StockRepository              { return s.stock }

func (s *txStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}
