package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"checkpos/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the SQL connection pool.
type Service interface {
	DB() *sql.DB
	Health() map[string]string
	Close() error
}

type service struct {
	db *sql.DB
}

// New opens a Postgres connection pool through the pgx stdlib driver.
func New(cfg config.DatabaseConfig) (Service, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &service{db: db}, nil
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Health reports connectivity and pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	health := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.db.Stats()
	health["status"] = "up"
	health["open_connections"] = strconv.Itoa(stats.OpenConnections)
	health["in_use"] = strconv.Itoa(stats.InUse)
	health["idle"] = strconv.Itoa(stats.Idle)

	return health
}

func (s *service) Close() error {
	return s.db.Close()
}
