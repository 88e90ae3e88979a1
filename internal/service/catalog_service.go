package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkpos/internal/domain"
	"checkpos/internal/money"
	"checkpos/internal/repository"
)

// CreateProductInput carries everything needed to add one product to the
// catalog with its initial price and stock.
type CreateProductInput struct {
	Title           string
	Description     string
	Units           string
	MinQuantitySell decimal.Decimal
	Price           decimal.Decimal
	Discount        decimal.Decimal
	QuantityInStock decimal.Decimal
}

// CatalogService defines the interface for catalog management.
type CatalogService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.CatalogLine, error)
	ListProducts(ctx context.Context) ([]*domain.CatalogLine, error)
}

type catalogService struct {
	store  repository.Store
	places int32
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(store repository.Store, places int32) CatalogService {
	return &catalogService{store: store, places: places}
}

// CreateProduct inserts a product with its price and stock rows in one
// transaction. Titles are unique; a duplicate surfaces as
// repository.ErrProductAlreadyExists.
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.CatalogLine, error) {
	now := time.Now().UTC()
	line := &domain.CatalogLine{
		Product: domain.Product{
			Identifier:      uuid.New(),
			Title:           input.Title,
			Description:     input.Description,
			Units:           input.Units,
			MinQuantitySell: input.MinQuantitySell,
		},
		Price: domain.ProductPrice{
			Price:          money.Normalize(input.Price, s.places),
			Discount:       money.Normalize(input.Discount, s.places),
			PriceUpdate:    now,
			DiscountUpdate: now,
		},
		Stock: domain.Stock{
			Identifier:      uuid.New(),
			QuantityInStock: input.QuantityInStock,
			LastUpdate:      now,
		},
	}

	err := s.store.ExecTx(ctx, func(store repository.Store) error {
		if err := store.Products().Create(ctx, &line.Product); err != nil {
			return err
		}

		line.Price.ProductID = line.Product.ID
		if err := store.Products().CreatePrice(ctx, &line.Price); err != nil {
			return fmt.Errorf("failed to create product price: %w", err)
		}

		line.Stock.ProductID = line.Product.ID
		if err := store.Products().CreateStock(ctx, &line.Stock); err != nil {
			return fmt.Errorf("failed to create product stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}

// ListProducts returns the whole catalog with current prices and stock.
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.CatalogLine, error) {
	return s.store.Products().List(ctx)
}
