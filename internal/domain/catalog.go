package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product describes an item in the catalog. Price and stock live in their own
// rows and carry their own update timestamps.
type Product struct {
	ID              int64           `json:"id" db:"id"`
	Identifier      uuid.UUID       `json:"identifier" db:"identifier"`
	Title           string          `json:"title" db:"title"`
	Description     string          `json:"description" db:"description"`
	Units           string          `json:"units" db:"units"`
	MinQuantitySell decimal.Decimal `json:"min_quantity_sell" db:"min_quantity_sell"`
}

// ProductPrice holds the current unit price and discount of one product.
type ProductPrice struct {
	ID             int64           `json:"id" db:"id"`
	ProductID      int64           `json:"product_id" db:"product_id"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	PriceUpdate    time.Time       `json:"price_update" db:"price_update"`
	DiscountUpdate time.Time       `json:"discount_update" db:"discount_update"`
}

// Stock holds the sellable quantity of one product. Quantities are decimal:
// products sold by weight or length have fractional stock.
type Stock struct {
	ID              int64           `json:"id" db:"id"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	Identifier      uuid.UUID       `json:"identifier" db:"identifier"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock" db:"quantity_in_stock"`
	LastUpdate      time.Time       `json:"last_update" db:"last_update"`
}

// CatalogLine is the point-in-time joined view of a product with its price and
// stock, resolved once per request and never mutated afterwards.
type CatalogLine struct {
	Product Product
	Price   ProductPrice
	Stock   Stock
}
