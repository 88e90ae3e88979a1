package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchasingMethod is how a check was paid.
type PurchasingMethod string

const (
	PurchasingMethodCash     PurchasingMethod = "cash"
	PurchasingMethodCashless PurchasingMethod = "cashless"
)

// Valid reports whether the method is one of the known payment types.
func (m PurchasingMethod) Valid() bool {
	return m == PurchasingMethodCash || m == PurchasingMethodCashless
}

// UserEssence links an authenticated user to the checks they own. Created
// lazily on the user's first check and never deleted.
type UserEssence struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
}

// Check is one sale transaction header. TotalPrice and Rest start at zero and
// are finalized after all sold lines are persisted.
type Check struct {
	ID               int64            `json:"id" db:"id"`
	Identifier       uuid.UUID        `json:"identifier" db:"identifier"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	PurchasingMethod PurchasingMethod `json:"purchasing_method" db:"purchasing_method"`
	TotalPrice       decimal.Decimal  `json:"total_price" db:"total_price"`
	Rest             decimal.Decimal  `json:"rest" db:"rest"`
	EssenceID        int64            `json:"essence_id" db:"essence_id"`
	Products         []*SoldProduct   `json:"products"`
}

// SoldProduct is an immutable snapshot of one product sold in one check.
// TotalPrice is quantity times unit price; the discount is recorded for the
// receipt but does not reduce the line total.
type SoldProduct struct {
	ID                int64     `json:"id" db:"id"`
	CheckID           int64     `json:"check_id" db:"check_id"`
	StockID           int64     `json:"stock_id" db:"stock_id"`
	ProductIdentifier uuid.UUID `json:"product_identifier" db:"product_identifier"`

	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Units       string          `json:"units" db:"units"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	SoldAt      time.Time       `json:"sold_at" db:"sold_at"`
}

// TotalPriceRule is a comparator for the history query's total-price filter.
type TotalPriceRule string

const (
	TotalPriceGT TotalPriceRule = "gt"
	TotalPriceGE TotalPriceRule = "ge"
	TotalPriceLT TotalPriceRule = "lt"
	TotalPriceLE TotalPriceRule = "le"
)

// Valid reports whether the rule is a known comparator.
func (r TotalPriceRule) Valid() bool {
	switch r {
	case TotalPriceGT, TotalPriceGE, TotalPriceLT, TotalPriceLE:
		return true
	}
	return false
}

// CheckFilter is the conjunction of optional history-query filters. The
// total-price filter only applies when both the threshold and the rule are set.
type CheckFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	TotalPrice     *decimal.Decimal
	TotalPriceRule TotalPriceRule
	PurchaseType   *PurchasingMethod
}
