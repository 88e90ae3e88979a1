package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"checkpos/internal/domain"
	"checkpos/internal/money"
)

// SaleValidator checks requested sale lines against the current catalog
// state. Violations are aggregated across all lines so the caller sees the
// full set of problems at once.
type SaleValidator struct {
	places int32
}

func NewSaleValidator(places int32) *SaleValidator {
	return &SaleValidator{places: places}
}

// Validate returns one message per violated rule. catalog maps product title
// to its resolved catalog line; every input title must be present.
func (v *SaleValidator) Validate(inputs []ProductInput, catalog map[string]*domain.CatalogLine) []string {
	var violations []string
	for _, in := range inputs {
		line := catalog[in.Name]
		if line == nil {
			continue
		}
		if in.Quantity.GreaterThan(line.Stock.QuantityInStock) {
			violations = append(violations, fmt.Sprintf("Product %s has not enough units in stock", in.Name))
		}
		if in.Quantity.LessThan(line.Product.MinQuantitySell) {
			violations = append(violations, fmt.Sprintf("Product %s has quantity less than minimum sell quantity", in.Name))
		}
		if !in.Price.Equal(money.Normalize(line.Price.Price, v.places)) {
			violations = append(violations, fmt.Sprintf("Product %s price is incorrect", in.Name))
		}
	}
	return violations
}

// LineTotal computes the charge for one sold line. The stored discount is
// recorded on the snapshot but does not reduce the charge.
func (v *SaleValidator) LineTotal(quantity, price decimal.Decimal) decimal.Decimal {
	return money.Normalize(quantity.Mul(price), v.places)
}
