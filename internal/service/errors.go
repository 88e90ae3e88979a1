package service

import (
	"errors"
	"strings"

	"checkpos/internal/repository"
)

var ErrCheckNotFound = repository.ErrCheckNotFound

// ProductsNotFoundError reports the requested product names absent from the
// catalog. Raised before any validation or mutation.
type ProductsNotFoundError struct {
	Names []string
}

func (e *ProductsNotFoundError) Error() string {
	return "some products not found: " + strings.Join(e.Names, ", ")
}

// SaleConflictError aggregates every business-rule violation of a requested
// sale: one message per violated line and condition, never just the first.
type SaleConflictError struct {
	Violations []string
}

func (e *SaleConflictError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// IsClientError reports whether err should surface as a 4xx-class outcome
// rather than a generic server failure.
func IsClientError(err error) bool {
	var notFound *ProductsNotFoundError
	var conflict *SaleConflictError
	return errors.As(err, &notFound) || errors.As(err, &conflict) || errors.Is(err, ErrCheckNotFound)
}
