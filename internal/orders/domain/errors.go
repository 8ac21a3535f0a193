package domain

import "fmt"

// ErrorKind enumerates the validation failures the workflow can report.
// Callers inspect the kind (via errors.As on *ValidationError) instead of
// matching message strings.
type ErrorKind string

const (
	// ErrCustomerNotFound: the customer id has no matching record.
	ErrCustomerNotFound ErrorKind = "CUSTOMER_NOT_FOUND"
	// ErrNoProductsFound: the request contained no product lines, so there
	// was nothing to resolve against the catalog.
	ErrNoProductsFound ErrorKind = "NO_PRODUCTS_FOUND"
	// ErrProductNotFound: a specific requested id has no catalog match.
	ErrProductNotFound ErrorKind = "PRODUCT_NOT_FOUND"
	// ErrInsufficientQuantity: a specific requested quantity exceeds the
	// available stock observed at validation (or re-checked at write) time.
	ErrInsufficientQuantity ErrorKind = "INSUFFICIENT_QUANTITY"
	// ErrDuplicateProduct: the same product id appears on more than one line.
	// Duplicates are rejected rather than merged; see DESIGN.md.
	ErrDuplicateProduct ErrorKind = "DUPLICATE_PRODUCT"
)

// ValidationError is the single user-visible failure type of the workflow.
// EntityID names the offending customer or product where one exists; for
// product errors it is always the first offending id in request order, which
// is part of the contract, not an implementation accident.
type ValidationError struct {
	Kind     ErrorKind
	EntityID string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrCustomerNotFound:
		return fmt.Sprintf("customer %q does not exist", e.EntityID)
	case ErrNoProductsFound:
		return "could not find any of the requested products"
	case ErrProductNotFound:
		return fmt.Sprintf("could not find product with id %q", e.EntityID)
	case ErrInsufficientQuantity:
		return fmt.Sprintf("product %q has insufficient quantity available", e.EntityID)
	case ErrDuplicateProduct:
		return fmt.Sprintf("product %q is requested more than once", e.EntityID)
	}
	return string(e.Kind)
}

// NewValidationError builds a typed workflow failure.
func NewValidationError(kind ErrorKind, entityID string) *ValidationError {
	return &ValidationError{Kind: kind, EntityID: entityID}
}
