package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCheckoutToken covers every way a checkout cookie can be bad:
	// base64, signature, JSON, version or schema. All of them fail the same
	// gate so callers see a single client error.
	ErrInvalidCheckoutToken = errors.New("invalid checkout token")

	// ErrEmptyCart is returned when a cart checkout finds no cart or a cart
	// with zero items.
	ErrEmptyCart = errors.New("user cart is empty")

	// ErrCheckoutInProgress is returned when another checkout holds the
	// per-user lock.
	ErrCheckoutInProgress = errors.New("another checkout is already in progress")

	// ErrDuplicateSubmission is returned when a checkout attempt reuses the
	// idempotency key of an unfinished or abandoned attempt.
	ErrDuplicateSubmission = errors.New("duplicate checkout submission")
)

// ProductNotFoundError reports a catalog reference that no longer resolves.
type ProductNotFoundError struct {
	ProductID string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// GatewayError wraps a payment gateway failure. It is fatal for the request
// and surfaced to the client as an opaque server fault.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "payment gateway: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps an order store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "order store " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
