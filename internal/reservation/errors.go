package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("not authorized")
	ErrInvalidState   = errors.New("cannot cancel a fulfilled reservation")

	// ErrConflict means another writer changed the product's quantity between
	// our read and our conditional write. The caller may re-read and retry;
	// this package never retries on its own.
	ErrConflict = errors.New("stock changed concurrently")
)

// InsufficientStockError reports available vs requested so the caller can
// adjust the request.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// FatalError means the stock debit succeeded, the reservation insert failed,
// and the one-shot compensating credit also failed. The ledger and the
// reservation table have diverged and need manual reconciliation.
type FatalError struct {
	ProductID     string
	Quantity      int
	InsertErr     error
	CompensateErr error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("ledger diverged for product %s (qty %d): insert failed (%v) and compensation failed (%v)",
		e.ProductID, e.Quantity, e.InsertErr, e.CompensateErr)
}
