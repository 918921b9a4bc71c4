package reservation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stock is the ledger's read view of one product.
type Stock struct {
	Name     string
	Quantity int
	Price    float64
}

// Ledger reads and conditionally adjusts a product's available quantity.
// AdjustStock must apply the check-and-write as a single conditional update
// at the storage layer: it sets quantity to expectedPrior+delta only if the
// row still holds expectedPrior, and rewrites total_value in the same
// statement. It returns ErrConflict when the precondition no longer holds
// and ErrNotFound when the product vanished.
type Ledger interface {
	GetStock(ctx context.Context, productID string) (Stock, error)
	AdjustStock(ctx context.Context, productID string, delta, expectedPrior int) error
}

type PgLedger struct{ DB *pgxpool.Pool }

func (l *PgLedger) GetStock(ctx context.Context, productID string) (Stock, error) {
	var s Stock
	err := l.DB.QueryRow(ctx, `
		SELECT name, current_quantity,
		       CASE WHEN current_price > 0 THEN current_price ELSE price END
		FROM products WHERE id=$1`, productID).
		Scan(&s.Name, &s.Quantity, &s.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stock{}, ErrNotFound
	}
	return s, err
}

func (l *PgLedger) AdjustStock(ctx context.Context, productID string, delta, expectedPrior int) error {
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET
			current_quantity = $2 + $3,
			total_value = ($2 + $3) * (CASE WHEN current_price > 0 THEN current_price ELSE price END),
			updated_at = now()
		WHERE id=$1 AND current_quantity=$2`,
		productID, expectedPrior, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	// Zero rows: either the row is gone or someone moved the quantity.
	var exists bool
	if err := l.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).
		Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}
