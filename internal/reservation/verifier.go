package reservation

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductState is everything the consistency check needs about one product.
type ProductState struct {
	ProductID       string
	Name            string
	CurrentQuantity int
	BaseQuantity    int
	CurrentPrice    float64
	TotalValue      float64
	// ReservedTotal sums quantities over every retained reservation record,
	// fulfilled ones included: a fulfilled hold stays debited forever, and
	// its record is terminal but never deleted.
	ReservedTotal int
}

type Violation struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

const valueTolerance = 1e-6

// CheckProduct verifies the two ledger invariants for one product:
// quantity never negative and conserved against retained reservations
// (current + reserved total == base), and total_value consistent with the
// last written quantity and price.
func CheckProduct(ps ProductState) []Violation {
	var out []Violation
	if ps.CurrentQuantity < 0 {
		out = append(out, Violation{ps.ProductID, ps.Name,
			fmt.Sprintf("negative stock: %d", ps.CurrentQuantity)})
	}
	if ps.CurrentQuantity+ps.ReservedTotal != ps.BaseQuantity {
		out = append(out, Violation{ps.ProductID, ps.Name,
			fmt.Sprintf("stock not conserved: current %d + reserved %d != base %d",
				ps.CurrentQuantity, ps.ReservedTotal, ps.BaseQuantity)})
	}
	want := float64(ps.CurrentQuantity) * ps.CurrentPrice
	if math.Abs(ps.TotalValue-want) > valueTolerance {
		out = append(out, Violation{ps.ProductID, ps.Name,
			fmt.Sprintf("total_value %.3f does not match quantity*price %.3f", ps.TotalValue, want)})
	}
	return out
}

// Verifier runs the reconciliation sweep over every product. It is invoked
// on demand (cmd/reconcile, tests); there is no background scheduler.
type Verifier struct{ DB *pgxpool.Pool }

func (v *Verifier) Run(ctx context.Context) ([]Violation, error) {
	rows, err := v.DB.Query(ctx, `
		SELECT p.id, p.name, p.current_quantity, p.base_quantity,
		       CASE WHEN p.current_price > 0 THEN p.current_price ELSE p.price END,
		       p.total_value,
		       COALESCE(SUM(r.quantity), 0)
		FROM products p
		LEFT JOIN reservations r ON r.product_id = p.id
		GROUP BY p.id, p.name, p.current_quantity, p.base_quantity,
		         p.current_price, p.price, p.total_value
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Violation
	for rows.Next() {
		var ps ProductState
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.CurrentQuantity, &ps.BaseQuantity,
			&ps.CurrentPrice, &ps.TotalValue, &ps.ReservedTotal); err != nil {
			return nil, err
		}
		all = append(all, CheckProduct(ps)...)
	}
	return all, rows.Err()
}
