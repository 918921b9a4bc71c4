package reservation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists reservation records. Delete removes only un-fulfilled
// records: a missing row (double-cancel) or a row fulfilled since the
// caller's read is a clean no-op, never a crash.
type Store interface {
	Insert(ctx context.Context, r Reservation) error
	Get(ctx context.Context, id string) (Reservation, error)
	Delete(ctx context.Context, id string) error
	SetFulfilled(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Reservation, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Reservation, error)
}

type PgStore struct{ DB *pgxpool.Pool }

const reservationCols = `id, product_id, product_name, customer_id, customer_name,
	customer_contact, quantity, pickup_date, notes, created_at, is_fulfilled`

func (s *PgStore) Insert(ctx context.Context, r Reservation) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO reservations (`+reservationCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		r.ID, r.ProductID, r.ProductName, r.CustomerID, r.CustomerName,
		r.CustomerContact, r.Quantity, r.PickupDate, r.Notes, r.CreatedAt, r.IsFulfilled)
	return err
}

func (s *PgStore) Get(ctx context.Context, id string) (Reservation, error) {
	var r Reservation
	err := s.DB.QueryRow(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id=$1`, id).
		Scan(&r.ID, &r.ProductID, &r.ProductName, &r.CustomerID, &r.CustomerName,
			&r.CustomerContact, &r.Quantity, &r.PickupDate, &r.Notes, &r.CreatedAt, &r.IsFulfilled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, ErrNotFound
	}
	return r, err
}

func (s *PgStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM reservations WHERE id=$1 AND is_fulfilled=false`, id)
	return err
}

func (s *PgStore) SetFulfilled(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `UPDATE reservations SET is_fulfilled=true WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) ListAll(ctx context.Context) ([]Reservation, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+reservationCols+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *PgStore) ListByCustomer(ctx context.Context, customerID string) ([]Reservation, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+reservationCols+` FROM reservations
		WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Reservation, error) {
	defer rows.Close()
	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.ProductID, &r.ProductName, &r.CustomerID, &r.CustomerName,
			&r.CustomerContact, &r.Quantity, &r.PickupDate, &r.Notes, &r.CreatedAt, &r.IsFulfilled); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
