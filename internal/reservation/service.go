package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Service is the reservation state machine. Transitions:
// Active -> Fulfilled (terminal) and Active -> Cancelled (terminal, record
// removed). Every transition is coupled to its stock mutation through the
// Ledger's conditional update; a failed reservation insert after a successful
// debit triggers exactly one compensating credit.
type Service struct {
	Ledger Ledger
	Store  Store
	Events *Publisher
}

type CreateInput struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	CustomerName    string `json:"customerName"`
	CustomerContact string `json:"customerContact"`
	PickupDate      string `json:"pickupDate"`
	Notes           string `json:"notes"`
}

func (in CreateInput) validate() error {
	switch {
	case in.ProductID == "":
		return fmt.Errorf("%w: productId is required", ErrInvalidRequest)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidRequest)
	case in.CustomerName == "":
		return fmt.Errorf("%w: customerName is required", ErrInvalidRequest)
	case in.CustomerContact == "":
		return fmt.Errorf("%w: customerContact is required", ErrInvalidRequest)
	case in.PickupDate == "":
		return fmt.Errorf("%w: pickupDate is required", ErrInvalidRequest)
	}
	return nil
}

// Create debits stock and inserts the reservation as a logical unit. If the
// insert fails after the debit succeeded, the debit is reversed once; if that
// compensating write also fails the two tables have diverged and the error is
// a *FatalError for the reconciler to act on.
func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (Reservation, error) {
	if err := in.validate(); err != nil {
		return Reservation{}, err
	}
	if customerID == "" {
		return Reservation{}, fmt.Errorf("%w: missing customer identity", ErrInvalidRequest)
	}

	stock, err := s.Ledger.GetStock(ctx, in.ProductID)
	if err != nil {
		return Reservation{}, err
	}
	if stock.Quantity < in.Quantity {
		return Reservation{}, &InsufficientStockError{
			ProductID: in.ProductID,
			Available: stock.Quantity,
			Requested: in.Quantity,
		}
	}

	if err := s.Ledger.AdjustStock(ctx, in.ProductID, -in.Quantity, stock.Quantity); err != nil {
		return Reservation{}, err
	}

	res := Reservation{
		ID:              uuid.NewString(),
		ProductID:       in.ProductID,
		ProductName:     stock.Name,
		CustomerID:      customerID,
		CustomerName:    in.CustomerName,
		CustomerContact: in.CustomerContact,
		Quantity:        in.Quantity,
		PickupDate:      in.PickupDate,
		Notes:           in.Notes,
		CreatedAt:       time.Now().UTC(),
		IsFulfilled:     false,
	}

	if insertErr := s.Store.Insert(ctx, res); insertErr != nil {
		// One compensating credit, then give up.
		prior := stock.Quantity - in.Quantity
		if compErr := s.Ledger.AdjustStock(ctx, in.ProductID, in.Quantity, prior); compErr != nil {
			fatal := &FatalError{
				ProductID:     in.ProductID,
				Quantity:      in.Quantity,
				InsertErr:     insertErr,
				CompensateErr: compErr,
			}
			log.Printf("FATAL ledger divergence: %v", fatal)
			s.Events.LedgerDiverged(in.ProductID, in.Quantity, fatal.Error())
			return Reservation{}, fatal
		}
		return Reservation{}, fmt.Errorf("insert reservation: %w", insertErr)
	}

	s.Events.StockAdjusted(in.ProductID, -in.Quantity, stock.Quantity-in.Quantity)
	s.Events.ReservationCreated(res)
	return res, nil
}

// Cancel releases the hold: the stock credit is attempted before the record
// is deleted, so a crash between the two leaves an orphaned reservation (which
// reconciliation can flag) rather than a lost credit. A product that no longer
// exists does not block the cancel; there is nothing to restore onto.
func (s *Service) Cancel(ctx context.Context, reservationID, callerID, callerRole string) (Reservation, error) {
	res, err := s.Store.Get(ctx, reservationID)
	if err != nil {
		return Reservation{}, err
	}
	if callerID != res.CustomerID && callerRole != "admin" {
		return Reservation{}, ErrForbidden
	}
	if res.IsFulfilled {
		return Reservation{}, ErrInvalidState
	}

	stock, err := s.Ledger.GetStock(ctx, res.ProductID)
	switch {
	case errors.Is(err, ErrNotFound):
		// skip the credit
	case err != nil:
		return Reservation{}, err
	default:
		if err := s.Ledger.AdjustStock(ctx, res.ProductID, res.Quantity, stock.Quantity); err != nil {
			if errors.Is(err, ErrNotFound) {
				break // product vanished between read and write
			}
			return Reservation{}, err
		}
		s.Events.StockAdjusted(res.ProductID, res.Quantity, stock.Quantity+res.Quantity)
	}

	if err := s.Store.Delete(ctx, reservationID); err != nil {
		return Reservation{}, err
	}
	s.Events.ReservationCancelled(res)
	return res, nil
}

// Fulfill marks the reservation consumed. No stock change: the quantity was
// debited at create time. Re-fulfilling an already-fulfilled reservation is a
// no-op success.
func (s *Service) Fulfill(ctx context.Context, reservationID, callerRole string) (Reservation, error) {
	if callerRole != "admin" {
		return Reservation{}, ErrForbidden
	}
	res, err := s.Store.Get(ctx, reservationID)
	if err != nil {
		return Reservation{}, err
	}
	if res.IsFulfilled {
		return res, nil
	}
	if err := s.Store.SetFulfilled(ctx, reservationID); err != nil {
		return Reservation{}, err
	}
	res.IsFulfilled = true
	s.Events.ReservationFulfilled(res)
	return res, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Reservation, error) {
	return s.Store.ListAll(ctx)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]Reservation, error) {
	return s.Store.ListByCustomer(ctx, customerID)
}
