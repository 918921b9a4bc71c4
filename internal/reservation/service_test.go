package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProduct struct {
	name       string
	quantity   int
	price      float64
	totalValue float64
}

type fakeLedger struct {
	products map[string]*fakeProduct

	// staleRead makes the next GetStock for a product return an outdated
	// quantity, simulating a concurrent writer between read and write.
	staleRead map[string]int

	adjustCalls    int
	failAdjustCall int // 1-based call number that should fail, 0 = never
}

func (l *fakeLedger) GetStock(_ context.Context, id string) (Stock, error) {
	p, ok := l.products[id]
	if !ok {
		return Stock{}, ErrNotFound
	}
	q := p.quantity
	if v, ok := l.staleRead[id]; ok {
		q = v
		delete(l.staleRead, id)
	}
	return Stock{Name: p.name, Quantity: q, Price: p.price}, nil
}

func (l *fakeLedger) AdjustStock(_ context.Context, id string, delta, expectedPrior int) error {
	l.adjustCalls++
	if l.failAdjustCall != 0 && l.adjustCalls == l.failAdjustCall {
		return errors.New("storage unavailable")
	}
	p, ok := l.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.quantity != expectedPrior {
		return ErrConflict
	}
	p.quantity = expectedPrior + delta
	p.totalValue = float64(p.quantity) * p.price
	return nil
}

type fakeStore struct {
	byID       map[string]Reservation
	failInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[string]Reservation)}
}

func (s *fakeStore) Insert(_ context.Context, r Reservation) error {
	if s.failInsert {
		return errors.New("insert failed")
	}
	s.byID[r.ID] = r
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (Reservation, error) {
	r, ok := s.byID[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	return r, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if r, ok := s.byID[id]; ok && !r.IsFulfilled {
		delete(s.byID, id)
	}
	return nil
}

func (s *fakeStore) SetFulfilled(_ context.Context, id string) error {
	r, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.IsFulfilled = true
	s.byID[id] = r
	return nil
}

func (s *fakeStore) ListAll(_ context.Context) ([]Reservation, error) {
	out := make([]Reservation, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) ListByCustomer(_ context.Context, customerID string) ([]Reservation, error) {
	var out []Reservation
	for _, r := range s.byID {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newService(stock int, price float64) (*Service, *fakeLedger, *fakeStore) {
	ledger := &fakeLedger{
		products: map[string]*fakeProduct{
			"P1": {name: "طقم جلوس ميموري", quantity: stock, price: price, totalValue: float64(stock) * price},
		},
		staleRead: map[string]int{},
	}
	store := newFakeStore()
	return &Service{Ledger: ledger, Store: store}, ledger, store
}

func input(qty int) CreateInput {
	return CreateInput{
		ProductID:       "P1",
		Quantity:        qty,
		CustomerName:    "Juan Perez",
		CustomerContact: "+201234567890",
		PickupDate:      "2026-09-01",
	}
}

func TestCreate_DebitsStockAndSnapshotsName(t *testing.T) {
	svc, ledger, store := newService(10, 100)

	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	require.False(t, res.IsFulfilled)
	require.Equal(t, "طقم جلوس ميموري", res.ProductName)
	require.False(t, res.CreatedAt.IsZero())

	p := ledger.products["P1"]
	require.Equal(t, 7, p.quantity)
	require.InDelta(t, 700, p.totalValue, 1e-9)

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	require.Equal(t, res, stored)
}

func TestCreate_InsufficientStockReportsBothQuantities(t *testing.T) {
	svc, ledger, _ := newService(7, 100)

	_, err := svc.Create(context.Background(), "cust-1", input(20))
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	require.Equal(t, 7, ins.Available)
	require.Equal(t, 20, ins.Requested)
	require.Equal(t, 7, ledger.products["P1"].quantity)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newService(10, 100)

	cases := []struct {
		name string
		mut  func(*CreateInput)
	}{
		{"zero quantity", func(in *CreateInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *CreateInput) { in.Quantity = -2 }},
		{"missing product", func(in *CreateInput) { in.ProductID = "" }},
		{"missing name", func(in *CreateInput) { in.CustomerName = "" }},
		{"missing contact", func(in *CreateInput) { in.CustomerContact = "" }},
		{"missing pickup date", func(in *CreateInput) { in.PickupDate = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input(3)
			tc.mut(&in)
			_, err := svc.Create(context.Background(), "cust-1", in)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestCreate_ProductNotFound(t *testing.T) {
	svc, _, _ := newService(10, 100)
	in := input(1)
	in.ProductID = "missing"
	_, err := svc.Create(context.Background(), "cust-1", in)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_CompensatesWhenInsertFails(t *testing.T) {
	svc, ledger, store := newService(10, 100)
	store.failInsert = true

	_, err := svc.Create(context.Background(), "cust-1", input(3))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidRequest)

	// the debit was reversed
	require.Equal(t, 10, ledger.products["P1"].quantity)
	require.InDelta(t, 1000, ledger.products["P1"].totalValue, 1e-9)
	require.Empty(t, store.byID)
}

func TestCreate_FatalWhenCompensationAlsoFails(t *testing.T) {
	svc, ledger, store := newService(10, 100)
	store.failInsert = true
	ledger.failAdjustCall = 2 // debit succeeds, compensating credit fails

	_, err := svc.Create(context.Background(), "cust-1", input(3))
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, "P1", fatal.ProductID)
	require.Equal(t, 3, fatal.Quantity)

	// ledger left debited with no reservation: exactly the divergence the
	// reconciler is there to catch
	require.Equal(t, 7, ledger.products["P1"].quantity)
	require.Empty(t, store.byID)
}

func TestCancel_RestoresStockAndRemovesRecord(t *testing.T) {
	svc, ledger, store := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), res.ID, "cust-1", "user")
	require.NoError(t, err)
	require.Equal(t, 10, ledger.products["P1"].quantity)
	require.InDelta(t, 1000, ledger.products["P1"].totalValue, 1e-9)
	require.Empty(t, store.byID)
}

func TestCancel_OwnerOrAdminOnly(t *testing.T) {
	svc, ledger, _ := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), res.ID, "cust-2", "user")
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, 7, ledger.products["P1"].quantity)

	_, err = svc.Cancel(context.Background(), res.ID, "cust-2", "admin")
	require.NoError(t, err)
	require.Equal(t, 10, ledger.products["P1"].quantity)
}

func TestCancel_FulfilledIsTerminal(t *testing.T) {
	svc, ledger, _ := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)
	_, err = svc.Fulfill(context.Background(), res.ID, "admin")
	require.NoError(t, err)

	before := *ledger.products["P1"]
	_, err = svc.Cancel(context.Background(), res.ID, "cust-1", "user")
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, before, *ledger.products["P1"]) // no stock mutation at all
}

func TestCancel_MissingProductStillReleasesReservation(t *testing.T) {
	svc, ledger, store := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)

	delete(ledger.products, "P1")

	_, err = svc.Cancel(context.Background(), res.ID, "cust-1", "user")
	require.NoError(t, err)
	require.Empty(t, store.byID)
}

func TestCancel_UnknownReservation(t *testing.T) {
	svc, _, _ := newService(10, 100)
	_, err := svc.Cancel(context.Background(), "nope", "cust-1", "user")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFulfill_IsIdempotentAndLeavesStockAlone(t *testing.T) {
	svc, ledger, _ := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)
	require.Equal(t, 7, ledger.products["P1"].quantity)

	first, err := svc.Fulfill(context.Background(), res.ID, "admin")
	require.NoError(t, err)
	require.True(t, first.IsFulfilled)
	require.Equal(t, 7, ledger.products["P1"].quantity)

	second, err := svc.Fulfill(context.Background(), res.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, first.IsFulfilled, second.IsFulfilled)
	require.Equal(t, 7, ledger.products["P1"].quantity)
}

func TestFulfill_RequiresAdmin(t *testing.T) {
	svc, _, _ := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)

	_, err = svc.Fulfill(context.Background(), res.ID, "user")
	require.ErrorIs(t, err, ErrForbidden)
}

// fulfillRaceStore simulates an admin fulfill landing between Cancel's read
// of the reservation and its delete.
type fulfillRaceStore struct {
	*fakeStore
}

func (s *fulfillRaceStore) Get(ctx context.Context, id string) (Reservation, error) {
	r, err := s.fakeStore.Get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	fulfilled := r
	fulfilled.IsFulfilled = true
	s.byID[id] = fulfilled
	return r, nil
}

func TestCancel_DeleteSkipsConcurrentlyFulfilledRecord(t *testing.T) {
	svc, _, store := newService(10, 100)
	res, err := svc.Create(context.Background(), "cust-1", input(3))
	require.NoError(t, err)

	svc.Store = &fulfillRaceStore{fakeStore: store}
	_, err = svc.Cancel(context.Background(), res.ID, "cust-1", "user")
	require.NoError(t, err)

	// the conditional delete left the fulfilled record in place; the stock
	// credit that already happened is exactly what the reconciler flags
	kept, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	require.True(t, kept.IsFulfilled)
}

func TestCreate_ConcurrentWritersNeverDoubleBook(t *testing.T) {
	svc, ledger, store := newService(10, 100)

	// first request wins: 10 -> 2
	_, err := svc.Create(context.Background(), "cust-1", input(8))
	require.NoError(t, err)
	require.Equal(t, 2, ledger.products["P1"].quantity)

	// second request read the same snapshot (stale quantity 10); its
	// conditional write must be rejected instead of driving stock to -6
	ledger.staleRead["P1"] = 10
	_, err = svc.Create(context.Background(), "cust-2", input(8))
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, 2, ledger.products["P1"].quantity)
	require.Len(t, store.byID, 1)
}

func TestConservationAcrossCreatesAndCancels(t *testing.T) {
	svc, ledger, store := newService(50, 10)

	var ids []string
	for i := 0; i < 5; i++ {
		res, err := svc.Create(context.Background(), "cust-1", input(3))
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}
	for _, id := range ids[:2] {
		_, err := svc.Cancel(context.Background(), id, "cust-1", "user")
		require.NoError(t, err)
	}

	active := 0
	for _, r := range store.byID {
		active += r.Quantity
	}
	require.Equal(t, 50-active, ledger.products["P1"].quantity)
	require.GreaterOrEqual(t, ledger.products["P1"].quantity, 0)
}
