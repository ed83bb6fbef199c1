package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/seatmap"
)

type signedIn model.User

func (s signedIn) User() (model.User, bool) { return model.User(s), true }

type anonymous struct{}

func (anonymous) User() (model.User, bool) { return model.User{}, false }

var (
	demo  = signedIn{ID: 1, Name: "Usuario Demo", Email: "demo@cinetick.com", Role: model.RoleClient}
	other = signedIn{ID: 7, Name: "Otra", Email: "otra@example.com", Role: model.RoleClient}
)

type fakeBackend struct {
	mu        sync.Mutex
	showtimes map[uint64]model.Showtime
	occupied  []int
	seatErr   error
	buyErr    error
	block     chan struct{}
	entered   chan struct{}
	purchases []model.Purchase
	seatDates []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{showtimes: map[uint64]model.Showtime{
		1: {ID: 1, MovieID: 1, Time: "16:30", Theater: "Sala 5", Format: "Regular 2D"},
		2: {ID: 2, MovieID: 1, Time: "18:30", Theater: "Sala 6", Format: "Regular 2D"},
		6: {ID: 6, MovieID: 2, Time: "16:30", Theater: "Sala 5", Format: "Regular 2D"},
	}}
}

func (b *fakeBackend) GetShowtime(_ context.Context, id uint64) (model.Showtime, error) {
	st, ok := b.showtimes[id]
	if !ok {
		return model.Showtime{}, errors.New("no such showtime")
	}
	return st, nil
}

func (b *fakeBackend) ListSeats(_ context.Context, _ uint64, date string) ([]model.Seat, error) {
	b.mu.Lock()
	b.seatDates = append(b.seatDates, date)
	b.mu.Unlock()
	if b.seatErr != nil {
		return nil, b.seatErr
	}
	return seatmap.Generate(seatmap.DefaultLayout(), seatmap.FixedOccupancy(b.occupied...))
}

func (b *fakeBackend) CreatePurchase(_ context.Context, p model.Purchase) (uint64, error) {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buyErr != nil {
		return 0, b.buyErr
	}
	b.purchases = append(b.purchases, p)
	return uint64(len(b.purchases)), nil
}

func (b *fakeBackend) deps() Deps { return Deps{Showtimes: b, Seats: b, Purchases: b} }

var fixedNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestFlow(b *fakeBackend) *Flow {
	return NewFlow("f1", 1, b.deps(), Options{Now: func() time.Time { return fixedNow }})
}

// flowAtCheckout drives a new flow to Checkout with A1, A2 and A4 selected.
func flowAtCheckout(t *testing.T, b *fakeBackend) *Flow {
	t.Helper()
	f := newTestFlow(b)
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	for _, id := range []int{1, 2, 4} {
		_, err := f.Toggle(demo, id)
		require.NoError(t, err)
	}
	require.NoError(t, f.ProceedToCheckout(demo))
	return f
}

func TestFlowHappyPath(t *testing.T) {
	b := newFakeBackend()
	f := flowAtCheckout(t, b)
	assert.True(t, f.Total().Equal(decimal.NewFromInt(50)))

	conf, err := f.Submit(context.Background(), demo, model.PaymentCard, PaymentForm{
		CardNumber: "4111111111111111", CardName: "Usuario Demo", Expiry: "12/27", CVV: "123",
	})
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, f.State())
	assert.Equal(t, []State{StateDateTime, StateSeats, StateCheckout, StateProcessing, StateSuccess}, f.History())

	assert.Equal(t, uint64(1), conf.PurchaseID)
	assert.Equal(t, []string{"A1", "A2", "A4"}, conf.Seats)
	assert.Equal(t, "2025-05-10", conf.Date)
	assert.True(t, conf.Total.Equal(decimal.NewFromInt(50)))

	require.Len(t, b.purchases, 1)
	p := b.purchases[0]
	assert.Equal(t, uint64(1), p.UserID)
	assert.True(t, p.Total.Equal(SumItems(p.Items)))
}

func TestFlowRejectsShortCVV(t *testing.T) {
	b := newFakeBackend()
	f := flowAtCheckout(t, b)

	_, err := f.Submit(context.Background(), demo, model.PaymentCard, PaymentForm{
		CardNumber: "4111111111111111", CardName: "Usuario Demo", Expiry: "12/27", CVV: "12",
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "cvv")
	assert.Equal(t, StateCheckout, f.State())
	assert.Empty(t, b.purchases)

	// entered data is kept for correction
	snap := f.Snapshot()
	assert.Equal(t, "Usuario Demo", snap.CardName)
	assert.Equal(t, "**** **** **** 1111", snap.Card)
}

func TestFlowCheckoutNeedsSeats(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))

	err := f.ProceedToCheckout(demo)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateSeats, f.State())
}

func TestFlowContinueNeedsSession(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, anonymous{}, 1))

	err := f.ContinueToSeats(ctx, anonymous{})
	require.ErrorIs(t, err, ErrAuthRequired)
	redirect, ok := IsAuthRequired(err)
	assert.True(t, ok)
	assert.Equal(t, "/login?redirect=/movie/1", redirect)
	assert.Equal(t, StateDateTime, f.State())

	assert.ErrorIs(t, f.ContinueToSeats(ctx, nil), ErrAuthRequired)
}

func TestFlowContinueNeedsShowtime(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	err := f.ContinueToSeats(context.Background(), demo)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateDateTime, f.State())
}

func TestFlowShowtimeMustBelongToMovie(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	assert.ErrorIs(t, f.SelectShowtime(ctx, demo, 6), ErrValidation)
	assert.ErrorIs(t, f.SelectShowtime(ctx, demo, 99), ErrNotFound)
}

func TestFlowDateWindow(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	assert.NoError(t, f.SelectDate(demo, fixedNow))
	assert.NoError(t, f.SelectDate(demo, fixedNow.AddDate(0, 0, 6)))
	assert.ErrorIs(t, f.SelectDate(demo, fixedNow.AddDate(0, 0, 7)), ErrValidation)
	assert.ErrorIs(t, f.SelectDate(demo, fixedNow.AddDate(0, 0, -1)), ErrValidation)
	assert.Equal(t, "2025-05-16", f.Snapshot().Date)
}

func TestFlowChangingShowtimeClearsSelection(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	_, err := f.Toggle(demo, 3)
	require.NoError(t, err)

	require.NoError(t, f.Back(demo))
	// same showtime keeps the selection
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	assert.Equal(t, []int{3}, f.Snapshot().Selected)

	require.NoError(t, f.SelectShowtime(ctx, demo, 2))
	assert.Empty(t, f.Snapshot().Selected)
}

func TestFlowBackendFailureReturnsToCheckout(t *testing.T) {
	b := newFakeBackend()
	b.buyErr = errors.New("network down")
	f := flowAtCheckout(t, b)

	_, err := f.Submit(context.Background(), demo, model.PaymentPayPal, PaymentForm{})
	require.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, StateCheckout, f.State())
	hist := f.History()
	assert.Equal(t, []State{StateProcessing, StateFailed, StateCheckout}, hist[len(hist)-3:])

	snap := f.Snapshot()
	assert.Equal(t, model.PaymentPayPal, snap.PaymentMethod)
	assert.Equal(t, "network down", snap.LastError)

	b.buyErr = nil
	conf, err := f.Retry(context.Background(), demo)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, f.State())
	assert.NotZero(t, conf.PurchaseID)
	assert.Empty(t, f.Snapshot().LastError)
}

func TestFlowDoubleSubmitWhileProcessing(t *testing.T) {
	b := newFakeBackend()
	b.block = make(chan struct{})
	b.entered = make(chan struct{}, 1)
	f := flowAtCheckout(t, b)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), demo, model.PaymentPayPal, PaymentForm{})
		done <- err
	}()
	<-b.entered

	assert.Equal(t, StateProcessing, f.State())
	_, err := f.Submit(context.Background(), demo, model.PaymentPayPal, PaymentForm{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, f.Back(demo), ErrSubmissionInFlight)

	close(b.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, f.State())
	assert.Len(t, b.purchases, 1)
}

func TestFlowLoadsSeatsForChosenDate(t *testing.T) {
	b := newFakeBackend()
	f := newTestFlow(b)
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	_, err := f.Toggle(demo, 4)
	require.NoError(t, err)
	require.NoError(t, f.Back(demo))

	// same day keeps the map and the selection
	require.NoError(t, f.SelectDate(demo, fixedNow))
	assert.Equal(t, []int{4}, f.Snapshot().Selected)

	require.NoError(t, f.SelectDate(demo, fixedNow.AddDate(0, 0, 2)))
	assert.Empty(t, f.Snapshot().Selected)
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	assert.Equal(t, []string{"2025-05-10", "2025-05-12"}, b.seatDates)
}

func TestFlowOwnedByFirstUser(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))

	_, err := f.Toggle(other, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.Back(other), ErrForbidden)
}

func TestFlowOwnedRefusesAnonymous(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	_, err := f.Toggle(demo, 4)
	require.NoError(t, err)
	require.NoError(t, f.Back(demo))

	assert.ErrorIs(t, f.SelectShowtime(ctx, anonymous{}, 2), ErrForbidden)
	assert.ErrorIs(t, f.SelectDate(anonymous{}, fixedNow), ErrForbidden)
	assert.ErrorIs(t, f.SelectShowtime(ctx, nil, 2), ErrForbidden)

	snap := f.Snapshot()
	assert.Equal(t, uint64(1), snap.Showtime.ID)
	assert.Equal(t, []int{4}, snap.Selected)
}

func TestFlowSnapshotHidesPaymentFromOthers(t *testing.T) {
	b := newFakeBackend()
	b.buyErr = errors.New("down")
	f := flowAtCheckout(t, b)
	_, err := f.Submit(context.Background(), demo, model.PaymentCard, PaymentForm{
		CardNumber: "4111111111111111", CardName: "Usuario Demo", Expiry: "12/27", CVV: "123",
	})
	require.ErrorIs(t, err, ErrBackend)

	mine := f.SnapshotFor(demo)
	assert.Equal(t, "**** **** **** 1111", mine.Card)
	assert.NotEmpty(t, mine.CardName)
	assert.NotEmpty(t, mine.LastError)

	for _, who := range []Identity{other, anonymous{}} {
		theirs := f.SnapshotFor(who)
		assert.Empty(t, theirs.Card)
		assert.Empty(t, theirs.CardName)
		assert.Empty(t, theirs.Expiry)
		assert.Empty(t, theirs.PaymentMethod)
		assert.Empty(t, theirs.LastError)
		assert.Equal(t, StateCheckout, theirs.State)
	}
}

func TestFlowRefusedTransitionsKeepState(t *testing.T) {
	f := newTestFlow(newFakeBackend())
	_, err := f.Toggle(demo, 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, f.ProceedToCheckout(demo), ErrValidation)
	assert.ErrorIs(t, f.Back(demo), ErrValidation)
	_, err = f.Submit(context.Background(), demo, model.PaymentPayPal, PaymentForm{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.Retry(context.Background(), demo)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []State{StateDateTime}, f.History())
}

func TestFlowSeatLoadFailure(t *testing.T) {
	b := newFakeBackend()
	b.seatErr = errors.New("timeout")
	f := newTestFlow(b)
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	assert.ErrorIs(t, f.ContinueToSeats(ctx, demo), ErrBackend)
	assert.Equal(t, StateDateTime, f.State())
}

func TestFlowOnTransitionHook(t *testing.T) {
	var seen []State
	b := newFakeBackend()
	f := NewFlow("f2", 1, b.deps(), Options{
		Now:          func() time.Time { return fixedNow },
		OnTransition: func(_, to State) { seen = append(seen, to) },
	})
	ctx := context.Background()
	require.NoError(t, f.SelectShowtime(ctx, demo, 1))
	require.NoError(t, f.ContinueToSeats(ctx, demo))
	require.NoError(t, f.Back(demo))
	assert.Equal(t, []State{StateSeats, StateDateTime}, seen)
}
