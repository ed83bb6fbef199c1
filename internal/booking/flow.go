// Package booking implements seat selection, pricing and the checkout state
// machine of a single booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/seatmap"
)

// State is a step of the booking flow.
type State string

const (
	StateDateTime   State = "date_time"
	StateSeats      State = "seats"
	StateCheckout   State = "checkout"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

const dateLayout = "2006-01-02"

// Identity exposes the signed-in user of the caller, if any.
type Identity interface {
	User() (model.User, bool)
}

// ShowtimeFinder resolves showtimes by ID.
type ShowtimeFinder interface {
	GetShowtime(ctx context.Context, id uint64) (model.Showtime, error)
}

// SeatLister returns the seat map of a showtime on a date (YYYY-MM-DD).
type SeatLister interface {
	ListSeats(ctx context.Context, showtimeID uint64, date string) ([]model.Seat, error)
}

// PurchaseCreator records a purchase and returns its ID.
type PurchaseCreator interface {
	CreatePurchase(ctx context.Context, p model.Purchase) (uint64, error)
}

// Deps are the backend collaborators of a flow.
type Deps struct {
	Showtimes ShowtimeFinder
	Seats     SeatLister
	Purchases PurchaseCreator
}

// Options tune a flow.  Zero fields take defaults.
type Options struct {
	Prices       PriceList
	MaxSeats     int
	WindowDays   int
	LoginPath    string
	Now          func() time.Time
	OnTransition func(from, to State)
}

func (o Options) withDefaults() Options {
	if o.Prices.Standard.IsZero() && o.Prices.Premium.IsZero() {
		o.Prices = DefaultPrices()
	}
	if o.MaxSeats <= 0 {
		o.MaxSeats = MaxSeats
	}
	if o.WindowDays <= 0 {
		o.WindowDays = 7
	}
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Confirmation is derived from a successful purchase.
type Confirmation struct {
	PurchaseID uint64           `json:"purchase_id"`
	Showtime   model.Showtime   `json:"showtime"`
	Date       string           `json:"date"`
	Seats      []string         `json:"seats"`
	Items      []model.LineItem `json:"items"`
	Total      decimal.Decimal  `json:"total"`
}

// Flow walks one user through date, showtime, seats and checkout.  All
// methods are safe for concurrent use; the purchase call runs without the
// lock held so that a concurrent submit observes StateProcessing.
type Flow struct {
	mu      sync.Mutex
	id      string
	movieID uint64
	deps    Deps
	opts    Options

	state    State
	history  []State
	date     time.Time
	showtime *model.Showtime
	seats    *seatmap.Map
	sel      *Selection
	owner    uint64

	method  string
	form    PaymentForm
	confirm *Confirmation
	lastErr string
}

// NewFlow starts a flow for movieID in StateDateTime with today selected.
func NewFlow(id string, movieID uint64, deps Deps, opts Options) *Flow {
	opts = opts.withDefaults()
	return &Flow{
		id:      id,
		movieID: movieID,
		deps:    deps,
		opts:    opts,
		state:   StateDateTime,
		history: []State{StateDateTime},
		date:    startOfDay(opts.Now()),
		sel:     NewSelection(opts.MaxSeats),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (f *Flow) transition(to State) {
	from := f.state
	f.state = to
	f.history = append(f.history, to)
	if f.opts.OnTransition != nil {
		f.opts.OnTransition(from, to)
	}
}

// checkOwner binds the flow to the first signed-in user driving it.  Once
// owned, anonymous callers are refused like any other user.
func (f *Flow) checkOwner(who Identity) error {
	if f.owner == 0 {
		return nil
	}
	if !f.ownedBy(who) {
		return ErrForbidden
	}
	return nil
}

func (f *Flow) ownedBy(who Identity) bool {
	u, ok := identity(who)
	return ok && u.ID == f.owner
}

func identity(who Identity) (model.User, bool) {
	if who == nil {
		return model.User{}, false
	}
	return who.User()
}

func (f *Flow) requireState(s State, action string) error {
	if f.state == StateProcessing {
		return ErrSubmissionInFlight
	}
	if f.state != s {
		return invalid(fmt.Sprintf("cannot %s while in %s", action, f.state))
	}
	return nil
}

func (f *Flow) requireUser(who Identity, redirect string) (model.User, error) {
	u, ok := identity(who)
	if !ok {
		return model.User{}, &AuthRequiredError{Redirect: f.opts.LoginPath + "?redirect=" + redirect}
	}
	if err := f.checkOwner(who); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ID returns the flow identifier.
func (f *Flow) ID() string { return f.id }

// MovieID returns the movie being booked.
func (f *Flow) MovieID() uint64 { return f.movieID }

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// History lists every state entered, oldest first.
func (f *Flow) History() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]State(nil), f.history...)
}

// SelectDate picks the screening day.  Only the booking window starting
// today is accepted.  Seat maps differ per day, so a different day drops
// the seat map and the selection.
func (f *Flow) SelectDate(who Identity, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireState(StateDateTime, "change the date"); err != nil {
		return err
	}
	if err := f.checkOwner(who); err != nil {
		return err
	}
	day := startOfDay(date.In(f.opts.Now().Location()))
	today := startOfDay(f.opts.Now())
	last := today.AddDate(0, 0, f.opts.WindowDays-1)
	if day.Before(today) || day.After(last) {
		return invalid(fmt.Sprintf("date must be between %s and %s", today.Format(dateLayout), last.Format(dateLayout)))
	}
	if !day.Equal(f.date) {
		f.sel.Clear()
		f.seats = nil
	}
	f.date = day
	return nil
}

// SelectShowtime picks a showtime of the flow's movie.  Picking a different
// showtime drops the seat map and the selection.
func (f *Flow) SelectShowtime(ctx context.Context, who Identity, showtimeID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireState(StateDateTime, "change the showtime"); err != nil {
		return err
	}
	if err := f.checkOwner(who); err != nil {
		return err
	}
	st, err := f.deps.Showtimes.GetShowtime(ctx, showtimeID)
	if err != nil {
		return fmt.Errorf("%w: showtime %d", ErrNotFound, showtimeID)
	}
	if st.MovieID != f.movieID {
		return invalid(fmt.Sprintf("showtime %d is not a screening of this movie", showtimeID))
	}
	if f.showtime == nil || f.showtime.ID != st.ID {
		f.sel.Clear()
		f.seats = nil
	}
	f.showtime = &st
	return nil
}

// ContinueToSeats moves to seat selection.  It needs a signed-in user and a
// chosen showtime; the seat map is loaded once and then kept frozen.
func (f *Flow) ContinueToSeats(ctx context.Context, who Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireState(StateDateTime, "continue to seats"); err != nil {
		return err
	}
	u, err := f.requireUser(who, fmt.Sprintf("/movie/%d", f.movieID))
	if err != nil {
		return err
	}
	if f.showtime == nil {
		return invalid("select a showtime to continue")
	}
	if f.seats == nil {
		seats, err := f.deps.Seats.ListSeats(ctx, f.showtime.ID, f.date.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("%w: load seats: %v", ErrBackend, err)
		}
		f.seats = seatmap.NewMap(seats)
	}
	f.owner = u.ID
	f.transition(StateSeats)
	return nil
}

// Back returns to the previous step from Seats or Checkout.
func (f *Flow) Back(who Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOwner(who); err != nil {
		return err
	}
	switch f.state {
	case StateSeats:
		f.transition(StateDateTime)
	case StateCheckout:
		f.transition(StateSeats)
	case StateProcessing:
		return ErrSubmissionInFlight
	default:
		return invalid(fmt.Sprintf("cannot go back from %s", f.state))
	}
	return nil
}

// Toggle adds or removes a seat from the selection.
func (f *Flow) Toggle(who Identity, seatID int) (ToggleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireState(StateSeats, "change seats"); err != nil {
		return "", err
	}
	if _, err := f.requireUser(who, fmt.Sprintf("/movie/%d", f.movieID)); err != nil {
		return "", err
	}
	return f.sel.Toggle(f.seats, seatID)
}

// ProceedToCheckout requires at least one selected seat.
func (f *Flow) ProceedToCheckout(who Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireState(StateSeats, "check out"); err != nil {
		return err
	}
	if _, err := f.requireUser(who, "/checkout"); err != nil {
		return err
	}
	if f.sel.Len() == 0 {
		return invalid("select at least one seat to continue")
	}
	f.transition(StateCheckout)
	return nil
}

// Submit validates the payment details and posts the purchase.  The
// entered details are kept whatever the outcome.  On a backend error the
// flow passes through StateFailed back to StateCheckout and the error
// wraps ErrBackend.
func (f *Flow) Submit(ctx context.Context, who Identity, method string, form PaymentForm) (*Confirmation, error) {
	f.mu.Lock()
	if err := f.requireState(StateCheckout, "pay"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	u, err := f.requireUser(who, "/checkout")
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.method = method
	f.form = form.Normalized()
	if err := ValidatePayment(method, f.form); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	purchase := f.buildPurchase(u)
	f.lastErr = ""
	f.transition(StateProcessing)
	f.mu.Unlock()

	id, err := f.deps.Purchases.CreatePurchase(ctx, purchase)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.lastErr = err.Error()
		f.transition(StateFailed)
		f.transition(StateCheckout)
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	f.confirm = &Confirmation{
		PurchaseID: id,
		Showtime:   *f.showtime,
		Date:       purchase.ShowDate,
		Seats:      f.seatLabels(),
		Items:      purchase.Items,
		Total:      purchase.Total,
	}
	f.transition(StateSuccess)
	c := *f.confirm
	return &c, nil
}

// Retry resubmits the payment details kept from the last attempt.
func (f *Flow) Retry(ctx context.Context, who Identity) (*Confirmation, error) {
	f.mu.Lock()
	method, form := f.method, f.form
	f.mu.Unlock()
	if method == "" {
		return nil, invalid("nothing to retry")
	}
	return f.Submit(ctx, who, method, form)
}

func (f *Flow) buildPurchase(u model.User) model.Purchase {
	items := f.opts.Prices.LineItems(f.showtime.ID, f.sel, f.seats)
	return model.Purchase{
		UserID:        u.ID,
		UserName:      u.Name,
		Total:         SumItems(items),
		Items:         items,
		PaymentMethod: f.method,
		ShowDate:      f.date.Format(dateLayout),
		CreatedAt:     f.opts.Now().UTC(),
	}
}

func (f *Flow) seatLabels() []string {
	labels := make([]string, 0, f.sel.Len())
	for _, id := range f.sel.IDs() {
		if s, ok := f.seats.Seat(id); ok {
			labels = append(labels, s.Label())
		}
	}
	return labels
}

// Total is the running price of the selection.
func (f *Flow) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seats == nil {
		return decimal.Zero
	}
	return f.opts.Prices.Total(f.sel, f.seats)
}

// Snapshot is a read-only view of a flow.
type Snapshot struct {
	ID            string          `json:"id"`
	MovieID       uint64          `json:"movie_id"`
	State         State           `json:"state"`
	Date          string          `json:"date"`
	Showtime      *model.Showtime `json:"showtime,omitempty"`
	Seats         []model.Seat    `json:"seats,omitempty"`
	Selected      []int           `json:"selected"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Card          string          `json:"card,omitempty"`
	CardName      string          `json:"card_name,omitempty"`
	Expiry        string          `json:"expiry,omitempty"`
	Confirmation  *Confirmation   `json:"confirmation,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
}

// Snapshot captures the flow.  Card numbers are masked and the CVV is
// never exposed.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Snapshot{
		ID:            f.id,
		MovieID:       f.movieID,
		State:         f.state,
		Date:          f.date.Format(dateLayout),
		Selected:      f.sel.IDs(),
		Total:         decimal.Zero,
		PaymentMethod: f.method,
		Card:          f.form.MaskedCard(),
		CardName:      f.form.CardName,
		Expiry:        f.form.Expiry,
		LastError:     f.lastErr,
	}
	if f.showtime != nil {
		st := *f.showtime
		s.Showtime = &st
	}
	if f.seats != nil {
		s.Seats = f.seats.Seats()
		s.Total = f.opts.Prices.Total(f.sel, f.seats)
	}
	if f.confirm != nil {
		c := *f.confirm
		s.Confirmation = &c
	}
	return s
}

// SnapshotFor is Snapshot as seen by who.  Payment details are only shown
// to the owner of the flow.
func (f *Flow) SnapshotFor(who Identity) Snapshot {
	s := f.Snapshot()
	f.mu.Lock()
	owner := f.owner == 0 || f.ownedBy(who)
	f.mu.Unlock()
	if !owner {
		s.PaymentMethod, s.Card, s.CardName, s.Expiry = "", "", "", ""
		s.Confirmation = nil
		s.LastError = ""
	}
	return s
}

// IsAuthRequired reports whether err asks the caller to sign in, returning
// the login redirect when it does.
func IsAuthRequired(err error) (string, bool) {
	var ae *AuthRequiredError
	if errors.As(err, &ae) {
		return ae.Redirect, true
	}
	return "", errors.Is(err, ErrAuthRequired)
}
