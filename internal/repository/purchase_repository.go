package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrPurchaseNotFound indicates an unknown purchase ID.
var ErrPurchaseNotFound = errors.New("purchase not found")

// PurchaseRepo is the purchase ledger.  Purchases are immutable once
// created; readers always receive copies.
type PurchaseRepo struct {
	lat         Latency
	showtimes   *ShowtimeRepo
	movies      *MovieRepo
	now         func() time.Time
	failureRate float64

	mu        sync.RWMutex
	rng       *rand.Rand
	purchases []model.Purchase
	nextID    uint64
}

// NewPurchaseRepo returns an empty ledger.  failureRate in [0,1] is the
// share of CreatePurchase calls answered with ErrUnavailable.
func NewPurchaseRepo(lat Latency, showtimes *ShowtimeRepo, movies *MovieRepo, failureRate float64) *PurchaseRepo {
	return &PurchaseRepo{
		lat:         lat,
		showtimes:   showtimes,
		movies:      movies,
		now:         time.Now,
		failureRate: failureRate,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		nextID:      1,
	}
}

// SetFailureRate changes the injected failure rate.
func (r *PurchaseRepo) SetFailureRate(rate float64) {
	r.mu.Lock()
	r.failureRate = rate
	r.mu.Unlock()
}

// CreatePurchase validates and records p, returning its ID.
func (r *PurchaseRepo) CreatePurchase(ctx context.Context, p model.Purchase) (uint64, error) {
	if err := r.check(ctx, p); err != nil {
		return 0, err
	}
	if err := wait(ctx, r.lat.Process); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failureRate > 0 && r.rng.Float64() < r.failureRate {
		return 0, fmt.Errorf("%w: purchase rejected, try again", ErrUnavailable)
	}
	p.ID = r.nextID
	r.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}
	p.Items = cloneItems(p.Items)
	r.purchases = append(r.purchases, p)
	return p.ID, nil
}

// check enforces the ledger invariants: at least one item, every subtotal
// equal to unit price times quantity, and a total equal to their sum.
func (r *PurchaseRepo) check(ctx context.Context, p model.Purchase) error {
	if p.UserID == 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidPurchase)
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidPurchase)
	}
	sum := decimal.Zero
	for i, it := range p.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has no seats", ErrInvalidPurchase, i)
		}
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return fmt.Errorf("%w: item %d subtotal %s != %s x %d", ErrInvalidPurchase, i, it.Subtotal, it.UnitPrice, it.Quantity)
		}
		if _, err := r.showtimes.GetShowtime(ctx, it.ShowtimeID); err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrInvalidPurchase, i, err)
		}
		sum = sum.Add(it.Subtotal)
	}
	if !sum.Equal(p.Total) {
		return fmt.Errorf("%w: total %s != %s", ErrInvalidPurchase, p.Total, sum)
	}
	return nil
}

func cloneItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	for i, it := range items {
		it.Seats = slices.Clone(it.Seats)
		out[i] = it
	}
	return out
}

func (r *PurchaseRepo) find(id uint64) (model.Purchase, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.purchases {
		if p.ID == id {
			p.Items = cloneItems(p.Items)
			return p, true
		}
	}
	return model.Purchase{}, false
}

// Get returns the stored purchase.
func (r *PurchaseRepo) Get(ctx context.Context, id uint64) (model.Purchase, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.Purchase{}, err
	}
	p, ok := r.find(id)
	if !ok {
		return model.Purchase{}, ErrPurchaseNotFound
	}
	return p, nil
}

// GetDetail returns the purchase enriched with movie title, theater and
// start time of every line.
func (r *PurchaseRepo) GetDetail(ctx context.Context, id uint64) (model.PurchaseDetail, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.PurchaseDetail{}, err
	}
	p, ok := r.find(id)
	if !ok {
		return model.PurchaseDetail{}, ErrPurchaseNotFound
	}
	d := model.PurchaseDetail{
		ID:          p.ID,
		UserID:      p.UserID,
		UserName:    p.UserName,
		PurchasedAt: p.CreatedAt,
		Total:       p.Total,
		Lines:       make([]model.PurchaseDetailLine, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		line := model.PurchaseDetailLine{
			ShowtimeID: it.ShowtimeID,
			Zone:       it.Zone,
			Quantity:   it.Quantity,
			Subtotal:   it.Subtotal,
			Seats:      it.Seats,
		}
		if st, err := r.showtimes.GetShowtime(ctx, it.ShowtimeID); err == nil {
			line.Theater = st.Theater
			line.Format = st.Format
			line.StartsAt = p.ShowDate + "T" + st.Time
			if m, err := r.movies.lookup(st.MovieID); err == nil {
				line.Title = m.Title
			}
		}
		d.Lines = append(d.Lines, line)
	}
	return d, nil
}

// ListByUser returns the purchases of userID, newest first.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Purchase, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Purchase{}
	for i := len(r.purchases) - 1; i >= 0; i-- {
		if p := r.purchases[i]; p.UserID == userID {
			p.Items = cloneItems(p.Items)
			out = append(out, p)
		}
	}
	return out, nil
}

// SalesReport aggregates the ledger per purchase day (UTC), oldest first.
func (r *PurchaseRepo) SalesReport(ctx context.Context) ([]model.DailySales, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	r.mu.RLock()
	byDay := map[string]*model.DailySales{}
	for _, p := range r.purchases {
		day := p.CreatedAt.UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &model.DailySales{Date: day, Total: decimal.Zero}
			byDay[day] = row
		}
		row.Total = row.Total.Add(p.Total)
		row.Purchases++
	}
	r.mu.RUnlock()

	out := make([]model.DailySales, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
