package repository

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/seatmap"
)

// SeatRepo serves generated seat maps.  Showtimes repeat daily, so each
// (showtime, date) pair has its own occupancy, drawn from a generator seeded
// with the repo seed, the day and the showtime ID.  A restart with the same
// seed reproduces every map.
type SeatRepo struct {
	lat       Latency
	showtimes *ShowtimeRepo
	layout    seatmap.Layout
	seed      uint64
	rate      float64

	mu    sync.Mutex
	cache map[seatKey][]model.Seat
}

type seatKey struct {
	showtime uint64
	day      string
}

// NewSeatRepo uses the default room layout.  A negative rate falls back
// to seatmap.DefaultOccupancyRate.
func NewSeatRepo(lat Latency, showtimes *ShowtimeRepo, seed uint64, rate float64) *SeatRepo {
	if rate < 0 {
		rate = seatmap.DefaultOccupancyRate
	}
	return &SeatRepo{
		lat:       lat,
		showtimes: showtimes,
		layout:    seatmap.DefaultLayout(),
		seed:      seed,
		rate:      rate,
		cache:     map[seatKey][]model.Seat{},
	}
}

// ListSeats returns the seat map of a showtime on date (YYYY-MM-DD) in
// layout order.  An empty date means today; dates outside the booking
// window are rejected with ErrInvalidDate.
func (r *SeatRepo) ListSeats(ctx context.Context, showtimeID uint64, date string) ([]model.Seat, error) {
	if _, err := r.showtimes.GetShowtime(ctx, showtimeID); err != nil {
		return nil, err
	}
	day, err := r.bookableDay(date)
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, r.lat.Seats); err != nil {
		return nil, err
	}
	key := seatKey{showtime: showtimeID, day: day.Format("2006-01-02")}
	r.mu.Lock()
	defer r.mu.Unlock()
	if seats, ok := r.cache[key]; ok {
		return slices.Clone(seats), nil
	}
	dayNum := uint64(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
	rng := rand.New(rand.NewPCG(r.seed^dayNum, showtimeID))
	seats, err := seatmap.Generate(r.layout, seatmap.RandomOccupancy(r.rate, rng))
	if err != nil {
		return nil, err
	}
	r.cache[key] = seats
	return slices.Clone(seats), nil
}

func (r *SeatRepo) bookableDay(date string) (time.Time, error) {
	first, last := r.showtimes.Window()
	if date == "" {
		return first, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, first.Location())
	if err != nil || day.Before(first) || day.After(last) {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}
