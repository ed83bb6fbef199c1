package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinetick/internal/model"
)

var (
	// ErrShowtimeNotFound indicates an unknown showtime ID.
	ErrShowtimeNotFound = errors.New("showtime not found")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// BookingWindowDays is how many days, today included, can be booked.
const BookingWindowDays = 7

// slot is a daily screening shared by every movie.
type slot struct {
	time, theater, format string
}

var dailySlots = []slot{
	{"16:30", "Sala 5", "Regular 2D"},
	{"18:30", "Sala 6", "Regular 2D"},
	{"20:30", "Sala 5", "Regular 3D"},
	{"22:30", "Sala 4", "Regular 3D"},
	{"22:30", "Sala 7", "IMAX"},
}

// ShowtimeRepo is the showtime registry.  Every movie gets the daily slots;
// the same schedule repeats on each day of the booking window.
type ShowtimeRepo struct {
	lat    Latency
	movies *MovieRepo
	now    func() time.Time

	mu        sync.RWMutex
	showtimes []model.Showtime
	nextID    uint64
}

// NewShowtimeRepo seeds the registry from the movies of movies.
func NewShowtimeRepo(lat Latency, movies *MovieRepo) *ShowtimeRepo {
	r := &ShowtimeRepo{lat: lat, movies: movies, now: time.Now, nextID: 1}
	for _, m := range movies.all() {
		for _, s := range dailySlots {
			r.showtimes = append(r.showtimes, model.Showtime{
				ID:      r.nextID,
				MovieID: m.ID,
				Time:    s.time,
				Theater: s.theater,
				Format:  s.format,
			})
			r.nextID++
		}
	}
	return r
}

// Window returns the first and last bookable day.
func (r *ShowtimeRepo) Window() (first, last time.Time) {
	y, mo, d := r.now().Date()
	first = time.Date(y, mo, d, 0, 0, 0, 0, r.now().Location())
	return first, first.AddDate(0, 0, BookingWindowDays-1)
}

// List searches showtimes.  title matches a substring of the movie title,
// case-insensitively; date (YYYY-MM-DD) outside the booking window yields
// no results.  Empty filters match everything.
func (r *ShowtimeRepo) List(ctx context.Context, title, date string) ([]model.Showtime, error) {
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, r.now().Location())
		if err != nil {
			return nil, ErrInvalidDate
		}
		first, last := r.Window()
		if day.Before(first) || day.After(last) {
			return []model.Showtime{}, nil
		}
	}
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	titles := map[uint64]string{}
	for _, m := range r.movies.all() {
		titles[m.ID] = m.Title
	}
	needle := strings.ToLower(strings.TrimSpace(title))

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Showtime{}
	for _, st := range r.showtimes {
		st.Title = titles[st.MovieID]
		if needle != "" && !strings.Contains(strings.ToLower(st.Title), needle) {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// ForMovie lists the showtimes of one movie in schedule order.
func (r *ShowtimeRepo) ForMovie(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	m, err := r.movies.lookup(movieID)
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Showtime{}
	for _, st := range r.showtimes {
		if st.MovieID == movieID {
			st.Title = m.Title
			out = append(out, st)
		}
	}
	return out, nil
}

// GetShowtime resolves a showtime, title included, without simulated
// latency; the booking flow calls it on every showtime change.
func (r *ShowtimeRepo) GetShowtime(_ context.Context, id uint64) (model.Showtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.showtimes {
		if st.ID == id {
			if m, err := r.movies.lookup(st.MovieID); err == nil {
				st.Title = m.Title
			}
			return st, nil
		}
	}
	return model.Showtime{}, ErrShowtimeNotFound
}

// Create schedules a new daily showtime for an existing movie and returns
// it with its assigned ID.
func (r *ShowtimeRepo) Create(ctx context.Context, st model.Showtime) (model.Showtime, error) {
	m, err := r.movies.lookup(st.MovieID)
	if err != nil {
		return model.Showtime{}, err
	}
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.Showtime{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st.ID = r.nextID
	st.Title = ""
	r.nextID++
	r.showtimes = append(r.showtimes, st)
	st.Title = m.Title
	return st, nil
}
