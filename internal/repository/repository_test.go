package repository

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinetick/internal/model"
)

type backend struct {
	movies    *MovieRepo
	showtimes *ShowtimeRepo
	seats     *SeatRepo
	purchases *PurchaseRepo
}

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newBackend(t *testing.T) backend {
	t.Helper()
	lat := NoLatency()
	movies := NewMovieRepo(lat)
	showtimes := NewShowtimeRepo(lat, movies)
	showtimes.now = func() time.Time { return testNow }
	purchases := NewPurchaseRepo(lat, showtimes, movies, 0)
	purchases.now = func() time.Time { return testNow }
	return backend{
		movies:    movies,
		showtimes: showtimes,
		seats:     NewSeatRepo(lat, showtimes, 42, -1),
		purchases: purchases,
	}
}

func item(showtimeID uint64, zone model.Zone, unit, qty int64) model.LineItem {
	return model.LineItem{
		ShowtimeID: showtimeID,
		Zone:       zone,
		Quantity:   int(qty),
		UnitPrice:  decimal.NewFromInt(unit),
		Subtotal:   decimal.NewFromInt(unit * qty),
	}
}

func TestMovieRepo(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	all, err := b.movies.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	m, err := b.movies.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Dune: Parte Dos", m.Title)

	_, err = b.movies.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	// callers cannot mutate the catalog
	all[0].Genres[0] = "X"
	again, _ := b.movies.GetByID(ctx, 1)
	assert.Equal(t, "Drama", again.Genres[0])
}

func TestShowtimeRegistry(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	sts, err := b.showtimes.ForMovie(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sts, 5)
	assert.Equal(t, uint64(6), sts[0].ID)
	assert.Equal(t, "Avatar", sts[0].Title)
	assert.Equal(t, "IMAX", sts[4].Format)

	_, err = b.showtimes.ForMovie(ctx, 42)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	st, err := b.showtimes.GetShowtime(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.MovieID)
	assert.Equal(t, "Avatar", st.Title)
	_, err = b.showtimes.GetShowtime(ctx, 999)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestShowtimeList(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	all, err := b.showtimes.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 40)

	leon, err := b.showtimes.List(ctx, "león", "2025-05-12")
	require.NoError(t, err)
	assert.Len(t, leon, 10)

	outside, err := b.showtimes.List(ctx, "", "2025-05-17")
	require.NoError(t, err)
	assert.Empty(t, outside)

	_, err = b.showtimes.List(ctx, "", "12/05/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestShowtimeCreate(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	st, err := b.showtimes.Create(ctx, model.Showtime{MovieID: 3, Time: "14:00", Theater: "Sala 1", Format: "Regular 2D"})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), st.ID)
	assert.Equal(t, "León: El Profesional", st.Title)

	_, err = b.showtimes.Create(ctx, model.Showtime{MovieID: 100})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestSeatRepoDeterministic(t *testing.T) {
	ctx := context.Background()
	a := newBackend(t)
	b := newBackend(t)

	s1, err := a.seats.ListSeats(ctx, 3, "2025-05-11")
	require.NoError(t, err)
	s2, err := b.seats.ListSeats(ctx, 3, "2025-05-11")
	require.NoError(t, err)
	assert.Len(t, s1, 96)
	assert.Equal(t, s1, s2)

	_, err = a.seats.ListSeats(ctx, 1000, "")
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestSeatRepoOccupancyPerDay(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	today, err := b.seats.ListSeats(ctx, 3, "")
	require.NoError(t, err)
	same, err := b.seats.ListSeats(ctx, 3, "2025-05-10")
	require.NoError(t, err)
	assert.Equal(t, today, same)

	occupied := func(seats []model.Seat) []int {
		var ids []int
		for _, s := range seats {
			if s.Occupied {
				ids = append(ids, s.ID)
			}
		}
		return ids
	}
	differs := false
	for d := 11; d <= 16; d++ {
		other, err := b.seats.ListSeats(ctx, 3, fmt.Sprintf("2025-05-%d", d))
		require.NoError(t, err)
		if !slices.Equal(occupied(today), occupied(other)) {
			differs = true
		}
	}
	assert.True(t, differs, "every day of the window has the same occupancy")

	for _, bad := range []string{"2025-05-09", "2025-05-17", "10/05/2025"} {
		_, err := b.seats.ListSeats(ctx, 3, bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestCreatePurchaseInvariant(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	good := model.Purchase{
		UserID: 1, UserName: "Usuario Demo",
		Items: []model.LineItem{item(1, model.ZoneStandard, 15, 2), item(1, model.ZonePremium, 20, 1)},
		Total: decimal.NewFromInt(50), ShowDate: "2025-05-11", PaymentMethod: model.PaymentCard,
	}
	id, err := b.purchases.CreatePurchase(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	badTotal := good
	badTotal.Total = decimal.NewFromInt(45)
	_, err = b.purchases.CreatePurchase(ctx, badTotal)
	assert.ErrorIs(t, err, ErrInvalidPurchase)

	badSub := good
	badSub.Items = []model.LineItem{item(1, model.ZoneStandard, 15, 2)}
	badSub.Items[0].Subtotal = decimal.NewFromInt(31)
	badSub.Total = decimal.NewFromInt(31)
	_, err = b.purchases.CreatePurchase(ctx, badSub)
	assert.ErrorIs(t, err, ErrInvalidPurchase)

	empty := good
	empty.Items = nil
	empty.Total = decimal.Zero
	_, err = b.purchases.CreatePurchase(ctx, empty)
	assert.ErrorIs(t, err, ErrInvalidPurchase)

	unknown := good
	unknown.Items = []model.LineItem{item(500, model.ZoneStandard, 15, 1)}
	unknown.Total = decimal.NewFromInt(15)
	_, err = b.purchases.CreatePurchase(ctx, unknown)
	assert.ErrorIs(t, err, ErrInvalidPurchase)
}

func TestCreatePurchaseInjectedFailure(t *testing.T) {
	b := newBackend(t)
	b.purchases.SetFailureRate(1)
	_, err := b.purchases.CreatePurchase(context.Background(), model.Purchase{
		UserID: 1, Items: []model.LineItem{item(1, model.ZoneStandard, 15, 1)}, Total: decimal.NewFromInt(15),
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPurchaseDetailAndReport(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	p := model.Purchase{
		UserID: 1, UserName: "Usuario Demo",
		Items:    []model.LineItem{item(1, model.ZoneStandard, 15, 2), item(7, model.ZonePremium, 20, 1)},
		Total:    decimal.NewFromInt(50),
		ShowDate: "2025-05-11",
	}
	id, err := b.purchases.CreatePurchase(ctx, p)
	require.NoError(t, err)

	d, err := b.purchases.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Usuario Demo", d.UserName)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "Oppenheimer", d.Lines[0].Title)
	assert.Equal(t, "Sala 5", d.Lines[0].Theater)
	assert.Equal(t, "2025-05-11T16:30", d.Lines[0].StartsAt)
	assert.Equal(t, "Avatar", d.Lines[1].Title)
	assert.Equal(t, "18:30", d.Lines[1].StartsAt[len(d.Lines[1].StartsAt)-5:])

	_, err = b.purchases.GetDetail(ctx, 77)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)

	later := p
	later.CreatedAt = testNow.Add(24 * time.Hour)
	later.UserID = 3
	_, err = b.purchases.CreatePurchase(ctx, later)
	require.NoError(t, err)

	mine, err := b.purchases.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	report, err := b.purchases.SalesReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "2025-05-10", report[0].Date)
	assert.Equal(t, 1, report[0].Purchases)
	assert.True(t, report[0].Total.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "2025-05-11", report[1].Date)
}

func TestUserRepo(t *testing.T) {
	r, err := NewUserRepo(NoLatency(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	u, err := r.Login(ctx, "demo@cinetick.com", "demo123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, model.RoleClient, u.Role)

	admin, err := r.Login(ctx, "admin@cinetick.com", "admin123")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = r.Login(ctx, "demo@cinetick.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	roles, err := r.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

func TestUserRepoLoginIsExact(t *testing.T) {
	r, err := NewUserRepo(NoLatency(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	for _, email := range []string{"DEMO@cinetick.com", " demo@cinetick.com", "demo@cinetick.com "} {
		_, err := r.Login(ctx, email, "demo123")
		assert.ErrorIs(t, err, ErrInvalidCredentials, email)
	}
	_, err = r.Login(ctx, "admin@cinetick.com", "demo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserRepoRegisterDoesNotPersist(t *testing.T) {
	r, err := NewUserRepo(NoLatency(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	nu, err := r.Register(ctx, "Ana", "ana@example.com", "secreto")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nu.ID)
	assert.Equal(t, "Ana", nu.Name)
	assert.Equal(t, model.RoleClient, nu.Role)

	_, err = r.Login(ctx, "ana@example.com", "secreto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// a taken address still registers and leaves the seeded login alone
	dup, err := r.Register(ctx, "Otro", "demo@cinetick.com", "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), dup.ID)
	_, err = r.Login(ctx, "demo@cinetick.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = r.Login(ctx, "demo@cinetick.com", "demo123")
	assert.NoError(t, err)
}

func TestPromotionRepo(t *testing.T) {
	r := NewPromotionRepo(NoLatency())
	ctx := context.Background()
	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	p, err := r.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "FAMCINETICK", p.Code)
	assert.True(t, p.Exclusive)

	_, err = r.GetByID(ctx, 9)
	assert.ErrorIs(t, err, ErrPromotionNotFound)
}

func TestLatencyHonoursContext(t *testing.T) {
	r := NewMovieRepo(Latency{Load: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.List(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
