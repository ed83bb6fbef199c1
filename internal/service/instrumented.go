package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cinetick/internal/booking"
	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/monitoring"
	"github.com/iliyamo/cinetick/internal/repository"
)

// timedSeats records the latency of seat map loads.
type timedSeats struct {
	next    booking.SeatLister
	monitor *monitoring.Monitor
}

func (t timedSeats) ListSeats(ctx context.Context, showtimeID uint64, date string) ([]model.Seat, error) {
	start := time.Now()
	seats, err := t.next.ListSeats(ctx, showtimeID, date)
	t.monitor.ObserveBackend("list_seats", time.Since(start))
	return seats, err
}

// timedPurchases records latency and outcome of purchase creation.
type timedPurchases struct {
	next    booking.PurchaseCreator
	monitor *monitoring.Monitor
}

func (t timedPurchases) CreatePurchase(ctx context.Context, p model.Purchase) (uint64, error) {
	start := time.Now()
	id, err := t.next.CreatePurchase(ctx, p)
	t.monitor.ObserveBackend("create_purchase", time.Since(start))
	switch {
	case err == nil:
		t.monitor.TrackPurchase("ok")
		for _, it := range p.Items {
			t.monitor.TrackTickets(string(it.Zone), it.Quantity)
		}
	case errors.Is(err, repository.ErrInvalidPurchase):
		t.monitor.TrackPurchase("invalid")
	default:
		t.monitor.TrackPurchase("failed")
	}
	return id, err
}
