package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/booking"
	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/monitoring"
	"github.com/iliyamo/cinetick/internal/queue"
)

// ErrFlowNotFound is returned for unknown or expired booking flows.
var ErrFlowNotFound = errors.New("booking not found")

// MovieFinder resolves movies by ID.
type MovieFinder interface {
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
}

// BookingService owns the registry of in-progress booking flows.
type BookingService struct {
	movies    MovieFinder
	deps      booking.Deps
	opts      booking.Options
	publisher EventPublisher
	monitor   *monitoring.Monitor
	idleTTL   time.Duration
	now       func() time.Time
	log       logrus.FieldLogger

	mu    sync.Mutex
	flows map[string]*flowEntry
}

type flowEntry struct {
	flow    *booking.Flow
	touched time.Time
}

// BookingConfig wires a BookingService.
type BookingConfig struct {
	Movies    MovieFinder
	Deps      booking.Deps
	Options   booking.Options
	Publisher EventPublisher
	Monitor   *monitoring.Monitor
	IdleTTL   time.Duration // flows untouched for longer are swept; 0 keeps them
	Log       logrus.FieldLogger
}

func NewBookingService(cfg BookingConfig) *BookingService {
	s := &BookingService{
		movies:    cfg.Movies,
		opts:      cfg.Options,
		publisher: cfg.Publisher,
		monitor:   cfg.Monitor,
		idleTTL:   cfg.IdleTTL,
		now:       time.Now,
		log:       cfg.Log,
		flows:     map[string]*flowEntry{},
	}
	if s.publisher == nil {
		s.publisher = NopPublisher{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.deps = booking.Deps{
		Showtimes: cfg.Deps.Showtimes,
		Seats:     timedSeats{next: cfg.Deps.Seats, monitor: cfg.Monitor},
		Purchases: timedPurchases{next: cfg.Deps.Purchases, monitor: cfg.Monitor},
	}
	hook := s.opts.OnTransition
	s.opts.OnTransition = func(from, to booking.State) {
		s.monitor.TrackTransition(string(from), string(to))
		if hook != nil {
			hook(from, to)
		}
	}
	return s
}

// Start opens a booking flow for movieID.
func (s *BookingService) Start(ctx context.Context, movieID uint64) (*booking.Flow, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return nil, err
	}
	f := booking.NewFlow(uuid.NewString(), movieID, s.deps, s.opts)
	s.mu.Lock()
	s.flows[f.ID()] = &flowEntry{flow: f, touched: s.now()}
	n := len(s.flows)
	s.mu.Unlock()
	s.monitor.SetActiveFlows(n)
	return f, nil
}

// Get returns the flow id and marks it as used.
func (s *BookingService) Get(id string) (*booking.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	e.touched = s.now()
	return e.flow, nil
}

// Pay submits the checkout of flow id and announces the purchase.
func (s *BookingService) Pay(ctx context.Context, id string, who booking.Identity, method string, form booking.PaymentForm) (*booking.Confirmation, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	conf, err := f.Submit(ctx, who, method, form)
	return s.afterSubmit(ctx, f, who, method, conf, err)
}

// Retry resubmits the details kept from the last failed attempt.
func (s *BookingService) Retry(ctx context.Context, id string, who booking.Identity) (*booking.Confirmation, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	conf, err := f.Retry(ctx, who)
	return s.afterSubmit(ctx, f, who, f.Snapshot().PaymentMethod, conf, err)
}

func (s *BookingService) afterSubmit(ctx context.Context, f *booking.Flow, who booking.Identity, method string, conf *booking.Confirmation, err error) (*booking.Confirmation, error) {
	log := s.log.WithField("flow", f.ID())
	if err != nil {
		if errors.Is(err, booking.ErrBackend) {
			log.WithError(err).Warn("purchase failed")
		}
		return nil, err
	}
	u, _ := who.User()
	log.WithFields(logrus.Fields{"purchase_id": conf.PurchaseID, "user_id": u.ID, "total": conf.Total.String()}).Info("purchase confirmed")

	ev := queue.PurchaseConfirmedEvent{
		PurchaseID:    conf.PurchaseID,
		UserID:        u.ID,
		UserName:      u.Name,
		MovieID:       conf.Showtime.MovieID,
		MovieTitle:    conf.Showtime.Title,
		ShowtimeID:    conf.Showtime.ID,
		Theater:       conf.Showtime.Theater,
		Format:        conf.Showtime.Format,
		ShowDate:      conf.Date,
		StartsAt:      conf.Date + "T" + conf.Showtime.Time,
		Seats:         conf.Seats,
		Total:         conf.Total.String(),
		PaymentMethod: method,
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if perr := s.publisher.PublishPurchaseConfirmed(pctx, ev); perr != nil {
		log.WithError(perr).Warn("purchase event not published")
	}
	return conf, nil
}

// Sweep drops flows idle for longer than the configured TTL and returns
// how many were removed.
func (s *BookingService) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)
	s.mu.Lock()
	removed := 0
	for id, e := range s.flows {
		if e.touched.Before(cutoff) {
			delete(s.flows, id)
			removed++
		}
	}
	n := len(s.flows)
	s.mu.Unlock()
	s.monitor.SetActiveFlows(n)
	return removed
}

// StartJanitor sweeps every interval until ctx is done.
func (s *BookingService) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.Sweep(); n > 0 {
					s.log.WithField("removed", n).Debug("swept idle booking flows")
				}
			}
		}
	}()
}

// Len is the number of flows held.
func (s *BookingService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}
