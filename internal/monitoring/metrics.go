// Package monitoring exposes Prometheus metrics of the booking service.
package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	flowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_flow_transitions_total",
			Help: "Booking flow state transitions",
		},
		[]string{"from", "to"},
	)

	activeFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_flows_active",
			Help: "Booking flows currently held in memory",
		},
	)

	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase submissions by outcome",
		},
		[]string{"status"},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Seats sold per zone",
		},
		[]string{"zone"},
	)

	backendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_call_duration_seconds",
			Help:    "Duration of mock backend calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"operation"},
	)

	storedSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_stored",
			Help: "Session records currently held in redis",
		},
	)
)

// Monitor records service metrics.  A nil *Monitor is valid and records
// nothing, so callers never need to check.
type Monitor struct {
	redis         *redis.Client
	sessionPrefix string
}

// NewMonitor returns a monitor.  rdb may be nil, in which case stored
// sessions are not sampled.
func NewMonitor(rdb *redis.Client, sessionPrefix string) *Monitor {
	return &Monitor{redis: rdb, sessionPrefix: sessionPrefix}
}

// Start samples redis every interval until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	if m == nil || m.redis == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.collectSessions(ctx)
			}
		}
	}()
}

func (m *Monitor) collectSessions(ctx context.Context) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := m.redis.Scan(ctx, cursor, m.sessionPrefix+":*:user", 500).Result()
		if err != nil {
			logrus.WithError(err).Debug("session scan failed")
			return
		}
		total += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	storedSessions.Set(float64(total))
}

// TrackTransition counts a booking flow transition.
func (m *Monitor) TrackTransition(from, to string) {
	if m == nil {
		return
	}
	flowTransitions.WithLabelValues(from, to).Inc()
}

// SetActiveFlows reports the size of the flow registry.
func (m *Monitor) SetActiveFlows(n int) {
	if m == nil {
		return
	}
	activeFlows.Set(float64(n))
}

// TrackPurchase counts a purchase outcome: "ok", "failed" or "invalid".
func (m *Monitor) TrackPurchase(status string) {
	if m == nil {
		return
	}
	purchases.WithLabelValues(status).Inc()
}

// TrackTickets adds n sold seats of zone.
func (m *Monitor) TrackTickets(zone string, n int) {
	if m == nil {
		return
	}
	ticketsSold.WithLabelValues(zone).Add(float64(n))
}

// ObserveBackend records how long a backend operation took.
func (m *Monitor) ObserveBackend(operation string, d time.Duration) {
	if m == nil {
		return
	}
	backendLatency.WithLabelValues(operation).Observe(d.Seconds())
}
