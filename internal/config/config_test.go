package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "30")

	c := Load()
	assert.Equal(t, 30*time.Minute, c.AccessTTL())
	assert.Equal(t, 800*time.Millisecond, c.Backend.SeatsLatency)
	assert.Equal(t, 1500*time.Millisecond, c.Backend.LoadLatency)
	assert.Equal(t, 2*time.Second, c.Backend.ProcessLatency)
	assert.InDelta(t, 0.3, c.Backend.OccupancyRate, 1e-9)
	assert.Equal(t, "purchase.confirmed", c.QueueName)
	assert.False(t, c.IsProd())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	t.Setenv("BACKEND_SEATS_LATENCY", "0s")
	t.Setenv("BACKEND_OCCUPANCY_RATE", "0.5")
	t.Setenv("BACKEND_SEAT_SEED", "7")

	c := Load()
	assert.True(t, c.IsProd())
	assert.Zero(t, c.Backend.SeatsLatency)
	assert.InDelta(t, 0.5, c.Backend.OccupancyRate, 1e-9)
	assert.Equal(t, uint64(7), c.Backend.SeatSeed)
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 50*time.Second, rl.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "off")
	assert.False(t, LoadCacheConfig().Enabled)
	t.Setenv("CACHE_ENABLED", "garbage")
	assert.True(t, LoadCacheConfig().Enabled)
}
