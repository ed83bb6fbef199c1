// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env          string // application environment (dev, test, prod)
	Port         string // HTTP port to listen on
	LogLevel     string // logrus level name
	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token lifetime in minutes
	BcryptCost   int    // cost of the seeded credential hashes

	SessionPrefix string        // redis namespace of session records
	SessionTTL    time.Duration // idle lifetime of a session record

	Backend BackendConfig

	AMQPURL     string // empty disables purchase events
	QueueName   string
	EventLogDir string // directory of the purchase event log written by the consumer
}

// BackendConfig tunes the in-memory ticketing backend.
type BackendConfig struct {
	SeatsLatency   time.Duration // seat map lookups
	LoadLatency    time.Duration // catalog, showtimes, login and other reads
	ProcessLatency time.Duration // purchase creation
	SeatSeed       uint64        // seed of the occupancy generator
	OccupancyRate  float64       // share of seats generated as occupied
	FailureRate    float64       // share of purchases rejected, for exercising retries
}

// Load reads configuration values from environment variables.  Required
// variables are enforced by must() and a missing value stops the process.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   envInt("BCRYPT_COST", 10),

		SessionPrefix: envStr("SESSION_PREFIX", "cinetick:session"),
		SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),

		Backend: BackendConfig{
			SeatsLatency:   envDur("BACKEND_SEATS_LATENCY", 800*time.Millisecond),
			LoadLatency:    envDur("BACKEND_LOAD_LATENCY", 1500*time.Millisecond),
			ProcessLatency: envDur("BACKEND_PROCESS_LATENCY", 2000*time.Millisecond),
			SeatSeed:       uint64(envInt("BACKEND_SEAT_SEED", 42)),
			OccupancyRate:  envFloat("BACKEND_OCCUPANCY_RATE", 0.3),
			FailureRate:    envFloat("BACKEND_FAILURE_RATE", 0),
		},

		AMQPURL:     os.Getenv("AMQP_URL"),
		QueueName:   envStr("AMQP_QUEUE", "purchase.confirmed"),
		EventLogDir: envStr("EVENT_LOG_DIR", "logs"),
	}
}

// IsProd reports whether the service runs in production.
func (c Config) IsProd() bool { return c.Env == "prod" }

// AccessTTL is the access token lifetime.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logrus.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		logrus.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}
