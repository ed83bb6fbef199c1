package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/booking"
	"github.com/iliyamo/cinetick/internal/config"
	"github.com/iliyamo/cinetick/internal/handler"
	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/monitoring"
	"github.com/iliyamo/cinetick/internal/queue"
	"github.com/iliyamo/cinetick/internal/repository"
	"github.com/iliyamo/cinetick/internal/router"
	"github.com/iliyamo/cinetick/internal/service"
	"github.com/iliyamo/cinetick/internal/session"
)

func setupLogger(cfg config.Config) {
	if cfg.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using process environment")
	}
	cfg := config.Load()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, cfg.SessionPrefix, cfg.SessionTTL)
	} else {
		logrus.Warn("sessions kept in memory")
		store = session.NewMemoryStore(cfg.SessionTTL)
	}
	sessions := session.NewProvider(store)

	// mock backend
	bc := cfg.Backend
	lat := repository.Latency{Seats: bc.SeatsLatency, Load: bc.LoadLatency, Process: bc.ProcessLatency}
	movies := repository.NewMovieRepo(lat)
	showtimes := repository.NewShowtimeRepo(lat, movies)
	seats := repository.NewSeatRepo(lat, showtimes, bc.SeatSeed, bc.OccupancyRate)
	purchases := repository.NewPurchaseRepo(lat, showtimes, movies, bc.FailureRate)
	promotions := repository.NewPromotionRepo(lat)
	users, err := repository.NewUserRepo(lat, cfg.BcryptCost)
	if err != nil {
		logrus.WithError(err).Fatal("seed users")
	}

	monitor := monitoring.NewMonitor(rdb, cfg.SessionPrefix)
	monitor.Start(ctx, 30*time.Second)

	bookings := service.NewBookingService(service.BookingConfig{
		Movies:    movies,
		Deps:      booking.Deps{Showtimes: showtimes, Seats: seats, Purchases: purchases},
		Publisher: service.NewPublisher(cfg.AMQPURL, cfg.QueueName),
		Monitor:   monitor,
		IdleTTL:   cfg.SessionTTL,
	})
	bookings.StartJanitor(ctx, time.Minute)
	recommendations := service.NewRecommendationService(movies, bc.LoadLatency, bc.SeatSeed)

	if cfg.AMQPURL != "" {
		c := &queue.Consumer{URL: cfg.AMQPURL, Queue: cfg.QueueName, LogDir: cfg.EventLogDir}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("purchase consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.Logger())

	router.RegisterRoutes(e, rdb)
	router.RegisterAPI(e, router.Handlers{
		Auth:            handler.NewAuthHandler(cfg, users, sessions),
		Catalog:         &handler.CatalogHandler{Movies: movies, Showtimes: showtimes, Seats: seats},
		Bookings:        &handler.BookingHandler{Bookings: bookings},
		Purchases:       &handler.PurchaseHandler{Purchases: purchases},
		Promotions:      &handler.PromotionHandler{Promotions: promotions},
		Recommendations: &handler.RecommendationHandler{Recommendations: recommendations},
		Admin:           &handler.AdminHandler{Purchases: purchases, Showtimes: showtimes},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Sessions:  sessions,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
