package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinetick/internal/config"
	"github.com/iliyamo/cinetick/internal/handler"
	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/session"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Auth            *handler.AuthHandler
	Catalog         *handler.CatalogHandler
	Bookings        *handler.BookingHandler
	Purchases       *handler.PurchaseHandler
	Promotions      *handler.PromotionHandler
	Recommendations *handler.RecommendationHandler
	Admin           *handler.AdminHandler
}

// Options carries the infrastructure shared by the middleware.  A nil
// Redis client turns caching and rate limiting into pass-throughs.
type Options struct {
	JWTSecret string
	Sessions  *session.Provider
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers infrastructure endpoints that bypass the API
// middleware stack.
func RegisterRoutes(e *echo.Echo, rdb *redis.Client) {
	e.GET("/healthz", handler.Health(rdb))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI mounts the /v1 API.  Every request gets its session
// restored first; routes then opt into RequireSession or RequireRole.
func RegisterAPI(e *echo.Echo, h Handlers, opt Options) {
	v1 := e.Group("/v1", middleware.SessionAuth(opt.JWTSecret, opt.Sessions))
	signedIn := middleware.RequireSession()

	// auth
	auth := v1.Group("/auth", middleware.NewTokenBucket(opt.RateLimit, opt.Redis))
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	v1.POST("/auth/logout", h.Auth.Logout, signedIn)
	v1.GET("/me", h.Auth.Me, signedIn)
	v1.GET("/roles", h.Auth.Roles)

	// catalog, cached per URL
	cache := middleware.NewRedisCache(opt.Cache, opt.Redis)
	v1.GET("/movies", h.Catalog.ListMovies, cache)
	v1.GET("/movies/facets", h.Catalog.Facets, cache)
	v1.GET("/movies/:id", h.Catalog.GetMovie, cache)
	v1.GET("/movies/:id/showtimes", h.Catalog.MovieShowtimes)
	v1.GET("/showtimes", h.Catalog.ListShowtimes)
	v1.GET("/showtimes/:id/seats", h.Catalog.ShowtimeSeats)

	// booking flow; continuing to seats reports auth-required itself so
	// the client gets the login redirect of the movie page
	b := v1.Group("/bookings")
	b.POST("", h.Bookings.Create)
	b.GET("/:id", h.Bookings.Get)
	b.PUT("/:id/date", h.Bookings.SelectDate)
	b.PUT("/:id/showtime", h.Bookings.SelectShowtime)
	b.POST("/:id/seats", h.Bookings.ContinueToSeats)
	b.POST("/:id/back", h.Bookings.Back, signedIn)
	b.POST("/:id/seats/:seat/toggle", h.Bookings.ToggleSeat, signedIn)
	b.POST("/:id/checkout", h.Bookings.Checkout, signedIn)
	b.POST("/:id/pay", h.Bookings.Pay, signedIn)
	b.POST("/:id/retry", h.Bookings.Retry, signedIn)

	v1.GET("/purchases/:id", h.Purchases.Detail, signedIn)
	v1.GET("/my-purchases", h.Purchases.Mine, signedIn)

	v1.GET("/promotions", h.Promotions.List)
	v1.POST("/promotions/:id/claim", h.Promotions.Claim, signedIn)

	rec := v1.Group("/recommendations", signedIn)
	rec.GET("", h.Recommendations.List)
	rec.POST("/refresh", h.Recommendations.Refresh)
	rec.POST("/:movie/feedback", h.Recommendations.Feedback)

	admin := v1.Group("/admin", signedIn, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/sales-report", h.Admin.SalesReport)
	admin.POST("/showtimes", h.Admin.CreateShowtime)
}
