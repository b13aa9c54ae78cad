package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/live-seat-booking/internal/config"
	"github.com/iliyamo/live-seat-booking/internal/handler"
	"github.com/iliyamo/live-seat-booking/internal/middleware"
)

// Handlers bundles everything the route table needs.  WS may be nil in
// tests that only exercise the REST surface.
type Handlers struct {
	Seats   *handler.SeatHandler
	Movies  *handler.MovieHandler
	Booking *handler.BookingHandler
	WS      *handler.WSHandler
}

// Register wires all routes onto the Echo instance.  Rate limiting is
// applied only to the seat mutation endpoints — the block/release/booking
// path is the one worth defending — and the response cache only to the
// catalog.  Seat status stays uncached so polling clients see live state.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client, rl config.RateLimitConfig, cc config.CacheConfig) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Movie catalog (public, cached).
	cached := middleware.Cache(cc, rdb)
	e.GET("/v1/movies", h.Movies.ListMovies, cached)
	e.GET("/v1/movies/:id", h.Movies.GetMovie, cached)

	// Seat map: polling fallback plus the booking-flow steps.
	limited := middleware.RateLimit(rl, rdb)
	e.GET("/v1/showings/:id/seats", h.Seats.GetStatus)
	e.POST("/v1/showings/:id/seats/check", h.Seats.CheckSeats, limited)
	e.POST("/v1/showings/:id/seats/block", h.Seats.BlockSeats, limited)
	e.POST("/v1/showings/:id/seats/release", h.Seats.ReleaseSeats, limited)

	// Booking confirmation.
	e.POST("/v1/bookings", h.Booking.CreateBooking, limited)

	// Realtime seat map subscriptions.
	if h.WS != nil {
		e.GET("/ws", h.WS.Serve)
	}
}
