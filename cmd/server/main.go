package main // Entry point package

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-booking/internal/config"
	"github.com/iliyamo/live-seat-booking/internal/database"
	"github.com/iliyamo/live-seat-booking/internal/handler"
	"github.com/iliyamo/live-seat-booking/internal/ledger"
	"github.com/iliyamo/live-seat-booking/internal/logger"
	"github.com/iliyamo/live-seat-booking/internal/queue"
	"github.com/iliyamo/live-seat-booking/internal/realtime"
	"github.com/iliyamo/live-seat-booking/internal/repository"
	"github.com/iliyamo/live-seat-booking/internal/router"
	queuepublisher "github.com/iliyamo/live-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Mode: cfg.Env})

	// Realtime hub first: the ledger pushes seat events into it.
	hub := realtime.NewHub(log)

	seats := ledger.New(ledger.Options{
		BlockTTL: cfg.BlockTTL,
		Notifier: hub,
		Logger:   log,
	})
	defer seats.Close()

	// Movie catalog: MySQL when configured, seeded list otherwise.
	var catalog handler.Catalog = handler.NewSeededCatalog()
	if cfg.DBHost != "" {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Warnf("mysql unavailable, serving seeded catalog: %v", err)
		} else {
			defer db.Close()
			catalog = repository.NewMovieRepo(db)
		}
	}

	// Booking archive: publisher plus the background consumer that writes
	// logs/booking.log.
	publisher := queuepublisher.New(log)
	go queue.StartBookingConsumer(log)

	dispatcher := realtime.NewDispatcher(hub, seats, log)

	h := router.Handlers{
		Seats:   handler.NewSeatHandler(seats),
		Movies:  handler.NewMovieHandler(catalog),
		Booking: handler.NewBookingHandler(seats, catalog, publisher.PublishBookingConfirmed),
		WS:      handler.NewWSHandler(hub, dispatcher, log),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warnf("redis unavailable, rate limiting and caching disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig())

	addr := ":" + cfg.Port
	log.Infof("listening on %s (env=%s, block ttl=%s)", addr, cfg.Env, cfg.BlockTTL)

	if err := e.Start(addr); err != nil {
		_ = e.Shutdown(context.Background())
		log.Fatalf("server stopped: %v", err)
	}
}
