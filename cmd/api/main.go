// Package main is the entry point for the motorhome rental API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/motorhome-rental/internal/auth"
	"github.com/pkordes/motorhome-rental/internal/config"
	"github.com/pkordes/motorhome-rental/internal/handler"
	"github.com/pkordes/motorhome-rental/internal/logging"
	"github.com/pkordes/motorhome-rental/internal/metrics"
	"github.com/pkordes/motorhome-rental/internal/middleware"
	"github.com/pkordes/motorhome-rental/internal/notify"
	"github.com/pkordes/motorhome-rental/internal/repo"
	"github.com/pkordes/motorhome-rental/internal/scheduler"
	"github.com/pkordes/motorhome-rental/internal/service"
	"github.com/pkordes/motorhome-rental/migrations"
	"github.com/pkordes/motorhome-rental/openapi"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logLevel, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}
	logger, err := logging.New(os.Stdout, cfg.LogFormat, logLevel)
	if err != nil {
		slog.Error("logger setup failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		// goose drives database/sql; borrow a *sql.DB view of the pool.
		sqlDB := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "versions", applied)
	}

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	store := repo.NewStore(pool)
	clock := service.SystemClock{Location: cfg.Location}
	m := metrics.New("motorhome")

	var notifier service.Notifier = notify.NewLog(logger, cfg.Currency)
	if cfg.SendGridAPIKey != "" {
		notifier = notify.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFromAddress, cfg.MailFromName, cfg.Currency)
		slog.Info("email delivery via sendgrid", "from", cfg.MailFromAddress)
	}

	availability := service.NewAvailabilityService(repos.Vehicles, repos.Bookings, clock, cfg.Currency, logger, m)
	bookings := service.NewBookingService(store, repos.Bookings, notifier, clock, logger,
		service.WithTxTimeout(cfg.BookingTxTimeout),
		service.WithRecorder(m),
	)
	vehicles := service.NewVehicleService(repos.Vehicles, repos.Catalog)
	reminders := service.NewReminderService(repos.Bookings, notifier, clock, logger, m)

	// --- Scheduler --------------------------------------------------------
	sched := scheduler.New(cfg.Location, logger)
	if cfg.ReminderSchedule != "" {
		if err := sched.Add("check_in_reminders", cfg.ReminderSchedule, reminders.RunForTomorrow); err != nil {
			slog.Error("invalid reminder schedule", "schedule", cfg.ReminderSchedule, "error", err)
			os.Exit(1)
		}
	}
	sched.Start()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP. Only safe behind a
	// proxy that overwrites those headers; the booking rate limit keys on it for
	// anonymous callers.
	// SlogLogger writes one structured log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srvHandlers := handler.NewServer(availability, bookings, vehicles, cfg.Currency, logger)
	r.Mount("/", handler.Handler(srvHandlers, handler.Options{
		Authenticate: middleware.NewAuthenticator(auth.NewVerifier(cfg.JWTSecret), logger),
		RateLimit:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Handler,
		Metrics:      m.Handler(),
		OpenAPI:      openapi.Document,
	}))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	sched.Stop(ctx)
	// confirmation emails started by accepted bookings
	bookings.Wait()
	slog.Info("server stopped")
}
