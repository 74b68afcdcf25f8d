package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pkordes/car-rental/internal/config"
	"github.com/pkordes/car-rental/internal/events"
	"github.com/pkordes/car-rental/internal/handler"
	"github.com/pkordes/car-rental/internal/i18n"
	"github.com/pkordes/car-rental/internal/middleware"
	"github.com/pkordes/car-rental/internal/repo"
	"github.com/pkordes/car-rental/internal/seed"
	"github.com/pkordes/car-rental/internal/service"
)

// sessionPurgeInterval is how often expired session records are deleted.
const sessionPurgeInterval = 15 * time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg.LogLevel)

	// --- Store ------------------------------------------------------------
	var store repo.Store
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("database connection established")

		if err := migrateUp(ctx, pool, logger); err != nil {
			return err
		}
		store = repo.NewPostgresStore(pool)
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		store = repo.NewMemoryStore()
	}

	// --- Events -----------------------------------------------------------
	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		pub = rabbit
		logger.Info("publishing domain events", "exchange", cfg.AMQPExchange)
	}

	// --- Services ---------------------------------------------------------
	auth, err := service.NewAuthService(store, service.AuthConfig{
		Secret:     []byte(cfg.SessionSecret),
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
	}, logger)
	if err != nil {
		return err
	}
	services := handler.Services{
		Cars:     service.NewCarService(store, pub, logger, cfg.MinPricePerDay),
		Bookings: service.NewBookingService(store, pub, logger, cfg.StrictTransitions),
		Auth:     auth,
		Stats:    service.NewStatsService(store),
	}

	if err := bootstrap(ctx, cfg, store, auth, logger); err != nil {
		return err
	}

	loc, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. The session middleware is mounted by the handler
	// package under /api.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(services, loc, handler.SessionCookie{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
	}, logger)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go purgeSessions(ctx, auth, logger, sessionPurgeInterval)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr, "store", cfg.StoreDriver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown: wait for a signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// bootstrap loads the sample inventory and the bootstrap admin when the
// configuration asks for them.
func bootstrap(ctx context.Context, cfg config.Config, store repo.Store, auth *service.AuthService, log *slog.Logger) error {
	if cfg.SeedSampleData {
		f, err := seed.Sample()
		if err != nil {
			return err
		}
		applied, err := seed.Apply(ctx, store, f)
		if err != nil {
			return err
		}
		if applied {
			log.Info("sample data loaded", "cars", len(f.Cars), "bookings", len(f.Bookings))
		} else {
			log.Info("sample data skipped; store already has cars")
		}
	}

	if cfg.AdminUsername != "" {
		_, created, err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin %q: %w", cfg.AdminUsername, err)
		}
		if created {
			log.Info("admin account created", "username", cfg.AdminUsername)
		}
	}
	return nil
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, auth *service.AuthService, log *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				log.ErrorContext(ctx, "purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}
