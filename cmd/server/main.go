package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/api"
	"github.com/scrumsquad/feedback-board/internal/api/handler"
	"github.com/scrumsquad/feedback-board/internal/api/metrics"
	"github.com/scrumsquad/feedback-board/internal/api/middleware"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
	"github.com/scrumsquad/feedback-board/internal/core/service"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/db/jsonfile"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/db/memory"
	mongostore "github.com/scrumsquad/feedback-board/internal/infrastructure/db/mongo"
	redisstore "github.com/scrumsquad/feedback-board/internal/infrastructure/db/redis"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/db/sqlstore"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/queue"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/repository"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/ws"
	"github.com/scrumsquad/feedback-board/internal/pkg/config"
	"github.com/scrumsquad/feedback-board/pkg/logger"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	// A missing .env is fine; production sets the environment directly.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "feedback-board",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exiting")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	store = metrics.InstrumentStore(store)

	checks := map[string]handler.Check{"store": api.StoreCheck(store)}
	revocations, closeRevocations, err := openRevocations(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeRevocations()

	// --- Event fan-out ---
	hub := ws.NewHub(logger.Component("ws"))
	go hub.Run(ctx)
	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, hub, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(repository.NewUserRepository(store), logger.Component("auth"))
	sessionService := service.NewSessionService(cfg.JWTSecret, cfg.Session.TTL, revocations, logger.Component("session"))
	feedbackService := service.NewFeedbackService(
		repository.NewPostRepository(store),
		repository.NewUpdateRepository(store),
		dispatcher,
		logger.Component("feedback"),
	)

	if err := authService.Seed(ctx, seedUsers(cfg)); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	limiter := middleware.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	go limiter.RunSweeper(ctx, sweepInterval)

	proxies, err := cfg.HTTP.TrustedProxyNets()
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		Auth:           authService,
		Sessions:       sessionService,
		Feedback:       feedbackService,
		Logger:         logger.Component("http"),
		RateLimiter:    limiter,
		Websocket:      hub.ServeWS,
		Checks:         checks,
		SessionCookie:  cfg.Session.Cookie,
		SecureCookie:   !cfg.IsDevelopment(),
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: proxies,
		Metrics:        true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured persistence driver.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.NewStore(), noop, nil
	case "file":
		store, err := jsonfile.NewStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return store, noop, nil
	case "sql":
		store, err := sqlstore.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open sql store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "mongo":
		store, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = store.Close(disconnectCtx)
		}
		return store, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// openRevocations picks Redis when REDIS_ADDR is set and registers its
// readiness check.
func openRevocations(ctx context.Context, cfg *config.Config, log zerolog.Logger, checks map[string]handler.Check) (ports.RevocationList, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, keeping session revocations in memory")
		return memory.NewRevocationList(), func() {}, nil
	}
	list, err := redisstore.Open(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, nil, err
	}
	checks["redis"] = list.Ping
	return list, func() { _ = list.Close() }, nil
}

func seedUsers(cfg *config.Config) []ports.SeedUser {
	var seeds []ports.SeedUser
	if cfg.Seed.DemoUsers {
		seeds = append(seeds,
			ports.SeedUser{Username: "employee1", Password: "password123", DisplayName: "Employee One", Role: domain.RoleUser},
			ports.SeedUser{Username: "alice", Password: "alicepass", DisplayName: "Alice Example", Role: domain.RoleUser},
		)
	}
	if cfg.Seed.AdminUsername != "" && cfg.Seed.AdminPassword != "" {
		seeds = append(seeds, ports.SeedUser{
			Username: cfg.Seed.AdminUsername,
			Password: cfg.Seed.AdminPassword,
			Role:     domain.RoleAdmin,
		})
	}
	return seeds
}
