package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aimerfeng/PawPals/internal/cache"
	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/aimerfeng/PawPals/internal/database"
	"github.com/aimerfeng/PawPals/internal/geocode"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/aimerfeng/PawPals/internal/ratelimit"
	"github.com/aimerfeng/PawPals/internal/ratings"
	"github.com/aimerfeng/PawPals/internal/search"
	"github.com/aimerfeng/PawPals/internal/server"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/aimerfeng/PawPals/migrations"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment wins either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(&cfg.Logging, cfg.Server.Env)

	log.Info().
		Str("env", cfg.Server.Env).
		Str("name", cfg.Server.Name).
		Msg("Starting PawPals search API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitoring.Init()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL, migrations.FS, "."); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	db, err := database.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Redis backs the geocode cache and the rate limiter. Both degrade to
	// no-ops without it.
	var redis *cache.Redis
	if cfg.Redis.URL != "" {
		redis, err = cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and rate limiting")
			redis = nil
		} else {
			defer redis.Close()
		}
	}

	var geocoder geocode.Geocoder
	if cfg.Geocoder.AccessToken != "" {
		geocoder = geocode.NewCached(
			geocode.NewMapbox(geocode.OptionsFromConfig(&cfg.Geocoder)),
			redis,
			cfg.Geocoder.CacheTTL,
		)
	} else {
		log.Warn().Msg("No geocoder access token configured, address search disabled")
	}

	svc := search.NewService(store.NewPostgres(db.Pool), geocoder, search.Config{
		EnrichConcurrency:    cfg.Search.EnrichConcurrency,
		DefaultDistanceMiles: cfg.Search.DefaultDistanceMiles,
	})

	var limiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && redis != nil {
		limiter = ratelimit.New(redis, &cfg.RateLimit)
	}

	if cfg.Ratings.RefreshEnabled {
		refresher := ratings.NewRefresher(db.Pool)
		scheduler := ratings.NewScheduler(refresher.RefreshAll, cfg.Ratings.RefreshInterval)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start rating refresh scheduler")
		}
		defer scheduler.Stop()
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort)
	}

	checks := map[string]server.HealthCheck{"database": db.Health}
	if redis != nil {
		checks["redis"] = redis.Health
	}

	srv := server.NewAPIServer(cfg, server.Deps{
		Search:  svc,
		Limiter: limiter,
		Checks:  checks,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("url", cfg.Server.URL).
			Msg("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().
		Int("port", port).
		Msg("Prometheus metrics server listening")

	if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server error")
	}
}
