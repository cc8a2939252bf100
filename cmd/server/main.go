package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"trip-scheduler-service/internal/adapters/cache"
	"trip-scheduler-service/internal/adapters/distance"
	"trip-scheduler-service/internal/adapters/repositories"
	"trip-scheduler-service/internal/api"
	"trip-scheduler-service/internal/config"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/platform/db"
	"trip-scheduler-service/internal/ports"
	"trip-scheduler-service/internal/services"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Postgres, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	sqlite, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer sqlite.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, sqlite, cfg.SeedPath); err != nil {
		return err
	}

	distanceCache, closeCache := newDistanceCache(ctx, cfg, sqlite)
	defer closeCache()
	geocodeCache := cache.NewSqliteGeocodeCache(sqlite)

	var provider ports.DistanceProvider
	var geocoder ports.Geocoder
	if key := strings.TrimSpace(cfg.ORSAPIKey); key != "" {
		ors, err := distance.NewORSDistanceProvider(key, distance.ORSOptions{
			BaseURL:           cfg.ORSBaseURL,
			Profile:           cfg.ORSProfile,
			RequestsPerSecond: cfg.ORSRequestsPerSecond,
			GeocodeCountry:    cfg.ORSGeocodeCountry,
		}, distanceCache, geocodeCache)
		if err != nil {
			return err
		}
		provider, geocoder = ors, ors
	} else {
		log.Println("ORS_API_KEY not set: travel times use straight-line estimates")
	}

	schedules, closeStore, err := newScheduleStore(ctx, cfg, sqlite)
	if err != nil {
		return err
	}
	defer closeStore()

	opts, err := builderOptions(cfg)
	if err != nil {
		return err
	}

	catalog := repositories.NewSqliteWaypointRepository(sqlite)
	planner := services.NewTripPlanner(
		repositories.NewSqliteTripRepository(sqlite),
		catalog,
		schedules,
		services.NewScheduleBuilder(opts, provider),
		geocoder,
	)
	router := api.NewRouter(planner, catalog, cfg.Origins())

	// Timeouts are tuned for cold-cache planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file %q not found, skipping", seedPath)
		return nil
	}

	res, err := repositories.SeedFromJSON(ctx, conn, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("seeded locations=%d trips=%d skipped=%d", res.Locations, res.Trips, res.Skipped)

	return nil
}

// newDistanceCache prefers Redis when configured so instances share lookups.
func newDistanceCache(ctx context.Context, cfg config.Config, conn *sql.DB) (ports.DistanceCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewSqliteDistanceCache(conn, cfg.DistanceCacheTTL), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable addr=%s err=%v; using sqlite distance cache", cfg.RedisAddr, err)
		_ = rdb.Close()
		return cache.NewSqliteDistanceCache(conn, cfg.DistanceCacheTTL), func() {}
	}

	return cache.NewRedisDistanceCache(rdb, cfg.DistanceCacheTTL), func() { _ = rdb.Close() }
}

func newScheduleStore(ctx context.Context, cfg config.Config, conn *sql.DB) (ports.ScheduleStore, func(), error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return repositories.NewSqliteScheduleStore(conn), func() {}, nil
	}

	pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := repositories.NewPostgresScheduleStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, pool.Close, nil
}

func builderOptions(cfg config.Config) (services.BuilderOptions, error) {
	opts := services.DefaultBuilderOptions()
	opts.SpeedKmh = cfg.AverageSpeedKmh
	opts.Pack.MinTravelMinutes = cfg.MinTravelMinutes
	opts.Pack.MinSlackMinutes = cfg.MinSlackMinutes
	opts.Pack.LunchMinutes = cfg.LunchMinutes
	if cfg.LookupTimeout > 0 {
		opts.LookupTimeout = cfg.LookupTimeout
	}

	if s := strings.TrimSpace(cfg.LunchStart); s != "" {
		c, err := domain.ParseClock(s)
		if err != nil {
			return opts, fmt.Errorf("LUNCH_START: %w", err)
		}
		opts.Pack.LunchStart = c
	} else {
		opts.Pack.LunchMinutes = 0
	}

	return opts, nil
}
