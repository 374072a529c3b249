package app

import (
	"context"
	"countryrates/internal/adapters"
	"countryrates/internal/adapters/cache"
	"countryrates/internal/adapters/httpclient"
	"countryrates/internal/adapters/postgres"
	"countryrates/internal/adapters/render"
	"countryrates/internal/api"
	"countryrates/internal/config"
	"countryrates/internal/country"
	"countryrates/internal/country/handler"
	"countryrates/internal/metrics"
	"countryrates/internal/platform/db"
	httpserver "countryrates/internal/platform/http"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and optional scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	if err = db.Migrate(startupCtx, pool); err != nil {
		logrus.WithError(err).Error("Failed to apply migrations")
		return err
	}
	logrus.Info("✅ Migrations applied")

	// Base HTTP client, shared by both upstream APIs
	baseHTTPClient := &http.Client{Timeout: time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second}

	// External clients
	countriesClient := httpclient.NewCountriesClient(baseHTTPClient, appCfg.CountriesAPI.URL)
	ratesClient := httpclient.NewExchangeRateClient(baseHTTPClient, appCfg.ExchangeRateAPI.URL)

	// Repositories and cache
	countryRepo := postgres.NewCountryRepository(pool)
	queryCache, closeCache, err := newCache(startupCtx, appCfg.Cache)
	if err != nil {
		logrus.WithError(err).Error("Failed to create query cache")
		return err
	}
	defer closeCache()
	logrus.Infof("✅ Query cache ready (driver=%s)", appCfg.Cache.Driver)

	// Metrics
	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Services
	renderer := render.NewSummaryRenderer(appCfg.Render.ImagePath)
	refresher := country.NewRefresher(
		countriesClient,
		ratesClient,
		countryRepo,
		queryCache,
		renderer,
		country.NewRandomMultiplier(appCfg.GDP.Seed),
		country.WithObserver(appMetrics),
	)
	countryService := country.NewService(countryRepo, queryCache)
	sortValidator := country.NewSortValidator()

	if appCfg.Scheduler.Enabled {
		scheduler := country.NewScheduler(refresher, time.Duration(appCfg.Scheduler.IntervalSec)*time.Second)
		// Ensure scheduler stops before DB pool closes
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := scheduler.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	// Handlers and router
	countryHandler := handler.NewCountryHandler(countryService, refresher, sortValidator, renderer.Path())
	router := api.NewRouter(countryHandler, appMetrics, promhttp.Handler())

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// newCache builds the query cache selected by cfg.Driver and returns its release func.
func newCache(ctx context.Context, cfg config.Cache) (adapters.Cache, func(), error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	switch cfg.Driver {
	case config.CacheDriverRedis:
		c := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, ttl)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case config.CacheDriverNone:
		return cache.Noop{}, func() {}, nil
	default:
		c, err := cache.NewQueryCache(max(cfg.MaxItems, 1), ttl)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
}
