package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/peptracker/peptracker-backend/api/routes"
	"github.com/peptracker/peptracker-backend/internal/offers"
	"github.com/peptracker/peptracker-backend/internal/stats"
	"github.com/peptracker/peptracker-backend/internal/uploads"
	"github.com/peptracker/peptracker-backend/internal/vendors"
	"github.com/peptracker/peptracker-backend/pkg/config"
	"github.com/peptracker/peptracker-backend/pkg/db"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/metrics"
	"github.com/peptracker/peptracker-backend/pkg/migrate"
	"github.com/peptracker/peptracker-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	offerRepo := offers.NewRepository(dbClient.DB())
	vendorRepo := vendors.NewRepository(dbClient.DB())
	uploadRepo := uploads.NewRepository(dbClient.DB())
	statsRepo := stats.NewRepository(dbClient.DB())

	ingestMetrics := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)
	sampleRing := metrics.NewSampleRing(cfg.Stats.RingSize)

	offerService, err := offers.NewService(offerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}
	vendorService, err := vendors.NewService(vendorRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}
	uploadService, err := uploads.NewService(uploads.Params{
		Repo:    uploadRepo,
		Vendors: vendorRepo,
		Offers:  offerRepo,
		Metrics: ingestMetrics,
		Samples: sampleRing,
		Logger:  logg,
		MaxRows: cfg.Uploads.MaxRows,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}
	statsService, err := stats.NewService(statsRepo, offerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go flushSamples(ctx, logg, sampleRing, cfg.Stats.FlushInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			uploadService,
			offerService,
			vendorService,
			statsService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

// flushSamples periodically drains the in-process batch ring into the log so
// recent ingest activity survives in aggregated form.
func flushSamples(ctx context.Context, logg *logger.Logger, ring *metrics.SampleRing, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			samples := ring.Drain()
			if len(samples) == 0 {
				continue
			}
			var rows, failures int
			for _, sample := range samples {
				rows += sample.RowCount
				failures += sample.FailureCount
			}
			flushCtx := logg.WithFields(ctx, map[string]any{
				"batches":  len(samples),
				"rows":     rows,
				"failures": failures,
			})
			logg.Info(flushCtx, fmt.Sprintf("ingest window: %d batches processed", len(samples)))
		}
	}
}
