package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"aceiro/internal/backend"
	"aceiro/internal/charts"
	"aceiro/internal/cli"
	apphttp "aceiro/internal/http"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	ds, err := cli.LoadDataset(loadCtx, cfg, bcfg, logger)
	cancelLoad()
	if err != nil {
		logger.Error("Failed to load dataset", "error", err, "backend", bcfg.Type.String())
		os.Exit(1)
	}

	staffing, err := cfg.StaffingEntries()
	if err != nil {
		logger.Error("Invalid staffing table", "error", err)
		os.Exit(1)
	}
	if staffing == nil {
		staffing = charts.DefaultStaffing()
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:    ":" + cfg.Port,
		Dataset: ds,
		Env: charts.Env{
			Staffing: staffing,
			Geo: charts.GeoSpec{
				FeatureIDKey: cfg.MapFeatureIDKey,
				Locations:    cfg.MapLocations,
			},
		},
		GeoUpstreamURL:     cfg.GeoJSONURL,
		GeoCacheTTL:        cfg.GeoCacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting aceiro server",
		"port", cfg.Port,
		"backend", bcfg.Type.String(),
		"load_id", ds.LoadID,
		"incidents", len(ds.Incidents))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
