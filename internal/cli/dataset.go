package cli

import (
	"context"
	"fmt"

	"aceiro/internal/backend"
	"aceiro/internal/config"
	"aceiro/internal/core"
	applog "aceiro/internal/log"
	"aceiro/internal/services"
)

// LoadDataset opens the configured source, loads and validates every table
// and closes the source again. The returned dataset is immutable.
func LoadDataset(ctx context.Context, cfg *config.Config, bcfg backend.Config, logger *applog.Logger) (*core.Dataset, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	src, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close data source", "backend", bcfg.Type.String(), "error", err)
		}
	}()

	loader := services.NewDatasetLoader(src.Reader, loc, logger.WithComponent(applog.ComponentLoader))
	return loader.Load(ctx)
}
