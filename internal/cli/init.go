package cli

import (
	"context"
	"fmt"
	"io"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

// LoadAndValidateConfig loads configuration from path (Path() when empty)
// and validates it.
func LoadAndValidateConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the CLI logger from cfg and makes it the slog default.
// Diagnostics go to w so command output on stdout stays pipeable.
func SetupLogger(cfg *config.Config, w io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.Log.Level),
		Component: applog.ComponentCLI,
		Format:    cfg.Log.Format,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// OpenBackend opens the configured store and optional publisher.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backendCfg.Type, err)
	}
	return res, nil
}
