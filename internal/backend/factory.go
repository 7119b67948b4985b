package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when an AMQP URL is set,
// connects the posting publisher. A broker that cannot be reached is logged
// and skipped: postings are optional, the ledger is not.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	publisher := f.createPublisher(ctx, config)

	return &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			var errs []error
			if publisher != nil {
				errs = append(errs, publisher.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (storage.Store, error) {
	if dir := filepath.Dir(config.SQLiteDBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data directory: %w", core.ErrStoreUnavailable, err)
		}
	}

	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize SQLite repository: %w", core.ErrStoreUnavailable, err)
	}

	version, _, err := sqlite.SchemaVersion(config.SQLiteDBPath)
	if err != nil {
		f.logger.Warn("Could not read schema version", applog.FieldDBPath, config.SQLiteDBPath, applog.FieldError, err)
	}
	f.logger.Debug("Initialized SQLite backend",
		applog.FieldDBPath, config.SQLiteDBPath,
		"schema_version", version)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) storage.Store {
	var store *memory.Store
	if config.DataDirectory == "" {
		store = memory.New(nil)
	} else {
		store = memory.NewFromFiles(config.DataDirectory)
	}

	f.logger.Debug("Initialized memory backend", "data_directory", config.DataDirectory)
	return store
}

func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without posting events",
			applog.FieldError, err)
		return nil
	}

	f.logger.Debug("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
