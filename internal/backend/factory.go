package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kasir/internal/storage/csvstore"
	"kasir/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(config Config) (*Result, error) {
	if config.DataDir == "" {
		return nil, fmt.Errorf("csv backend requires a data directory")
	}
	store := csvstore.New(config.DataDir)

	f.logger.Info("Initialized CSV ledger backend", "data_dir", config.DataDir)
	return &Result{
		Store:   store,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite ledger backend", "db_path", config.SQLiteDBPath)
	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}
