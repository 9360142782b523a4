package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendbook/internal/store"
	csvstore "spendbook/internal/store/csv"
	gstore "spendbook/internal/store/google"
	memstore "spendbook/internal/store/memory"
	sqlitestore "spendbook/internal/store/sqlite"
)

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   store.Store
	Type    BackendType
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore builds the configured backend. A sheets backend that fails to
// initialize (bad credentials, unreachable API) falls back to the CSV file
// when one is configured, so a broken spreadsheet never kills a session.
func (f *Factory) CreateStore(ctx context.Context, cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SheetsBackend:
		cli, err := gstore.New(ctx, gstore.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			DefaultUser:        cfg.DefaultUser,
		})
		if err != nil {
			if cfg.CSVPath != "" {
				f.logger.Warn("Google Sheets unavailable, falling back to local CSV",
					"error", err, "csv_path", cfg.CSVPath)
				return &Result{
					Store: csvstore.New(cfg.CSVPath, cfg.DefaultUser),
					Type:  CSVBackend,
				}, nil
			}
			return nil, fmt.Errorf("initialize Google Sheets store: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", cfg.GoogleSheetName)
		return &Result{Store: cli, Type: SheetsBackend}, nil

	case CSVBackend:
		f.logger.Info("Initialized CSV backend", "path", cfg.CSVPath)
		return &Result{Store: csvstore.New(cfg.CSVPath, cfg.DefaultUser), Type: CSVBackend}, nil

	case SQLiteBackend:
		repo, err := sqlitestore.New(cfg.SQLiteDBPath, cfg.DefaultUser)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Type: SQLiteBackend, Cleanup: repo.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: memstore.New(nil), Type: MemoryBackend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
