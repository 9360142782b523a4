package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"spendbook/internal/core"
	"spendbook/internal/store"
)

// Store persists the table in a local SQLite database. A save replaces the
// whole records table inside one transaction, matching the full-overwrite
// contract of the other backends.
type Store struct {
	db          *sql.DB
	defaultUser string
}

var _ store.Store = (*Store)(nil)

func New(dbPath, defaultUser string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, defaultUser: defaultUser}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns all records in insertion order. Rows that fail to parse are
// skipped with a warning.
func (s *Store) Load(ctx context.Context) (core.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, category, item, shop, price_paid, quantity, quantity_unit, user
		 FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	table := core.Table{}
	for rows.Next() {
		cols := make([]string, 8)
		ptrs := make([]any, 8)
		for i := range cols {
			ptrs[i] = &cols[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := core.RecordFromRow(cols, s.defaultUser)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed stored record", "error", err)
			continue
		}
		table = append(table, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return table, nil
}

// Save deletes and re-inserts every row in a single transaction.
func (s *Store) Save(ctx context.Context, t core.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (date, category, item, shop, price_paid, quantity, quantity_unit, user)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range t {
		row := rec.Row()
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	slog.InfoContext(ctx, "Table saved to SQLite", "rows", len(t))
	return nil
}
