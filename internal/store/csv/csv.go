// Package csv persists the table as a local flat file. It is the fallback
// backend when Google Sheets is unavailable.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendbook/internal/core"
	"spendbook/internal/store"
)

type Store struct {
	path        string
	defaultUser string
}

var _ store.Store = (*Store)(nil)

func New(path, defaultUser string) *Store {
	return &Store{path: path, defaultUser: defaultUser}
}

// Load reads all records from the file. A missing file yields an empty
// table; rows that fail to parse are skipped with a warning so one bad line
// never blocks a session.
func (s *Store) Load(ctx context.Context) (core.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Table{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	table := make(core.Table, 0, len(rows))
	for i, row := range rows {
		if i == 0 && core.IsHeaderRow(row) {
			continue
		}
		rec, err := core.RecordFromRow(row, s.defaultUser)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed row", "file", s.path, "line", i+1, "error", err)
			continue
		}
		table = append(table, rec)
	}
	return table, nil
}

// Save rewrites the whole file, header first.
func (s *Store) Save(_ context.Context, t core.Table) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(core.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range t {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return f.Close()
}
