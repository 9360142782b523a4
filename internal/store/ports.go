package store

import (
	"context"

	"spendbook/internal/core"
)

// Ports for the persistence adapters. A save replaces the entire backend
// content, header included; there are no partial writes.
type (
	TableLoader interface {
		// Load returns all records from the backend. An empty or missing
		// backend yields an empty table, not an error.
		Load(ctx context.Context) (core.Table, error)
	}

	TableSaver interface {
		// Save overwrites the backend with the given table's rows.
		Save(ctx context.Context, t core.Table) error
	}

	Store interface {
		TableLoader
		TableSaver
	}
)
