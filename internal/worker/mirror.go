// Package worker copies the primary table into a mirror backend, both on
// save events from the broker and on a cron schedule as a catch-up for
// missed events.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"spendbook/internal/amqp"
	"spendbook/internal/store"
)

// Mirror replicates the primary store into a secondary one. The mirror is a
// full overwrite every time, matching the save model of the stores.
type Mirror struct {
	primary store.TableLoader
	mirror  store.TableSaver
}

func NewMirror(primary store.TableLoader, mirror store.TableSaver) *Mirror {
	return &Mirror{primary: primary, mirror: mirror}
}

// SyncOnce copies the current primary table into the mirror.
func (m *Mirror) SyncOnce(ctx context.Context) error {
	start := time.Now()

	table, err := m.primary.Load(ctx)
	if err != nil {
		return fmt.Errorf("load primary table: %w", err)
	}
	if err := m.mirror.Save(ctx, table); err != nil {
		return fmt.Errorf("save mirror table: %w", err)
	}

	slog.InfoContext(ctx, "Mirror sync completed",
		"rows", len(table),
		"duration", time.Since(start))
	return nil
}

// HandleTableSaved adapts SyncOnce into a broker message handler. A returned
// error requeues the message, so transient backend failures retry.
func (m *Mirror) HandleTableSaved(ctx context.Context) func(*amqp.TableSavedMessage) error {
	return func(msg *amqp.TableSavedMessage) error {
		slog.InfoContext(ctx, "Save event received",
			"user", msg.User,
			"rows", msg.Rows,
			"saved_at", msg.SavedAt)
		return m.SyncOnce(ctx)
	}
}

// Schedule registers a periodic full sync on the given cron spec and returns
// the started scheduler. Failures inside a run are logged, not fatal; the
// next tick tries again.
func (m *Mirror) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := m.SyncOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled mirror sync failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register mirror schedule %q: %w", spec, err)
	}
	c.Start()
	slog.InfoContext(ctx, "Mirror schedule registered", "spec", spec)
	return c, nil
}
