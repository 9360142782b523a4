// Package session owns one user's editing session: the working partition,
// its undo/redo history, and the save cycle that reconciles edits back into
// the shared table. Sessions replace the ambient global state the original
// UI kept between interactions; they are created on login and thrown away on
// logout or user switch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spendbook/internal/cache"
	"spendbook/internal/core"
	"spendbook/internal/store"
)

var (
	ErrNoSession       = errors.New("no session: username is empty")
	ErrIndexOutOfRange = errors.New("record index out of range")
	// ErrPartitionShrunk gates a save whose edited partition lost more rows
	// than the configured ratio allows. Callers retry with force once the
	// user confirms the deletion is intentional.
	ErrPartitionShrunk = errors.New("edited partition shrank past the guard threshold")
)

// SaveEventPublisher announces successful saves; nil disables events.
type SaveEventPublisher interface {
	PublishTableSaved(ctx context.Context, user string, rows int) error
}

// Options tune session behavior.
type Options struct {
	// ShrinkGuardRatio rejects unforced saves whose partition shrank by more
	// than this fraction since session start. Zero guards every shrink off.
	ShrinkGuardRatio float64
	Events           SaveEventPublisher
}

// Session is the editing context for one user.
type Session struct {
	mu sync.Mutex

	user  string
	store store.Store
	opts  Options

	working   core.Table
	startSize int
	hist      *core.History

	summaries *cache.LRU[core.Summary]
	trends    *cache.LRU[[]core.ItemTrend]
}

// New creates a session for user. The username is trimmed; an empty result
// means no session can exist (ErrNoSession).
func New(st store.Store, user string, opts Options) (*Session, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, ErrNoSession
	}
	return &Session{
		user:      user,
		store:     st,
		opts:      opts,
		hist:      core.NewHistory(),
		summaries: cache.New[core.Summary](4, 5*time.Minute),
		trends:    cache.New[[]core.ItemTrend](4, 5*time.Minute),
	}, nil
}

// Start loads the table and derives the working partition. A failing backend
// degrades to an empty working set with a warning; it never kills the
// session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	full, err := s.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Backend load failed, starting with empty working set",
			"user", s.user, "error", err)
		full = core.Table{}
	}

	s.working = core.Partition(full, s.user)
	s.startSize = len(s.working)
	s.hist.Reset()
	s.invalidate()

	slog.InfoContext(ctx, "Session started", "user", s.user, "rows", len(s.working))
	return nil
}

func (s *Session) User() string {
	return s.user
}

// Records returns a copy of the working partition.
func (s *Session) Records() core.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Add checkpoints and appends a record to the working set. The record is
// normalized and its owner forced to the session user.
func (s *Session) Add(rec core.Record) error {
	rec = rec.Normalize()
	rec.User = s.user
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.Checkpoint(s.working)
	s.working = append(s.working, rec)
	s.invalidate()
	return nil
}

// UpdateAt checkpoints and replaces the record at index i.
func (s *Session) UpdateAt(i int, rec core.Record) error {
	rec = rec.Normalize()
	rec.User = s.user
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.working) {
		return ErrIndexOutOfRange
	}
	s.hist.Checkpoint(s.working)
	s.working = s.working.Clone()
	s.working[i] = rec
	s.invalidate()
	return nil
}

// DeleteAt checkpoints and removes the record at index i.
func (s *Session) DeleteAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.working) {
		return ErrIndexOutOfRange
	}
	s.hist.Checkpoint(s.working)
	next := make(core.Table, 0, len(s.working)-1)
	next = append(next, s.working[:i]...)
	next = append(next, s.working[i+1:]...)
	s.working = next
	s.invalidate()
	return nil
}

// ReplaceAll checkpoints and swaps the whole working set, the bulk edit the
// table editor produces.
func (s *Session) ReplaceAll(recs core.Table) error {
	normalized := make(core.Table, 0, len(recs))
	for _, rec := range recs {
		rec = rec.Normalize()
		rec.User = s.user
		if err := rec.Validate(); err != nil {
			return err
		}
		normalized = append(normalized, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.Checkpoint(s.working)
	s.working = normalized
	s.invalidate()
	return nil
}

// Undo steps the working set back one checkpoint; a no-op when there is
// nothing to undo.
func (s *Session) Undo() core.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = s.hist.Undo(s.working)
	s.invalidate()
	return s.working.Clone()
}

// Redo steps the working set forward again; a no-op when there is nothing
// to redo.
func (s *Session) Redo() core.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = s.hist.Redo(s.working)
	s.invalidate()
	return s.working.Clone()
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Save reconciles the working partition into a freshly loaded table and
// persists the result. The reload keeps other users' latest rows; if it
// fails the save is aborted rather than risking an overwrite built from
// stale data. A partition that shrank past the guard ratio needs force.
func (s *Session) Save(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratio := core.ShrinkRatio(s.startSize, len(s.working))
	if !force && ratio > s.opts.ShrinkGuardRatio {
		slog.WarnContext(ctx, "Save blocked by shrink guard",
			"user", s.user, "before", s.startSize, "after", len(s.working), "ratio", ratio)
		return ErrPartitionShrunk
	}

	full, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload table before save: %w", err)
	}

	merged := core.Reconcile(full, s.user, s.working)
	if err := s.store.Save(ctx, merged); err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	s.startSize = len(s.working)

	slog.InfoContext(ctx, "Table saved", "user", s.user, "user_rows", len(s.working), "total_rows", len(merged))

	if s.opts.Events != nil {
		if err := s.opts.Events.PublishTableSaved(ctx, s.user, len(merged)); err != nil {
			// The save itself succeeded; a lost event only delays the mirror.
			slog.ErrorContext(ctx, "Failed to publish save event", "user", s.user, "error", err)
		}
	}
	return nil
}

// Summary returns the aggregation rollups for the working partition, cached
// until the next mutation.
func (s *Session) Summary() core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.summaries.Get(s.user); ok {
		return cached
	}
	sum := core.BuildSummary(s.working)
	s.summaries.Set(s.user, sum)
	return sum
}

// Trends returns the per-item price-per-unit series, cached until the next
// mutation.
func (s *Session) Trends() []core.ItemTrend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.trends.Get(s.user); ok {
		return cached
	}
	tr := core.PriceTrends(s.working)
	s.trends.Set(s.user, tr)
	return tr
}

// Units returns the unit choices for the working set.
func (s *Session) Units() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Units()
}

// Categories returns the categories present in the working set.
func (s *Session) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Categories()
}

// invalidate drops cached aggregates. Callers hold s.mu.
func (s *Session) invalidate() {
	s.summaries.Delete(s.user)
	s.trends.Delete(s.user)
}
