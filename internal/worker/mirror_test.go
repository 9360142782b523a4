package worker

import (
	"context"
	"errors"
	"testing"

	"spendbook/internal/amqp"
	"spendbook/internal/core"
	"spendbook/internal/store/memory"
)

func sampleTable(t *testing.T) core.Table {
	t.Helper()
	d, err := core.ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	p, err := core.ParsePrice("1.50")
	if err != nil {
		t.Fatalf("parse price: %v", err)
	}
	q, err := core.ParseQuantity("1", "Liter")
	if err != nil {
		t.Fatalf("parse quantity: %v", err)
	}
	return core.Table{
		{Date: d, Category: "Food", Item: "Milk", Shop: "Shop",
			PricePaid: p, Quantity: q, Unit: "Liter", User: "alice"},
	}
}

type brokenLoader struct{ err error }

func (b brokenLoader) Load(context.Context) (core.Table, error) { return nil, b.err }

func TestSyncOnceCopiesPrimaryIntoMirror(t *testing.T) {
	primary := memory.New(sampleTable(t))
	mirror := memory.New(nil)

	m := NewMirror(primary, mirror)
	if err := m.SyncOnce(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, err := mirror.Load(context.Background())
	if err != nil {
		t.Fatalf("load mirror: %v", err)
	}
	if len(got) != 1 || got[0].Item != "Milk" {
		t.Fatalf("unexpected mirror content: %+v", got)
	}
}

func TestSyncOnceOverwritesStaleMirror(t *testing.T) {
	stale := sampleTable(t)
	stale[0].Item = "Old"
	primary := memory.New(sampleTable(t))
	mirror := memory.New(stale)

	m := NewMirror(primary, mirror)
	if err := m.SyncOnce(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := mirror.Load(context.Background())
	if len(got) != 1 || got[0].Item != "Milk" {
		t.Fatalf("mirror not overwritten: %+v", got)
	}
}

func TestSyncOncePropagatesLoadError(t *testing.T) {
	m := NewMirror(brokenLoader{err: errors.New("backend down")}, memory.New(nil))
	if err := m.SyncOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHandleTableSavedTriggersSync(t *testing.T) {
	primary := memory.New(sampleTable(t))
	mirror := memory.New(nil)

	handler := NewMirror(primary, mirror).HandleTableSaved(context.Background())
	if err := handler(amqp.NewTableSavedMessage("alice", 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := mirror.Load(context.Background())
	if len(got) != 1 {
		t.Fatalf("handler did not sync, mirror has %d rows", len(got))
	}
}

func TestHandleTableSavedReturnsErrorForRequeue(t *testing.T) {
	handler := NewMirror(brokenLoader{err: errors.New("backend down")}, memory.New(nil)).
		HandleTableSaved(context.Background())
	if err := handler(amqp.NewTableSavedMessage("alice", 1)); err == nil {
		t.Fatalf("handler must surface sync errors so the message requeues")
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	m := NewMirror(memory.New(nil), memory.New(nil))
	if _, err := m.Schedule(context.Background(), "not a cron spec"); err != nil {
		return
	}
	t.Fatalf("expected error for invalid spec")
}
