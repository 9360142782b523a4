package core

import (
	"strings"
	"testing"
)

func sampleTable() Table {
	return Table{
		rec(NewDate(2023, 1, 10), "Food", "Milk", "alice", "3.00", "2", "Count"),
		rec(NewDate(2023, 1, 11), "Food", "Bread", "bob", "2.00", "1", "Count"),
		rec(NewDate(2023, 1, 12), "Transport", "Ticket", "alice", "1.50", "1", "Count"),
		rec(NewDate(2023, 1, 13), "Food", "Cheese", "carol", "5.00", "1", "Count"),
	}
}

// rowMultiset flattens a table into a count-per-row map so order-insensitive
// comparisons are possible.
func rowMultiset(t Table) map[string]int {
	m := map[string]int{}
	for _, r := range t {
		m[strings.Join(r.Row(), "|")]++
	}
	return m
}

func sameRows(a, b Table) bool {
	ma, mb := rowMultiset(a), rowMultiset(b)
	if len(ma) != len(mb) {
		return false
	}
	for k, v := range ma {
		if mb[k] != v {
			return false
		}
	}
	return true
}

func TestPartitionPreservesOrderAndIsolation(t *testing.T) {
	tbl := sampleTable()
	p := Partition(tbl, "alice")
	if len(p) != 2 || p[0].Item != "Milk" || p[1].Item != "Ticket" {
		t.Fatalf("unexpected partition: %+v", p)
	}
	// Mutating the partition must not touch the table.
	p[0].Item = "Changed"
	if tbl[0].Item != "Milk" {
		t.Fatalf("partition aliases the source table")
	}
}

func TestReconcileRoundTripIdentity(t *testing.T) {
	tbl := sampleTable()
	got := Reconcile(tbl, "alice", Partition(tbl, "alice"))
	if !sameRows(got, tbl) {
		t.Fatalf("unedited partition should round-trip: got %+v", got)
	}
}

func TestReconcileReplacesOwnerRows(t *testing.T) {
	tbl := sampleTable()
	edited := Table{
		rec(NewDate(2023, 2, 1), "Food", "Butter", "alice", "4.00", "1", "Count"),
	}
	got := Reconcile(tbl, "alice", edited)

	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.User == "alice" && r.Item != "Butter" {
			t.Fatalf("stale alice row survived: %+v", r)
		}
	}
	// Other users keep their relative order.
	if got[0].User != "bob" || got[1].User != "carol" {
		t.Fatalf("other users' order not preserved: %+v", got)
	}
}

func TestReconcileForcesOwner(t *testing.T) {
	tbl := sampleTable()
	edited := Table{
		rec(NewDate(2023, 2, 1), "Food", "Butter", "mallory", "4.00", "1", "Count"),
	}
	got := Reconcile(tbl, "alice", edited)
	for _, r := range got {
		if r.Item == "Butter" && r.User != "alice" {
			t.Fatalf("edited row kept foreign owner: %+v", r)
		}
	}
}

func TestReconcileEmptyPartitionRemovesUser(t *testing.T) {
	tbl := sampleTable()
	got := Reconcile(tbl, "alice", Table{})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.User == "alice" {
			t.Fatalf("alice row survived empty reconcile: %+v", r)
		}
	}
}

func TestShrinkRatio(t *testing.T) {
	cases := []struct {
		before, after int
		want          float64
	}{
		{10, 10, 0},
		{10, 12, 0},
		{10, 5, 0.5},
		{10, 0, 1},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := ShrinkRatio(tc.before, tc.after); got != tc.want {
			t.Fatalf("ShrinkRatio(%d, %d) = %v, want %v", tc.before, tc.after, got, tc.want)
		}
	}
}
