package core

import "testing"

func TestUndoRedoInverse(t *testing.T) {
	h := NewHistory()
	s0 := Table{rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "3.00", "1", "Count")}

	h.Checkpoint(s0)
	s1 := s0.Clone()
	s1 = append(s1, rec(NewDate(2023, 1, 2), "Food", "Bread", "alice", "2.00", "1", "Count"))

	back := h.Undo(s1)
	if !sameRows(back, s0) {
		t.Fatalf("undo did not restore prior state: %+v", back)
	}
	forward := h.Redo(back)
	if !sameRows(forward, s1) {
		t.Fatalf("redo did not restore undone state: %+v", forward)
	}
}

func TestCheckpointClearsRedo(t *testing.T) {
	h := NewHistory()
	s0 := Table{rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "3.00", "1", "Count")}

	h.Checkpoint(s0)
	s1 := append(s0.Clone(), rec(NewDate(2023, 1, 2), "Food", "Bread", "alice", "2.00", "1", "Count"))

	cur := h.Undo(s1) // redo stack now holds s1
	if !h.CanRedo() {
		t.Fatalf("expected redo to be available after undo")
	}

	h.Checkpoint(cur)
	s2 := append(cur.Clone(), rec(NewDate(2023, 1, 3), "Food", "Eggs", "alice", "1.00", "6", "Count"))

	if h.CanRedo() {
		t.Fatalf("checkpoint must clear the redo stack")
	}
	if got := h.Redo(s2); !sameRows(got, s2) {
		t.Fatalf("redo after checkpoint must be a no-op, got %+v", got)
	}
}

func TestUndoRedoUnderflowNoOp(t *testing.T) {
	h := NewHistory()
	s := Table{rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "3.00", "1", "Count")}
	if got := h.Undo(s); !sameRows(got, s) {
		t.Fatalf("undo on empty stack must return current state")
	}
	if got := h.Redo(s); !sameRows(got, s) {
		t.Fatalf("redo on empty stack must return current state")
	}
}

func TestSnapshotsDetachedFromWorkingSet(t *testing.T) {
	h := NewHistory()
	s := Table{rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "3.00", "1", "Count")}
	h.Checkpoint(s)

	// Mutate the working set after the checkpoint.
	s[0].Item = "Changed"

	back := h.Undo(s)
	if back[0].Item != "Milk" {
		t.Fatalf("snapshot shares memory with working set: %+v", back[0])
	}
}

func TestReset(t *testing.T) {
	h := NewHistory()
	h.Checkpoint(Table{})
	h.Reset()
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("reset must drop both stacks")
	}
}
