package core

// History keeps the linear undo/redo stacks for one editing session. Both
// stacks hold snapshots of the working partition; they live in memory only
// and are reset when the session switches users.
type History struct {
	undo []Table
	redo []Table
}

func NewHistory() *History {
	return &History{}
}

// Checkpoint pushes a snapshot of current onto the undo stack and discards
// any redo history. Call it immediately before applying a mutation.
func (h *History) Checkpoint(current Table) {
	h.undo = append(h.undo, current.Clone())
	h.redo = nil
}

// Undo returns the previous snapshot, moving current onto the redo stack.
// With an empty undo stack it is a no-op and returns current unchanged.
func (h *History) Undo(current Table) Table {
	if len(h.undo) == 0 {
		return current
	}
	h.redo = append(h.redo, current.Clone())
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return top
}

// Redo is the inverse of Undo. With an empty redo stack it is a no-op and
// returns current unchanged.
func (h *History) Redo(current Table) Table {
	if len(h.redo) == 0 {
		return current
	}
	h.undo = append(h.undo, current.Clone())
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top
}

func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
