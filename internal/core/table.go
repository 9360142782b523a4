package core

// Clone returns a deep copy of the table. Record fields are value types, so
// copying the slice is enough to detach snapshots from the working set.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Partition returns the rows owned by user, preserving table order. The
// returned slice is a copy; mutating it never touches the source table.
func Partition(t Table, user string) Table {
	out := make(Table, 0)
	for _, r := range t {
		if r.User == user {
			out = append(out, r)
		}
	}
	return out
}

// Reconcile merges an edited partition back into the full table: every row
// owned by user is dropped, then the edited rows are appended with their
// User field forced to user. Other users' rows keep their relative order.
// Rows the user deleted in their view vanish from the result, so callers
// should gate large shrinks behind ShrinkRatio before persisting.
func Reconcile(full Table, user string, edited Table) Table {
	out := make(Table, 0, len(full))
	for _, r := range full {
		if r.User != user {
			out = append(out, r)
		}
	}
	for _, r := range edited {
		r.User = user
		out = append(out, r)
	}
	return out
}

// ShrinkRatio reports the fraction of rows lost between a partition's size at
// session start and at save time. It is 0 when nothing shrank or when the
// partition started empty.
func ShrinkRatio(before, after int) float64 {
	if before <= 0 || after >= before {
		return 0
	}
	return float64(before-after) / float64(before)
}
