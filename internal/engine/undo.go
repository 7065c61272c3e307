package engine

// DefaultUndoDepth bounds rewind history. Rewinding more than a handful of
// steps has no product value, so older entries are silently discarded.
const DefaultUndoDepth = 5

// UndoStack is a bounded LIFO of prior cursor positions. Pushing beyond
// capacity evicts the oldest entry.
type UndoStack struct {
	entries  []int
	capacity int
}

func NewUndoStack(capacity int) *UndoStack {
	if capacity <= 0 {
		capacity = DefaultUndoDepth
	}
	return &UndoStack{capacity: capacity}
}

// Push records a cursor position, evicting the oldest entry at capacity.
func (u *UndoStack) Push(index int) {
	if len(u.entries) == u.capacity {
		copy(u.entries, u.entries[1:])
		u.entries = u.entries[:len(u.entries)-1]
	}
	u.entries = append(u.entries, index)
}

// Pop removes and returns the most recent position.
func (u *UndoStack) Pop() (int, bool) {
	if len(u.entries) == 0 {
		return 0, false
	}
	idx := u.entries[len(u.entries)-1]
	u.entries = u.entries[:len(u.entries)-1]
	return idx, true
}

func (u *UndoStack) Len() int { return len(u.entries) }

// Clear drops all history. Used when the underlying candidate set changes
// and prior positions become meaningless.
func (u *UndoStack) Clear() {
	u.entries = u.entries[:0]
}

// Entries returns the recorded positions oldest-first.
func (u *UndoStack) Entries() []int {
	out := make([]int, len(u.entries))
	copy(out, u.entries)
	return out
}
