// Package history implements a fixed-capacity FIFO window over recent
// entries. When a new entry is appended at capacity, the oldest entry is
// evicted. Insertion order is preserved, so for time-ordered appends the
// window is always chronological, oldest first.
//
// A Window has a single writer and is not safe for concurrent use on its
// own; callers that share one across goroutines guard it with their own
// lock and hand out copies via Snapshot.
package history

import "fmt"

// Window is a bounded FIFO buffer of entries of type T.
type Window[T any] struct {
	capacity int
	entries  []T
}

// NewWindow creates a Window with the given maximum capacity.
func NewWindow[T any](capacity int) (*Window[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", capacity)
	}
	return &Window[T]{
		capacity: capacity,
		entries:  make([]T, 0, capacity),
	}, nil
}

// Append adds an entry to the window, evicting the oldest entry if the
// window is at capacity. The evicted entry is returned when eviction
// occurred.
func (w *Window[T]) Append(entry T) (evicted T, wasEvicted bool) {
	if len(w.entries) == w.capacity {
		evicted = w.entries[0]
		wasEvicted = true
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:len(w.entries)-1]
	}
	w.entries = append(w.entries, entry)
	return evicted, wasEvicted
}

// Len returns the number of entries currently held.
func (w *Window[T]) Len() int {
	return len(w.entries)
}

// Capacity returns the maximum number of entries the window holds.
func (w *Window[T]) Capacity() int {
	return w.capacity
}

// Snapshot returns a copy of the window contents, oldest first. Mutating
// the returned slice does not affect the window.
func (w *Window[T]) Snapshot() []T {
	out := make([]T, len(w.entries))
	copy(out, w.entries)
	return out
}

// Latest returns the most recently appended entry. The second return value
// is false when the window is empty.
func (w *Window[T]) Latest() (T, bool) {
	if len(w.entries) == 0 {
		var zero T
		return zero, false
	}
	return w.entries[len(w.entries)-1], true
}
