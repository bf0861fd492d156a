// Package history keeps a bounded back/forward log of visited paths.
package history

// DefaultCapacity is the number of paths kept before the oldest is evicted.
const DefaultCapacity = 100

// History is a linear log of paths with a cursor. The cursor is tracked as
// the number of entries after it, so entries[len-1-forward] is current.
//
// A History is not safe for concurrent use; it belongs to whoever drives
// navigation.
type History struct {
	entries  []string
	forward  int
	capacity int
}

func New(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

func NewDefault() *History {
	return New(DefaultCapacity)
}

// Advance records a visit to path. Forward history beyond the cursor is
// dropped, and the oldest entry is evicted once the log exceeds capacity.
func (h *History) Advance(path string) {
	h.entries = append(h.entries[:len(h.entries)-h.forward], path)
	h.forward = 0
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// Back moves the cursor one step toward the oldest entry and returns it. ok
// is false when there is nothing further back; the cursor is unchanged then.
func (h *History) Back() (path string, ok bool) {
	if !h.CanBack() {
		return "", false
	}
	h.forward++
	return h.entries[h.cursor()], true
}

// Forward is the inverse of Back.
func (h *History) Forward() (path string, ok bool) {
	if !h.CanForward() {
		return "", false
	}
	h.forward--
	return h.entries[h.cursor()], true
}

func (h *History) Current() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[h.cursor()], true
}

func (h *History) CanBack() bool {
	return h.back() > 0
}

func (h *History) CanForward() bool {
	return h.forward > 0
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Capacity() int {
	return h.capacity
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) back() int {
	if len(h.entries) == 0 {
		return 0
	}
	return len(h.entries) - 1 - h.forward
}

func (h *History) cursor() int {
	return len(h.entries) - 1 - h.forward
}
