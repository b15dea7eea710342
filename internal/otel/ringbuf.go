package otel

import "sync"

// DefaultRingSize is the capacity used when NewRingBuffer gets a size <= 0.
const DefaultRingSize = 512

// RingBuffer keeps the last N events. Safe for concurrent use.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int  // slot the next Push writes
	full   bool // every slot holds an event
}

// NewRingBuffer creates a ring buffer holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e, evicting the oldest event when full. Extra is copied so
// callers may keep mutating their map.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		cp := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			cp[k] = v
		}
		e.Extra = cp
	}

	r.mu.Lock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Snapshot returns all buffered events, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ordered()
}

// Last returns up to n of the newest events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.ordered()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// ordered copies events in chronological order. Caller holds r.mu.
func (r *RingBuffer) ordered() []Event {
	if !r.full {
		if r.next == 0 {
			return nil
		}
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.events)
	}
	return r.next
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.events)
}

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	n := r.next
	if r.full {
		n = len(r.events)
	}
	for i := 0; i < n; i++ {
		counts[r.events[i].Kind]++
	}
	return counts
}
