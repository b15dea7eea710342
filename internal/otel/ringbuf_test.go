package otel

import (
	"sync"
	"testing"
)

func pushN(r *RingBuffer, n int) {
	for i := 0; i < n; i++ {
		r.Push(Event{Kind: KindKeyPress, Count: i})
	}
}

func counts(evs []Event) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = e.Count
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingSnapshotOrder(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		pushed int
		want   []int
	}{
		{"empty", 4, 0, nil},
		{"partial", 4, 3, []int{0, 1, 2}},
		{"exactly full", 4, 4, []int{0, 1, 2, 3}},
		{"wrapped", 4, 6, []int{2, 3, 4, 5}},
		{"wrapped twice", 3, 7, []int{4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			pushN(r, tt.pushed)
			got := counts(r.Snapshot())
			if !equalInts(got, tt.want) {
				t.Errorf("Snapshot = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRingLast(t *testing.T) {
	r := NewRingBuffer(4)
	pushN(r, 6)

	if got := counts(r.Last(2)); !equalInts(got, []int{4, 5}) {
		t.Errorf("Last(2) = %v", got)
	}
	if got := counts(r.Last(100)); !equalInts(got, []int{2, 3, 4, 5}) {
		t.Errorf("Last(100) = %v", got)
	}
	if r.Last(0) != nil || r.Last(-1) != nil {
		t.Error("Last(n<=0) should be nil")
	}
}

func TestRingLenCapStats(t *testing.T) {
	r := NewRingBuffer(0)
	if r.Cap() != DefaultRingSize {
		t.Errorf("Cap = %d, want %d", r.Cap(), DefaultRingSize)
	}

	r = NewRingBuffer(3)
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchError})
	r.Push(Event{Kind: KindSearchComplete}) // evicts one search.start

	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	stats := r.Stats()
	if stats[KindSearchStart] != 1 || stats[KindSearchError] != 1 || stats[KindSearchComplete] != 1 {
		t.Errorf("Stats = %v", stats)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"k": "v"}
	r.Push(Event{Kind: KindKeyPress, Extra: extra})
	extra["k"] = "changed"

	if got := r.Snapshot()[0].Extra["k"]; got != "v" {
		t.Errorf("Extra aliased: %v", got)
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			pushN(r, 200)
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = r.Snapshot()
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len = %d, want 64", r.Len())
	}
}
