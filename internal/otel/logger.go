package otel

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// queueSize bounds the async write queue. Emit drops rather than blocks
// once it is full, so the UI goroutine never waits on disk.
const queueSize = 2048

type queued struct {
	line []byte
	ev   Event
}

// Logger writes events as JSONL from a background goroutine.
//
// A nil *Logger is valid: every method is a no-op, which lets components
// take an optional logger without nil checks at each call site.
type Logger struct {
	sessionID string
	w         io.Writer
	queue     chan queued
	done      chan struct{}

	ringMu sync.Mutex
	ring   *RingBuffer

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewLogger starts a Logger writing to w. Call Close to flush.
func NewLogger(w io.Writer) *Logger {
	var sid [8]byte
	_, _ = rand.Read(sid[:])

	l := &Logger{
		sessionID: fmt.Sprintf("%x", sid[:]),
		w:         w,
		queue:     make(chan queued, queueSize),
		done:      make(chan struct{}),
	}
	go l.drain()
	return l
}

// NewNullLogger returns a Logger that discards output but still feeds an
// attached ring buffer.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) drain() {
	defer close(l.done)
	for q := range l.queue {
		if _, err := l.w.Write(q.line); err != nil {
			l.dropped.Add(1)
		}
		l.ringMu.Lock()
		ring := l.ring
		l.ringMu.Unlock()
		if ring != nil {
			ring.Push(q.ev)
		}
	}
}

// SessionID identifies this process run in every emitted line.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

// Emit queues e. Time defaults to now. Never blocks.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	// Close may race with a concurrent Emit between the flag check and the
	// send; the recovered panic counts as a drop.
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()
	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID

	line, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	line = append(line, '\n')

	select {
	case l.queue <- queued{line: line, ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info event.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn event.
func (l *Logger) Warn(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error event. A nil err is logged with an empty message.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	var s string
	if err != nil {
		s = err.Error()
	}
	l.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: s})
}

// SetRingBuffer mirrors every written event into r.
func (l *Logger) SetRingBuffer(r *RingBuffer) {
	if l == nil {
		return
	}
	l.ringMu.Lock()
	l.ring = r
	l.ringMu.Unlock()
}

// Dropped returns how many events were lost to a full queue, encoding or
// write errors, or emits after Close.
func (l *Logger) Dropped() uint64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Close drains pending events and stops the writer. Idempotent.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.queue)
		<-l.done
		if d := l.dropped.Load(); d > 0 {
			fmt.Fprintf(os.Stderr, "cinescope: %d events dropped during session %s\n", d, l.sessionID)
		}
	})
}
