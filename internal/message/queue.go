package message

import (
	"sync"
	"time"
)

// Message is one library diagnostic: a severity, the component that raised
// it, free text, and when it happened.
type Message struct {
	Severity Severity
	Origin   string
	Text     string
	When     time.Time
}

// Queue is the single mutex-guarded message queue described in this:
// readers drain in batches, writers from any goroutine may enqueue.
//
// A Queue is created with internal/message.New and attached with
// internal/logs.Attach; every logs call then also enqueues on it.
type Queue struct {
	mu       sync.Mutex
	messages []Message
	abortOn  Severity
	aborted  bool
	highest  Severity
}

// New creates a Queue whose abort threshold is abortOn: Enqueue of a message
// at or above that severity flips Aborted() to true // "abort_on" threshold.
func New(abortOn Severity) *Queue {
	return &Queue{abortOn: abortOn}
}

// Enqueue appends a message and, if its severity reaches the abort
// threshold, marks the queue aborted.
func (q *Queue) Enqueue(sev Severity, origin, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, Message{Severity: sev, Origin: origin, Text: text, When: time.Now()})
	if sev >= q.abortOn {
		q.aborted = true
	}
	if sev > q.highest {
		q.highest = sev
	}
}

// Drain removes and returns every message currently queued, in FIFO order.
// Safe to call from a poller while other goroutines continue to Enqueue.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return nil
	}
	out := q.messages
	q.messages = nil
	return out
}

// Aborted reports whether a message at or above the abort threshold has ever
// been enqueued.
func (q *Queue) Aborted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.aborted
}

// HighestSeverity returns the highest severity seen since the queue was
// created, or DEBUG if nothing has been enqueued. Used to derive the
// process exit status.
func (q *Queue) HighestSeverity() Severity {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highest
}
