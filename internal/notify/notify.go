// Package notify is the console's transient notification channel ("toasts").
//
// A Hub is created once at startup and closed at shutdown. Surfaces subscribe
// to it; every subscription has a bounded queue that drops its oldest pending
// notification when full, so Publish never blocks.
package notify

import (
	"strings"
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notification struct {
	Seq      uint64    `json:"seq"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

const (
	DefaultBuffer = 16
	// DefaultRecent is how many notifications Recent keeps.
	DefaultRecent = 8
)

type Options struct {
	// Recent bounds the replay history. Zero means DefaultRecent.
	Recent int
	// Now is used to stamp notifications. Nil means time.Now.
	Now func() time.Time
}

type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	recent []Notification
	keep   int
	seq    uint64
	now    func() time.Time
	closed bool
}

func New(opts Options) *Hub {
	keep := opts.Recent
	if keep <= 0 {
		keep = DefaultRecent
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Hub{
		subs: map[*Subscription]struct{}{},
		keep: keep,
		now:  now,
	}
}

// Subscription receives notifications published after it was created.
type Subscription struct {
	hub  *Hub
	ch   chan Notification
	once sync.Once
}

// Subscribe registers a listener with a queue of buffer entries
// (DefaultBuffer when buffer <= 0). Subscribing to a closed hub returns an
// already-closed subscription.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{hub: h, ch: make(chan Notification, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// C is closed when the subscription or the hub is closed.
func (s *Subscription) C() <-chan Notification { return s.ch }

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
	s.once.Do(func() { close(s.ch) })
}

// Publish stamps n and delivers it to every subscriber. Blank messages and
// publishing on a closed hub are ignored.
func (h *Hub) Publish(severity Severity, message string) (Notification, bool) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Notification{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Notification{}, false
	}
	h.seq++
	n := Notification{Seq: h.seq, Message: message, Severity: severity, At: h.now()}

	h.recent = append(h.recent, n)
	if len(h.recent) > h.keep {
		h.recent = append([]Notification(nil), h.recent[len(h.recent)-h.keep:]...)
	}

	for s := range h.subs {
		deliver(s.ch, n)
	}
	return n, true
}

func (h *Hub) Success(message string) { h.Publish(SeveritySuccess, message) }
func (h *Hub) Error(message string)   { h.Publish(SeverityError, message) }

// deliver enqueues n, dropping the oldest pending entry when the queue is full.
// Callers hold the hub lock, so each channel has a single writer.
func deliver(ch chan Notification, n Notification) {
	for {
		select {
		case ch <- n:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Recent returns up to the last Options.Recent notifications, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.recent...)
}

// LastSeq returns the sequence number of the latest notification, or 0.
func (h *Hub) LastSeq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}

// Since returns the retained notifications published after seq, oldest first.
func (h *Hub) Since(seq uint64) []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Notification
	for _, n := range h.recent {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

// Close closes every subscription. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}
