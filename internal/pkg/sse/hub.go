package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Event names published by the attendance and leave services.
const (
	EventAttendanceCheckedIn  = "attendance.checked_in"
	EventAttendanceCheckedOut = "attendance.checked_out"
	EventLeaveUpdated         = "leave.updated"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

// WriteTo encodes e in the text/event-stream wire format.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return 0, fmt.Errorf("encode event %s: %w", e.Event, err)
	}
	n, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Event, payload)
	return int64(n), err
}

// Publisher is the write side of the hub that services depend on.
type Publisher interface {
	Publish(userID string, event Event)
}

const defaultBuffer = 10

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
	dropped     atomic.Int64
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      defaultBuffer,
	}
}

// Subscribe registers a new subscriber for a user and returns the event channel and cleanup function
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific user. Slow
// subscribers with a full buffer miss the event.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.UserID = userID
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Dropped is the number of events skipped because a subscriber was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
