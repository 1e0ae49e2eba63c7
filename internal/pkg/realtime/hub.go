// Package realtime fans out per-user notification events to live connections.
package realtime

import (
	"sync"
	"time"
)

const (
	EventApproval  = "approval"
	EventRejection = "rejection"

	subscriberBuffer = 10
)

// Event is delivered at most once to every connection open when it is published.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// Publisher is the producer side used by services.
type Publisher interface {
	Publish(userID string, event Event)
}

// Hub manages per-user rooms of subscriber channels.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[chan Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe joins the room of userID. The returned cleanup closes the channel and must be called once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[chan Event]struct{})
	}
	h.rooms[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.rooms[userID][ch]; !ok {
				return
			}
			delete(h.rooms[userID], ch)
			close(ch)
			if len(h.rooms[userID]) == 0 {
				delete(h.rooms, userID)
			}
		})
	}

	return ch, cleanup
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(userID string, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.rooms[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.rooms {
		total += len(subs)
	}
	return total
}

// Close ends every subscription. Later subscribers get an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, subs := range h.rooms {
		for ch := range subs {
			close(ch)
		}
		delete(h.rooms, userID)
	}
}
