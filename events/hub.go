// Package events fans poll updates out to in-process subscribers, so
// presentation re-renders from observed state instead of polling the store.
package events

import "sync"

// Event types published by the store.
const (
	EventPollCreated = "POLL_CREATED"
	EventPollUpdated = "POLL_UPDATED"
	EventPollDeleted = "POLL_DELETED"
	EventVoteUpdate  = "VOTE_UPDATE"
)

// Event is one update notification.
type Event struct {
	Type    string      `json:"type"`
	PollID  string      `json:"pollId"`
	Payload interface{} `json:"payload"`
}

// subscription buffers events for one subscriber.
type subscription struct {
	pollID string // "" subscribes to all polls
	ch     chan Event
}

// Hub maintains the active subscriber set, grouped by poll id, and
// broadcasts events to them. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscription]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscription]bool)}
}

// Subscribe registers interest in events for one poll, or for all polls
// when pollID is empty. The returned cancel function unregisters the
// subscriber and closes the channel.
func (h *Hub) Subscribe(pollID string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscription{pollID: pollID, ch: make(chan Event, buffer)}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.subs[sub] {
			delete(h.subs, sub)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.pollID != "" && sub.pollID != event.PollID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Buffer full, drop rather than block the store.
		}
	}
}

// Subscribers reports the current subscriber count, for diagnostics.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
