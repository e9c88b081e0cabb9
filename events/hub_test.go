package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SubscribeAndPublish(t *testing.T) {
	hub := NewHub()

	pollSub, cancelPoll := hub.Subscribe("p1", 4)
	defer cancelPoll()
	allSub, cancelAll := hub.Subscribe("", 4)
	defer cancelAll()
	otherSub, cancelOther := hub.Subscribe("p2", 4)
	defer cancelOther()

	hub.Publish(Event{Type: EventVoteUpdate, PollID: "p1"})

	event := <-pollSub
	assert.Equal(t, EventVoteUpdate, event.Type)
	assert.Equal(t, "p1", event.PollID)

	// The wildcard subscriber sees it too; the p2 subscriber does not.
	event = <-allSub
	assert.Equal(t, "p1", event.PollID)
	assert.Empty(t, otherSub)
}

func TestHub_Cancel(t *testing.T) {
	hub := NewHub()

	sub, cancel := hub.Subscribe("p1", 4)
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	// The channel is closed and later publishes go nowhere.
	_, open := <-sub
	assert.False(t, open)
	hub.Publish(Event{Type: EventPollDeleted, PollID: "p1"})

	// Cancelling twice is safe.
	cancel()
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	sub, cancel := hub.Subscribe("p1", 1)
	defer cancel()

	hub.Publish(Event{Type: EventVoteUpdate, PollID: "p1"})
	// Buffer is full; this one is dropped instead of blocking the store.
	hub.Publish(Event{Type: EventPollUpdated, PollID: "p1"})

	event := <-sub
	assert.Equal(t, EventVoteUpdate, event.Type)
	assert.Empty(t, sub)
}
