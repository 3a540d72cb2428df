package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/internal/models"
)

func TestHubNotifier_BroadcastsToClients(t *testing.T) {
	hub := NewHub()
	a := hub.Register("a")
	b := hub.Register("b")
	defer hub.Unregister(a)
	defer hub.Unregister(b)

	session := "sess-1"
	NewHubNotifier(hub).NotifyQuoteCreated(&models.QuoteRecord{ID: 7, SessionID: &session, Total: 36300})

	for _, c := range []*Client{a, b} {
		var ev QuoteEvent
		require.NoError(t, json.Unmarshal(<-c.Events, &ev))
		assert.Equal(t, EventQuoteCreated, ev.Event)
		assert.Equal(t, int64(7), ev.QuoteID)
		assert.Equal(t, 36300, ev.Total)
		assert.Equal(t, "sess-1", *ev.SessionID)
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	hub.buffer = 1
	c := hub.Register("slow")

	hub.Broadcast(&QuoteEvent{QuoteID: 1})
	hub.Broadcast(&QuoteEvent{QuoteID: 2})

	var ev QuoteEvent
	require.NoError(t, json.Unmarshal(<-c.Events, &ev))
	assert.Equal(t, int64(1), ev.QuoteID)
	assert.Empty(t, c.Events)

	hub.Unregister(c)
	_, open := <-c.Events
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_ReRegisterClosesOldClient(t *testing.T) {
	hub := NewHub()
	old := hub.Register("x")
	current := hub.Register("x")

	_, open := <-old.Events
	assert.False(t, open)
	assert.Equal(t, 1, hub.ClientCount())

	// The replaced handler's deferred cleanup must not drop the new client.
	hub.Unregister(old)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast(&QuoteEvent{QuoteID: 3})
	var ev QuoteEvent
	require.NoError(t, json.Unmarshal(<-current.Events, &ev))
	assert.Equal(t, int64(3), ev.QuoteID)

	hub.Unregister(current)
	_, open = <-current.Events
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}
