// Package sse fans quote log events out to admin dashboards over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const EventQuoteCreated EventType = "quote.created"

// QuoteEvent is the payload broadcast to admin SSE clients.
type QuoteEvent struct {
	Event         EventType `json:"event"`
	QuoteID       int64     `json:"quoteId"`
	SessionID     *string   `json:"sessionId,omitempty"`
	ToDistrictID  int       `json:"toDistrictId"`
	ToWardCode    string    `json:"toWardCode"`
	ServiceTypeID int       `json:"serviceTypeId"`
	Weight        int       `json:"weight"`
	Total         int       `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}

// Client is one connected dashboard.
type Client struct {
	ID     string
	Events chan []byte
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  int
}

// NewHub creates a hub whose clients buffer up to 64 events.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  64,
	}
}

// Register adds a client. Registering an id twice replaces the old client
// and closes its channel.
func (h *Hub) Register(clientID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[clientID]; ok {
		close(old.Events)
	}
	c := &Client{
		ID:     clientID,
		Events: make(chan []byte, h.buffer),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes c and closes its channel. A client that was already
// replaced by a later Register with the same id is left alone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.ID]; ok && cur == c {
		close(c.Events)
		delete(h.clients, c.ID)
		log.Info().Str("client_id", c.ID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to all connected clients without blocking; a
// client with a full buffer misses the event.
func (h *Hub) Broadcast(event *QuoteEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
