package sse

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event names pushed to stream clients.
const (
	EventCatalog   = "catalog"
	EventGuard     = "guard"
	EventProducts  = "products"
	EventOrders    = "orders"
	EventPolicies  = "policies"
	EventNotice    = "notice"
	EventShutdown  = "shutdown"
	eventBufferLen = 64
)

// Message is one encoded event.
type Message struct {
	Event string
	Data  []byte
}

// Client represents a connected stream client.
//
// Events are queued on a buffered channel. Once the buffer is full, later
// events are held back with only the newest payload kept per event name,
// and Wake fires so the writer can Drain them in order.
type Client struct {
	ID     string
	Events chan Message

	mu      sync.Mutex
	held    map[string][]byte
	heldSeq []string
	wake    chan struct{}
}

func newClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Message, eventBufferLen),
		held:   make(map[string][]byte),
		wake:   make(chan struct{}, 1),
	}
}

// Send queues an event for the client without blocking.
func (c *Client) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to marshal SSE event")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Held events are newer than anything buffered, so nothing may pass them.
	if len(c.heldSeq) == 0 {
		select {
		case c.Events <- Message{Event: event, Data: data}:
			return
		default:
			log.Warn().Str("client_id", c.ID).Str("event", event).Msg("SSE client buffer full, coalescing events")
		}
	}
	if _, ok := c.held[event]; !ok {
		c.heldSeq = append(c.heldSeq, event)
	}
	c.held[event] = data
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Wake fires when events are held back behind a full buffer.
func (c *Client) Wake() <-chan struct{} { return c.wake }

// Drain returns everything buffered followed by the held events, oldest
// first, and reopens the buffer.
func (c *Client) Drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, 0, len(c.Events)+len(c.heldSeq))
buffered:
	for {
		select {
		case msg := <-c.Events:
			out = append(out, msg)
		default:
			break buffered
		}
	}
	for _, event := range c.heldSeq {
		out = append(out, Message{Event: event, Data: c.held[event]})
	}
	c.heldSeq = c.heldSeq[:0]
	clear(c.held)
	return out
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client and returns it for streaming.
func (h *Hub) Register(clientID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := newClient(clientID)
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client. Its channel is left open: producers may
// still hold it, and the stream loop stops reading on disconnect.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; ok {
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to all connected clients.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.Send(event, payload)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
