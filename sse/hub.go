package sse

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/kbukum/pullfeed/logger"
)

// DefaultClientBuffer is the per-client event queue length.
const DefaultClientBuffer = 256

// Client is one connected SSE stream.
type Client struct {
	id     string
	events chan Event
	lagged atomic.Bool
	once   sync.Once
}

// NewClient creates a client with a queue of buffer events; buffer <= 0
// means DefaultClientBuffer.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{id: id, events: make(chan Event, buffer)}
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id }

// Events returns the queue the handler drains. It is closed when the
// client is unregistered, lags, or the hub stops.
func (c *Client) Events() <-chan Event { return c.events }

// Lagged reports whether the client was dropped for falling behind.
func (c *Client) Lagged() bool { return c.lagged.Load() }

// send queues ev without blocking. A full queue marks the client lagged.
func (c *Client) send(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		c.lagged.Store(true)
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.events) })
}

// Hub routes events to clients. A client whose queue overflows is
// disconnected instead of silently missing events, so it can reconnect and
// resynchronize.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once

	log *logger.Logger
}

type message struct {
	pattern string
	ev      Event
}

// NewHub creates a hub. A nil log uses the global logger.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.WithComponent("sse")
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.id]; ok {
				old.close()
			}
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Client registered", logger.Fields("client_id", c.id, "total_clients", n))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop closes every client and makes Run return. Safe to call repeatedly.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds c. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.close()
		return false
	}
}

// Unregister removes c and closes its queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues ev for every client whose ID matches pattern.
func (h *Hub) Broadcast(pattern string, ev Event) {
	select {
	case h.broadcast <- message{pattern: pattern, ev: ev}:
	case <-h.done:
	}
}

func (h *Hub) deliver(msg message) {
	var lagging []*Client

	h.mu.RLock()
	matched := 0
	for id, c := range h.clients {
		ok, err := filepath.Match(msg.pattern, id)
		if err != nil {
			h.mu.RUnlock()
			h.log.Error("Bad broadcast pattern", logger.MergeWithError(logger.Fields("pattern", msg.pattern), err))
			return
		}
		if !ok {
			continue
		}
		matched++
		if !c.send(msg.ev) {
			lagging = append(lagging, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range lagging {
		h.log.Warn("Client lagging, disconnecting", logger.Fields("client_id", c.id))
		h.remove(c)
	}
	h.log.Debug("Broadcast sent", logger.Fields(
		"pattern", msg.pattern,
		"event", msg.ev.Type,
		"match_count", matched,
	))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
	}
	n := len(h.clients)
	h.mu.Unlock()
	c.close()
	h.log.Debug("Client unregistered", logger.Fields("client_id", c.id, "total_clients", n))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientIDs returns the IDs of all connected clients.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

var _ Broadcaster = (*Hub)(nil)
