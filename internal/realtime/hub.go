// Package realtime relays messages between websocket connections grouped in
// named rooms. Membership lives only in process memory.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Client is one connection as seen by the hub. Frames queued on send are
// written by the connection's writer goroutine.
type Client struct {
	id    string
	send  chan []byte
	rooms map[string]struct{}
}

func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		id:    id,
		send:  make(chan []byte, buffer),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Send exposes the outbound queue. It is closed when the client is unregistered.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub tracks connections and room membership. All membership changes and
// fan-out happen under one lock, so a broadcast never races a join or leave.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("client connected", zap.String("conn_id", c.id))
}

// Unregister drops the client from every room and closes its queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	for room := range c.rooms {
		h.removeLocked(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	h.logger.Info("client disconnected", zap.String("conn_id", c.id))
}

// Join adds c to room. Joining twice is harmless.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, room)
}

func (h *Hub) removeLocked(c *Client, room string) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast queues frame for every member of room and returns how many
// accepted it. A member whose queue is full misses the frame.
func (h *Hub) Broadcast(room string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- frame:
			delivered++
		default:
			h.logger.Warn("dropping frame for slow client",
				zap.String("conn_id", c.id),
				zap.String("room", room))
		}
	}
	return delivered
}

// Members returns the number of connections in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Stats reports connection and room counts for health checks.
func (h *Hub) Stats() (connections, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.rooms)
}
