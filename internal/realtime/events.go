package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventMessage = "message"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrEmptyRoom    = errors.New("room is required")
	ErrNotAnObject  = errors.New("event data must be an object")
)

// Frame is the wire shape of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EventHandler handles one inbound event for client c.
type EventHandler func(c *Client, data json.RawMessage) error

// Router maps event names to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
}

// NewRouter returns a router with the join, leave and message events bound to hub.
func NewRouter(hub *Hub) *Router {
	r := &Router{handlers: make(map[string]EventHandler)}
	r.Register(EventJoin, func(c *Client, data json.RawMessage) error {
		room, err := parseRoom(data)
		if err != nil {
			return err
		}
		hub.Join(c, room)
		return nil
	})
	r.Register(EventLeave, func(c *Client, data json.RawMessage) error {
		room, err := parseRoom(data)
		if err != nil {
			return err
		}
		hub.Leave(c, room)
		return nil
	})
	r.Register(EventMessage, func(_ *Client, data json.RawMessage) error {
		room, err := parseRoomField(data)
		if err != nil {
			return err
		}
		frame, err := json.Marshal(Frame{Event: EventMessage, Data: data})
		if err != nil {
			return err
		}
		hub.Broadcast(room, frame)
		return nil
	})
	return r
}

func (r *Router) Register(event string, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = handler
}

// Dispatch decodes raw and runs the handler registered for its event.
func (r *Router) Dispatch(c *Client, raw []byte) error {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	r.mu.RLock()
	handler, ok := r.handlers[frame.Event]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownEvent, frame.Event)
	}
	return handler(c, frame.Data)
}

// parseRoom accepts either a bare room name ("r1") or an object carrying a
// room field ({"room": "r1", ...}).
func parseRoom(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return parseRoomField(data)
	}

	var room string
	if err := json.Unmarshal(data, &room); err != nil {
		return "", err
	}
	if room == "" {
		return "", ErrEmptyRoom
	}
	return room, nil
}

// parseRoomField reads the room from an object payload such as
// {"room": "r1", "text": "hi"}.
func parseRoomField(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", ErrEmptyRoom
	}
	if data[0] != '{' {
		return "", ErrNotAnObject
	}

	var payload struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	if payload.Room == "" {
		return "", ErrEmptyRoom
	}
	return payload.Room, nil
}
