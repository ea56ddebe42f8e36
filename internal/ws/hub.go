package ws

import (
	"encoding/json"
	"sync"
	"time"

	"smart_time/internal/logger"
)

// Hub tracks the live connections of every user and fans events out to
// them. It keeps no business state.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
}

// Unregister removes the client and closes its send channel once
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// sendTo queues a direct reply; it is a no-op once the client is gone
func (h *Hub) sendTo(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.UserID][c]; !ok {
		return false
	}
	return c.enqueue(msg)
}

// Connections returns the number of open connections of a user
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func encode(typ string, payload any) ([]byte, error) {
	env := Envelope{Type: typ, At: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Publish sends an event to every connection of the user. Clients whose
// buffer is full are dropped.
func (h *Hub) Publish(userID int64, event string, payload any) {
	h.mu.RLock()
	n := len(h.clients[userID])
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	msg, err := encode(event, payload)
	if err != nil {
		logger.Warn("ws encode failed", "event", event, "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[userID] {
		if !c.enqueue(msg) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", c.UserID)
		h.remove(c)
	}
	h.mu.Unlock()
}
