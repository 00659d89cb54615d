package services

import (
	"encoding/json"
	"sync"

	"github.com/habeshagames/bingo-backend/utils/logger"
)

// Event is a push message for a stake room. Every event carries a
// "type" key; the rest is event-specific.
type Event map[string]any

// Hub fans events out to the websocket clients of each stake room.
// Push is best-effort: state polling is the source of truth, so a slow
// or dead client is dropped rather than waited on.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[int]map[*Client]bool)}
}

func (h *Hub) add(stake int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[stake]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[stake] = room
	}
	room[c] = true
}

func (h *Hub) remove(stake int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[stake]; ok {
		delete(room, c)
	}
}

// RoomSize reports connected clients for a stake.
func (h *Hub) RoomSize(stake int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[stake])
}

// Broadcast sends an event to everyone in a stake room. Clients whose
// send buffer is full are closed; they reconnect and re-poll.
func (h *Hub) Broadcast(stake int, ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("marshal event %v: %v", ev["type"], err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[stake]))
	for c := range h.rooms[stake] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- raw:
		default:
			h.remove(stake, c)
			c.Close()
		}
	}
}
