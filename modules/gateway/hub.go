package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/example/chat-relay/domain/chat"
)

// writeWait bounds how long a single write may block on a stalled client,
// so one slow connection cannot hold up fan-out to the rest of a room.
const writeWait = 10 * time.Second

// wsConn is the subset of *websocket.Conn the hub writes to.
type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// MemberSource resolves a room to its current members. Fan-out lists are
// computed from it at the instant of each broadcast, never cached.
type MemberSource interface {
	Members(room string) []chat.Member
}

// Hub tracks live WebSocket connections and delivers events to one
// connection or to every current member of a room.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]wsConn
	members MemberSource
}

// outbound is the envelope written to clients.
type outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// NewHub creates a hub that resolves room membership through members.
func NewHub(members MemberSource) *Hub {
	return &Hub{
		conns:   make(map[string]wsConn),
		members: members,
	}
}

// Attach registers a live connection under its connection id.
func (h *Hub) Attach(connID string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = conn
}

// Detach removes a connection. Safe to call for unknown ids.
func (h *Hub) Detach(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
}

// EmitTo sends a named event to exactly one connection.
// The hub lock is held across the write so that deliveries from concurrent
// sessions never interleave on a single connection.
func (h *Hub) EmitTo(connID, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	h.write(connID, conn, event, payload)
}

// EmitToRoom sends a named event to every current member of a room,
// optionally skipping one connection. Membership is read at call time.
func (h *Hub) EmitToRoom(room, event string, payload any, excludeConnID string) {
	members := h.members.Members(room)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range members {
		if m.ConnectionID == excludeConnID {
			continue
		}
		if conn, ok := h.conns[m.ConnectionID]; ok {
			h.write(m.ConnectionID, conn, event, payload)
		}
	}
}

// Count returns the number of attached connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every attached connection. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		_ = conn.Close()
	}
	h.conns = make(map[string]wsConn)
}

func (h *Hub) write(connID string, conn wsConn, event string, payload any) {
	data, err := json.Marshal(outbound{Event: event, Payload: payload})
	if err != nil {
		log.Printf("[hub] Failed to marshal %s event: %v", event, err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[hub] Failed to send to connection %s: %v", connID, err)
	}
}
