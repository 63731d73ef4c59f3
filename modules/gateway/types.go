package gateway

import (
	"encoding/json"
	"time"
)

// Event names consumed from a connection.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventLeaveRoom   = "leave_room"
)

// Event names emitted to connections.
const (
	EventRoomUsers      = "room_users"
	EventUserListUpdate = "user_list_update"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventError          = "error"
)

// Envelope frames every inbound WebSocket message as a named event with a
// payload. Malformed payloads are rejected before any handler logic runs.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is the payload of a join_room event.
type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// MessagePayload is the payload of a send_message event.
type MessagePayload struct {
	Room    string `json:"room"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

// TypingPayload is the payload of a typing event.
type TypingPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// UserEntry is one element of room_users and user_list_update payloads.
type UserEntry struct {
	Username string `json:"username"`
}

// TypingEvent is the payload of a user_typing broadcast.
type TypingEvent struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// HealthResponse is the monitoring health projection.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	ActiveRooms int       `json:"activeRooms"`
	ActiveUsers int       `json:"activeUsers"`
}

// ErrorResponse is the REST error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
