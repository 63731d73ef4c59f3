package chat

import "time"

// Message type discriminators used on the wire.
const (
	MessageTypeUser   = "user"
	MessageTypeSystem = "system"
)

// Member is a (username, connection) pairing currently attached to a room.
type Member struct {
	Username     string    `json:"username"`
	ConnectionID string    `json:"-"`
	JoinedAt     time.Time `json:"-"`
}

// Binding is the authoritative (room, username) identity a connection
// currently holds. A connection has at most one binding at a time.
type Binding struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// Message is a chat message delivered to room members.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Type      string    `json:"type"`
	Room      string    `json:"room,omitempty"`
	Author    string    `json:"author,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomInfo is a read-only projection of a room for monitoring.
type RoomInfo struct {
	Room      string   `json:"room"`
	UserCount int      `json:"userCount"`
	Users     []string `json:"users"`
}
