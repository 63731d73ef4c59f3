package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MemberJoinedEvent is emitted when a connection joins a room.
type MemberJoinedEvent struct {
	Room         string    `json:"room"`
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemberLeftEvent is emitted when a connection leaves a room, either
// explicitly or through transport-level disconnect.
type MemberLeftEvent struct {
	Room         string    `json:"room"`
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Reason       string    `json:"reason"` // "leave" or "disconnect"
	Timestamp    time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted after a user message has been broadcast.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Length    int       `json:"length"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the registry domain.
var (
	MemberJoinedV1 = helper.EventDefinition[MemberJoinedEvent](
		"registry",
		"MemberJoined",
		"v1",
	)

	MemberLeftV1 = helper.EventDefinition[MemberLeftEvent](
		"registry",
		"MemberLeft",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"registry",
		"MessageSent",
		"v1",
	)
)
