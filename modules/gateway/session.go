package gateway

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/modules/registry"
)

// Emitter delivers events to connections. Satisfied by *Hub; tests substitute
// a recording fake.
type Emitter interface {
	EmitTo(connID, event string, payload any)
	EmitToRoom(room, event string, payload any, excludeConnID string)
}

type sessionState int

const (
	stateUnbound sessionState = iota
	stateBound
	stateClosed
)

// Session is the per-connection event dispatcher. All methods are invoked
// from the connection's single read loop, so session state needs no lock;
// shared state lives behind the registry's own lock.
type Session struct {
	connID   string
	state    sessionState
	registry *registry.Registry
	emitter  Emitter
	logger   types.Logger
}

// NewSession creates a dispatcher for one connection, starting Unbound.
func NewSession(connID string, reg *registry.Registry, emitter Emitter, logger types.Logger) *Session {
	return &Session{
		connID:   connID,
		registry: reg,
		emitter:  emitter,
		logger:   logger,
	}
}

// Dispatch routes one inbound event. Any panic inside a handler is recovered
// here, logged with event name and connection id, and surfaced to the
// requester as a generic error; other connections are unaffected.
func (s *Session) Dispatch(event string, payload json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Session handler panic",
				"event", event,
				"connID", s.connID,
				"panic", rec)
			s.emitter.EmitTo(s.connID, EventError, "internal server error")
		}
	}()

	if s.state == stateClosed {
		return
	}

	switch event {
	case EventJoinRoom:
		s.handleJoin(payload)
	case EventSendMessage:
		s.handleMessage(payload)
	case EventTyping:
		s.handleTyping(payload)
	case EventLeaveRoom:
		s.handleLeave(registry.LeaveReasonLeave)
	default:
		s.emitter.EmitTo(s.connID, EventError, "unknown event: "+event)
	}
}

// Disconnect runs the leave path for a transport-level connection loss and
// moves the session to its terminal state.
func (s *Session) Disconnect() {
	if s.state == stateClosed {
		return
	}
	s.handleLeave(registry.LeaveReasonDisconnect)
	s.state = stateClosed
}

func (s *Session) handleJoin(payload json.RawMessage) {
	if s.state != stateUnbound {
		s.emitter.EmitTo(s.connID, EventError, chat.ErrAlreadyBound.Error())
		return
	}

	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.emitter.EmitTo(s.connID, EventError, "invalid join_room payload")
		return
	}

	members, err := s.registry.Join(s.connID, p.Room, p.Username)
	if err != nil {
		s.emitter.EmitTo(s.connID, EventError, err.Error())
		return
	}
	s.state = stateBound

	binding, _ := s.registry.Binding(s.connID)

	// room_users carries the members present before the join; the full list
	// goes out room-wide as user_list_update.
	peers := make([]UserEntry, 0, len(members))
	all := make([]UserEntry, 0, len(members))
	for _, m := range members {
		all = append(all, UserEntry{Username: m.Username})
		if m.ConnectionID != s.connID {
			peers = append(peers, UserEntry{Username: m.Username})
		}
	}

	s.emitter.EmitTo(s.connID, EventRoomUsers, peers)
	s.emitter.EmitToRoom(binding.Room, EventUserListUpdate, all, "")
	s.emitter.EmitToRoom(binding.Room, EventReceiveMessage, chat.Message{
		Type:      chat.MessageTypeSystem,
		Room:      binding.Room,
		Message:   binding.Username + " joined the room",
		Timestamp: time.Now(),
	}, s.connID)
}

func (s *Session) handleMessage(payload json.RawMessage) {
	if !s.registry.AllowMessage(s.connID) {
		s.emitter.EmitTo(s.connID, EventError, chat.ErrRateLimited.Error())
		return
	}

	var p MessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.emitter.EmitTo(s.connID, EventError, "invalid send_message payload")
		return
	}

	limits := s.registry.Limits()
	if err := limits.ValidateRoom(p.Room); err != nil {
		s.emitter.EmitTo(s.connID, EventError, err.Error())
		return
	}
	if err := limits.ValidateUsername(p.Author); err != nil {
		s.emitter.EmitTo(s.connID, EventError, err.Error())
		return
	}
	if err := limits.ValidateMessage(p.Message); err != nil {
		s.emitter.EmitTo(s.connID, EventError, err.Error())
		return
	}

	// The claimed (room, author) must match this connection's binding
	// exactly; a mismatch is a possible spoofing attempt and is never
	// broadcast.
	binding, bound := s.registry.Binding(s.connID)
	if !bound ||
		binding.Room != strings.TrimSpace(p.Room) ||
		binding.Username != strings.TrimSpace(p.Author) {
		s.emitter.EmitTo(s.connID, EventError, chat.ErrUnauthorized.Error())
		return
	}

	msg := chat.Message{
		ID:        uuid.New().String(),
		Type:      chat.MessageTypeUser,
		Room:      binding.Room,
		Author:    binding.Username,
		Message:   strings.TrimSpace(p.Message),
		Timestamp: time.Now(),
	}
	s.emitter.EmitToRoom(binding.Room, EventReceiveMessage, msg, "")
	s.registry.NoteMessageSent(msg)
}

func (s *Session) handleTyping(payload json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		// Typing is best-effort; malformed payloads are dropped silently.
		return
	}

	binding, bound := s.registry.Binding(s.connID)
	if !bound ||
		binding.Room != strings.TrimSpace(p.Room) ||
		binding.Username != strings.TrimSpace(p.Username) {
		return
	}

	s.emitter.EmitToRoom(binding.Room, EventUserTyping, TypingEvent{
		Username: binding.Username,
		IsTyping: p.IsTyping,
	}, s.connID)
}

func (s *Session) handleLeave(reason string) {
	binding, bound := s.registry.Leave(s.connID, reason)
	if !bound {
		return
	}
	s.state = stateUnbound

	remaining := s.registry.Members(binding.Room)
	if len(remaining) == 0 {
		// Nobody left to notify; the room is already gone.
		return
	}

	users := make([]UserEntry, 0, len(remaining))
	for _, m := range remaining {
		users = append(users, UserEntry{Username: m.Username})
	}

	s.emitter.EmitToRoom(binding.Room, EventReceiveMessage, chat.Message{
		Type:      chat.MessageTypeSystem,
		Room:      binding.Room,
		Message:   binding.Username + " left the room",
		Timestamp: time.Now(),
	}, "")
	s.emitter.EmitToRoom(binding.Room, EventUserListUpdate, users, "")
}
