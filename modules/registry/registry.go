package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/events"
)

// Registry is the authoritative mapping of room -> members and
// connection -> (room, username). It owns all mutation of membership; a room
// exists in the registry iff it has at least one member.
type Registry struct {
	mu       sync.Mutex
	limits   Limits
	rooms    map[string][]chat.Member // ordered by join time
	bindings map[string]chat.Binding  // connection id -> binding
	limiter  *rateLimiter
	eventBus mono.EventBus
	logger   types.Logger
}

// NewRegistry creates an empty registry with the given limits.
func NewRegistry(limits Limits, logger types.Logger) *Registry {
	limits = limits.sanitized()
	return &Registry{
		limits:   limits,
		rooms:    make(map[string][]chat.Member),
		bindings: make(map[string]chat.Binding),
		limiter:  newRateLimiter(limits.RateCap, limits.RateWindow),
		logger:   logger,
	}
}

// Limits returns the validation bounds the registry was configured with.
func (r *Registry) Limits() Limits {
	return r.limits
}

// setEventBus attaches the bus used for audit events. May stay unset; the
// registry then mutates silently.
func (r *Registry) setEventBus(bus mono.EventBus) {
	r.eventBus = bus
}

// Join validates the identity, binds the connection to the room, and returns
// a snapshot of the room's full member list including the new member.
// A connection that is already bound is rejected; it has to leave first.
func (r *Registry) Join(connID, room, username string) ([]chat.Member, error) {
	if err := r.limits.ValidateRoom(room); err != nil {
		return nil, err
	}
	if err := r.limits.ValidateUsername(username); err != nil {
		return nil, err
	}

	room = strings.TrimSpace(room)
	username = strings.TrimSpace(username)

	r.mu.Lock()
	if _, bound := r.bindings[connID]; bound {
		r.mu.Unlock()
		return nil, chat.ErrAlreadyBound
	}
	for _, m := range r.rooms[room] {
		if strings.EqualFold(m.Username, username) {
			r.mu.Unlock()
			return nil, chat.ErrUsernameTaken
		}
	}

	now := time.Now()
	r.rooms[room] = append(r.rooms[room], chat.Member{
		Username:     username,
		ConnectionID: connID,
		JoinedAt:     now,
	})
	r.bindings[connID] = chat.Binding{Room: room, Username: username}
	members := snapshotMembers(r.rooms[room])
	r.mu.Unlock()

	r.publishJoined(events.MemberJoinedEvent{
		Room:         room,
		ConnectionID: connID,
		Username:     username,
		Timestamp:    now,
	})
	return members, nil
}

// Leave releases the connection's binding, removes the member from its room,
// drops rate-limit state, and deletes the room once empty. Returns the freed
// identity, or false if the connection held no binding.
// Rate-limit state is dropped even for connections that never bound, since
// an unbound connection can still accumulate window entries through rejected
// send attempts.
func (r *Registry) Leave(connID, reason string) (chat.Binding, bool) {
	r.limiter.forget(connID)

	r.mu.Lock()
	binding, bound := r.bindings[connID]
	if !bound {
		r.mu.Unlock()
		return chat.Binding{}, false
	}

	members := r.rooms[binding.Room]
	for i, m := range members {
		if m.ConnectionID == connID {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(r.rooms, binding.Room)
	} else {
		r.rooms[binding.Room] = members
	}
	delete(r.bindings, connID)
	r.mu.Unlock()

	r.publishLeft(events.MemberLeftEvent{
		Room:         binding.Room,
		ConnectionID: connID,
		Username:     binding.Username,
		Reason:       reason,
		Timestamp:    time.Now(),
	})
	return binding, true
}

// Members returns a snapshot of a room's member list ordered by join time.
// Empty if the room is absent.
func (r *Registry) Members(room string) []chat.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshotMembers(r.rooms[room])
}

// Binding returns the connection's current binding, if any.
func (r *Registry) Binding(connID string) (chat.Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	binding, ok := r.bindings[connID]
	return binding, ok
}

// ListRooms returns a monitoring snapshot of every room, sorted by room name.
func (r *Registry) ListRooms() []chat.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]chat.RoomInfo, 0, len(r.rooms))
	for room, members := range r.rooms {
		users := make([]string, 0, len(members))
		for _, m := range members {
			users = append(users, m.Username)
		}
		infos = append(infos, chat.RoomInfo{
			Room:      room,
			UserCount: len(members),
			Users:     users,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Room < infos[j].Room })
	return infos
}

// Stats returns the current room count and bound-connection count.
func (r *Registry) Stats() (rooms, connections int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms), len(r.bindings)
}

// AllowMessage consults the per-connection rate limiter.
func (r *Registry) AllowMessage(connID string) bool {
	return r.limiter.allow(connID)
}

// NoteMessageSent publishes an audit event for a broadcast user message.
func (r *Registry) NoteMessageSent(msg chat.Message) {
	if r.eventBus == nil {
		return
	}
	event := events.MessageSentEvent{
		MessageID: msg.ID,
		Room:      msg.Room,
		Username:  msg.Author,
		Length:    len(msg.Message),
		Timestamp: msg.Timestamp,
	}
	if err := events.MessageSentV1.Publish(r.eventBus, event, nil); err != nil {
		r.logger.Warn("Failed to publish MessageSent event", "error", err)
	}
}

func (r *Registry) publishJoined(event events.MemberJoinedEvent) {
	if r.eventBus == nil {
		return
	}
	if err := events.MemberJoinedV1.Publish(r.eventBus, event, nil); err != nil {
		r.logger.Warn("Failed to publish MemberJoined event", "error", err)
	}
}

func (r *Registry) publishLeft(event events.MemberLeftEvent) {
	if r.eventBus == nil {
		return
	}
	if err := events.MemberLeftV1.Publish(r.eventBus, event, nil); err != nil {
		r.logger.Warn("Failed to publish MemberLeft event", "error", err)
	}
}

func snapshotMembers(members []chat.Member) []chat.Member {
	out := make([]chat.Member, len(members))
	copy(out, members)
	return out
}
