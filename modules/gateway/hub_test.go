package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/chat-relay/domain/chat"
)

type fakeConn struct {
	frames    [][]byte
	deadlines []time.Time
	closed    bool
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.deadlines = append(f.deadlines, t)
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) lastEvent(t *testing.T) outbound {
	t.Helper()
	require.NotEmpty(t, f.frames)
	var env outbound
	require.NoError(t, json.Unmarshal(f.frames[len(f.frames)-1], &env))
	return env
}

// fakeMemberSource serves a fixed room snapshot.
type fakeMemberSource struct {
	rooms map[string][]chat.Member
}

func (f *fakeMemberSource) Members(room string) []chat.Member {
	return f.rooms[room]
}

func member(username, connID string) chat.Member {
	return chat.Member{Username: username, ConnectionID: connID, JoinedAt: time.Now()}
}

func TestHub_EmitTo(t *testing.T) {
	hub := NewHub(&fakeMemberSource{})
	a, b := &fakeConn{}, &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Attach("conn-b", b)

	hub.EmitTo("conn-a", EventError, "boom")

	env := a.lastEvent(t)
	assert.Equal(t, EventError, env.Event)
	assert.Equal(t, "boom", env.Payload)
	assert.Empty(t, b.frames)
}

func TestHub_EmitToUnknownConnection(t *testing.T) {
	hub := NewHub(&fakeMemberSource{})

	// Must not panic or block.
	hub.EmitTo("conn-missing", EventError, "boom")
}

func TestHub_EmitToRoom(t *testing.T) {
	src := &fakeMemberSource{rooms: map[string][]chat.Member{
		"lobby": {member("alice", "conn-a"), member("bob", "conn-b")},
	}}
	hub := NewHub(src)
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Attach("conn-b", b)
	hub.Attach("conn-c", c)

	hub.EmitToRoom("lobby", EventUserListUpdate, []UserEntry{{Username: "alice"}, {Username: "bob"}}, "")

	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	// conn-c is attached but not a member of the room.
	assert.Empty(t, c.frames)
}

func TestHub_EmitToRoomExcludes(t *testing.T) {
	src := &fakeMemberSource{rooms: map[string][]chat.Member{
		"lobby": {member("alice", "conn-a"), member("bob", "conn-b")},
	}}
	hub := NewHub(src)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Attach("conn-b", b)

	hub.EmitToRoom("lobby", EventReceiveMessage, chat.Message{Type: chat.MessageTypeSystem, Message: "bob joined the room"}, "conn-b")

	assert.Len(t, a.frames, 1)
	assert.Empty(t, b.frames)
}

func TestHub_EmitToRoomReadsMembershipAtCallTime(t *testing.T) {
	src := &fakeMemberSource{rooms: map[string][]chat.Member{
		"lobby": {member("alice", "conn-a")},
	}}
	hub := NewHub(src)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Attach("conn-b", b)

	hub.EmitToRoom("lobby", EventUserTyping, TypingEvent{Username: "alice", IsTyping: true}, "")
	require.Len(t, a.frames, 1)
	assert.Empty(t, b.frames)

	// Membership changes are visible to the next broadcast.
	src.rooms["lobby"] = append(src.rooms["lobby"], member("bob", "conn-b"))
	hub.EmitToRoom("lobby", EventUserTyping, TypingEvent{Username: "alice", IsTyping: false}, "")
	assert.Len(t, a.frames, 2)
	assert.Len(t, b.frames, 1)
}

func TestHub_DetachStopsDelivery(t *testing.T) {
	src := &fakeMemberSource{rooms: map[string][]chat.Member{
		"lobby": {member("alice", "conn-a")},
	}}
	hub := NewHub(src)
	a := &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Detach("conn-a")

	hub.EmitTo("conn-a", EventError, "boom")
	hub.EmitToRoom("lobby", EventUserListUpdate, nil, "")

	assert.Empty(t, a.frames)
	assert.Zero(t, hub.Count())
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(&fakeMemberSource{})
	a, b := &fakeConn{}, &fakeConn{}
	hub.Attach("conn-a", a)
	hub.Attach("conn-b", b)

	hub.CloseAll()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Zero(t, hub.Count())
}

func TestHub_WriteDeadlineSet(t *testing.T) {
	hub := NewHub(&fakeMemberSource{})
	a := &fakeConn{}
	hub.Attach("conn-a", a)

	before := time.Now()
	hub.EmitTo("conn-a", EventError, "boom")

	// Every write is preceded by a fresh deadline.
	require.Len(t, a.deadlines, 1)
	assert.True(t, a.deadlines[0].After(before))
	assert.True(t, a.deadlines[0].Before(before.Add(writeWait+time.Second)))
}

func TestHub_EnvelopeFormat(t *testing.T) {
	hub := NewHub(&fakeMemberSource{})
	a := &fakeConn{}
	hub.Attach("conn-a", a)

	hub.EmitTo("conn-a", EventRoomUsers, []UserEntry{{Username: "alice"}})

	var env struct {
		Event   string      `json:"event"`
		Payload []UserEntry `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(a.frames[0], &env))
	assert.Equal(t, EventRoomUsers, env.Event)
	assert.Equal(t, []UserEntry{{Username: "alice"}}, env.Payload)
}
