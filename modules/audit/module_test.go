package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/chat-relay/events"
)

// mockLogger implements types.Logger for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func TestAudit_RecordsEventTypes(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, m.handleMemberJoined(ctx, events.MemberJoinedEvent{
		Room: "lobby", ConnectionID: "conn-a", Username: "alice", Timestamp: now,
	}, nil))
	require.NoError(t, m.handleMessageSent(ctx, events.MessageSentEvent{
		MessageID: "msg-1", Room: "lobby", Username: "alice", Length: 5, Timestamp: now,
	}, nil))
	require.NoError(t, m.handleMemberLeft(ctx, events.MemberLeftEvent{
		Room: "lobby", ConnectionID: "conn-a", Username: "alice", Reason: "disconnect", Timestamp: now,
	}, nil))

	entries := m.Recent(0)
	require.Len(t, entries, 3)

	assert.Equal(t, "join", entries[0].Type)
	assert.Equal(t, "lobby", entries[0].Room)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Empty(t, entries[0].Detail)

	assert.Equal(t, "message", entries[1].Type)
	assert.Equal(t, "5 chars", entries[1].Detail)

	assert.Equal(t, "leave", entries[2].Type)
	assert.Equal(t, "disconnect", entries[2].Detail)
}

func TestAudit_RecentLimit(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.handleMemberJoined(ctx, events.MemberJoinedEvent{
			Room: "lobby", Username: fmt.Sprintf("user-%d", i), Timestamp: time.Now(),
		}, nil))
	}

	// Newest entries last.
	entries := m.Recent(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "user-3", entries[0].Username)
	assert.Equal(t, "user-4", entries[1].Username)

	// A limit beyond the log size returns everything.
	assert.Len(t, m.Recent(100), 5)
	assert.Len(t, m.Recent(-1), 5)
}

func TestAudit_LogBounded(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()

	for i := 0; i < maxEntries+10; i++ {
		require.NoError(t, m.handleMemberJoined(ctx, events.MemberJoinedEvent{
			Room: "lobby", Username: fmt.Sprintf("user-%d", i), Timestamp: time.Now(),
		}, nil))
	}

	assert.Equal(t, maxEntries, m.Len())

	// Oldest entries are dropped first.
	entries := m.Recent(0)
	assert.Equal(t, fmt.Sprintf("user-%d", 10), entries[0].Username)
	assert.Equal(t, fmt.Sprintf("user-%d", maxEntries+9), entries[len(entries)-1].Username)
}

func TestAudit_RecentReturnsCopy(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()

	require.NoError(t, m.handleMemberJoined(ctx, events.MemberJoinedEvent{
		Room: "lobby", Username: "alice", Timestamp: time.Now(),
	}, nil))

	entries := m.Recent(0)
	entries[0].Username = "mutated"

	assert.Equal(t, "alice", m.Recent(0)[0].Username)
}
