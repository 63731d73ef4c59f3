package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chat-relay/events"
)

// maxEntries bounds the in-memory activity log.
const maxEntries = 256

// ServiceRecent is the request-reply service exposing the activity log.
const ServiceRecent = "recent"

// Entry is one logged room event.
type Entry struct {
	Type      string    `json:"type"` // "join", "leave", "message"
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentRequest is the request for the recent service.
type RecentRequest struct {
	Limit int `json:"limit"`
}

// RecentResponse is the response for the recent service.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
}

// Module consumes registry audit events and keeps a bounded recent-activity
// log for the monitoring surface.
type Module struct {
	mu      sync.RWMutex
	entries []Entry
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new audit module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		entries: make([]Entry, 0, maxEntries),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "audit"
}

// RegisterEventConsumers subscribes to the registry's audit events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MemberJoinedV1, m.handleMemberJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register MemberJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MemberLeftV1, m.handleMemberLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register MemberLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers: MemberJoined, MemberLeft, MessageSent")
	return nil
}

// RegisterServices registers the recent-activity request-reply service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRecent, json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Audit module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Audit module stopped", "entries", m.Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries": m.Len(),
		},
	}
}

// Len returns the number of logged entries.
func (m *Module) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Recent returns up to limit entries, newest last.
func (m *Module) Recent(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, limit)
	copy(out, m.entries[len(m.entries)-limit:])
	return out
}

func (m *Module) recent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	return RecentResponse{Entries: m.Recent(req.Limit)}, nil
}

func (m *Module) handleMemberJoined(_ context.Context, event events.MemberJoinedEvent, _ *mono.Msg) error {
	m.record(Entry{
		Type:      "join",
		Room:      event.Room,
		Username:  event.Username,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *Module) handleMemberLeft(_ context.Context, event events.MemberLeftEvent, _ *mono.Msg) error {
	m.record(Entry{
		Type:      "leave",
		Room:      event.Room,
		Username:  event.Username,
		Detail:    event.Reason,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.record(Entry{
		Type:      "message",
		Room:      event.Room,
		Username:  event.Username,
		Detail:    fmt.Sprintf("%d chars", event.Length),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *Module) record(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}
