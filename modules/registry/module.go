package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chat-relay/events"
)

// Module wraps the room registry as a mono module. It owns the only shared
// mutable state in the process and exposes read-only snapshots as
// request-reply services for the monitoring surface.
type Module struct {
	registry *Registry
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the registry module with limits read from the environment.
func NewModule(logger types.Logger) *Module {
	return &Module{
		registry: NewRegistry(LimitsFromEnv(), logger),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// Registry returns the underlying registry for direct injection into the
// gateway (the synchronous session path does not go through the bus).
func (m *Module) Registry() *Registry {
	return m.registry
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.registry.setEventBus(bus)
}

// EmitEvents declares the audit events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MemberJoinedV1.ToBase(),
		events.MemberLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterServices registers the monitoring request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register list_rooms service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceStats, json.Unmarshal, json.Marshal, m.stats,
	); err != nil {
		return fmt.Errorf("failed to register stats service: %w", err)
	}

	m.logger.Info("Registered services: services.registry.{list_rooms,stats}")
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	limits := m.registry.Limits()
	m.logger.Info("Registry module started",
		"rateCap", limits.RateCap,
		"rateWindow", limits.RateWindow,
		"maxMessage", limits.MaxMessage)
	return nil
}

// Stop shuts down the module. Room state is process-local and needs no
// teardown beyond process exit.
func (m *Module) Stop(_ context.Context) error {
	rooms, connections := m.registry.Stats()
	m.logger.Info("Registry module stopped", "rooms", rooms, "connections", connections)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	rooms, connections := m.registry.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms": rooms,
			"active_users": connections,
		},
	}
}
