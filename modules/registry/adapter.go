package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/chat-relay/domain/chat"
)

// StatusPort is the read-only monitoring interface other modules consume.
type StatusPort interface {
	ListRooms(ctx context.Context) ([]chat.RoomInfo, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

// statusAdapter implements StatusPort over the registry service container.
type statusAdapter struct {
	container mono.ServiceContainer
}

// NewStatusAdapter creates a StatusPort backed by the registry's services.
func NewStatusAdapter(container mono.ServiceContainer) StatusPort {
	if container == nil {
		panic("registry: ServiceContainer is nil")
	}
	return &statusAdapter{container: container}
}

// ListRooms returns the monitoring snapshot of all rooms.
func (a *statusAdapter) ListRooms(ctx context.Context) ([]chat.RoomInfo, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// Stats returns the current room and bound-connection counts.
func (a *statusAdapter) Stats(ctx context.Context) (StatsResponse, error) {
	req := StatsRequest{}
	var resp StatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return StatsResponse{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return resp, nil
}
