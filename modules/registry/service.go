package registry

import (
	"context"

	"github.com/go-monolith/mono"
)

// listRooms serves the list_rooms request-reply service.
func (m *Module) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.registry.ListRooms()}, nil
}

// stats serves the stats request-reply service.
func (m *Module) stats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	rooms, connections := m.registry.Stats()
	return StatsResponse{
		ActiveRooms: rooms,
		ActiveUsers: connections,
	}, nil
}
