package registry

import "github.com/example/chat-relay/domain/chat"

// Reasons recorded on MemberLeft audit events.
const (
	LeaveReasonLeave      = "leave"
	LeaveReasonDisconnect = "disconnect"
)

// Service names registered in the service container. The framework prefixes
// them with "services.registry." on the bus.
const (
	ServiceListRooms = "list_rooms"
	ServiceStats     = "stats"
)

// ListRoomsRequest is the request for the list_rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response for the list_rooms service.
type ListRoomsResponse struct {
	Rooms []chat.RoomInfo `json:"rooms"`
}

// StatsRequest is the request for the stats service.
type StatsRequest struct{}

// StatsResponse is the response for the stats service.
type StatsResponse struct {
	ActiveRooms int `json:"activeRooms"`
	ActiveUsers int `json:"activeUsers"`
}
