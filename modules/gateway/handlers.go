package gateway

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultActivityLimit = 50

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	// Monitoring surface
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	api := m.app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/activity", m.recentActivity)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	stats, err := m.statusPort.Stats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to read registry stats",
		})
	}
	return c.JSON(HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now(),
		ActiveRooms: stats.ActiveRooms,
		ActiveUsers: stats.ActiveUsers,
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	rooms, err := m.statusPort.ListRooms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}
	return c.JSON(rooms)
}

// recentActivity handles GET /api/v1/activity.
func (m *Module) recentActivity(c *fiber.Ctx) error {
	limit := defaultActivityLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	entries, err := m.activityPort.Recent(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: "Failed to read recent activity",
		})
	}
	return c.JSON(entries)
}

// handleWebSocket runs the read loop for one client connection. Each
// connection gets an opaque id and a session dispatcher; the disconnect path
// always runs to completion before the connection is released.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	m.hub.Attach(connID, c)
	sess := NewSession(connID, m.registry, m.hub, m.logger)

	defer func() {
		sess.Disconnect()
		m.hub.Detach(connID)
		m.logger.Info("WebSocket client disconnected", "connID", connID)
	}()

	m.logger.Info("WebSocket client connected", "connID", connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Error("WebSocket read error", "connID", connID, "error", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(msgBytes, &env); err != nil {
			m.hub.EmitTo(connID, EventError, "invalid message format")
			continue
		}

		sess.Dispatch(env.Event, env.Payload)
	}
}
