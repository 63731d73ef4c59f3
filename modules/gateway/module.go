package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/chat-relay/modules/audit"
	"github.com/example/chat-relay/modules/registry"
)

// Module is the transport layer: a Fiber HTTP server carrying the WebSocket
// endpoint, plus the read-only monitoring surface. The hot session path talks
// to the registry directly; monitoring endpoints go through the service
// container like any other consumer.
type Module struct {
	app          *fiber.App
	hub          *Hub
	registry     *registry.Registry
	statusPort   registry.StatusPort
	activityPort audit.ActivityPort
	port         string
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new gateway module.
func NewModule(logger types.Logger) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &Module{
		port:   port,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"registry", "audit"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "registry":
		m.statusPort = registry.NewStatusAdapter(container)
	case "audit":
		m.activityPort = audit.NewActivityAdapter(container)
	}
}

// SetRegistry injects the registry for the synchronous session path
// (called from main.go, like the service container this is wiring).
func (m *Module) SetRegistry(r *registry.Registry) {
	m.registry = r
}

// Start initializes the Fiber server and the broadcast hub.
func (m *Module) Start(_ context.Context) error {
	if m.registry == nil {
		return fmt.Errorf("registry dependency not set")
	}
	if m.statusPort == nil {
		return fmt.Errorf("registry service container not set")
	}
	if m.activityPort == nil {
		return fmt.Errorf("audit service container not set")
	}

	m.hub = NewHub(m.registry)

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(m.loggerMiddleware())

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:8080"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.setupRoutes()

	// Start server in goroutine with startup error detection.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("Gateway started", "port", m.port)
	return nil
}

// Stop drains client connections and shuts the server down.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	clients := m.hub.Count()
	m.hub.CloseAll()
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown gateway: %w", err)
	}
	m.logger.Info("Gateway stopped", "clients_disconnected", clients)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	healthy := m.app != nil
	message := "operational"
	if !healthy {
		message = "server not started"
	}
	details := map[string]any{
		"port": m.port,
	}
	if m.hub != nil {
		details["connected_clients"] = m.hub.Count()
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: details,
	}
}

// errorHandler handles Fiber errors.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware logs HTTP requests, skipping WebSocket upgrades.
func (m *Module) loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		m.logger.Debug("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode())
		return err
	}
}
