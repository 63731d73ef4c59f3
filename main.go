package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/chat-relay/modules/audit"
	"github.com/example/chat-relay/modules/gateway"
	"github.com/example/chat-relay/modules/registry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Chat Relay - room-based WebSocket chat server ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	registryModule := registry.NewModule(app.Logger())
	auditModule := audit.NewModule(app.Logger())
	gatewayModule := gateway.NewModule(app.Logger())

	// The session path is synchronous in-memory work; the registry is
	// injected directly rather than reached over the bus.
	gatewayModule.SetRegistry(registryModule.Registry())

	// Register modules with the framework.
	// Order: core state first, then consumers, then the transport.
	app.Register(registryModule) // room/session registry + audit event emitter
	app.Register(auditModule)    // activity log (event consumer)
	app.Register(gatewayModule)  // Fiber HTTP/WebSocket server

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Monitoring endpoints (http://localhost:%s):", port)
	log.Println("  GET /health           - Process status, room and user counts")
	log.Println("  GET /api/v1/rooms     - Per-room member counts and usernames")
	log.Println("  GET /api/v1/activity  - Recent join/leave/message activity")
	log.Println("")
	log.Printf("WebSocket endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Client events: join_room, send_message, typing, leave_room")
	log.Println("  Server events: room_users, user_list_update, receive_message, user_typing, error")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
