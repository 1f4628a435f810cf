/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Payroll Batch Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Wire the batch action backend (HTTP remote or local simulator)
  4. Create API handler and router
  5. Start the employee count refresher
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: payroll.db)
            Use ":memory:" for in-memory database
  -remote   Base URL of the payroll processing service.
            Empty runs the built-in local simulator.
  -refresh  Interval for the background employee count refresher
            (default: 15m, 0 disables it)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Stop the count refresher
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database and the local simulator
  ./server -db="./data/payroll.db"

  # Run against a real processing service
  ./server -remote="http://payroll-core:9000/api"

SEE ALSO:
  - api/server.go: Router configuration
  - api/refresher.go: Background count refresher
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/remote"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "payroll.db", "SQLite database path")
	remoteURL := flag.String("remote", "", "base URL of the payroll processing service (empty = local simulator)")
	refresh := flag.Duration("refresh", 15*time.Minute, "employee count refresh interval (0 disables)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Batch actions run against a remote service when configured,
	// otherwise against the local simulator backed by the same store.
	var actions payroll.BatchActions
	if *remoteURL != "" {
		actions = remote.NewClient(*remoteURL)
		log.Printf("Using remote payroll service at %s", *remoteURL)
	} else {
		actions = remote.NewLocal(store, store)
		log.Printf("Using local payroll simulator")
	}

	// Initialize handler and router
	handler := api.NewHandler(store, actions)
	router := api.NewRouter(handler)

	// Background refresher keeps draft batch employee counts current
	refresher := api.NewCountRefresher(store)
	if *refresh > 0 {
		refresher.CheckInterval = *refresh
		refresher.Start()
		defer refresher.Stop()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
