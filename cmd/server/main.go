/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the allocation simulation service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional simulation config file)
  2. Initialize SQLite-backed legacy repository
  3. Build the simulation runner and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: billing.db)
           Use ":memory:" for an in-memory database
  -config  Optional JSON simulation config file (policy, cycle start
           day, workers)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run against a legacy database snapshot
  ./server -db="./data/billing.db"

  # Run in-memory with scenarios
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Repository implementation
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

	"github.com/warp/allocation-engine/api"
	"github.com/warp/allocation-engine/factory"
	"github.com/warp/allocation-engine/simulation"
	"github.com/warp/allocation-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "billing.db", "SQLite database path")
	configPath := flag.String("config", "", "JSON simulation config file")
	flag.Parse()

	// Simulation configuration
	cfg := &factory.SimulationConfig{PolicyName: factory.PolicyCorrected, CycleStartDay: 1, Workers: 4}
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		cfg, err = factory.ParseConfig(string(raw))
		if err != nil {
			log.Fatalf("Failed to parse config: %v", err)
		}
	}

	// Legacy repository
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Runner and handler
	runner := simulation.NewRunner(store, cfg.CycleConfig())
	runner.Workers = cfg.Workers
	handler := api.NewHandler(store, runner, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	// Start server
	go func() {
		log.Printf("Allocation simulation service listening on :%d (db: %s, policy: %s)",
			*port, *dbPath, cfg.PolicyName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
