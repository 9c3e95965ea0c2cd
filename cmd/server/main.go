/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation management server. Handles
  configuration, dependency injection and graceful shutdown. All state is
  constructed here and passed down; nothing is a package-level singleton.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Open the store (SQLite file, or in-memory when -db is empty)
  3. Optionally load the demo scenario
  4. Wire handler + router
  5. Start server with graceful shutdown

CONFIGURATION:
  -port / PORT              HTTP server port (default: 8080)
  -db / VACATION_DB         SQLite database path; empty = memory-resident
                            state that resets on restart, ":memory:" =
                            SQLite in-memory
  -seed                     Load the demo scenario on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/realcore/vacation-hub/api"
	"github.com/realcore/vacation-hub/store/sqlite"
	"github.com/realcore/vacation-hub/vacation"
	memstore "github.com/realcore/vacation-hub/vacation/store"
)

func main() {
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", os.Getenv("VACATION_DB"), "SQLite database path (empty = in-memory state)")
	seed := flag.Bool("seed", false, "load the demo scenario on startup")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Store selection: file-backed SQLite, or memory-resident state that
	// resets on restart.
	var store vacation.Store
	if *dbPath == "" {
		store = memstore.NewMemory()
		logger.Info("using in-memory store; state resets on restart")
	} else {
		sqlStore, err := sqlite.New(*dbPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", *dbPath), zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("using sqlite store", zap.String("path", *dbPath))
	}

	if *seed {
		if err := api.SeedDemo(context.Background(), store); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		logger.Info("demo scenario loaded")
	}

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
