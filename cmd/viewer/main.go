// Path: cmd/viewer/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalog-viewer/internal/config"
	"catalog-viewer/internal/delivery/rest"
	"catalog-viewer/internal/delivery/ui"
	"catalog-viewer/internal/events"
	"catalog-viewer/internal/fetcher"
	"catalog-viewer/internal/service"
	"catalog-viewer/internal/storage"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(2)
	}
	log := cfg.Log.NewLogger()
	slog.SetDefault(log)

	// 2. Setup Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Initialize Session Storage
	var sessions service.SessionStorage = storage.NewMemorySessionStorage()
	if cfg.Database.URI != "" {
		log.Info("connecting to MongoDB...")
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer mongoClient.Disconnect(context.Background())
		db := mongoClient.Database(cfg.Database.Name)
		sessions = storage.NewMongoSessionStorage(db, cfg.Database.SessionCollection)
	}

	sessionID := cfg.Session.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// 4. Initialize Components
	broker := events.NewBroker()
	client := fetcher.NewClient(cfg.API)
	viewer := service.NewService(cfg.Catalog, client, sessions, broker, log, sessionID)

	// 5. Load the first page. A failed fetch still leaves an empty, usable view.
	view := viewer.Start(ctx)
	log.Info("viewer ready", "session", sessionID, "products", len(view.Products), "pages", view.Pagination.PageCount)

	// 6. Initialize and Start the HTTP Server
	router := rest.NewRouter(viewer, broker, ui.NewHandlers(viewer))
	server := rest.NewServer(ctx, cfg.Server.Port, router)
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "err", err)
			cancel()
		}
	}()

	// 7. Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("error during HTTP server shutdown", "err", err)
	}

	log.Info("server shut down successfully")
}
