package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"plantstock/internal/auth"
	"plantstock/internal/config"
	"plantstock/internal/http"
	"plantstock/internal/inventory"
	"plantstock/internal/parts"
	"plantstock/internal/recordstore"
	"plantstock/internal/users"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Open the backing document store
	backend, err := recordstore.Open(cfg.StoreBackend, cfg.QdrantURL, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer func() {
		_ = backend.Close()
	}()
	store := recordstore.New(backend)
	slog.Info("Record store initialized", "backend", cfg.StoreBackend)

	// A missing collection at startup is fatal; it means the backing
	// store itself is unreachable or misconfigured.
	ctx := context.Background()
	for _, collection := range []string{cfg.UsersCollection, cfg.InventoryCollection, cfg.PartsCollection} {
		if err := store.GetOrCreateCollection(ctx, collection); err != nil {
			log.Fatalf("Failed to initialize collection %q: %v", collection, err)
		}
	}
	slog.Info("Collections ready",
		"users", cfg.UsersCollection,
		"inventory", cfg.InventoryCollection,
		"parts", cfg.PartsCollection)

	userService := users.NewService(store, cfg.UsersCollection)
	inventoryService := inventory.NewService(store, cfg.InventoryCollection)
	partsService := parts.NewService(store, cfg.PartsCollection)

	// Backfill ids on user records that predate the id metadata field
	if err := userService.MigrateLegacy(ctx); err != nil {
		log.Fatalf("Failed to migrate legacy user records: %v", err)
	}

	// Ensure the bootstrap admin account exists
	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	tokens := auth.NewManager([]byte(cfg.JWTSecret), cfg.TokenTTL)

	deps := &http.Deps{
		Tokens:           tokens,
		Users:            userService,
		Inventory:        inventoryService,
		Parts:            partsService,
		StoreBackend:     backend,
		HealthCollection: cfg.UsersCollection,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
