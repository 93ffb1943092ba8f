package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"metron/internal/access"
	"metron/internal/auth"
	"metron/internal/config"
	"metron/internal/storage"
	"metron/internal/storage/memory"
	"metron/internal/storage/postgres"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		f, err := config.OpenLogFile(cfg.LogDir, cfg.LogKeep)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = io.MultiWriter(os.Stdout, f)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_driver", cfg.StorageDriver,
	)

	ctx := context.Background()

	var driver storage.Driver
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage, data will not survive a restart")
		driver = memory.NewStore()
	default:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		if err := postgres.RunMigrations(ctx, pool, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("database connected", "max_conns", 25, "min_conns", 5)
		driver = postgres.NewStore(pool, logger)
	}
	defer driver.Close()

	// Identity provider is optional: without a JWKS URL every mutation is
	// attributed to the system actor.
	var identity auth.IdentityProvider
	if cfg.JWKSURL != "" {
		var err error
		identity, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create identity provider: %v", err)
		}
		defer identity.Close()
	}

	registry, err := access.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize permission registry: %v", err)
	}
	logger.Info("permission registry initialized", "roles", registry.Roles())

	// Minimal ops surface. Entity routing lives in the services consuming
	// this core, not here.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
