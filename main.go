package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clearance/portal/api"
	"clearance/portal/clearanceapi"
	"clearance/portal/config"
	"clearance/portal/database"
	"clearance/portal/handlers"
	"clearance/portal/middleware"
	"clearance/portal/security"
	"clearance/portal/services"
	"clearance/portal/session"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Printf("Starting with %s", cfg)

	// Use an encryption key from environment or a default one
	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("ENCRYPTION_KEY must be set outside development")
		}
		log.Println("Warning: ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = "default-key-for-development-only"
	}
	cipher := security.NewCipher(encryptionKey)

	// Initialize database and run migrations
	if err := database.InitDB(cfg.DBPath); err != nil {
		log.Fatal(err)
	}
	defer database.DB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store session.Store
	sqliteStore := session.NewSQLiteStore(database.DB, cipher)
	store = sqliteStore

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis unavailable at %s, keeping sessions in SQLite: %v", cfg.RedisAddr, err)
			rdb.Close()
		} else {
			log.Printf("Storing sessions in Redis at %s", cfg.RedisAddr)
			store = session.NewRedisStore(rdb, cipher)
			defer rdb.Close()
		}
	}

	// Redis expires its own keys; only the SQLite table needs sweeping
	if _, ok := store.(*session.SQLiteStore); ok {
		services.StartScheduler(ctx, cfg.SweepInterval, sqliteStore)
	}

	client := clearanceapi.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	auth := services.NewAuthService(client, store, cfg.RoleNames)
	auth.AvatarMaxSide = cfg.AvatarMaxSide

	portal := handlers.NewPortal(client, auth, cfg.DefaultRole, cfg.SecureCookies)

	var csrfKey []byte
	switch {
	case len(cfg.CSRFKey) >= 32:
		csrfKey = []byte(cfg.CSRFKey[:32])
	case cfg.IsDevelopment():
		log.Println("Warning: CSRF_KEY not set or shorter than 32 bytes, using a development key")
		csrfKey = []byte("development-csrf-key-32-bytes!!!")
	default:
		log.Fatal("CSRF_KEY must be at least 32 bytes outside development")
	}

	server := api.NewServer(portal, store, api.Options{
		SecureCookies: cfg.SecureCookies,
		CSRFKey:       csrfKey,
		CORSOrigins:   middleware.ParseOrigins(cfg.CORSOrigins),
		Development:   cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
