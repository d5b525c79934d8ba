package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"clearance/portal/config"
	"clearance/portal/database"
	"clearance/portal/security"
	"clearance/portal/services"
	"clearance/portal/session"
)

func main() {
	sweep := flag.Bool("sweep", false, "Delete stored sessions whose tokens have expired")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database connection and run migrations
	if err := database.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.DB.Close()

	fmt.Println("Migrations completed successfully!")

	if *sweep {
		// Sweeping reads the stored expiry column and never decrypts tokens
		store := session.NewSQLiteStore(database.DB, security.NewCipher(cfg.EncryptionKey))
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n := services.SweepOnce(ctx, store, time.Now())
		fmt.Printf("Removed %d expired sessions\n", n)
	}
}
