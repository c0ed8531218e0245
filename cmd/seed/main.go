// seed inserts a development admin user for local testing.
// Idempotent: skips the insert if the admin (admin@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"auth-session-gateway/internal/config"
	"auth-session-gateway/internal/db"
	userdomain "auth-session-gateway/internal/user/domain"
	userrepo "auth-session-gateway/internal/user/repository"
)

const (
	adminEmail = "admin@example.com"
	adminName  = "Dev Admin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		fmt.Fprintln(os.Stderr, "seed: refusing to run in production")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(database)
	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("lookup admin: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", adminEmail)
		return
	}

	now := time.Now().UTC()
	admin := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     adminEmail,
		Name:      adminName,
		Role:      userdomain.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("seed: created admin user %s (%s)", adminEmail, admin.ID)
}
