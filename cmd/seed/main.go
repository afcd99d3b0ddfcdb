// seed creates the initial superuser from SEED_EMAIL and SEED_PASSWORD.
// Idempotent: exits cleanly when the account already exists.
package main

import (
	"context"
	"log"

	"github.com/monok8i/users-service/internal/config"
	"github.com/monok8i/users-service/internal/db"
	"github.com/monok8i/users-service/internal/security"
	"github.com/monok8i/users-service/internal/user/domain"
	userrepo "github.com/monok8i/users-service/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD are required")
	}

	email := domain.NormalizeEmail(cfg.SeedEmail)
	if err := domain.ValidateEmail(email); err != nil {
		log.Fatalf("seed email: %v", err)
	}
	if err := domain.ValidatePassword(cfg.SeedPassword); err != nil {
		log.Fatalf("seed password: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	repo := userrepo.NewPostgresRepository(pool)
	existing, err := repo.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", email)
		return
	}

	hashed, err := security.NewHasher(cfg.BcryptCost).Hash(cfg.SeedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := &domain.User{
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		IsActivated:    true,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatalf("create superuser: %v", err)
	}

	log.Printf("Seed completed: superuser %s (id %d)", user.Email, user.ID)
}
