package db

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gym-checkin-backend/config"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

// SeedAdmin creates the configured administrator unless a user with that email
// exists. It reports whether a user was created.
func SeedAdmin(ctx context.Context, users store.UserRepository, cfg config.AdminConfig) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	existing, err := users.FindByEmail(ctx, cfg.Email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	return true, nil
}
