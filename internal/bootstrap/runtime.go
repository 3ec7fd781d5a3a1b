// Package bootstrap wires the runtime dependencies shared by the server and
// the command line tools.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups inserts the built-in groups when they are missing.
	SeedGroups bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in
// groups. The Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedGroups {
		if _, err := seed.Groups(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
	}

	return db, r, nil
}

// EnsureDevAdmin creates or promotes the DEV_ADMIN_USERNAME staff account in
// development. It does nothing elsewhere or when the credentials are unset.
func EnsureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" || cfg.DevAdminPassword == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{Username: username, Password: string(hashed), IsStaff: true}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			log.Printf("development admin %q created", username)
		case findErr != nil:
			return findErr
		default:
			if err := tx.Model(&models.User{}).Where("id = ?", admin.ID).
				Updates(map[string]any{"is_staff": true, "password": string(hashed)}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
