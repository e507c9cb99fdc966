package seed

import (
	"log/slog"

	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/identity/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin creates the bootstrap admin identity when configured and not
// already present.
func EnsureAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var existing models.User
	if err := db.Where("email = ?", cfg.SeedAdminEmail).First(&existing).Error; err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		ID:            uuid.New(),
		Email:         cfg.SeedAdminEmail,
		Password:      string(hash),
		FullName:      "Administrator",
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	slog.Info("seeded admin identity", "email", cfg.SeedAdminEmail)
	return nil
}
