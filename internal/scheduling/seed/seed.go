package seed

import (
	"log/slog"

	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureCatalog seeds the default service catalog on an empty store.
func EnsureCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Service{
		{ID: uuid.New(), Name: "Haircut", Description: "Classic haircut", DurationMinutes: 30, Price: 25, Active: true},
		{ID: uuid.New(), Name: "Beard Trim", Description: "Beard shaping and trim", DurationMinutes: 15, Price: 12, Active: true},
		{ID: uuid.New(), Name: "Haircut & Beard", Description: "Full cut with beard trim", DurationMinutes: 45, Price: 34, Active: true},
		{ID: uuid.New(), Name: "Hot Towel Shave", Description: "Traditional straight razor shave", DurationMinutes: 30, Price: 20, Active: true},
	}
	if err := db.Create(&defaults).Error; err != nil {
		return err
	}

	slog.Info("seeded service catalog", "services", len(defaults))
	return nil
}
