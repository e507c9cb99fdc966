package repository

import (
	"github.com/clipbook/backend/internal/logging"
	"github.com/clipbook/backend/internal/scheduling/models"
	"gorm.io/gorm"
)

// Migrate creates the scheduling schema. The partial unique index cannot be
// expressed with struct tags, so it is created by hand: one non-cancelled
// booking per provider and slot, while cancelled rows keep their history
// without blocking rebooking.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.IdentityRef{},
		&models.Provider{},
		&models.Service{},
		&models.Booking{},
		&logging.SystemLog{},
	); err != nil {
		return err
	}

	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_provider_slot
		ON bookings (provider_id, date, time_slot)
		WHERE status <> 'CANCELLED'`).Error
}
