package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Provider makes an identity bookable. At most one row per identity; the
// unique index doubles as the concurrency control for duplicate
// provisioning intents.
type Provider struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	IdentityID  uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"identity_id"`
	Bio         string                      `gorm:"type:text" json:"bio"`
	Specialties datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"specialties"`
	Rating      float64                     `gorm:"type:numeric(3,2);default:0" json:"rating"`
	Active      bool                        `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	Identity IdentityRef `gorm:"foreignKey:IdentityID;references:ID" json:"-"`
}
