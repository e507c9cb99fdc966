package models

import (
	"time"

	"github.com/google/uuid"
)

// IdentityRef is the read-only projection of the identity store's users
// table, maintained by replication outside this service. It exists so
// providers.identity_id can carry a real foreign key: the replication-lag
// race then shows up as a constraint failure the provisioning consumer can
// classify and retry.
type IdentityRef struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (IdentityRef) TableName() string { return "users" }
