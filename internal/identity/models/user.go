package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// User is the identity record. Its id is the value every other store copies;
// the record itself never leaves this service.
type User struct {
	ID                      uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email                   string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password                string         `gorm:"not null" json:"-"`
	FullName                string         `gorm:"size:255" json:"full_name"`
	Phone                   string         `gorm:"size:30" json:"phone,omitempty"`
	Role                    string         `gorm:"size:20;not null;default:'customer'" json:"role"`
	EmailVerified           bool           `gorm:"default:false" json:"email_verified"`
	VerificationToken       *string        `gorm:"size:64;index" json:"-"`
	VerificationTokenExpiry *time.Time     `json:"-"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`
}
