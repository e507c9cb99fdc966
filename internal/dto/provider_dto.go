package dto

import "github.com/google/uuid"

// ProvisionRequest is the cross-service provisioning intent body. Safe to
// deliver more than once with the same content.
type ProvisionRequest struct {
	IdentityID  uuid.UUID `json:"identity_id"`
	Bio         string    `json:"bio,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
}

type UpdateProviderRequest struct {
	Bio         *string  `json:"bio,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type ProviderResponse struct {
	ID          uuid.UUID `json:"id"`
	IdentityID  uuid.UUID `json:"identity_id"`
	FullName    string    `json:"full_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Bio         string    `json:"bio"`
	Specialties []string  `json:"specialties"`
	Rating      float64   `json:"rating"`
	Active      bool      `json:"active"`
}

type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Active          bool      `json:"active"`
}
