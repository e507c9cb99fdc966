package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ServiceID string `json:"service_id"`
	// Date is "2006-01-02", Time is "15:04".
	Date       string `json:"date"`
	Time       string `json:"time"`
	ProviderID string `json:"provider_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type BookingResponse struct {
	ID            uuid.UUID `json:"id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	RequesterName string    `json:"requester_name,omitempty"`
	ServiceID     uuid.UUID `json:"service_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	ProviderName  string    `json:"provider_name,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
