package handlers

import (
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/models"
)

func toBookingResponse(b *models.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:          b.ID,
		RequesterID: b.RequesterID,
		ServiceID:   b.ServiceID,
		ProviderID:  b.ProviderID,
		Date:        b.Date.Format("2006-01-02"),
		Time:        b.TimeSlot,
		Status:      b.Status,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
	}
}

func toBookingList(bookings []models.Booking) dto.BookingListResponse {
	out := dto.BookingListResponse{
		Bookings: make([]dto.BookingResponse, 0, len(bookings)),
		Total:    len(bookings),
	}
	for i := range bookings {
		out.Bookings = append(out.Bookings, toBookingResponse(&bookings[i]))
	}
	return out
}

func toProviderResponse(p *models.Provider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:          p.ID,
		IdentityID:  p.IdentityID,
		FullName:    p.Identity.FullName,
		Email:       p.Identity.Email,
		Bio:         p.Bio,
		Specialties: []string(p.Specialties),
		Rating:      p.Rating,
		Active:      p.Active,
	}
}

func toServiceResponse(s *models.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		Active:          s.Active,
	}
}
