package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/notify"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// BookingService allocates slots and drives the booking lifecycle.
type BookingService struct {
	bookings  BookingStore
	providers ProviderDirectory
	catalog   ServiceCatalog
	notifier  notify.Notifier

	now func() time.Time
}

func NewBookingService(bookings BookingStore, providers ProviderDirectory, catalog ServiceCatalog, notifier notify.Notifier) *BookingService {
	return &BookingService{
		bookings:  bookings,
		providers: providers,
		catalog:   catalog,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Create books a slot for the requester. When the request names a provider,
// that provider must be active and free — there is no fallback to someone
// else. Without a preference the first free active provider wins, in stable
// profile-id order, so the same directory state always picks the same one.
//
// The conflict checks and the insert run in one transaction, and the insert
// itself is guarded by a unique index on (provider, date, slot), so two
// concurrent requests for the same slot cannot both succeed.
func (s *BookingService) Create(ctx context.Context, requesterID uuid.UUID, req dto.CreateBookingRequest) (*models.Booking, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperr.Validationf("service_id must be a valid uuid")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperr.Validationf("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(slotLayout, req.Time); err != nil {
		return nil, apperr.Validationf("time must be in HH:MM format")
	}

	// Date-only comparison: booking for later today is fine.
	n := s.now()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, apperr.Validationf("cannot book a date in the past")
	}

	svc, err := s.catalog.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperr.NotFoundf("service not found")
	}
	if !svc.Active {
		return nil, apperr.Validationf("service is not active")
	}

	var preferred *uuid.UUID
	if req.ProviderID != "" {
		id, err := uuid.Parse(req.ProviderID)
		if err != nil {
			return nil, apperr.Validationf("provider_id must be a valid uuid")
		}
		preferred = &id
	}

	booking := &models.Booking{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ServiceID:   serviceID,
		Date:        date,
		TimeSlot:    req.Time,
		Status:      models.StatusPending,
		Notes:       req.Notes,
	}

	err = s.bookings.InTx(ctx, func(tx BookingStore) error {
		busy, err := tx.RequesterBusy(ctx, requesterID, date, req.Time)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflictf("you already have a booking at this time")
		}

		if preferred != nil {
			providerID, err := s.pickPreferred(ctx, tx, *preferred, date, req.Time)
			if err != nil {
				return err
			}
			booking.ProviderID = providerID
		} else {
			providerID, err := s.pickFirstFree(ctx, tx, date, req.Time)
			if err != nil {
				return err
			}
			booking.ProviderID = providerID
		}

		if err := tx.Create(ctx, booking); err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return apperr.Conflictf("provider is not available at this time")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBooking(ctx, booking, "booking.created", "Booking received",
		fmt.Sprintf("Your booking on %s at %s is pending confirmation.", req.Date, req.Time))
	return booking, nil
}

// pickPreferred validates the requested provider without any fallback.
func (s *BookingService) pickPreferred(ctx context.Context, tx BookingStore, id uuid.UUID, date time.Time, slot string) (uuid.UUID, error) {
	p, err := s.providers.ByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if p == nil {
		return uuid.Nil, apperr.NotFoundf("provider not found")
	}
	if !p.Active {
		return uuid.Nil, apperr.Conflictf("provider is not active")
	}
	busy, err := tx.ProviderBusy(ctx, id, date, slot)
	if err != nil {
		return uuid.Nil, err
	}
	if busy {
		return uuid.Nil, apperr.Conflictf("provider is not available at this time")
	}
	return id, nil
}

// pickFirstFree walks the active providers in their stable order and takes
// the first one without a booking at the slot.
func (s *BookingService) pickFirstFree(ctx context.Context, tx BookingStore, date time.Time, slot string) (uuid.UUID, error) {
	providers, err := s.providers.ActiveOrdered(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	for i := range providers {
		busy, err := tx.ProviderBusy(ctx, providers[i].ID, date, slot)
		if err != nil {
			return uuid.Nil, err
		}
		if !busy {
			return providers[i].ID, nil
		}
	}
	return uuid.Nil, apperr.Conflictf("no provider available at this time")
}

// Confirm moves a pending booking to confirmed. Only the assigned provider
// may confirm.
func (s *BookingService) Confirm(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.ownedByProvider(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case models.StatusPending:
		// ok
	case models.StatusConfirmed:
		return nil, apperr.InvalidTransitionf("booking already confirmed")
	case models.StatusCancelled:
		return nil, apperr.InvalidTransitionf("cannot confirm a cancelled booking")
	default:
		return nil, apperr.InvalidTransitionf("cannot confirm a completed booking")
	}

	b.Status = models.StatusConfirmed
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	s.notifyBooking(ctx, b, "booking.confirmed", "Booking confirmed",
		fmt.Sprintf("Your booking on %s at %s is confirmed.", b.Date.Format(dateLayout), b.TimeSlot))
	return b, nil
}

// Complete closes out a booking. Only the assigned provider may complete,
// from pending or confirmed; a walk-in can be completed without an explicit
// confirmation step.
func (s *BookingService) Complete(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.ownedByProvider(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case models.StatusPending, models.StatusConfirmed:
		// ok
	case models.StatusCancelled:
		return nil, apperr.InvalidTransitionf("cannot complete a cancelled booking")
	default:
		return nil, apperr.InvalidTransitionf("booking already completed")
	}

	b.Status = models.StatusCompleted
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelByRequester cancels the requester's own booking while it is still
// pending or confirmed.
func (s *BookingService) CancelByRequester(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	b, err := s.ownedByRequester(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, b)
}

// Cancel dispatches on who the actor is: the requester may cancel their own
// booking, the assigned provider theirs. providerID is uuid.Nil when the
// actor has no provider profile.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.byID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RequesterID != actorID && (providerID == uuid.Nil || b.ProviderID != providerID) {
		return nil, apperr.Authorizationf("this booking does not belong to you")
	}
	return s.cancel(ctx, b)
}

// CancelByProvider cancels a booking assigned to the provider.
func (s *BookingService) CancelByProvider(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.ownedByProvider(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, b)
}

func (s *BookingService) cancel(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	switch b.Status {
	case models.StatusPending, models.StatusConfirmed:
		// ok
	case models.StatusCancelled:
		return nil, apperr.InvalidTransitionf("booking already cancelled")
	default:
		return nil, apperr.InvalidTransitionf("cannot cancel a completed booking")
	}

	b.Status = models.StatusCancelled
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	s.notifyBooking(ctx, b, "booking.cancelled", "Booking cancelled",
		fmt.Sprintf("The booking on %s at %s was cancelled.", b.Date.Format(dateLayout), b.TimeSlot))
	return b, nil
}

// Delete removes the requester's booking outright. This is not a lifecycle
// transition: the row goes away whatever its status, freeing the slot.
func (s *BookingService) Delete(ctx context.Context, bookingID, requesterID uuid.UUID) error {
	b, err := s.ownedByRequester(ctx, bookingID, requesterID)
	if err != nil {
		return err
	}
	return s.bookings.Delete(ctx, b)
}

// Get returns a booking to its requester or its assigned provider. The
// providerID is the caller's provider profile id, uuid.Nil when the caller
// has none.
func (s *BookingService) Get(ctx context.Context, bookingID, actorID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.byID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RequesterID != actorID && (providerID == uuid.Nil || b.ProviderID != providerID) {
		return nil, apperr.Authorizationf("this booking does not belong to you")
	}
	return b, nil
}

func (s *BookingService) ForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ForRequester(ctx, requesterID)
}

func (s *BookingService) UpcomingForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.UpcomingForRequester(ctx, requesterID)
}

func (s *BookingService) ForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ForProvider(ctx, providerID)
}

func (s *BookingService) UpcomingForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.UpcomingForProvider(ctx, providerID)
}

func (s *BookingService) All(ctx context.Context) ([]models.Booking, error) {
	return s.bookings.All(ctx)
}

func (s *BookingService) byID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFoundf("booking not found")
	}
	return b, nil
}

func (s *BookingService) ownedByRequester(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	b, err := s.byID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RequesterID != requesterID {
		return nil, apperr.Authorizationf("this booking does not belong to you")
	}
	return b, nil
}

func (s *BookingService) ownedByProvider(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	b, err := s.byID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, apperr.Authorizationf("this booking does not belong to you")
	}
	return b, nil
}

// notifyBooking addresses the requester and is best effort: a dead broker
// never fails the operation that triggered it.
func (s *BookingService) notifyBooking(ctx context.Context, b *models.Booking, key, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, b.RequesterID.String(), key, subject, body); err != nil {
		slog.Warn("booking notification failed",
			"booking_id", b.ID, "recipient", b.RequesterID, "key", key, "error", err.Error())
	}
}
