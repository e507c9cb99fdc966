package handlers

import (
	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/middleware"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings  *services.BookingService
	providers *services.ProviderService
}

func NewBookingHandler(bookings *services.BookingService, providers *services.ProviderService) *BookingHandler {
	return &BookingHandler{bookings: bookings, providers: providers}
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return badRequest(c, "Invalid token subject")
	}

	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	b, err := h.bookings.Create(c.Context(), actorID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBookingResponse(b))
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	actorID, bookingID, providerID, err := h.actors(c)
	if err != nil {
		return respondError(c, err)
	}

	b, err := h.bookings.Get(c.Context(), bookingID, actorID, providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingResponse(b))
}

func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	_, bookingID, providerID, err := h.actors(c)
	if err != nil {
		return respondError(c, err)
	}
	if providerID == uuid.Nil {
		return respondError(c, apperr.Authorizationf("only providers can confirm bookings"))
	}

	b, err := h.bookings.Confirm(c.Context(), bookingID, providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingResponse(b))
}

func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	_, bookingID, providerID, err := h.actors(c)
	if err != nil {
		return respondError(c, err)
	}
	if providerID == uuid.Nil {
		return respondError(c, apperr.Authorizationf("only providers can complete bookings"))
	}

	b, err := h.bookings.Complete(c.Context(), bookingID, providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingResponse(b))
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	actorID, bookingID, providerID, err := h.actors(c)
	if err != nil {
		return respondError(c, err)
	}

	b, err := h.bookings.Cancel(c.Context(), bookingID, actorID, providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingResponse(b))
}

func (h *BookingHandler) Delete(c *fiber.Ctx) error {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return badRequest(c, "Invalid token subject")
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	if err := h.bookings.Delete(c.Context(), bookingID, actorID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Booking deleted"})
}

func (h *BookingHandler) My(c *fiber.Ctx) error {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return badRequest(c, "Invalid token subject")
	}

	bookings, err := h.bookings.ForRequester(c.Context(), actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingList(bookings))
}

func (h *BookingHandler) MyUpcoming(c *fiber.Ctx) error {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return badRequest(c, "Invalid token subject")
	}

	bookings, err := h.bookings.UpcomingForRequester(c.Context(), actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingList(bookings))
}

func (h *BookingHandler) Provider(c *fiber.Ctx) error {
	providerID, err := h.requireProvider(c)
	if err != nil {
		return respondError(c, err)
	}

	bookings, err := h.bookings.ForProvider(c.Context(), providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingList(bookings))
}

func (h *BookingHandler) ProviderUpcoming(c *fiber.Ctx) error {
	providerID, err := h.requireProvider(c)
	if err != nil {
		return respondError(c, err)
	}

	bookings, err := h.bookings.UpcomingForProvider(c.Context(), providerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingList(bookings))
}

func (h *BookingHandler) All(c *fiber.Ctx) error {
	bookings, err := h.bookings.All(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBookingList(bookings))
}

// actors resolves the actor id, the :id route param, and the actor's
// provider profile id (uuid.Nil when the actor is not a provider).
func (h *BookingHandler) actors(c *fiber.Ctx) (actorID, bookingID, providerID uuid.UUID, err error) {
	actorID, err = middleware.ActorID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, apperr.Validationf("invalid token subject")
	}
	bookingID, err = uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, apperr.Validationf("invalid booking id")
	}

	p, err := h.providers.ByIdentity(c.Context(), actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	if p != nil {
		providerID = p.ID
	}
	return actorID, bookingID, providerID, nil
}

func (h *BookingHandler) requireProvider(c *fiber.Ctx) (uuid.UUID, error) {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid token subject")
	}

	p, err := h.providers.ByIdentity(c.Context(), actorID)
	if err != nil {
		return uuid.Nil, err
	}
	if p == nil {
		return uuid.Nil, apperr.Authorizationf("no provider profile for this account")
	}
	return p.ID, nil
}
