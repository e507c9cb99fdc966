package handlers

import (
	"context"

	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProviderHandler struct {
	providers *services.ProviderService
}

func NewProviderHandler(providers *services.ProviderService) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// Provision accepts a provisioning intent from the identity service. The
// materialization runs detached from the request context: the caller's
// delivery timeout must not abort an insert that is still waiting for the
// identity to replicate.
func (h *ProviderHandler) Provision(c *fiber.Ctx) error {
	var req dto.ProvisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.providers.Provision(context.WithoutCancel(c.Context()), req.IdentityID, req.Bio, req.Specialties)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toProviderResponse(p))
}

func (h *ProviderHandler) List(c *fiber.Ctx) error {
	providers, err := h.providers.ListActive(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		out = append(out, toProviderResponse(&providers[i]))
	}
	return c.JSON(out)
}

func (h *ProviderHandler) ListAll(c *fiber.Ctx) error {
	providers, err := h.providers.ListAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		out = append(out, toProviderResponse(&providers[i]))
	}
	return c.JSON(out)
}

func (h *ProviderHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid provider id")
	}

	p, err := h.providers.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProviderResponse(p))
}

func (h *ProviderHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid provider id")
	}

	var req dto.UpdateProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.providers.Update(c.Context(), id, req.Bio, req.Specialties, req.Active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProviderResponse(p))
}

func (h *ProviderHandler) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid provider id")
	}

	if err := h.providers.Deactivate(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Provider deactivated"})
}
