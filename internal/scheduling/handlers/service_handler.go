package handlers

import (
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ServiceHandler struct {
	catalog *services.CatalogService
}

func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

func (h *ServiceHandler) List(c *fiber.Ctx) error {
	list, err := h.catalog.ListActive(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ServiceResponse, 0, len(list))
	for i := range list {
		out = append(out, toServiceResponse(&list[i]))
	}
	return c.JSON(out)
}

func (h *ServiceHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid service id")
	}

	svc, err := h.catalog.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toServiceResponse(svc))
}

type createServiceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var req createServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	svc, err := h.catalog.Create(c.Context(), req.Name, req.Description, req.DurationMinutes, req.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toServiceResponse(svc))
}

func (h *ServiceHandler) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid service id")
	}

	if err := h.catalog.Deactivate(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Service deactivated"})
}
