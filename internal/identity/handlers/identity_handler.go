package handlers

import (
	"github.com/clipbook/backend/internal/identity/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IdentityHandler serves the read endpoint other services resolve copied
// identity ids against.
type IdentityHandler struct {
	authService *services.AuthService
}

func NewIdentityHandler(authService *services.AuthService) *IdentityHandler {
	return &IdentityHandler{authService: authService}
}

func (h *IdentityHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid identity id")
	}

	resp, err := h.authService.GetIdentity(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
