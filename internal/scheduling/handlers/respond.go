package handlers

import (
	"log/slog"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func respondError(c *fiber.Ctx, err error) error {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case apperr.Conflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case apperr.NotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case apperr.Authorization:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case apperr.InvalidTransition:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case apperr.Transient:
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	}

	slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
