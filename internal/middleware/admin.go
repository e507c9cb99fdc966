package middleware

import (
	"strings"

	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired allows through requests carrying the admin role claim, an
// email from the configured admin list, or the operator token header. The
// scheduling service has no user table of its own, so the claim is the
// source of truth there.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		if ActorRole(c) == "admin" {
			return c.Next()
		}

		if contains(adminEmails, ActorEmail(c)) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
