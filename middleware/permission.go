package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/utils"
)

// RequireRole lets the request through when the caller holds one of roles.
// Admins always pass.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		if role == RoleAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't have the required role to perform this action",
		})
	}
}

// RequireSelf checks that the route parameter names the caller, so a patient
// only reaches their own appointments and a hospital only its own queue.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) == RoleAdmin || c.Params(param) == UserID(c) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't have permission to perform this action",
		})
	}
}
