package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meinhoongagan/healthsphere/utils"
)

// Roles carried in the "role" claim.
const (
	RolePatient  = "patient"
	RoleDoctor   = "doctor"
	RoleHospital = "hospital"
	RoleAdmin    = "admin"
)

// Protected verifies the bearer token and exposes the caller as the "userID"
// and "role" locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwtware.HS256,
		ErrorHandler:  jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "No authentication token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Invalid token claims")
			}

			userID, err := extractUserID(claims)
			if err != nil {
				return unauthorized(c, "Invalid user ID in token")
			}
			role, err := extractRole(claims)
			if err != nil {
				return unauthorized(c, "Invalid role in token")
			}

			c.Locals("userID", userID)
			c.Locals("role", role)
			return c.Next()
		},
	})
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

// extractUserID handles the numeric and string forms of the id claim
func extractUserID(claims jwt.MapClaims) (string, error) {
	switch v := claims["id"].(type) {
	case nil:
		return "", fmt.Errorf("no ID found in claims")
	case string:
		if v == "" {
			return "", fmt.Errorf("empty ID in claims")
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported ID type: %T", v)
	}
}

// extractRole handles multiple potential formats of role in token
func extractRole(claims jwt.MapClaims) (string, error) {
	switch v := claims["role"].(type) {
	case nil:
		return "", fmt.Errorf("no role found in claims")
	case string:
		return v, nil
	case map[string]interface{}:
		if roleName, ok := v["name"].(string); ok {
			return roleName, nil
		}
		return "", fmt.Errorf("could not extract role name")
	default:
		return "", fmt.Errorf("unsupported role type: %T", v)
	}
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid or expired token",
		Error:   err.Error(),
	})
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: message,
		Error:   "Unauthorized",
	})
}
