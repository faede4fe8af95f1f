package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/scheduling"
	"github.com/meinhoongagan/healthsphere/utils"
)

// respondError maps scheduling errors onto HTTP statuses. Unknown errors are
// logged and reported without detail.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrSlotTaken):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{Message: "SlotTaken"})
	case errors.Is(err, scheduling.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request",
			Error:   err.Error(),
		})
	case errors.Is(err, scheduling.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Not found",
			Error:   err.Error(),
		})
	case errors.Is(err, scheduling.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Invalid status transition",
			Error:   err.Error(),
		})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Internal server error",
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: message})
}
