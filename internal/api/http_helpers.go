package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/niatrack/nia/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError translates service sentinels into HTTP statuses; anything
// unrecognized is a 500 with a generic body so storage details stay inside.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAggregateMissing):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAggregateConflict):
		return apiError(c, fiber.StatusConflict, "concurrent update, retry")
	case errors.Is(err, services.ErrNoActivePeriod):
		return apiError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	default:
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	validation := []error{
		services.ErrAnchorRequired,
		services.ErrInvalidAnchorDate,
		services.ErrAnchorInFuture,
		services.ErrInvalidCycleLength,
		services.ErrInvalidPeriodLength,
		services.ErrInvalidEntryDate,
		services.ErrInvalidFlow,
		services.ErrInvalidEnergy,
		services.ErrInvalidPainLevel,
		services.ErrInvalidTransactionType,
		services.ErrInvalidAmount,
		services.ErrMissingAccount,
		services.ErrMissingCategory,
		services.ErrMalformedDate,
		services.ErrInvalidCursor,
	}
	for _, candidate := range validation {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
