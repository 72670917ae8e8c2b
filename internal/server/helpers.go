package server

import (
	"strconv"

	"biling/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID parses a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + param + " parameter")
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return 0, models.NewUnauthorizedError("Authentication required")
	}
	return userID, nil
}

// respondServiceError writes the response for a service-layer error using the
// status that the error's kind maps to.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
