package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"jobscout/internal/errors"
)

// httpStatus maps the domain error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrTypeConflict:
		return http.StatusConflict
	case errors.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(httpStatus(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
