package server

import (
	"github.com/gofiber/fiber/v2"

	"jobscout/internal/errors"
	"jobscout/internal/models"
)

func (s *Server) getProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	profile, err := s.profiles.GetByUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// putProfile replaces the user's profile. The user id always comes from the
// token, never from the body.
func (s *Server) putProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		return respondError(c, errors.InvalidInput("invalid request body", err))
	}
	profile.UserID = userID

	saved, err := s.profiles.Upsert(c.Context(), profile)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}
