package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobscout/internal/errors"
	"jobscout/internal/models"
)

func (s *Server) listJobs(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	var status models.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseStatus(raw)
		if err != nil {
			return respondError(c, errors.InvalidInput("invalid status filter", err))
		}
		status = parsed
	}

	listings, err := s.listings.ListByStatus(c.Context(), userID, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"jobs": listings})
}

func (s *Server) jobCounts(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	counts, err := s.listings.CountsByStatus(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"counts": counts})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateJobStatus enforces the status state machine; a disallowed move is a
// conflict, not a silent overwrite.
func (s *Server) updateJobStatus(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, errors.InvalidInput("invalid job id", err))
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errors.InvalidInput("invalid request body", err))
	}
	target, err := models.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, errors.InvalidInput("unknown status", err))
	}

	listing, err := s.listings.GetForUser(c.Context(), userID, jobID)
	if err != nil {
		return respondError(c, err)
	}
	if !models.IsTransitionAllowed(listing.Status, target) {
		return respondError(c, errors.Conflict(
			"transition from "+string(listing.Status)+" to "+string(target)+" is not allowed", nil))
	}

	if err := s.listings.UpdateStatus(c.Context(), userID, jobID, target); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "status": target})
}

func (s *Server) getJobDocuments(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, errors.InvalidInput("invalid job id", err))
	}

	listing, err := s.listings.GetForUser(c.Context(), userID, jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":                   listing.ID,
		"status":               listing.Status,
		"tailored_resume_text": listing.TailoredResumeText,
		"cover_letter_text":    listing.CoverLetterText,
		"apply_log":            listing.ApplyLog,
	})
}
