package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobscout/internal/errors"
	"jobscout/internal/events"
)

// startScan creates a run row and hands the work to the background subscriber.
// The client polls the run endpoint for stage counters.
func (s *Server) startScan(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	run, err := s.runs.Create(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.publisher.PublishScanRequest(c.Context(), events.ScanRequest{
		RunID:  run.ID,
		UserID: userID,
	}); err != nil {
		s.logger.Error("publishing scan request",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"run_id":  run.ID,
		"message": "scan started",
	})
}

func (s *Server) getScanRun(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, errors.InvalidInput("invalid run id", err))
	}

	run, err := s.runs.GetForUser(c.Context(), userID, runID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(run)
}

type applyRequest struct {
	JobIDs []uuid.UUID `json:"job_ids"`
}

// apply generates documents synchronously and reports per-job outcomes. A
// failed job shows up in the results; it never fails the request.
func (s *Server) apply(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return respondError(c, errors.Unauthorized("missing user identity", nil))
	}

	var req applyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, errors.InvalidInput("invalid request body", err))
		}
	}

	results, err := s.generator.Run(c.Context(), userID, req.JobIDs)
	if err != nil {
		return respondError(c, err)
	}

	successful := 0
	for _, r := range results {
		if r.Error == "" {
			successful++
		}
	}

	message := "documents generated"
	if len(results) == 0 {
		message = "no approved listings to process"
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"jobs_processed": len(results),
		"successful":     successful,
		"failed":         len(results) - successful,
		"results":        results,
		"message":        message,
	})
}
