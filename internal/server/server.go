// Package server exposes the HTTP API. Authentication is validated here;
// all business logic lives behind the store, pipeline and docgen ports.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobscout/internal/config"
	"jobscout/internal/docgen"
	"jobscout/internal/events"
	"jobscout/internal/models"
)

// ProfileStore is the profile port the API needs.
type ProfileStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	Upsert(ctx context.Context, p models.Profile) (models.Profile, error)
}

// ListingStore is the listing port the API needs.
type ListingStore interface {
	GetForUser(ctx context.Context, userID, id uuid.UUID) (models.JobListing, error)
	ListByStatus(ctx context.Context, userID uuid.UUID, status models.Status) ([]models.JobListing, error)
	CountsByStatus(ctx context.Context, userID uuid.UUID) (map[models.Status]int, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.Status) error
	GetApplyLog(ctx context.Context, userID, id uuid.UUID) ([]models.ApplyLogEntry, error)
}

// RunStore is the scan-run port the API needs.
type RunStore interface {
	Create(ctx context.Context, userID uuid.UUID) (models.ScanRun, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (models.ScanRun, error)
}

// DocGenerator is the document-generation port. Satisfied by docgen.Generator.
type DocGenerator interface {
	Run(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]docgen.JobResult, error)
}

type Server struct {
	app       *fiber.App
	logger    *zap.Logger
	config    *config.Config
	profiles  ProfileStore
	listings  ListingStore
	runs      RunStore
	publisher events.Publisher
	generator DocGenerator
}

func New(logger *zap.Logger, config *config.Config, profiles ProfileStore, listings ListingStore, runs RunStore, publisher events.Publisher, generator DocGenerator) *Server {
	s := &Server{
		logger:    logger,
		config:    config,
		profiles:  profiles,
		listings:  listings,
		runs:      runs,
		publisher: publisher,
		generator: generator,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "jobscout",
		DisableStartupMessage: true,
	})
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := s.app.Group("/api/v1", NewAuthMiddleware(s.config.JWTSecret, s.config.JWTIssuer))

	v1.Post("/scan", s.startScan)
	v1.Get("/scan/runs/:id", s.getScanRun)
	v1.Post("/apply", s.apply)

	v1.Get("/jobs", s.listJobs)
	v1.Get("/jobs/counts", s.jobCounts)
	v1.Patch("/jobs/:id/status", s.updateJobStatus)
	v1.Get("/jobs/:id/documents", s.getJobDocuments)

	v1.Get("/profile", s.getProfile)
	v1.Put("/profile", s.putProfile)
}

// App exposes the underlying Fiber app for serving and for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
