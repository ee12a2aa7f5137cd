// Package scheduler triggers periodic scans for every user with a profile.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobscout/internal/config"
	"jobscout/internal/events"
	"jobscout/internal/models"
	"jobscout/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobscout/scheduler")

// ProfileLister enumerates users eligible for a scheduled scan. Satisfied by
// store.ProfileStore.
type ProfileLister interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RunCreator opens the polled run row for each scheduled scan. Satisfied by
// store.RunStore.
type RunCreator interface {
	Create(ctx context.Context, userID uuid.UUID) (models.ScanRun, error)
}

type ScanScheduler struct {
	profiles  ProfileLister
	runs      RunCreator
	publisher events.Publisher
	logger    *zap.Logger
	config    *config.Config
	mutex     sync.Mutex
	isActive  bool
}

func NewScanScheduler(profiles ProfileLister, runs RunCreator, publisher events.Publisher, logger *zap.Logger, config *config.Config) *ScanScheduler {
	return &ScanScheduler{
		profiles:  profiles,
		runs:      runs,
		publisher: publisher,
		logger:    logger,
		config:    config,
	}
}

// Start blocks, publishing one scan request per profiled user every
// ScanInterval, until the context is canceled. A zero interval disables
// scheduling entirely.
func (s *ScanScheduler) Start(ctx context.Context) error {
	if s.config.ScanInterval <= 0 {
		s.logger.Info("scan scheduler disabled")
		return nil
	}

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	s.isActive = true
	s.mutex.Unlock()

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.scheduleScans(ctx); err != nil {
				s.logger.Error("scheduled scan round failed", zap.Error(err))
			}
		}
	}
}

func (s *ScanScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isActive = false
}

// scheduleScans publishes one request per user. A failure for one user is
// logged and does not stop the round.
func (s *ScanScheduler) scheduleScans(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ScanScheduler.scheduleScans")
	defer span.End()

	userIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(telemetry.Int("users.count", len(userIDs)))

	scheduled := 0
	for _, userID := range userIDs {
		run, err := s.runs.Create(ctx, userID)
		if err != nil {
			s.logger.Warn("creating scheduled run",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			continue
		}
		if err := s.publisher.PublishScanRequest(ctx, events.ScanRequest{
			RunID:  run.ID,
			UserID: userID,
		}); err != nil {
			s.logger.Warn("publishing scheduled scan",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			continue
		}
		scheduled++
	}

	s.logger.Info("scheduled scan round",
		zap.Int("users", len(userIDs)),
		zap.Int("scheduled", scheduled))
	return nil
}
