package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobscout/internal/config"
	"jobscout/internal/events"
	"jobscout/internal/models"
)

type fakeProfiles struct {
	ids []uuid.UUID
	err error
}

func (f *fakeProfiles) ListUserIDs(_ context.Context) ([]uuid.UUID, error) {
	return f.ids, f.err
}

type fakeRuns struct {
	created []uuid.UUID
	err     error
}

func (f *fakeRuns) Create(_ context.Context, userID uuid.UUID) (models.ScanRun, error) {
	if f.err != nil {
		return models.ScanRun{}, f.err
	}
	f.created = append(f.created, userID)
	return models.ScanRun{ID: uuid.New(), UserID: userID, Status: models.RunRunning}, nil
}

type fakePublisher struct {
	requests []events.ScanRequest
	err      error
}

func (f *fakePublisher) PublishScanRequest(_ context.Context, req events.ScanRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

func TestScheduleScansPublishesPerUser(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	runs := &fakeRuns{}
	publisher := &fakePublisher{}

	s := NewScanScheduler(&fakeProfiles{ids: users}, runs, publisher, zap.NewNop(), &config.Config{})

	err := s.scheduleScans(context.Background())
	require.NoError(t, err)

	assert.Len(t, runs.created, 3)
	require.Len(t, publisher.requests, 3)
	assert.Equal(t, users[0], publisher.requests[0].UserID)
}

func TestScheduleScansListFailureAbortsRound(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewScanScheduler(&fakeProfiles{err: errors.New("db down")}, &fakeRuns{}, publisher, zap.NewNop(), &config.Config{})

	err := s.scheduleScans(context.Background())
	require.Error(t, err)
	assert.Empty(t, publisher.requests)
}

func TestScheduleScansPublishFailureContinues(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New()}
	s := NewScanScheduler(&fakeProfiles{ids: users}, &fakeRuns{}, &fakePublisher{err: errors.New("nats down")},
		zap.NewNop(), &config.Config{})

	err := s.scheduleScans(context.Background())
	require.NoError(t, err)
}

func TestStartDisabledWithZeroInterval(t *testing.T) {
	s := NewScanScheduler(&fakeProfiles{}, &fakeRuns{}, &fakePublisher{}, zap.NewNop(), &config.Config{ScanInterval: 0})

	err := s.Start(context.Background())
	assert.NoError(t, err)
}
