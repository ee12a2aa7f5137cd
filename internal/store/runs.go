package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobscout/internal/errors"
	"jobscout/internal/models"
)

// RunStore tracks background scan runs so clients can poll progress.
type RunStore struct {
	pool *pgxpool.Pool
}

func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Create records a new running scan and returns it.
func (s *RunStore) Create(ctx context.Context, userID uuid.UUID) (models.ScanRun, error) {
	run := models.ScanRun{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_runs (id, user_id, status, started_at)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.UserID, run.Status, run.StartedAt)
	if err != nil {
		return models.ScanRun{}, errors.Internal("creating scan run", err)
	}
	return run, nil
}

// Complete marks the run finished with its stage counters.
func (s *RunStore) Complete(ctx context.Context, id uuid.UUID, counters models.ScanCounters) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scan_runs SET
			status = $2, queries_run = $3, raw_results = $4,
			jobs_extracted = $5, jobs_filtered = $6, jobs_scored = $7,
			jobs_saved = $8, finished_at = now()
		WHERE id = $1`,
		id, models.RunCompleted,
		counters.QueriesRun, counters.RawResults, counters.JobsExtracted,
		counters.JobsFiltered, counters.JobsScored, counters.JobsSaved)
	if err != nil {
		return errors.Internal("completing scan run", err)
	}
	return nil
}

// Fail marks the run failed with the error message.
func (s *RunStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scan_runs SET status = $2, error = $3, finished_at = now()
		WHERE id = $1`,
		id, models.RunFailed, reason)
	if err != nil {
		return errors.Internal("failing scan run", err)
	}
	return nil
}

func (s *RunStore) GetForUser(ctx context.Context, userID, id uuid.UUID) (models.ScanRun, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, status, queries_run, raw_results, jobs_extracted,
		       jobs_filtered, jobs_scored, jobs_saved, COALESCE(error, ''), started_at, finished_at
		FROM scan_runs WHERE id = $1 AND user_id = $2`,
		id, userID)

	var run models.ScanRun
	err := row.Scan(
		&run.ID, &run.UserID, &run.Status,
		&run.Counters.QueriesRun, &run.Counters.RawResults, &run.Counters.JobsExtracted,
		&run.Counters.JobsFiltered, &run.Counters.JobsScored, &run.Counters.JobsSaved,
		&run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err == pgx.ErrNoRows {
		return models.ScanRun{}, errors.NotFound("scan run not found", nil)
	}
	if err != nil {
		return models.ScanRun{}, errors.Internal("querying scan run", err)
	}
	return run, nil
}
