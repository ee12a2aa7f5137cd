package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"jobscout/internal/models"
)

// ScanRunner executes one scan for a user. Satisfied by pipeline.Pipeline.
type ScanRunner interface {
	Run(ctx context.Context, userID uuid.UUID) (models.ScanCounters, error)
}

// RunRecorder finalizes the polled run row. Satisfied by store.RunStore.
type RunRecorder interface {
	Complete(ctx context.Context, id uuid.UUID, counters models.ScanCounters) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
}

// Handler consumes scan requests and drives the pipeline.
type Handler struct {
	logger *zap.Logger
	nc     *nats.Conn
	runner ScanRunner
	runs   RunRecorder
	sub    *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, runner ScanRunner, runs RunRecorder) *Handler {
	return &Handler{
		logger: logger,
		nc:     nc,
		runner: runner,
		runs:   runs,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(ScanRequestsSubject, scanQueueGroup, h.handleScanRequest)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", ScanRequestsSubject, err)
	}

	h.sub = sub
	h.logger.Info("registered NATS subscriptions")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Unsubscribe()
		},
	})

	return nil
}

func (h *Handler) handleScanRequest(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handleScanRequest")
	defer span.End()

	var req ScanRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		span.RecordError(err)
		h.logger.Error("malformed scan request", zap.Error(err))
		return
	}
	h.process(ctx, req)
}

// process runs the pipeline and finalizes the run row either way.
func (h *Handler) process(ctx context.Context, req ScanRequest) {
	counters, err := h.runner.Run(ctx, req.UserID)
	if err != nil {
		h.logger.Error("scan run failed",
			zap.String("run_id", req.RunID.String()),
			zap.String("user_id", req.UserID.String()),
			zap.Error(err))
		if failErr := h.runs.Fail(ctx, req.RunID, err.Error()); failErr != nil {
			h.logger.Error("recording failed run", zap.String("run_id", req.RunID.String()), zap.Error(failErr))
		}
		return
	}

	if err := h.runs.Complete(ctx, req.RunID, counters); err != nil {
		h.logger.Error("recording completed run", zap.String("run_id", req.RunID.String()), zap.Error(err))
		return
	}

	h.logger.Info("scan run completed",
		zap.String("run_id", req.RunID.String()),
		zap.Int("jobs_saved", counters.JobsSaved))
}
