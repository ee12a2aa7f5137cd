// Package events carries scan requests over NATS so the HTTP handler can
// acknowledge immediately and the pipeline can run in the background.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"jobscout/internal/config"
	"jobscout/internal/errors"
	"jobscout/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobscout/events")

const (
	// ScanRequestsSubject carries one message per requested scan run.
	ScanRequestsSubject = "scan.requested"

	// scanQueueGroup load-balances scan work across instances.
	scanQueueGroup = "jobscout-workers"
)

// ScanRequest is the wire payload for one backgrounded scan.
type ScanRequest struct {
	RunID  uuid.UUID `json:"run_id"`
	UserID uuid.UUID `json:"user_id"`
}

// NewConn dials NATS with reconnect enabled. The connection is shared by the
// publisher and the subscriber.
func NewConn(config *config.Config) (*nats.Conn, error) {
	conn, err := nats.Connect(config.NATSURL,
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return conn, nil
}

type Publisher interface {
	PublishScanRequest(ctx context.Context, req ScanRequest) error
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(conn *nats.Conn, logger *zap.Logger) Publisher {
	return &natsPublisher{conn: conn, logger: logger}
}

func (p *natsPublisher) PublishScanRequest(ctx context.Context, req ScanRequest) error {
	_, span := tracer.Start(ctx, "PublishScanRequest")
	defer span.End()

	data, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling scan request", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", ScanRequestsSubject),
		telemetry.String("run.id", req.RunID.String()),
	)

	if err := p.conn.Publish(ScanRequestsSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish scan request",
			zap.String("run_id", req.RunID.String()),
			zap.Error(err))
		return errors.Unavailable("publishing scan request", err)
	}

	p.logger.Debug("published scan request",
		zap.String("run_id", req.RunID.String()),
		zap.String("subject", ScanRequestsSubject))
	return nil
}
