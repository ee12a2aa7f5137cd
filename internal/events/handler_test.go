package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobscout/internal/models"
)

type fakeRunner struct {
	counters models.ScanCounters
	err      error
	gotUser  uuid.UUID
}

func (f *fakeRunner) Run(_ context.Context, userID uuid.UUID) (models.ScanCounters, error) {
	f.gotUser = userID
	return f.counters, f.err
}

type fakeRecorder struct {
	completed map[uuid.UUID]models.ScanCounters
	failed    map[uuid.UUID]string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		completed: make(map[uuid.UUID]models.ScanCounters),
		failed:    make(map[uuid.UUID]string),
	}
}

func (f *fakeRecorder) Complete(_ context.Context, id uuid.UUID, counters models.ScanCounters) error {
	f.completed[id] = counters
	return nil
}

func (f *fakeRecorder) Fail(_ context.Context, id uuid.UUID, reason string) error {
	f.failed[id] = reason
	return nil
}

func TestHandlerProcessCompletesRun(t *testing.T) {
	runner := &fakeRunner{counters: models.ScanCounters{QueriesRun: 5, JobsSaved: 2}}
	recorder := newFakeRecorder()
	h := NewHandler(zap.NewNop(), nil, runner, recorder)

	req := ScanRequest{RunID: uuid.New(), UserID: uuid.New()}
	h.process(context.Background(), req)

	assert.Equal(t, req.UserID, runner.gotUser)
	require.Contains(t, recorder.completed, req.RunID)
	assert.Equal(t, 2, recorder.completed[req.RunID].JobsSaved)
	assert.Empty(t, recorder.failed)
}

func TestHandlerProcessFailsRun(t *testing.T) {
	runner := &fakeRunner{err: errors.New("profile not found")}
	recorder := newFakeRecorder()
	h := NewHandler(zap.NewNop(), nil, runner, recorder)

	req := ScanRequest{RunID: uuid.New(), UserID: uuid.New()}
	h.process(context.Background(), req)

	assert.Empty(t, recorder.completed)
	assert.Equal(t, "profile not found", recorder.failed[req.RunID])
}

func TestHandlerIgnoresMalformedMessage(t *testing.T) {
	runner := &fakeRunner{}
	recorder := newFakeRecorder()
	h := NewHandler(zap.NewNop(), nil, runner, recorder)

	h.handleScanRequest(&nats.Msg{Subject: ScanRequestsSubject, Data: []byte("not json")})

	assert.Equal(t, uuid.Nil, runner.gotUser)
	assert.Empty(t, recorder.completed)
	assert.Empty(t, recorder.failed)
}
