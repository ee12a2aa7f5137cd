package docgen

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobscout/internal/llm"
	"jobscout/internal/models"
)

type fakeLLM struct {
	fn func(tool llm.ToolSpec, user string) (json.RawMessage, error)
}

func (f *fakeLLM) CallTool(_ context.Context, _, user string, tool llm.ToolSpec) (json.RawMessage, error) {
	return f.fn(tool, user)
}

type fakeProfiles struct {
	profile models.Profile
	err     error
}

func (f *fakeProfiles) GetByUser(_ context.Context, _ uuid.UUID) (models.Profile, error) {
	return f.profile, f.err
}

// memListings is an in-memory ListingStore that records status transitions
// and audit log writes per listing.
type memListings struct {
	listings map[uuid.UUID]*models.JobListing
	saveErr  error
}

func newMemListings(listings ...models.JobListing) *memListings {
	m := &memListings{listings: make(map[uuid.UUID]*models.JobListing)}
	for i := range listings {
		l := listings[i]
		m.listings[l.ID] = &l
	}
	return m
}

func (m *memListings) GetForUser(_ context.Context, _, id uuid.UUID) (models.JobListing, error) {
	l, ok := m.listings[id]
	if !ok {
		return models.JobListing{}, errors.New("listing not found")
	}
	return *l, nil
}

func (m *memListings) ListApprovedTopN(_ context.Context, _ uuid.UUID, limit int) ([]models.JobListing, error) {
	var approved []models.JobListing
	for _, l := range m.listings {
		if l.Status == models.StatusApproved {
			approved = append(approved, *l)
		}
	}
	sort.Slice(approved, func(i, j int) bool { return approved[i].Score > approved[j].Score })
	if len(approved) > limit {
		approved = approved[:limit]
	}
	return approved, nil
}

func (m *memListings) UpdateStatus(_ context.Context, _, id uuid.UUID, status models.Status) error {
	l, ok := m.listings[id]
	if !ok {
		return errors.New("listing not found")
	}
	l.Status = status
	return nil
}

func (m *memListings) SaveDocuments(_ context.Context, _, id uuid.UUID, resume, coverLetter string, status models.Status) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	l, ok := m.listings[id]
	if !ok {
		return errors.New("listing not found")
	}
	l.TailoredResumeText = resume
	l.CoverLetterText = coverLetter
	l.Status = status
	return nil
}

func (m *memListings) GetApplyLog(_ context.Context, _, id uuid.UUID) ([]models.ApplyLogEntry, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, errors.New("listing not found")
	}
	return append([]models.ApplyLogEntry(nil), l.ApplyLog...), nil
}

func (m *memListings) SetApplyLog(_ context.Context, _, id uuid.UUID, entries []models.ApplyLogEntry) error {
	l, ok := m.listings[id]
	if !ok {
		return errors.New("listing not found")
	}
	l.ApplyLog = entries
	return nil
}

func docsLLM() *fakeLLM {
	return &fakeLLM{fn: func(tool llm.ToolSpec, _ string) (json.RawMessage, error) {
		if tool.Name != "generate_application_docs" {
			return nil, errors.New("unexpected tool " + tool.Name)
		}
		return json.RawMessage(`{"resume":"Tailored resume text.","cover_letter":"Dear hiring team,"}`), nil
	}}
}

func approvedListing(score int) models.JobListing {
	return models.JobListing{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Company: "Globex",
		Title:   "Platform Engineer",
		Score:   score,
		Status:  models.StatusApproved,
	}
}

func logSteps(entries []models.ApplyLogEntry) []string {
	steps := make([]string, 0, len(entries))
	for _, e := range entries {
		steps = append(steps, e.Step)
	}
	return steps
}

func TestGeneratorRunSuccess(t *testing.T) {
	listing := approvedListing(80)
	store := newMemListings(listing)
	profiles := &fakeProfiles{profile: models.Profile{UserID: listing.UserID, MaxApplicationsPerRun: 5}}

	g := New(docsLLM(), profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), listing.UserID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, listing.ID, results[0].ID)
	assert.Equal(t, models.StatusReadyToApply, results[0].Status)
	assert.Empty(t, results[0].Error)

	final := store.listings[listing.ID]
	assert.Equal(t, models.StatusReadyToApply, final.Status)
	assert.Equal(t, "Tailored resume text.", final.TailoredResumeText)
	assert.Equal(t, "Dear hiring team,", final.CoverLetterText)
	assert.Equal(t, []string{"generating_docs", "ready"}, logSteps(final.ApplyLog))
}

func TestGeneratorRunModelFailure(t *testing.T) {
	listing := approvedListing(80)
	store := newMemListings(listing)
	profiles := &fakeProfiles{profile: models.Profile{UserID: listing.UserID, MaxApplicationsPerRun: 5}}
	llmClient := &fakeLLM{fn: func(llm.ToolSpec, string) (json.RawMessage, error) {
		return nil, errors.New("gateway timeout")
	}}

	g := New(llmClient, profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), listing.UserID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.NotEmpty(t, results[0].Error)

	final := store.listings[listing.ID]
	assert.Equal(t, models.StatusFailed, final.Status)
	steps := logSteps(final.ApplyLog)
	require.Equal(t, []string{"generating_docs", "failed"}, steps)
	assert.NotEmpty(t, final.ApplyLog[1].Detail)
}

func TestGeneratorRunEmptyDocumentsFail(t *testing.T) {
	listing := approvedListing(80)
	store := newMemListings(listing)
	profiles := &fakeProfiles{profile: models.Profile{UserID: listing.UserID, MaxApplicationsPerRun: 5}}
	llmClient := &fakeLLM{fn: func(llm.ToolSpec, string) (json.RawMessage, error) {
		return json.RawMessage(`{"resume":"","cover_letter":"Dear team,"}`), nil
	}}

	g := New(llmClient, profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), listing.UserID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusFailed, results[0].Status)
}

func TestGeneratorRunOneFailureDoesNotBlockBatch(t *testing.T) {
	good := approvedListing(90)
	bad := approvedListing(85)
	bad.UserID = good.UserID
	bad.Company = "Initech"
	store := newMemListings(good, bad)
	profiles := &fakeProfiles{profile: models.Profile{UserID: good.UserID, MaxApplicationsPerRun: 5}}

	calls := 0
	llmClient := &fakeLLM{fn: func(llm.ToolSpec, string) (json.RawMessage, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("gateway timeout")
		}
		return json.RawMessage(`{"resume":"Resume.","cover_letter":"Letter."}`), nil
	}}

	g := New(llmClient, profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), good.UserID, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Selection is score descending, so the first listing succeeds.
	assert.Equal(t, models.StatusReadyToApply, results[0].Status)
	assert.Equal(t, models.StatusFailed, results[1].Status)
}

func TestGeneratorRunCapsSelection(t *testing.T) {
	userID := uuid.New()
	var listings []models.JobListing
	for i := 0; i < 4; i++ {
		l := approvedListing(60 + i)
		l.UserID = userID
		listings = append(listings, l)
	}
	store := newMemListings(listings...)
	profiles := &fakeProfiles{profile: models.Profile{UserID: userID, MaxApplicationsPerRun: 2}}

	g := New(docsLLM(), profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGeneratorRunExplicitIDsFilteredToApproved(t *testing.T) {
	approved := approvedListing(80)
	pending := approvedListing(70)
	pending.UserID = approved.UserID
	pending.Status = models.StatusPending
	store := newMemListings(approved, pending)
	profiles := &fakeProfiles{profile: models.Profile{UserID: approved.UserID, MaxApplicationsPerRun: 5}}

	g := New(docsLLM(), profiles, store, zap.NewNop())

	results, err := g.Run(context.Background(), approved.UserID,
		[]uuid.UUID{approved.ID, pending.ID, uuid.New()})
	require.NoError(t, err)

	// The pending listing and the unknown id are silently excluded.
	require.Len(t, results, 1)
	assert.Equal(t, approved.ID, results[0].ID)
	assert.Equal(t, models.StatusPending, store.listings[pending.ID].Status)
}

func TestGeneratorRunMissingProfileAborts(t *testing.T) {
	g := New(docsLLM(), &fakeProfiles{err: errors.New("profile not found")},
		newMemListings(), zap.NewNop())

	_, err := g.Run(context.Background(), uuid.New(), nil)
	require.Error(t, err)
}
