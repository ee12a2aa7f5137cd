// Package docgen generates tailored application documents for approved
// listings and drives their status transitions.
package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobscout/internal/llm"
	"jobscout/internal/models"
	"jobscout/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobscout/docgen")

// fallbackCap applies when the profile carries no per-run cap.
const fallbackCap = 15

type ProfileStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

// ListingStore is the slice of the listing port the generator needs.
type ListingStore interface {
	GetForUser(ctx context.Context, userID, id uuid.UUID) (models.JobListing, error)
	ListApprovedTopN(ctx context.Context, userID uuid.UUID, limit int) ([]models.JobListing, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.Status) error
	SaveDocuments(ctx context.Context, userID, id uuid.UUID, resume, coverLetter string, status models.Status) error
	GetApplyLog(ctx context.Context, userID, id uuid.UUID) ([]models.ApplyLogEntry, error)
	SetApplyLog(ctx context.Context, userID, id uuid.UUID, entries []models.ApplyLogEntry) error
}

type Generator struct {
	llm      llm.Client
	profiles ProfileStore
	listings ListingStore
	logger   *zap.Logger
}

func New(llmClient llm.Client, profiles ProfileStore, listings ListingStore, logger *zap.Logger) *Generator {
	return &Generator{
		llm:      llmClient,
		profiles: profiles,
		listings: listings,
		logger:   logger,
	}
}

// JobResult is the per-listing outcome of one generation run.
type JobResult struct {
	ID      uuid.UUID     `json:"id"`
	Company string        `json:"company"`
	Title   string        `json:"title"`
	Status  models.Status `json:"status"`
	Error   string        `json:"error,omitempty"`
}

var docsTool = llm.ToolSpec{
	Name:        "generate_application_docs",
	Description: "Generate a tailored resume and cover letter for a specific job",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resume":       map[string]any{"type": "string"},
			"cover_letter": map[string]any{"type": "string"},
		},
		"required":             []string{"resume", "cover_letter"},
		"additionalProperties": false,
	},
}

const docsSystemPrompt = "You write application documents. Produce a tailored resume and a " +
	"concise cover letter as formatted plain text. Recommended resume sections: contact block, " +
	"profile summary, experience, education, skills. Never invent experience the candidate " +
	"does not have."

// Run generates documents for the user's approved listings. With explicit ids
// the selection is exactly those ids that are currently approved; ids in any
// other status are silently excluded. Without ids it takes the highest-scoring
// approved listings up to the profile cap. Listings are processed one at a
// time; a failed listing is marked failed and the run continues.
func (g *Generator) Run(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]JobResult, error) {
	ctx, span := tracer.Start(ctx, "Generator.Run")
	defer span.End()
	span.SetAttributes(telemetry.String("user.id", userID.String()))

	profile, err := g.profiles.GetByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	selected, err := g.selectListings(ctx, userID, profile, ids)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results := make([]JobResult, 0, len(selected))
	for _, listing := range selected {
		results = append(results, g.processListing(ctx, userID, profile, listing))
	}

	span.SetAttributes(telemetry.Int("docgen.jobs_processed", len(results)))
	return results, nil
}

func (g *Generator) selectListings(ctx context.Context, userID uuid.UUID, profile models.Profile, ids []uuid.UUID) ([]models.JobListing, error) {
	if len(ids) == 0 {
		limit := profile.MaxApplicationsPerRun
		if limit <= 0 {
			limit = fallbackCap
		}
		return g.listings.ListApprovedTopN(ctx, userID, limit)
	}

	selected := make([]models.JobListing, 0, len(ids))
	for _, id := range ids {
		listing, err := g.listings.GetForUser(ctx, userID, id)
		if err != nil {
			g.logger.Warn("requested listing not found",
				zap.String("listing_id", id.String()),
				zap.Error(err))
			continue
		}
		if listing.Status != models.StatusApproved {
			continue
		}
		selected = append(selected, listing)
	}
	return selected, nil
}

// processListing walks one listing through generating_docs and into either
// ready_to_apply or failed. Every outcome is recorded in the audit log.
func (g *Generator) processListing(ctx context.Context, userID uuid.UUID, profile models.Profile, listing models.JobListing) JobResult {
	result := JobResult{ID: listing.ID, Company: listing.Company, Title: listing.Title}

	if err := g.listings.UpdateStatus(ctx, userID, listing.ID, models.StatusGeneratingDocs); err != nil {
		result.Status = listing.Status
		result.Error = err.Error()
		return result
	}
	g.appendLog(ctx, userID, listing.ID, "generating_docs", "")

	resume, coverLetter, err := g.synthesize(ctx, profile, listing)
	if err == nil {
		err = g.listings.SaveDocuments(ctx, userID, listing.ID, resume, coverLetter, models.StatusReadyToApply)
	}
	if err != nil {
		g.logger.Warn("document generation failed",
			zap.String("listing_id", listing.ID.String()),
			zap.String("company", listing.Company),
			zap.Error(err))
		if statusErr := g.listings.UpdateStatus(ctx, userID, listing.ID, models.StatusFailed); statusErr != nil {
			g.logger.Error("marking listing failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(statusErr))
		}
		g.appendLog(ctx, userID, listing.ID, "failed", err.Error())
		result.Status = models.StatusFailed
		result.Error = err.Error()
		return result
	}

	g.appendLog(ctx, userID, listing.ID, "ready", fmt.Sprintf("documents generated for %s", listing.Company))
	result.Status = models.StatusReadyToApply
	return result
}

func (g *Generator) synthesize(ctx context.Context, profile models.Profile, listing models.JobListing) (string, string, error) {
	var job strings.Builder
	fmt.Fprintf(&job, "Job: %s at %s\n", listing.Title, listing.Company)
	if listing.Location != "" {
		fmt.Fprintf(&job, "Location: %s\n", listing.Location)
	}
	if listing.SalaryInfo != "" {
		fmt.Fprintf(&job, "Salary: %s\n", listing.SalaryInfo)
	}
	if listing.CompanySummary != "" {
		fmt.Fprintf(&job, "About the company: %s\n", listing.CompanySummary)
	}
	if listing.Description != "" {
		fmt.Fprintf(&job, "Description: %s\n", listing.Description)
	}

	var candidate strings.Builder
	fmt.Fprintf(&candidate, "Candidate skills: %s\n", strings.Join(profile.Skills, ", "))
	fmt.Fprintf(&candidate, "Experience level: %s\n", profile.ExperienceLevel)
	if profile.Notes != "" {
		fmt.Fprintf(&candidate, "Notes: %s\n", profile.Notes)
	}
	if profile.ResumeText != "" {
		fmt.Fprintf(&candidate, "Current resume:\n%s\n", profile.ResumeText)
	}

	raw, err := g.llm.CallTool(ctx, docsSystemPrompt, job.String()+"\n"+candidate.String(), docsTool)
	if err != nil {
		return "", "", err
	}

	var payload struct {
		Resume      string `json:"resume"`
		CoverLetter string `json:"cover_letter"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", fmt.Errorf("malformed document output: %w", err)
	}
	resume := strings.TrimSpace(payload.Resume)
	coverLetter := strings.TrimSpace(payload.CoverLetter)
	if resume == "" || coverLetter == "" {
		return "", "", fmt.Errorf("model returned empty documents")
	}
	return resume, coverLetter, nil
}

// appendLog does a read-modify-write of the audit log. Lost updates under
// concurrent writers to the same listing are an accepted limitation. Audit
// failures never fail the listing.
func (g *Generator) appendLog(ctx context.Context, userID, id uuid.UUID, step, detail string) {
	entries, err := g.listings.GetApplyLog(ctx, userID, id)
	if err != nil {
		g.logger.Warn("reading apply log", zap.String("listing_id", id.String()), zap.Error(err))
		return
	}
	entries = append(entries, models.ApplyLogEntry{
		Step:      step,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
	if err := g.listings.SetApplyLog(ctx, userID, id, entries); err != nil {
		g.logger.Warn("writing apply log", zap.String("listing_id", id.String()), zap.Error(err))
	}
}
