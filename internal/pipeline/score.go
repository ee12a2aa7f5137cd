package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"jobscout/internal/llm"
	"jobscout/internal/models"
)

const (
	// AcceptanceThreshold is the minimum fit score a listing needs to be
	// persisted.
	AcceptanceThreshold = 60

	// NeutralScore is assigned when the model's answer is missing or
	// malformed for a listing.
	NeutralScore = 50

	// maxScoreDescription bounds how much of each description goes into the
	// scoring prompt.
	maxScoreDescription = 300
)

var scoreTool = llm.ToolSpec{
	Name:        "score_jobs_batch",
	Description: "Score multiple jobs for candidate fit",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"jobs": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index":     map[string]any{"type": "number"},
						"score":     map[string]any{"type": "number"},
						"reasoning": map[string]any{"type": "string"},
					},
					"required":             []string{"index", "score"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"jobs"},
		"additionalProperties": false,
	},
}

const scoreSystemPrompt = "Score each job 0-100 for the candidate. Return scores for ALL jobs."

type scoreEntry struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// scoreChunk scores one chunk of filtered listings against the profile. The
// returned map is keyed by in-chunk index; missing indices get NeutralScore
// by the caller.
func (p *Pipeline) scoreChunk(ctx context.Context, chunk []models.ExtractedListing, profile models.Profile) (map[int]int, error) {
	var jobs strings.Builder
	for i, j := range chunk {
		fmt.Fprintf(&jobs, "Job %d: %s at %s | Location: %s | Salary: %s | %s\n\n",
			i, j.Title, j.Company, valueOr(j.Location, "Unknown"),
			valueOr(j.SalaryInfo, "N/A"), truncate(j.Description, maxScoreDescription))
	}

	minSalary := "N/A"
	if profile.MinSalary != nil {
		minSalary = fmt.Sprintf("$%d", *profile.MinSalary)
	}
	user := fmt.Sprintf(
		"Candidate: Titles: %s | Skills: %s | Location: %s | Min salary: %s | Level: %s",
		strings.Join(profile.TargetTitles, ", "),
		strings.Join(profile.Skills, ", "),
		profile.LocationPreference, minSalary, profile.ExperienceLevel,
	)
	if profile.Notes != "" {
		user += " | Notes: " + profile.Notes
	}
	user += "\n\n" + jobs.String()

	raw, err := p.llm.CallTool(ctx, scoreSystemPrompt, user, scoreTool)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Jobs []scoreEntry `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed scoring output: %w", err)
	}

	scores := make(map[int]int, len(payload.Jobs))
	for _, entry := range payload.Jobs {
		if entry.Index < 0 || entry.Index >= len(chunk) {
			continue
		}
		scores[entry.Index] = ClampScore(entry.Score)
	}
	return scores, nil
}

// ClampScore rounds to an integer and clamps into [0,100].
func ClampScore(score float64) int {
	n := int(math.Round(score))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
