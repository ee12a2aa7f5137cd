package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jobscout/internal/llm"
	"jobscout/internal/models"
)

// maxResultContent bounds how much page text per search result goes into the
// extraction prompt.
const maxResultContent = 600

var extractTool = llm.ToolSpec{
	Name:        "extract_jobs",
	Description: "Extract structured job listings",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"jobs": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"company":     map[string]any{"type": "string"},
						"title":       map[string]any{"type": "string"},
						"url":         map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"location":    map[string]any{"type": "string"},
						"salary_info": map[string]any{"type": "string"},
					},
					"required":             []string{"company", "title"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"jobs"},
		"additionalProperties": false,
	},
}

const extractSystemPrompt = "Extract job listings from web search results. " +
	"Only include real job postings; skip navigation pages, listings indexes and ads."

// extractChunk asks the model to pull structured listings out of one chunk of
// raw search results. Entries missing the required company or title are
// dropped at the boundary.
func (p *Pipeline) extractChunk(ctx context.Context, chunk []models.RawSearchResult, profile models.Profile) ([]models.ExtractedListing, error) {
	var content strings.Builder
	for i, r := range chunk {
		body := r.Markdown
		if body == "" {
			body = r.Description
		}
		fmt.Fprintf(&content, "--- Result %d ---\nURL: %s\nTitle: %s\nContent: %s\n\n",
			i+1, valueOr(r.URL, "N/A"), valueOr(r.Title, "N/A"), truncate(body, maxResultContent))
	}

	user := fmt.Sprintf(
		"Extract job listings from these search results.\nTarget titles: %s\nSkills: %s\nLocation: %s\nExperience: %s\n\n%s",
		strings.Join(profile.TargetTitles, ", "),
		strings.Join(profile.Skills, ", "),
		profile.LocationPreference,
		profile.ExperienceLevel,
		content.String(),
	)

	raw, err := p.llm.CallTool(ctx, extractSystemPrompt, user, extractTool)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Jobs []models.ExtractedListing `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}

	listings := make([]models.ExtractedListing, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		if strings.TrimSpace(job.Company) == "" || strings.TrimSpace(job.Title) == "" {
			continue
		}
		listings = append(listings, job)
	}
	return listings, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
