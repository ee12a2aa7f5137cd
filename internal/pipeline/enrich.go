package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"jobscout/internal/batch"
	"jobscout/internal/llm"

	"go.uber.org/zap"
)

var summarizeTool = llm.ToolSpec{
	Name:        "summarize_company",
	Description: "Summarize a company in two or three sentences",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
		},
		"required":             []string{"summary"},
		"additionalProperties": false,
	},
}

const summarizeSystemPrompt = "Write a short, factual company description for a job applicant. " +
	"Two or three sentences, no marketing fluff."

// enrichTop adds a short company summary to the highest-scoring listings via
// a secondary search plus summarization. Enrichment is best-effort: any
// failure leaves the listing without a summary and is only logged.
func (p *Pipeline) enrichTop(ctx context.Context, scored []scoredListing, topN int) {
	if topN <= 0 || len(scored) == 0 {
		return
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scored[order[a]].score > scored[order[b]].score
	})
	if len(order) > topN {
		order = order[:topN]
	}

	results := batch.Run(ctx, order, 2, func(ctx context.Context, idx int) (string, error) {
		return p.summarizeCompany(ctx, scored[idx].listing.Company)
	})
	for _, r := range results {
		if r.Err != nil {
			p.logger.Warn("company enrichment failed",
				zap.String("company", scored[order[r.Index]].listing.Company),
				zap.Error(r.Err))
			continue
		}
		scored[order[r.Index]].companySummary = r.Value
	}
}

func (p *Pipeline) summarizeCompany(ctx context.Context, company string) (string, error) {
	results, err := p.search.Search(ctx, fmt.Sprintf("%q company about", company))
	if err != nil {
		return "", err
	}

	var content strings.Builder
	for i, r := range results {
		if i >= 3 {
			break
		}
		body := r.Markdown
		if body == "" {
			body = r.Description
		}
		fmt.Fprintf(&content, "%s\n%s\n\n", r.Title, truncate(body, maxResultContent))
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("no search results for company %q", company)
	}

	raw, err := p.llm.CallTool(ctx, summarizeSystemPrompt,
		fmt.Sprintf("Company: %s\n\n%s", company, content.String()), summarizeTool)
	if err != nil {
		return "", err
	}

	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("malformed summary output: %w", err)
	}
	return strings.TrimSpace(payload.Summary), nil
}
