// Package pipeline implements the scan pipeline: query generation, web
// search, listing extraction, filtering, scoring, enrichment and
// deduplicated persistence. Stages run strictly in sequence; inside a stage
// the batch runner bounds concurrency. Failures are absorbed at the
// smallest unit (one query, one chunk, one listing) and show up only in the
// stage counters.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobscout/internal/batch"
	"jobscout/internal/config"
	"jobscout/internal/llm"
	"jobscout/internal/models"
	"jobscout/internal/search"
	"jobscout/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobscout/pipeline")

// Source tag stored on every listing this pipeline saves.
const listingSource = "websearch"

// ProfileStore is the slice of the profile port the pipeline needs.
type ProfileStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

// ListingStore is the slice of the listing port the pipeline needs: the
// uniqueness lookup and the insert. Check-then-insert is best-effort by
// design; the store's unique index turns a lost race into an insert error,
// which is logged and skipped like any other.
type ListingStore interface {
	ExistsByHash(ctx context.Context, userID uuid.UUID, hash string) (bool, error)
	Insert(ctx context.Context, l models.JobListing) (models.JobListing, error)
}

type Pipeline struct {
	search   search.Client
	llm      llm.Client
	profiles ProfileStore
	listings ListingStore
	logger   *zap.Logger
	config   *config.Config
}

func New(searchClient search.Client, llmClient llm.Client, profiles ProfileStore, listings ListingStore, logger *zap.Logger, config *config.Config) *Pipeline {
	return &Pipeline{
		search:   searchClient,
		llm:      llmClient,
		profiles: profiles,
		listings: listings,
		logger:   logger,
		config:   config,
	}
}

type scoredListing struct {
	listing        models.ExtractedListing
	score          int
	companySummary string
}

// Run executes one full scan for the user. Only a missing profile or a store
// failure before any pipeline work aborts the run; everything downstream
// soft-fails into the counters.
func (p *Pipeline) Run(ctx context.Context, userID uuid.UUID) (models.ScanCounters, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()
	span.SetAttributes(telemetry.String("user.id", userID.String()))

	var counters models.ScanCounters

	profile, err := p.profiles.GetByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return counters, err
	}

	queries := GenerateQueries(profile.TargetTitles, profile.TargetLocations, p.config.MaxQueries, nil)
	counters.QueriesRun = len(queries)
	p.logger.Info("generated search queries",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(queries)))

	rawResults := p.runSearches(ctx, queries)
	counters.RawResults = len(rawResults)
	if len(rawResults) == 0 {
		p.logger.Info("no search results", zap.String("user_id", userID.String()))
		return counters, nil
	}

	extracted := p.runExtraction(ctx, rawResults, profile)
	counters.JobsExtracted = len(extracted)

	filtered := FilterListings(extracted, profile.ExcludedCompanies, profile.KeywordBlacklist)
	counters.JobsFiltered = len(filtered)

	scored := p.runScoring(ctx, filtered, profile)
	counters.JobsScored = len(scored)

	p.enrichTop(ctx, scored, p.config.EnrichTopN)

	counters.JobsSaved = p.persist(ctx, userID, scored)

	p.logger.Info("scan complete",
		zap.String("user_id", userID.String()),
		zap.Int("queries_run", counters.QueriesRun),
		zap.Int("raw_results", counters.RawResults),
		zap.Int("jobs_extracted", counters.JobsExtracted),
		zap.Int("jobs_filtered", counters.JobsFiltered),
		zap.Int("jobs_scored", counters.JobsScored),
		zap.Int("jobs_saved", counters.JobsSaved))

	span.SetAttributes(
		telemetry.Int("scan.raw_results", counters.RawResults),
		telemetry.Int("scan.jobs_saved", counters.JobsSaved),
	)
	return counters, nil
}

// runSearches issues one provider request per query, batched. A failed query
// contributes zero results.
func (p *Pipeline) runSearches(ctx context.Context, queries []string) []models.RawSearchResult {
	results := batch.Run(ctx, queries, p.config.SearchBatchSize, func(ctx context.Context, q string) ([]models.RawSearchResult, error) {
		return p.search.Search(ctx, q)
	})

	var all []models.RawSearchResult
	for _, r := range results {
		if r.Err != nil {
			p.logger.Warn("search query failed",
				zap.String("query", queries[r.Index]),
				zap.Error(r.Err))
			continue
		}
		all = append(all, r.Value...)
	}
	return all
}

// runExtraction feeds fixed-size chunks of raw results through the model. A
// failed chunk yields zero listings, never a pipeline abort.
func (p *Pipeline) runExtraction(ctx context.Context, rawResults []models.RawSearchResult, profile models.Profile) []models.ExtractedListing {
	chunks := chunkBy(rawResults, p.config.ExtractChunkSize)

	results := batch.Run(ctx, chunks, p.config.ExtractConcurrency, func(ctx context.Context, chunk []models.RawSearchResult) ([]models.ExtractedListing, error) {
		return p.extractChunk(ctx, chunk, profile)
	})

	var all []models.ExtractedListing
	for _, r := range results {
		if r.Err != nil {
			p.logger.Warn("extraction chunk failed", zap.Int("chunk", r.Index), zap.Error(r.Err))
			continue
		}
		all = append(all, r.Value...)
	}
	return all
}

// runScoring scores chunks of filtered listings and keeps those at or above
// the acceptance threshold. A failed chunk falls back to the neutral score
// for every listing in it.
func (p *Pipeline) runScoring(ctx context.Context, filtered []models.ExtractedListing, profile models.Profile) []scoredListing {
	chunks := chunkBy(filtered, p.config.ScoreChunkSize)

	results := batch.Run(ctx, chunks, p.config.ScoreConcurrency, func(ctx context.Context, chunk []models.ExtractedListing) (map[int]int, error) {
		return p.scoreChunk(ctx, chunk, profile)
	})

	var scored []scoredListing
	for ci, chunk := range chunks {
		scores := results[ci].Value
		if results[ci].Err != nil {
			p.logger.Warn("scoring chunk failed", zap.Int("chunk", ci), zap.Error(results[ci].Err))
			scores = nil
		}
		for ji, listing := range chunk {
			score, ok := scores[ji]
			if !ok {
				score = NeutralScore
			}
			if score >= AcceptanceThreshold {
				scored = append(scored, scoredListing{listing: listing, score: score})
			}
		}
	}
	return scored
}

// persist deduplicates by content hash and inserts novel listings. A lookup
// or insert failure skips that single listing.
func (p *Pipeline) persist(ctx context.Context, userID uuid.UUID, scored []scoredListing) int {
	saved := 0
	for _, s := range scored {
		hash := DuplicateHash(s.listing.Company, s.listing.Title, s.listing.Location)

		exists, err := p.listings.ExistsByHash(ctx, userID, hash)
		if err != nil {
			p.logger.Warn("duplicate lookup failed",
				zap.String("company", s.listing.Company),
				zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		_, err = p.listings.Insert(ctx, models.JobListing{
			UserID:         userID,
			Company:        s.listing.Company,
			Title:          s.listing.Title,
			URL:            s.listing.URL,
			Description:    s.listing.Description,
			Location:       s.listing.Location,
			SalaryInfo:     s.listing.SalaryInfo,
			CompanySummary: s.companySummary,
			Score:          s.score,
			Status:         models.StatusPending,
			Source:         listingSource,
			DuplicateHash:  hash,
		})
		if err != nil {
			p.logger.Warn("listing insert failed",
				zap.String("company", s.listing.Company),
				zap.String("title", s.listing.Title),
				zap.Error(err))
			continue
		}
		saved++
	}
	return saved
}

func chunkBy[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
