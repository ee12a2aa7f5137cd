package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobscout/internal/errors"
	"jobscout/internal/models"
)

// ListingStore persists job listings. Every query is scoped by user id.
type ListingStore struct {
	pool *pgxpool.Pool
}

func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

const listingColumns = `
	id, user_id, company, title,
	COALESCE(url, ''), COALESCE(description, ''), COALESCE(location, ''),
	COALESCE(salary_info, ''), COALESCE(company_summary, ''),
	score, status, source, duplicate_hash,
	COALESCE(tailored_resume_text, ''), COALESCE(cover_letter_text, ''),
	apply_log, created_at, updated_at`

func scanListing(row pgx.Row) (models.JobListing, error) {
	var l models.JobListing
	var logBytes []byte
	err := row.Scan(
		&l.ID, &l.UserID, &l.Company, &l.Title,
		&l.URL, &l.Description, &l.Location,
		&l.SalaryInfo, &l.CompanySummary,
		&l.Score, &l.Status, &l.Source, &l.DuplicateHash,
		&l.TailoredResumeText, &l.CoverLetterText,
		&logBytes, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return models.JobListing{}, err
	}
	if err := json.Unmarshal(logBytes, &l.ApplyLog); err != nil {
		l.ApplyLog = nil
	}
	return l, nil
}

// Insert stores a new listing. A duplicate (user_id, duplicate_hash) pair
// fails the unique index and surfaces as a CONFLICT error; callers log and
// skip it.
func (s *ListingStore) Insert(ctx context.Context, l models.JobListing) (models.JobListing, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_listings (
			id, user_id, company, title, url, description, location,
			salary_info, company_summary, score, status, source,
			duplicate_hash, apply_log, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''),
			NULLIF($8,''), NULLIF($9,''), $10, $11, $12, $13, '[]', $14, $14
		)`,
		l.ID, l.UserID, l.Company, l.Title, l.URL, l.Description, l.Location,
		l.SalaryInfo, l.CompanySummary, l.Score, l.Status, l.Source,
		l.DuplicateHash, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.JobListing{}, errors.Conflict("duplicate listing", err)
		}
		return models.JobListing{}, errors.Internal("inserting listing", err)
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	return l, nil
}

// ExistsByHash reports whether the user already has a listing with the given
// duplicate hash.
func (s *ListingStore) ExistsByHash(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM job_listings WHERE user_id = $1 AND duplicate_hash = $2
		)`, userID, hash).Scan(&exists)
	if err != nil {
		return false, errors.Internal("checking duplicate hash", err)
	}
	return exists, nil
}

func (s *ListingStore) GetForUser(ctx context.Context, userID, id uuid.UUID) (models.JobListing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx,
		`SELECT`+listingColumns+` FROM job_listings WHERE id = $1 AND user_id = $2`,
		id, userID))
	if err == pgx.ErrNoRows {
		return models.JobListing{}, errors.NotFound("listing not found", nil)
	}
	if err != nil {
		return models.JobListing{}, errors.Internal("querying listing", err)
	}
	return l, nil
}

// ListByStatus returns the user's listings, newest score first. Empty status
// means all.
func (s *ListingStore) ListByStatus(ctx context.Context, userID uuid.UUID, status models.Status) ([]models.JobListing, error) {
	const base = `SELECT` + listingColumns + ` FROM job_listings WHERE user_id = $1`

	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = s.pool.Query(ctx, base+` AND status = $2 ORDER BY score DESC, created_at DESC`, userID, status)
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY score DESC, created_at DESC`, userID)
	}
	if err != nil {
		return nil, errors.Internal("listing jobs", err)
	}
	defer rows.Close()

	listings := make([]models.JobListing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.Internal("scanning listing", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListApprovedTopN returns up to limit approved listings ordered by score
// descending, which is the document generator's selection rule.
func (s *ListingStore) ListApprovedTopN(ctx context.Context, userID uuid.UUID, limit int) ([]models.JobListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT`+listingColumns+` FROM job_listings
		 WHERE user_id = $1 AND status = $2
		 ORDER BY score DESC LIMIT $3`,
		userID, models.StatusApproved, limit)
	if err != nil {
		return nil, errors.Internal("listing approved jobs", err)
	}
	defer rows.Close()

	listings := make([]models.JobListing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.Internal("scanning listing", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpdateStatus sets the listing status without transition checks; callers
// are expected to have validated the transition centrally.
func (s *ListingStore) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE job_listings SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userID, status)
	if err != nil {
		return errors.Internal("updating listing status", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("listing not found", nil)
	}
	return nil
}

// SaveDocuments persists generated documents and moves the listing to the
// given status in one write.
func (s *ListingStore) SaveDocuments(ctx context.Context, userID, id uuid.UUID, resume, coverLetter string, status models.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE job_listings
		SET tailored_resume_text = $3, cover_letter_text = $4, status = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userID, resume, coverLetter, status)
	if err != nil {
		return errors.Internal("saving documents", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("listing not found", nil)
	}
	return nil
}

// GetApplyLog reads the listing's audit log.
func (s *ListingStore) GetApplyLog(ctx context.Context, userID, id uuid.UUID) ([]models.ApplyLogEntry, error) {
	var logBytes []byte
	err := s.pool.QueryRow(ctx,
		`SELECT apply_log FROM job_listings WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&logBytes)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("listing not found", nil)
	}
	if err != nil {
		return nil, errors.Internal("reading apply log", err)
	}

	var entries []models.ApplyLogEntry
	if err := json.Unmarshal(logBytes, &entries); err != nil {
		return nil, errors.Internal("decoding apply log", err)
	}
	return entries, nil
}

// SetApplyLog writes back the full audit log sequence. Lost updates under
// concurrent writers to the same listing are an accepted limitation.
func (s *ListingStore) SetApplyLog(ctx context.Context, userID, id uuid.UUID, entries []models.ApplyLogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Internal("encoding apply log", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE job_listings SET apply_log = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userID, data)
	if err != nil {
		return errors.Internal("writing apply log", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("listing not found", nil)
	}
	return nil
}

// CountsByStatus returns the user's listing counts per status.
func (s *ListingStore) CountsByStatus(ctx context.Context, userID uuid.UUID) (map[models.Status]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM job_listings
		WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, errors.Internal("counting listings", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status models.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.Internal("scanning listing count", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
